package main

import (
	"fmt"
	"os"
)

const usageText = `guideprogress tracks checklist progress for the node setup guides.

Usage:
  guideprogress <command> [flags]

Commands:
  ui       browse guides and tick off checklist items
  status   print progress per page
  reset    clear progress on one page
  export   print the stored progress document
  config   print configuration (effective or defaults)
  version  print build version
  help     show help

Flags:
  -h, --help   show help

Examples:
  guideprogress ui --site ./src/content/docs
  guideprogress status
  guideprogress reset --page /guides/execution-client/
  guideprogress config --default --format toml
`

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		return
	}

	wiring := defaultCommandWiring(os.Stdout, os.Stderr)
	commands := buildCommands(wiring)

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	}

	runner, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
	exitOnErr(args[0], runner.Run(args[1:]), wiring.stderr)
}

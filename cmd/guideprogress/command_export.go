package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"strings"
)

type ExportCommand struct {
	wiring commandWiring
}

func NewExportCommand(wiring commandWiring) *ExportCommand {
	return &ExportCommand{wiring: wiring}
}

func (c *ExportCommand) Run(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(c.wiring.stderr)
	format := fs.String("format", "json", "output format: json")
	compact := fs.Bool("compact", false, "print the document on one line as stored")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if f := strings.ToLower(strings.TrimSpace(*format)); f != "" && f != "json" {
		return fmt.Errorf("invalid format %q: must be json", *format)
	}

	store, _, closeStore, err := openStore(context.Background(), c.wiring, nil)
	if err != nil {
		return err
	}
	defer closeStore()

	encoder := json.NewEncoder(c.wiring.stdout)
	if !*compact {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(store.Snapshot())
}

package main

import (
	"context"
	"io"
	"os"

	"guideprogress/internal/config"
	"guideprogress/internal/guide"
	"guideprogress/internal/logging"
	"guideprogress/internal/slot"
	"guideprogress/internal/ui"
)

type commandRunner interface {
	Run(args []string) error
}

type uiRunner func(ctx context.Context, store ui.Store, catalog *guide.Catalog, logger logging.Logger, opts ...ui.Option) error

type commandWiring struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (config.Config, error)
	openSlot   func(cfg config.Config) (slot.Slot, error)
	openUILog  func(level logging.Level) (logging.Logger, io.Closer, error)
	runUI      uiRunner
	version    string
}

func defaultCommandWiring(stdout, stderr io.Writer) commandWiring {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return commandWiring{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: config.Load,
		openSlot:   openConfiguredSlot,
		openUILog:  openUILog,
		runUI:      ui.Run,
		version:    buildVersion(),
	}
}

func buildCommands(wiring commandWiring) map[string]commandRunner {
	return map[string]commandRunner{
		"ui":      NewUICommand(wiring),
		"status":  NewStatusCommand(wiring),
		"reset":   NewResetCommand(wiring),
		"export":  NewExportCommand(wiring),
		"config":  NewConfigCommand(wiring.stdout, wiring.stderr),
		"version": NewVersionCommand(wiring.stdout, wiring.version),
	}
}

func openConfiguredSlot(cfg config.Config) (slot.Slot, error) {
	paths, err := cfg.SlotPaths()
	if err != nil {
		return nil, err
	}
	return slot.Open(paths, cfg.StorageBackend())
}

func openUILog(level logging.Level) (logging.Logger, io.Closer, error) {
	path, err := config.UILogPath()
	if err != nil {
		return nil, nil, err
	}
	return logging.OpenFile(path, level)
}

package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"guideprogress/internal/guide"
	"guideprogress/internal/logging"
	"guideprogress/internal/ui"
)

type UICommand struct {
	wiring commandWiring
}

func NewUICommand(wiring commandWiring) *UICommand {
	return &UICommand{wiring: wiring}
}

func (c *UICommand) Run(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(c.wiring.stderr)
	site := fs.String("site", "", "docs content root (defaults to [site] root)")
	watch := fs.Bool("watch", true, "reload guides when markdown files change")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if c.wiring.runUI == nil {
		return errors.New("ui runner is not configured")
	}

	cfg, err := c.wiring.loadConfig()
	if err != nil {
		return err
	}
	logger := logging.Nop()
	if c.wiring.openUILog != nil {
		fileLogger, closer, err := c.wiring.openUILog(logging.ParseLevel(cfg.LogLevel()))
		if err == nil {
			defer closer.Close()
			logger = fileLogger
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	root := siteRoot(*site, cfg)
	catalog, err := loadCatalog(root, cfg, false)
	if err != nil {
		return err
	}
	store, _, closeStore, err := openStore(ctx, c.wiring, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	var opts []ui.Option
	if *watch {
		watcher, err := guide.NewWatcher(root, 0, logger)
		if err != nil {
			return err
		}
		defer watcher.Close()
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		opts = append(opts, ui.WithCatalogReload(watcher.Changes(), func() (*guide.Catalog, error) {
			return guide.Load(root)
		}))
	}

	logger.Info("ui_start",
		logging.F("pages", len(catalog.Pages)),
		logging.F("load", store.LoadStatus()),
		logging.F("watch", *watch),
		logging.F("version", c.wiring.version),
	)
	return c.wiring.runUI(ctx, store, catalog, logger, opts...)
}

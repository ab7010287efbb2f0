package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"guideprogress/internal/config"
	"guideprogress/internal/guide"
	"guideprogress/internal/logging"
	"guideprogress/internal/progress"
)

const version = "dev"

func exitOnErr(label string, err error, stderr io.Writer) {
	if err == nil {
		return
	}
	fmt.Fprintf(stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}

// openStore loads config and opens the progress store on the configured slot.
// The returned close func releases the slot.
func openStore(ctx context.Context, wiring commandWiring, logger logging.Logger) (*progress.Store, config.Config, func(), error) {
	cfg, err := wiring.loadConfig()
	if err != nil {
		return nil, config.Config{}, nil, err
	}
	if logger == nil {
		logger = logging.New(wiring.stderr, logging.ParseLevel(cfg.LogLevel()))
	}
	s, err := wiring.openSlot(cfg)
	if err != nil {
		return nil, config.Config{}, nil, fmt.Errorf("open %s slot: %w", cfg.StorageBackend(), err)
	}
	store, err := progress.Open(ctx, s,
		progress.WithSlotKey(cfg.SlotKey()),
		progress.WithLogger(logger.With(logging.F("backend", s.Backend()))),
	)
	if err != nil {
		_ = s.Close()
		return nil, config.Config{}, nil, err
	}
	closeFn := func() {
		if err := s.Close(); err != nil {
			logger.Warn("slot_close_failed", logging.Err(err))
		}
	}
	return store, cfg, closeFn, nil
}

// loadCatalog reads the site from the flag value or the configured root. A
// site without pages yields a nil catalog when optional is set.
func loadCatalog(flagRoot string, cfg config.Config, optional bool) (*guide.Catalog, error) {
	catalog, err := guide.Load(siteRoot(flagRoot, cfg))
	if err != nil {
		if optional && errors.Is(err, guide.ErrNoPages) {
			return nil, nil
		}
		return nil, err
	}
	return catalog, nil
}

func siteRoot(flagRoot string, cfg config.Config) string {
	if root := strings.TrimSpace(flagRoot); root != "" {
		return root
	}
	return cfg.SiteRoot()
}

func saveError(result progress.SaveResult) error {
	if !result.Degraded() {
		return nil
	}
	return fmt.Errorf("progress not persisted: %w", result.Err)
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}

	exe, err := os.Executable()
	if err == nil {
		file, err := os.Open(exe)
		if err == nil {
			defer file.Close()
			hasher := sha256.New()
			if _, err := io.Copy(hasher, file); err == nil {
				sum := hasher.Sum(nil)
				return fmt.Sprintf("bin-%x", sum[:6])
			}
		}
	}

	return version
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"

	"guideprogress/internal/progress"
)

type ResetCommand struct {
	wiring commandWiring
}

func NewResetCommand(wiring commandWiring) *ResetCommand {
	return &ResetCommand{wiring: wiring}
}

func (c *ResetCommand) Run(args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	fs.SetOutput(c.wiring.stderr)
	page := fs.String("page", "", "page path or URL to reset (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*page) == "" {
		return errors.New("--page is required")
	}
	key, err := progress.PageKeyFromLocation(strings.TrimSpace(*page))
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, _, closeStore, err := openStore(ctx, c.wiring, nil)
	if err != nil {
		return err
	}
	defer closeStore()
	result, err := store.ResetProgress(ctx, key)
	if err != nil {
		return err
	}
	if err := saveError(result); err != nil {
		return err
	}
	fmt.Fprintf(c.wiring.stdout, "reset %s\n", key)
	return nil
}

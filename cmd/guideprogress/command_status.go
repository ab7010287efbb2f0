package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"guideprogress/internal/guide"
	"guideprogress/internal/progress"
)

type StatusCommand struct {
	wiring commandWiring
}

func NewStatusCommand(wiring commandWiring) *StatusCommand {
	return &StatusCommand{wiring: wiring}
}

type statusRow struct {
	key      progress.PageKey
	title    string
	done     int
	total    int
	progress bool
}

func (c *StatusCommand) Run(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(c.wiring.stderr)
	site := fs.String("site", "", "docs content root (defaults to [site] root)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, cfg, closeStore, err := openStore(context.Background(), c.wiring, nil)
	if err != nil {
		return err
	}
	defer closeStore()
	catalog, err := loadCatalog(*site, cfg, true)
	if err != nil {
		return err
	}
	printStatus(c.wiring.stdout, statusRows(store, catalog))
	return nil
}

// statusRows lists catalog pages in site order, then pages that only exist in
// the stored document.
func statusRows(store *progress.Store, catalog *guide.Catalog) []statusRow {
	var rows []statusRow
	seen := map[progress.PageKey]struct{}{}
	if catalog != nil {
		for _, page := range catalog.Pages {
			done, total := store.Counts(page.Key)
			if total == 0 {
				total = page.ItemCount()
			}
			rows = append(rows, statusRow{
				key:      page.Key,
				title:    page.DisplayTitle(),
				done:     done,
				total:    total,
				progress: store.HasAnyProgress(page.Key),
			})
			seen[page.Key] = struct{}{}
		}
	}
	for _, key := range store.Pages() {
		if _, ok := seen[key]; ok {
			continue
		}
		done, total := store.Counts(key)
		rows = append(rows, statusRow{
			key:      key,
			title:    "-",
			done:     done,
			total:    total,
			progress: store.HasAnyProgress(key),
		})
	}
	return rows
}

func printStatus(output io.Writer, rows []statusRow) {
	writer := tabwriter.NewWriter(output, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "PAGE\tDONE\tPROGRESS\tTITLE")
	for _, row := range rows {
		mark := "no"
		if row.progress {
			mark = "yes"
		}
		fmt.Fprintf(writer, "%s\t%d/%d\t%s\t%s\n", row.key, row.done, row.total, mark, row.title)
	}
	_ = writer.Flush()
}

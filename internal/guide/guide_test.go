package guide

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"guideprogress/internal/progress"
)

const validatorGuide = `---
title: Set up a validator
sidebar:
  order: 2
---

Intro text.

## Prerequisites

- [ ] Install **Ubuntu** 24.04
- [x] Open port ` + "`30303`" + `
- A plain bullet

## Deposit

- [ ] Generate keys
- [ ] Upload deposit data

` + "```" + `
- [ ] not a real checkbox
` + "```" + `

## Prerequisites

- [ ] Second list under a repeated heading
`

func TestParseExtractsChecklists(t *testing.T) {
	page, err := Parse("/guides/validator/", "guides", []byte(validatorGuide))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if page.Title != "Set up a validator" {
		t.Fatalf("unexpected title %q", page.Title)
	}
	if !page.HasOrder || page.Order != 2 {
		t.Fatalf("expected sidebar order 2, got %d (%v)", page.Order, page.HasOrder)
	}
	want := []Checklist{
		{Name: "prerequisites", Items: []string{"Install Ubuntu 24.04", "Open port 30303"}},
		{Name: "deposit", Items: []string{"Generate keys", "Upload deposit data"}},
		{Name: "prerequisites-2", Items: []string{"Second list under a repeated heading"}},
	}
	if !reflect.DeepEqual(page.Checklists, want) {
		t.Fatalf("unexpected checklists:\n got=%#v\nwant=%#v", page.Checklists, want)
	}
	if page.ItemCount() != 5 {
		t.Fatalf("unexpected item count %d", page.ItemCount())
	}
}

func TestParseTitleFallbacks(t *testing.T) {
	page, err := Parse("/guides/no-meta/", "guides", []byte("# Heading Title\n\n- [ ] one\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if page.Title != "Heading Title" {
		t.Fatalf("expected heading title, got %q", page.Title)
	}
	if page.Checklists[0].Name != "heading-title" {
		t.Fatalf("unexpected list name %q", page.Checklists[0].Name)
	}

	page, err = Parse("/guides/bare/", "guides", []byte("- [ ] one\n- [ ] two\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if page.Title != "bare" {
		t.Fatalf("expected slug title, got %q", page.Title)
	}
	if page.Checklists[0].Name != "checklist" {
		t.Fatalf("expected default list name, got %q", page.Checklists[0].Name)
	}
}

func TestParseRejectsBadFrontmatter(t *testing.T) {
	_, err := Parse("/guides/x/", "guides", []byte("---\ntitle: [unclosed\n---\nbody\n"))
	if err == nil {
		t.Fatalf("expected frontmatter error")
	}
}

func TestKeyForFile(t *testing.T) {
	cases := map[string]progress.PageKey{
		"guides/one.md":               "/guides/one/",
		"guides/index.md":             "/guides/",
		"guides/Node Setup/Part 1.md": "/guides/node-setup/part-1/",
		"reference/cli.mdx":           "/reference/cli/",
		"index.md":                    "/",
	}
	for rel, want := range cases {
		if got := KeyForFile(rel); got != want {
			t.Fatalf("KeyForFile(%q)=%q want %q", rel, got, want)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadOrdersPagesBySection(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "reference", "cli.md"), "---\ntitle: CLI\n---\n")
	writeFile(t, filepath.Join(root, "guides", "zeta.md"), "---\ntitle: Zeta\n---\n")
	writeFile(t, filepath.Join(root, "guides", "alpha.md"), "---\ntitle: Alpha\n---\n- [ ] a\n")
	writeFile(t, filepath.Join(root, "guides", "first.md"), "---\ntitle: Last Alphabetically\nsidebar:\n  order: 1\n---\n")
	writeFile(t, filepath.Join(root, "guides", "notes.txt"), "ignored")

	catalog, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var keys []progress.PageKey
	for _, page := range catalog.Pages {
		keys = append(keys, page.Key)
	}
	want := []progress.PageKey{"/guides/first/", "/guides/alpha/", "/guides/zeta/", "/reference/cli/"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("unexpected order %v", keys)
	}
	page, ok := catalog.Find("/guides/alpha/")
	if !ok || len(page.Checklists) != 1 || page.Path == "" {
		t.Fatalf("unexpected alpha page %#v", page)
	}
	if _, ok := catalog.Find("/guides/missing/"); ok {
		t.Fatalf("expected missing page")
	}
}

func TestLoadWithoutPages(t *testing.T) {
	if _, err := Load(t.TempDir()); !errors.Is(err, ErrNoPages) {
		t.Fatalf("expected ErrNoPages, got %v", err)
	}
}

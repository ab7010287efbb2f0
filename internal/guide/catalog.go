// Package guide loads the documentation site's pages and the checklists
// they contain.
package guide

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"guideprogress/internal/progress"
)

const contentPattern = "**/*.{md,mdx}"

// Sections are the site's sidebar groups, in display order. Each one is a
// directory under the content root.
var Sections = []string{"guides", "reference"}

var ErrNoPages = errors.New("no guide pages found")

type Checklist struct {
	Name  string
	Items []string
}

type Page struct {
	Key        progress.PageKey
	Section    string
	Title      string
	Label      string
	Order      int
	HasOrder   bool
	Path       string
	Body       string
	Checklists []Checklist
}

// DisplayTitle prefers the sidebar label over the page title.
func (p *Page) DisplayTitle() string {
	if p.Label != "" {
		return p.Label
	}
	return p.Title
}

func (p *Page) ItemCount() int {
	total := 0
	for _, list := range p.Checklists {
		total += len(list.Items)
	}
	return total
}

type Catalog struct {
	Root  string
	Pages []*Page
}

// Load reads every markdown page under root's section directories.
func Load(root string) (*Catalog, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("site root is required")
	}
	catalog := &Catalog{Root: root}
	for _, section := range Sections {
		dir := filepath.Join(root, section)
		info, err := os.Stat(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		if !info.IsDir() {
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(dir), contentPattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		for _, match := range matches {
			rel := section + "/" + match
			path := filepath.Join(dir, filepath.FromSlash(match))
			source, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			page, err := Parse(KeyForFile(rel), section, source)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", rel, err)
			}
			page.Path = path
			catalog.Pages = append(catalog.Pages, page)
		}
	}
	if len(catalog.Pages) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoPages, root)
	}
	sortPages(catalog.Pages)
	return catalog, nil
}

func (c *Catalog) Find(key progress.PageKey) (*Page, bool) {
	if c == nil {
		return nil, false
	}
	for _, page := range c.Pages {
		if page.Key == key {
			return page, true
		}
	}
	return nil, false
}

// KeyForFile maps a content file to the path the site serves it at:
// "guides/Setup.md" becomes "/guides/setup/" and "guides/index.md" becomes
// "/guides/".
func KeyForFile(rel string) progress.PageKey {
	rel = filepath.ToSlash(rel)
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	rel = strings.TrimSuffix(rel, "/index")
	if rel == "index" {
		rel = ""
	}
	parts := strings.Split(rel, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.ToLower(strings.Join(strings.Fields(part), "-"))
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return progress.PageKey("/" + strings.Join(out, "/") + "/")
}

func sortPages(pages []*Page) {
	sectionIndex := map[string]int{}
	for i, section := range Sections {
		sectionIndex[section] = i
	}
	sort.SliceStable(pages, func(i, j int) bool {
		a, b := pages[i], pages[j]
		if a.Section != b.Section {
			return sectionIndex[a.Section] < sectionIndex[b.Section]
		}
		if a.HasOrder != b.HasOrder {
			return a.HasOrder
		}
		if a.HasOrder && a.Order != b.Order {
			return a.Order < b.Order
		}
		if a.DisplayTitle() != b.DisplayTitle() {
			return strings.ToLower(a.DisplayTitle()) < strings.ToLower(b.DisplayTitle())
		}
		return a.Key < b.Key
	})
}

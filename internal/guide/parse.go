package guide

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"guideprogress/internal/progress"
)

const defaultChecklistName = "checklist"

var markdown = goldmark.New(goldmark.WithExtensions(extension.TaskList))

type frontmatter struct {
	Title   string `yaml:"title"`
	Sidebar struct {
		Label string `yaml:"label"`
		Order *int   `yaml:"order"`
	} `yaml:"sidebar"`
}

// Parse builds a page from markdown source. The optional frontmatter block
// supplies the title and sidebar order.
func Parse(key progress.PageKey, section string, source []byte) (*Page, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	meta, body, err := splitFrontmatter(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	page := &Page{
		Key:     key,
		Section: section,
		Title:   strings.TrimSpace(meta.Title),
		Label:   strings.TrimSpace(meta.Sidebar.Label),
		Body:    string(body),
	}
	if meta.Sidebar.Order != nil {
		page.Order = *meta.Sidebar.Order
		page.HasOrder = true
	}

	doc := markdown.Parser().Parse(text.NewReader(body))
	firstHeading := ""
	heading := ""
	seen := map[string]int{}
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			heading = nodeText(node, body)
			if firstHeading == "" {
				firstHeading = heading
			}
			return ast.WalkSkipChildren, nil
		case *ast.List:
			items := taskItems(node, body)
			if len(items) == 0 {
				return ast.WalkContinue, nil
			}
			page.Checklists = append(page.Checklists, Checklist{
				Name:  uniqueName(slugify(heading), seen),
				Items: items,
			})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	if page.Title == "" {
		page.Title = firstHeading
	}
	if page.Title == "" {
		page.Title = lastSegment(key)
	}
	return page, nil
}

func splitFrontmatter(source []byte) (frontmatter, []byte, error) {
	var meta frontmatter
	normalized := bytes.ReplaceAll(source, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return meta, normalized, nil
	}
	rest := normalized[len("---\n"):]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return meta, normalized, nil
	}
	if err := yaml.Unmarshal(rest[:end], &meta); err != nil {
		return meta, nil, fmt.Errorf("frontmatter: %w", err)
	}
	body := rest[end+len("\n---"):]
	if i := bytes.IndexByte(body, '\n'); i >= 0 {
		body = body[i+1:]
	} else {
		body = nil
	}
	return meta, body, nil
}

// taskItems returns the text of the list's direct items that start with a
// task checkbox. Nested lists are reported on their own.
func taskItems(list *ast.List, source []byte) []string {
	var items []string
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		block := item.FirstChild()
		if block == nil {
			continue
		}
		box, ok := block.FirstChild().(*extast.TaskCheckBox)
		if !ok {
			continue
		}
		var label strings.Builder
		for n := box.NextSibling(); n != nil; n = n.NextSibling() {
			writeText(&label, n, source)
		}
		items = append(items, strings.TrimSpace(label.String()))
	}
	return items
}

func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	writeText(&b, n, source)
	return strings.TrimSpace(b.String())
}

func writeText(b *strings.Builder, n ast.Node, source []byte) {
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
}

func slugify(value string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(value) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func uniqueName(base string, seen map[string]int) string {
	if base == "" {
		base = defaultChecklistName
	}
	seen[base]++
	if n := seen[base]; n > 1 {
		return base + "-" + strconv.Itoa(n)
	}
	return base
}

func lastSegment(key progress.PageKey) string {
	parts := strings.Split(strings.Trim(string(key), "/"), "/")
	return parts[len(parts)-1]
}

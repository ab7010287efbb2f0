package ui

import (
	"fmt"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

const checklistHelp = "↑/↓ move • space toggle • tab/shift+tab page • r reset • v read • c copy • q quit"

func (m *Model) render() string {
	lines := []string{m.headerLine(), m.titleLine()}
	if m.mode == modeReader {
		lines = append(lines, m.reader.View())
		lines = append(lines, m.footer("↑/↓ scroll • v/esc back • ctrl+c quit")...)
		return strings.Join(lines, "\n")
	}
	lines = append(lines, dividerStyle.Render(strings.Repeat("─", max(1, m.width))))
	lines = append(lines, m.checklistLines(max(1, m.height-len(lines)-2))...)
	lines = append(lines, m.footer(checklistHelp)...)
	return strings.Join(lines, "\n")
}

func (m *Model) headerLine() string {
	page := m.activePage()
	header := fmt.Sprintf("%s · %s (%d/%d)", page.Section, page.DisplayTitle(), m.pageIndex+1, len(m.catalog.Pages))
	return headerStyle.Render(truncateToWidth(header, m.width))
}

func (m *Model) titleLine() string {
	done, total := m.page.Counts()
	indicator := noProgressStyle.Render("○ not started")
	if m.hasProgress {
		indicator = progressStyle.Render("● in progress")
	}
	return fmt.Sprintf("%s  %s", indicator, titleStyle.Render(fmt.Sprintf("%d/%d done", done, total)))
}

// checklistLines renders the rows around the cursor so it stays visible.
func (m *Model) checklistLines(height int) []string {
	if len(m.rows) == 0 {
		return []string{helpStyle.Render("no checklists on this page")}
	}
	var lines []string
	cursorLine := 0
	previous := ""
	for i, r := range m.rows {
		if r.list != previous {
			lines = append(lines, listHeaderStyle.Render(r.list))
			previous = r.list
		}
		if i == m.cursor {
			cursorLine = len(lines)
		}
		lines = append(lines, m.rowLine(i, r))
	}
	if len(lines) <= height {
		return lines
	}
	start := max(0, cursorLine-height/2)
	if start+height > len(lines) {
		start = len(lines) - height
	}
	return lines[start : start+height]
}

func (m *Model) rowLine(i int, r row) string {
	marker := "[ ]"
	style := itemStyle
	value, err := m.page.GetListItem(r.list, r.index)
	switch {
	case err != nil:
		marker = "[?]"
	case value:
		marker = "[x]"
		style = doneItemStyle
	}
	prefix := "  "
	if i == m.cursor {
		prefix = "› "
	}
	labelWidth := max(1, m.width-runewidth.StringWidth(prefix+marker+" "))
	label := runewidth.Truncate(r.label, labelWidth, "…")
	if i == m.cursor {
		return selectedStyle.Render(prefix + marker + " " + label)
	}
	return prefix + marker + " " + style.Render(label)
}

func (m *Model) footer(help string) []string {
	status := statusStyle.Render(truncateToWidth(m.status, m.width))
	if m.statusError {
		status = statusErrorStyle.Render(truncateToWidth(m.status, m.width))
	}
	return []string{status, helpStyle.Render(truncateToWidth(help, m.width))}
}

func truncateToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	if xansi.StringWidth(text) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return xansi.Cut(text, 0, width-1) + "…"
}

package ui

import (
	tea "charm.land/bubbletea/v2"
)

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeConfirmReset:
		return m, m.handleConfirmKey(key)
	case modeReader:
		switch key {
		case "v", "esc", "q":
			m.mode = modeChecklist
			return m, nil
		}
		var cmd tea.Cmd
		m.reader, cmd = m.reader.Update(msg)
		return m, cmd
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "space", "enter", "x":
		m.toggle()
	case "tab", "n":
		m.switchPage(1)
	case "shift+tab", "p":
		m.switchPage(-1)
	case "r":
		m.mode = modeConfirmReset
		m.setInfo("reset progress on this page? (y/n)")
	case "v":
		m.mode = modeReader
	case "c":
		m.copyProgress()
	}
	return m, nil
}

func (m *Model) handleConfirmKey(key string) tea.Cmd {
	switch key {
	case "y", "enter":
		m.mode = modeChecklist
		m.setInfo("")
		m.reset()
	case "n", "esc", "q":
		m.mode = modeChecklist
		m.setInfo("reset cancelled")
	}
	return nil
}

func (m *Model) switchPage(delta int) {
	if err := m.activatePage(m.pageIndex + delta); err != nil {
		m.setError(err)
		return
	}
	if !m.degraded {
		m.setInfo("")
	}
}

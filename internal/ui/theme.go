package ui

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	listHeaderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	itemStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	doneItemStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Strikethrough(true)
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	progressStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)
	noProgressStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true)
	dividerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// Package ui holds the terminal styles shared by the CLI help and the chat adapter.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// ANSI 6 (cyan) reads well on light and dark terminals.
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// ANSI 8 keeps descriptions dimmer than names.
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	SpeakerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)

	SystemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Speech renders one spoken line as "Name: text".
func Speech(name, text string) string {
	return SpeakerStyle.Render(name+":") + " " + text
}

func System(text string) string {
	return SystemStyle.Render(text)
}

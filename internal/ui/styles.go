// Package ui provides the interactive terminal chat interface for EmergenzChat.
package ui

import "github.com/charmbracelet/lipgloss"

// Styles bundles the lipgloss styles used by the chat view.
type Styles struct {
	Title          lipgloss.Style
	StatusBar      lipgloss.Style
	Pulse          lipgloss.Style
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	ErrorText      lipgloss.Style
	Help           lipgloss.Style
}

// DefaultStyles returns the default chat styling.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		StatusBar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")),
		Pulse: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("205")).
			Padding(0, 1),
		UserLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		AssistantLabel: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213")),
		ErrorText: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),
	}
}

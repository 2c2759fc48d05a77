package main

import "github.com/charmbracelet/lipgloss"

var (
	completionStyle = lipgloss.NewStyle().PaddingLeft(1)
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Faint(true) // dim
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))             // red
)

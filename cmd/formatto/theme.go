package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dshills/formatto/internal/format"
)

// theme holds the styles used for command output.
type theme struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Key     lipgloss.Style
	Title   lipgloss.Style
}

func newTheme() theme {
	return theme{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#facc15")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171")).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#909090")),
		Key:     lipgloss.NewStyle().Width(44),
		Title:   lipgloss.NewStyle().Bold(true),
	}
}

// notice picks the style for a notice kind.
func (t theme) notice(kind format.NoticeKind) lipgloss.Style {
	switch kind {
	case format.NoticeFormatted:
		return t.Success
	case format.NoticeError:
		return t.Error
	default:
		return t.Muted
	}
}

package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/voicestart/voicestart/internal/reconcile"
)

// Theme defines the colors used by the session grid.
type Theme struct {
	Name string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string

	// SlotColors keys on SlotState display names.
	SlotColors map[reconcile.SlotState]string
}

// Styles returns pre-built lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:       lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FaintText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),
		AccentText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		SuccessText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Success)).
			Bold(true),
		WarningText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		DangerText: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),
		Logo: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		slotColors: t.SlotColors,
		faint:      t.Faint,
	}
}

// Styles holds the rendered lipgloss styles.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	Logo        lipgloss.Style

	slotColors map[reconcile.SlotState]string
	faint      string
}

// SlotStyle returns the bordered box style for a session slot in the
// given state.
func (s Styles) SlotStyle(state reconcile.SlotState) lipgloss.Style {
	color := s.slotColors[state]
	if color == "" {
		color = s.faint
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(color)).
		Foreground(lipgloss.Color(color)).
		Width(slotWidth).
		Align(lipgloss.Center)
}

func defaultTheme() Theme {
	// Dracula palette: https://draculatheme.com/spec
	return Theme{
		Name: "Dracula",

		Text:    "#F8F8F2",
		Muted:   "#6272A4",
		Faint:   "#44475A",
		Accent:  "#BD93F9",
		Success: "#50FA7B",
		Warning: "#FFB86C",
		Danger:  "#FF5555",

		SlotColors: map[reconcile.SlotState]string{
			reconcile.SlotEmpty:     "#44475A", // Selection (dimmest readable)
			reconcile.SlotUploading: "#8BE9FD", // Cyan (active)
			reconcile.SlotFilled:    "#50FA7B", // Green (done)
			reconcile.SlotFailed:    "#FF5555", // Red (error)
		},
	}
}

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/voicestart/voicestart/internal/reconcile"
)

const (
	slotWidth   = 16
	slotsPerRow = 4
)

// renderMain renders the header, the session grid, and the footer.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the status bar: logo, client name, counts,
// offline and error indicators.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	sep := "  "

	parts := []string{styles.Logo.Render("voicestart")}

	if m.snapshot.HasClient {
		parts = append(parts, styles.Text.Render(m.snapshot.Client.Name))
		parts = append(parts,
			styles.MutedText.Render("Sessions:")+" "+
				styles.Text.Render(fmt.Sprintf("%d/%d", m.snapshot.FilledCount(), m.snapshot.Client.TotalSessions)))
	} else {
		parts = append(parts, styles.WarningText.Render("Connecting..."))
	}

	if pending := m.snapshot.PendingCount(); pending > 0 {
		parts = append(parts, m.spin.View()+" "+styles.AccentText.Render(fmt.Sprintf("%d processing", pending)))
	}

	if m.snapshot.IsOffline() {
		parts = append(parts, styles.DangerText.Render("● OFFLINE"))
	} else if m.snapshot.LastError != nil {
		parts = append(parts, styles.DangerText.Render("ERROR")+" "+
			styles.MutedText.Render(truncate(m.snapshot.LastError.Error(), 60)))
	}

	if ts := m.formatTimestamp(); ts != "" {
		parts = append(parts, styles.MutedText.Render(ts))
	}

	return strings.Join(parts, sep)
}

// renderGrid lays session slots out four per row.
func (m Model) renderGrid() string {
	styles := m.theme.Styles()
	slots := m.snapshot.Slots
	if len(slots) == 0 {
		if m.snapshot.HasClient {
			return styles.MutedText.Render("No sessions configured for this client.")
		}
		return styles.MutedText.Render("Waiting for client data...")
	}

	rows := make([]string, 0, (len(slots)+slotsPerRow-1)/slotsPerRow)
	for start := 0; start < len(slots); start += slotsPerRow {
		end := start + slotsPerRow
		if end > len(slots) {
			end = len(slots)
		}
		cells := make([]string, 0, end-start)
		for _, slot := range slots[start:end] {
			cells = append(cells, m.renderSlot(slot, styles))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

// renderSlot renders one bordered session cell.
func (m Model) renderSlot(slot reconcile.Slot, styles Styles) string {
	label := fmt.Sprintf("Session %d", slot.Number)
	var detail string

	switch slot.State {
	case reconcile.SlotUploading:
		detail = m.spin.View() + " " + slot.Job.Status.String()
	case reconcile.SlotFilled:
		detail = slot.Record.Title
		if detail == "" {
			detail = "recorded"
		}
		detail = truncate(detail, slotWidth-2)
	case reconcile.SlotFailed:
		detail = truncate(failDetail(slot), slotWidth-2)
	default:
		detail = "-"
	}

	return styles.SlotStyle(slot.State).Render(label + "\n" + detail)
}

func failDetail(slot reconcile.Slot) string {
	if slot.Job != nil && slot.Job.ErrorMessage != "" {
		return slot.Job.ErrorMessage
	}
	return "failed"
}

// renderFooter renders the key hints.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	colon := styles.FaintText.Render(":")

	hints := []string{
		styles.AccentText.Render("r") + colon + styles.MutedText.Render("Reload"),
		styles.AccentText.Render("q") + colon + styles.MutedText.Render("Quit"),
	}
	if m.loading {
		hints = append(hints, styles.WarningText.Render("reloading..."))
	}
	return strings.Join(hints, "  ")
}

// formatTimestamp formats the last update time with a relative
// indicator.
func (m Model) formatTimestamp() string {
	if m.lastUpdated.IsZero() {
		return ""
	}
	since := time.Since(m.lastUpdated)
	ts := m.lastUpdated.Format("15:04:05")
	switch {
	case since < time.Minute:
		return ts + " (now)"
	case since < time.Hour:
		return ts + fmt.Sprintf(" (%dm ago)", int(since.Minutes()))
	default:
		return ts
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

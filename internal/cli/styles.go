// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// ActiveColor marks listings that are still for sale.
	ActiveColor = lipgloss.Color("#4ECDC4") // Teal
	// SoldColor marks sold listings.
	SoldColor = lipgloss.Color("#FF6B6B") // Red
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#95E1D3") // Light teal
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666") // Gray

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ActiveColor).
			MarginBottom(1)

	// ActiveStyle formats active listing headers.
	ActiveStyle = lipgloss.NewStyle().
			Foreground(ActiveColor)

	// SoldStyle formats sold listing headers.
	SoldStyle = lipgloss.NewStyle().
			Foreground(SoldColor).
			Bold(true)

	// ErrorStyle formats errors and not-found messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(SoldColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats source references and metadata.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)
)

// Icons.
const (
	ActiveIcon = "🟢"
	SoldIcon   = "✅"
	CarIcon    = "🚗"
)

// FormatTitle formats a section title.
func FormatTitle(title string) string {
	return TitleStyle.Render(CarIcon + " " + title)
}

// FormatError formats an error or not-found message.
func FormatError(message string) string {
	return ErrorStyle.Render(message)
}

// FormatInfo formats an informational message.
func FormatInfo(message string) string {
	return InfoStyle.Render(message)
}

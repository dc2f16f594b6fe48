// Package ui holds the shared palette, icons, and formatting helpers used
// by every presentation surface.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// ─── Palette ─────────────────────────────────────────────────────────────────

var (
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#2563eb", Dark: "#60a5fa"}
	ColorText    = lipgloss.AdaptiveColor{Light: "#1f2937", Dark: "#e5e7eb"}
	ColorTextDim = lipgloss.AdaptiveColor{Light: "#6b7280", Dark: "#9ca3af"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#9ca3af", Dark: "#6b7280"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#16a34a", Dark: "#4ade80"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#ca8a04", Dark: "#facc15"}
	ColorError   = lipgloss.AdaptiveColor{Light: "#dc2626", Dark: "#f87171"}
)

// ─── Icons ───────────────────────────────────────────────────────────────────

const (
	IconBullet  = "·"
	IconPipe    = "│"
	IconWarning = "!"
	IconError   = "✗"
	IconCheck   = "✓"
)

// ─── Styles ──────────────────────────────────────────────────────────────────

// HintBarStyle renders the keybinding hint line at the bottom of a view.
func HintBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ColorMuted)
}

// TagWarningStyle renders an inline warning tag.
func TagWarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#1f2937")).
		Background(ColorWarning).
		Bold(true)
}

// ─── Formatting ──────────────────────────────────────────────────────────────

// FormatSize renders a byte count in human units (1024 base).
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

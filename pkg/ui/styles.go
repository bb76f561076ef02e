package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/buildline/pkg/analysis"
	"github.com/vanderheijden86/buildline/pkg/timeline"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR PALETTE - Adaptive colors for light and dark terminals
// ══════════════════════════════════════════════════════════════════════════════

var (
	ColorText        = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext     = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted       = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}
	ColorBgHighlight = lipgloss.AdaptiveColor{Light: "#D0D0D0", Dark: "#44475A"}

	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Terciles
	ColorFast   = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorMedium = lipgloss.AdaptiveColor{Light: "#808000", Dark: "#F1FA8C"}
	ColorSlow   = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Selection states
	ColorSelectedBg   = lipgloss.AdaptiveColor{Light: "#CCE5FF", Dark: "#1A2A44"}
	ColorDependencyBg = lipgloss.AdaptiveColor{Light: "#E8DDFF", Dark: "#2A1A44"}
	ColorDirectBg     = lipgloss.AdaptiveColor{Light: "#FFE8CC", Dark: "#3D2A1A"}
	ColorIndirectBg   = lipgloss.AdaptiveColor{Light: "#FFF3CD", Dark: "#3D3D1A"}
)

// ══════════════════════════════════════════════════════════════════════════════
// PANEL STYLES
// ══════════════════════════════════════════════════════════════════════════════

var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBgHighlight)

	FocusedPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorPrimary)
)

// ══════════════════════════════════════════════════════════════════════════════
// BADGES
// ══════════════════════════════════════════════════════════════════════════════

// RenderSpeedBadge returns a 4-cell tercile badge.
func RenderSpeedBadge(s analysis.Speed) string {
	var fg lipgloss.AdaptiveColor
	var label string
	switch s {
	case analysis.SpeedFast:
		fg, label = ColorFast, "FAST"
	case analysis.SpeedMedium:
		fg, label = ColorMedium, "MED "
	default:
		fg, label = ColorSlow, "SLOW"
	}
	return lipgloss.NewStyle().Foreground(fg).Bold(true).Render(label)
}

// RenderStateBadge returns a short marker for a row's selection state, or
// two spaces for a normal row.
func RenderStateBadge(s timeline.RowState) string {
	var fg lipgloss.AdaptiveColor
	var label string
	switch s {
	case timeline.StateSelected:
		fg, label = ColorPrimary, "●"
	case timeline.StateDependency:
		fg, label = ColorPrimary, "↓"
	case timeline.StateDirectDependant:
		fg, label = ColorWarning, "↑"
	case timeline.StateIndirectDependant:
		fg, label = ColorMedium, "⇡"
	default:
		return "  "
	}
	return lipgloss.NewStyle().Foreground(fg).Bold(true).Render(label) + " "
}

// stateLabel is the legend text for a selection state.
func stateLabel(s timeline.RowState) string {
	switch s {
	case timeline.StateSelected:
		return "selected"
	case timeline.StateDependency:
		return "dependency"
	case timeline.StateDirectDependant:
		return "direct dependant"
	case timeline.StateIndirectDependant:
		return "indirect dependant"
	default:
		return ""
	}
}

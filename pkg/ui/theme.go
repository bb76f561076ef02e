package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/buildline/pkg/analysis"
	"github.com/vanderheijden86/buildline/pkg/timeline"
)

// TermProfile holds the detected terminal color profile, computed once at
// package init.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// rowHighlight uses a background tint on TrueColor terminals. Below that the
// tints are indistinguishable, so the state is shown with a foreground color.
func rowHighlight(r *lipgloss.Renderer, bg, fg lipgloss.AdaptiveColor) lipgloss.Style {
	if TermProfile < colorprofile.TrueColor {
		return r.NewStyle().Foreground(fg)
	}
	return r.NewStyle().Background(bg)
}

// Theme holds every style the timeline view draws with. Styles are built
// once here rather than per frame.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary lipgloss.AdaptiveColor
	Subtext lipgloss.AdaptiveColor
	Muted   lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor

	// Bar colors by tercile.
	Fast   lipgloss.AdaptiveColor
	Medium lipgloss.AdaptiveColor
	Slow   lipgloss.AdaptiveColor

	// Row highlight by selection state.
	SelectedBg   lipgloss.AdaptiveColor
	DependencyBg lipgloss.AdaptiveColor
	DirectBg     lipgloss.AdaptiveColor
	IndirectBg   lipgloss.AdaptiveColor

	Base      lipgloss.Style
	Title     lipgloss.Style
	Header    lipgloss.Style
	MutedText lipgloss.Style
	Cursor    lipgloss.Style
	ClearHint lipgloss.Style
	Error     lipgloss.Style

	FastBar   lipgloss.Style
	MediumBar lipgloss.Style
	SlowBar   lipgloss.Style

	SelectedRow   lipgloss.Style
	DependencyRow lipgloss.Style
	DirectRow     lipgloss.Style
	IndirectRow   lipgloss.Style
}

// DefaultTheme returns the adaptive theme; the renderer decides light or dark.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary: ColorPrimary,
		Subtext: ColorSubtext,
		Muted:   ColorMuted,
		Border:  ColorBgHighlight,

		Fast:   ColorFast,
		Medium: ColorMedium,
		Slow:   ColorSlow,

		SelectedBg:   ColorSelectedBg,
		DependencyBg: ColorDependencyBg,
		DirectBg:     ColorDirectBg,
		IndirectBg:   ColorIndirectBg,
	}

	t.Base = r.NewStyle().Foreground(ColorText)
	t.Title = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)
	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.Cursor = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.ClearHint = r.NewStyle().Foreground(ColorWarning).Bold(true)
	t.Error = r.NewStyle().Foreground(ColorDanger).Bold(true)

	t.FastBar = r.NewStyle().Foreground(t.Fast)
	t.MediumBar = r.NewStyle().Foreground(t.Medium)
	t.SlowBar = r.NewStyle().Foreground(t.Slow)

	t.SelectedRow = rowHighlight(r, t.SelectedBg, ColorPrimary).Bold(true)
	t.DependencyRow = rowHighlight(r, t.DependencyBg, ColorPrimary)
	t.DirectRow = rowHighlight(r, t.DirectBg, ColorWarning)
	t.IndirectRow = rowHighlight(r, t.IndirectBg, ColorMedium)
	return t
}

// NewTheme applies the configured mode ("dark", "light" or "auto") to r
// and builds the theme.
func NewTheme(r *lipgloss.Renderer, mode string) Theme {
	switch strings.ToLower(mode) {
	case "dark":
		r.SetHasDarkBackground(true)
	case "light":
		r.SetHasDarkBackground(false)
	}
	return DefaultTheme(r)
}

// BarStyle returns the bar style for a speed tercile.
func (t Theme) BarStyle(s analysis.Speed) lipgloss.Style {
	switch s {
	case analysis.SpeedFast:
		return t.FastBar
	case analysis.SpeedMedium:
		return t.MediumBar
	default:
		return t.SlowBar
	}
}

// RowStyle returns the row highlight for a selection state. Normal rows get
// the base style.
func (t Theme) RowStyle(s timeline.RowState) lipgloss.Style {
	switch s {
	case timeline.StateSelected:
		return t.SelectedRow
	case timeline.StateDependency:
		return t.DependencyRow
	case timeline.StateDirectDependant:
		return t.DirectRow
	case timeline.StateIndirectDependant:
		return t.IndirectRow
	default:
		return t.Base
	}
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/buildline/pkg/metrics"
	"github.com/vanderheijden86/buildline/pkg/timeline"
)

const (
	cursorMarker = "▸ "
	barGlyph     = "█"
	minLabelW    = 12
)

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()

	if m.showHelp {
		return m.renderHelp()
	}

	var sb strings.Builder
	sb.WriteString(m.renderHeader())
	sb.WriteString("\n")

	list := m.renderRows(m.listWidth())
	switch {
	case m.isSplitView():
		pane := FocusedPanelStyle.
			Width(m.detailWidth()).
			Height(m.listHeight()).
			Render(m.detail.View())
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, list, " ", pane))
	case m.showDetails:
		sb.WriteString(PanelStyle.Width(m.detailWidth()).Render(m.detail.View()))
	default:
		sb.WriteString(list)
	}
	sb.WriteString("\n")
	sb.WriteString(m.renderFooter())
	return sb.String()
}

// listWidth is the width of the row list, leaving room for the details pane
// in split view.
func (m Model) listWidth() int {
	w := m.width
	if w == 0 {
		w = 80
	}
	if m.isSplitView() {
		return w * 55 / 100
	}
	return w
}

func (m Model) renderHeader() string {
	t := m.theme
	summary := m.tl.Summary()

	title := t.Header.Render("buildline")
	if m.source != "" {
		title += " " + t.MutedText.Render(truncate(m.source, max(m.width-14, 10)))
	}

	lines := []string{
		title,
		t.Title.Render(summary.Title) + "  " + strings.Join(summary.Lines(), t.MutedText.Render("  ·  ")),
	}
	if note := summary.Note(); note != "" {
		lines = append(lines, t.MutedText.Render("  "+note))
	}
	if m.clearHintVisible() {
		active, _ := m.ctl.Active()
		lines = append(lines, t.ClearHint.Render(
			fmt.Sprintf("Selected %s  [esc] Clear Selection", timeline.DisplayName(active))))
	}
	lines = append(lines, "")
	lines = append(lines, t.MutedText.Render(m.columnHeader()))
	return strings.Join(lines, "\n")
}

func (m Model) columnHeader() string {
	visible := len(m.tl.VisibleRows())
	if visible == m.tl.Len() {
		return fmt.Sprintf("%d units", visible)
	}
	return fmt.Sprintf("%d of %d units", visible, m.tl.Len())
}

// labelWidth fits the longest label, capped at 45% of the list.
func (m Model) labelWidth(listW int) int {
	longest := 0
	for _, r := range m.tl.Rows {
		longest = max(longest, runewidth.StringWidth(r.Label))
	}
	return max(min(longest, listW*45/100), minLabelW)
}

func (m Model) renderRows(listW int) string {
	rows := m.tl.VisibleRows()
	if len(rows) == 0 {
		return m.theme.MutedText.Render("  No compilation entries.")
	}

	labelW := m.labelWidth(listW)
	prefixW := runewidth.StringWidth(cursorMarker) + 2
	barAvail := listW - prefixW - labelW - 1
	scale := barScale(m.tl.Rows[0].BarWidth, barAvail, m.cfg.UI.BarWidth)

	end := min(m.offset+m.listHeight(), len(rows))
	lines := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(rows[i], i == m.cursor, labelW, scale))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(r *timeline.Row, isCursor bool, labelW int, scale float64) string {
	t := m.theme

	marker := strings.Repeat(" ", runewidth.StringWidth(cursorMarker))
	if isCursor {
		marker = t.Cursor.Render(cursorMarker)
	}
	label := t.RowStyle(r.State()).Render(padRight(truncate(r.Label, labelW), labelW))
	bar := t.BarStyle(r.Speed).Render(strings.Repeat(barGlyph, barCells(r.BarWidth, scale)))
	return marker + RenderStateBadge(r.State()) + label + " " + bar
}

func (m Model) renderFooter() string {
	t := m.theme
	if m.statusMsg != "" {
		if m.statusIsError {
			return t.Error.Render(m.statusMsg)
		}
		return t.Base.Render(m.statusMsg)
	}
	hints := "enter select · esc clear · / details · y copy · r reload · ? help · q quit"
	return t.MutedText.Render(truncate(hints, max(m.width, 20)))
}

var helpLines = [][2]string{
	{"↑/k ↓/j", "move"},
	{"pgup/pgdown", "page"},
	{"g/G", "first / last"},
	{"enter/space", "select unit (again to deselect)"},
	{"esc/c", "clear selection"},
	{"/", "toggle details pane"},
	{"J/K", "scroll details"},
	{"y", "copy unit name"},
	{"r", "reload document"},
	{"?", "close help"},
	{"q", "quit"},
}

func (m Model) renderHelp() string {
	t := m.theme
	var sb strings.Builder
	sb.WriteString(t.Title.Render("Keys"))
	sb.WriteString("\n\n")
	for _, kv := range helpLines {
		sb.WriteString("  ")
		sb.WriteString(t.Cursor.Render(padRight(kv[0], 14)))
		sb.WriteString(kv[1])
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(t.Title.Render("Legend"))
	sb.WriteString("\n\n")
	for _, s := range []timeline.RowState{
		timeline.StateSelected,
		timeline.StateDependency,
		timeline.StateDirectDependant,
		timeline.StateIndirectDependant,
	} {
		sb.WriteString("  " + RenderStateBadge(s) + t.RowStyle(s).Render(stateLabel(s)) + "\n")
	}
	sb.WriteString("\n  bars: " + t.FastBar.Render("fast") + " " + t.MediumBar.Render("medium") + " " + t.SlowBar.Render("slow") + "\n")
	return PanelStyle.Padding(0, 1).Render(sb.String())
}

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/buildline/pkg/analysis"
	"github.com/vanderheijden86/buildline/pkg/timeline"
)

// detailMarkdown describes one row: timing, tercile, coupling and its
// direct neighbours.
func detailMarkdown(row *timeline.Row, tl *timeline.Timeline, report analysis.CouplingReport) string {
	var sb strings.Builder
	e := row.Entry

	sb.WriteString(fmt.Sprintf("# %s\n\n", row.DisplayName))
	if row.DisplayName != e.Name {
		sb.WriteString(fmt.Sprintf("`%s`\n\n", e.Name))
	}

	sb.WriteString("| | |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Duration | %.2f s |\n", e.DurationSeconds))
	sb.WriteString(fmt.Sprintf("| Speed | %s |\n", row.Speed))
	if e.HasStartTime {
		sb.WriteString(fmt.Sprintf("| Start | %.2f s |\n", e.StartSeconds()))
		sb.WriteString(fmt.Sprintf("| End | %.2f s |\n", e.EndSeconds()))
	}
	if c, ok := report.Lookup(e.Name); ok {
		sb.WriteString(fmt.Sprintf("| Waiting on it | %d |\n", c.TransitiveDependants))
	}
	if state := row.State(); state != timeline.StateNormal {
		sb.WriteString(fmt.Sprintf("| Role | %s |\n", stateLabel(state)))
	}
	sb.WriteString("\n")

	writeNames(&sb, "References", e.References, tl)
	writeNames(&sb, "Dependants", e.Dependants, tl)

	for _, n := range report.SlowestChain {
		if n == e.Name {
			sb.WriteString("*On the slowest dependency chain.*\n")
			break
		}
	}
	return sb.String()
}

func writeNames(sb *strings.Builder, heading string, names []string, tl *timeline.Timeline) {
	sb.WriteString(fmt.Sprintf("## %s (%d)\n\n", heading, len(names)))
	if len(names) == 0 {
		sb.WriteString("*None*\n\n")
		return
	}
	for _, n := range names {
		if r, ok := tl.Lookup(n); ok {
			sb.WriteString(fmt.Sprintf("- %s (%.2f s)\n", r.DisplayName, r.Entry.DurationSeconds))
		} else {
			sb.WriteString(fmt.Sprintf("- %s *(not in timeline)*\n", timeline.DisplayName(n)))
		}
	}
	sb.WriteString("\n")
}

func (m Model) detailWidth() int {
	if m.width >= SplitViewThreshold {
		return max(m.width-m.width*55/100-4, MinDetailPaneWidth)
	}
	return max(m.width-2, MinDetailPaneWidth)
}

func (m *Model) resizeDetail() {
	m.detail.Width = m.detailWidth()
	m.detail.Height = max(m.height-m.headerHeight()-3, 3)
	m.refreshDetail()
}

// refreshDetail re-renders the cursor row into the details viewport. It does
// nothing while the pane is closed.
func (m *Model) refreshDetail() {
	if !m.showDetails {
		return
	}
	row := m.cursorRow()
	if row == nil {
		m.detail.SetContent("")
		return
	}
	md := detailMarkdown(row, m.tl, m.report)

	wrap := min(m.detailWidth()-2, 60)
	if m.mdRenderer == nil || m.mdWidth != wrap {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrap),
		)
		if err == nil {
			m.mdRenderer, m.mdWidth = r, wrap
		}
	}
	if m.mdRenderer != nil {
		if out, err := m.mdRenderer.Render(md); err == nil {
			m.detail.SetContent(out)
			m.detail.GotoTop()
			return
		}
	}
	m.detail.SetContent(md)
	m.detail.GotoTop()
}

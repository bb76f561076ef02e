package export

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vanderheijden86/buildline/pkg/timeline"
)

// ReportTopN bounds the tables of the markdown report.
const ReportTopN = 10

// GenerateMarkdown renders the timeline as a markdown report: summary,
// slowest units, most coupled units, slowest chain and cycles.
func GenerateMarkdown(b *Bundle, title string) string {
	return generateMarkdown(b, title, time.Now())
}

func generateMarkdown(b *Bundle, title string, now time.Time) string {
	var sb strings.Builder
	tl := b.Timeline
	summary := tl.Summary()
	report := b.Coupling

	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("*Generated: %s*\n\n", now.Format(time.RFC1123)))

	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| **Total Duration** | %.2f s |\n", summary.TotalSeconds))
	sb.WriteString(fmt.Sprintf("| Total Assemblies | %d |\n", summary.Count))
	if tl.Len() > 0 {
		sb.WriteString(fmt.Sprintf("| Shortest | %.2f s |\n", tl.Stats.Shortest))
		sb.WriteString(fmt.Sprintf("| Longest | %.2f s |\n", tl.Stats.Longest))
	}
	sb.WriteString(fmt.Sprintf("| Dependency cycles | %d |\n\n", len(report.Cycles)))
	if note := summary.Note(); note != "" {
		sb.WriteString(fmt.Sprintf("> %s\n\n", note))
	}

	if tl.Len() == 0 {
		sb.WriteString("*No compilation entries.*\n")
		return sb.String()
	}

	sb.WriteString("## Slowest Units\n\n")
	sb.WriteString("| # | Unit | Duration | | Speed | Waiting on it |\n")
	sb.WriteString("|---|------|----------|---|-------|---------------|\n")
	for i, r := range tl.Rows {
		if i == ReportTopN {
			break
		}
		c, _ := report.Lookup(r.Name())
		sb.WriteString(fmt.Sprintf("| %d | %s | %.2f s | %s | %s | %d |\n",
			i+1, escapeCell(r.DisplayName), r.Entry.DurationSeconds,
			barChart(share(r.Entry.DurationSeconds, tl.Stats.Longest)),
			speedBadge(r), c.TransitiveDependants))
	}
	sb.WriteString("\n")

	var coupled []string
	for _, c := range report.MostCoupled(ReportTopN) {
		if c.TransitiveDependants == 0 {
			break
		}
		coupled = append(coupled, fmt.Sprintf("| %s | %d | %d | %d |\n",
			escapeCell(timeline.DisplayName(c.Name)), c.TransitiveDependants, c.DirectDependants, c.DirectReferences))
	}
	if len(coupled) > 0 {
		sb.WriteString("## Most Coupled Units\n\n")
		sb.WriteString("| Unit | Transitive dependants | Direct dependants | References |\n")
		sb.WriteString("|------|-----------------------|-------------------|------------|\n")
		sb.WriteString(strings.Join(coupled, ""))
		sb.WriteString("\n")
	}

	if len(report.SlowestChain) > 0 {
		names := make([]string, len(report.SlowestChain))
		for i, n := range report.SlowestChain {
			names[i] = "`" + timeline.DisplayName(n) + "`"
		}
		sb.WriteString("## Slowest Dependency Chain\n\n")
		sb.WriteString(fmt.Sprintf("%s (%.2f s)\n\n", strings.Join(names, " → "), report.SlowestChainSeconds))
	}

	if len(report.Cycles) > 0 {
		sb.WriteString("## Dependency Cycles\n\n")
		for _, cycle := range report.Cycles {
			names := make([]string, len(cycle))
			for i, n := range cycle {
				names[i] = timeline.DisplayName(n)
			}
			sb.WriteString(fmt.Sprintf("- %s\n", strings.Join(names, ", ")))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// SaveMarkdown writes the report to path.
func SaveMarkdown(b *Bundle, path, title string) error {
	return os.WriteFile(path, []byte(GenerateMarkdown(b, title)), 0o644)
}

func share(v, longest float64) float64 {
	if longest <= 0 {
		return 0
	}
	return v / longest
}

func speedBadge(r *timeline.Row) string {
	switch r.Speed.String() {
	case "fast":
		return "🟢 fast"
	case "medium":
		return "🟡 medium"
	default:
		return "🔴 slow"
	}
}

// barChart creates a mini bar for a 0-1 value.
func barChart(value float64) string {
	value = min(max(value, 0), 1)
	switch int(value * 4) {
	case 0:
		return "░░░░"
	case 1:
		return "█░░░"
	case 2:
		return "██░░"
	case 3:
		return "███░"
	default:
		return "████"
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

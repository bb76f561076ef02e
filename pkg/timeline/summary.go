package timeline

import (
	"fmt"
	"strings"

	"github.com/vanderheijden86/buildline/pkg/model"
)

// SummaryTitle heads the statistics panel.
const SummaryTitle = "Compilation Statistics"

// Summary is the statistics panel shown above the rows.
type Summary struct {
	Title        string
	TotalSeconds float64
	TotalKind    model.TotalKind
	Count        int
}

// NewSummary builds the panel straight from a dataset. nil gives zeros.
func NewSummary(ds *model.Dataset) Summary {
	s := Summary{Title: SummaryTitle}
	if ds != nil {
		s.TotalSeconds = ds.Total.Seconds
		s.TotalKind = ds.Total.Kind
		s.Count = len(ds.Entries)
	}
	return s
}

// DurationLine is "Total Duration: 12.34 seconds".
func (s Summary) DurationLine() string {
	return fmt.Sprintf("Total Duration: %.2f seconds", s.TotalSeconds)
}

// CountLine is "Total Assemblies: 42".
func (s Summary) CountLine() string {
	return fmt.Sprintf("Total Assemblies: %d", s.Count)
}

// Lines returns the two panel lines in display order.
func (s Summary) Lines() []string {
	return []string{s.DurationLine(), s.CountLine()}
}

// Note explains a total that was not supplied by the producer.
func (s Summary) Note() string {
	switch s.TotalKind {
	case model.TotalWindow:
		return "total derived from start times"
	case model.TotalDurationsOnly:
		return "no start times recorded; total is the longest unit"
	default:
		return ""
	}
}

func (s Summary) String() string {
	return s.Title + "\n" + strings.Join(s.Lines(), "\n")
}

package analysis

import (
	"math"

	"github.com/vanderheijden86/buildline/pkg/metrics"
	"github.com/vanderheijden86/buildline/pkg/model"
)

// Speed is the tercile a unit's duration falls into.
type Speed int

const (
	SpeedFast Speed = iota
	SpeedMedium
	SpeedSlow
)

// String returns the CSS-style class name for the speed.
func (s Speed) String() string {
	switch s {
	case SpeedFast:
		return "fast"
	case SpeedMedium:
		return "medium"
	default:
		return "slow"
	}
}

// DurationStats is the result of the single duration scan.
type DurationStats struct {
	Shortest float64 // +Inf for an empty set
	Longest  float64 // 0 for an empty set
}

// Degenerate reports whether the range has no width. All entries classify as
// slow in that case.
func (s DurationStats) Degenerate() bool {
	return !(s.Longest > s.Shortest)
}

// Classify places d into its tercile of the range.
func (s DurationStats) Classify(d float64) Speed {
	return Classify(d, s.Shortest, s.Longest)
}

// DurationRange scans entries once for the shortest and longest duration.
// Shortest starts at +Inf and longest at 0; both update on strict comparison.
func DurationRange(entries []model.CompilationEntry) DurationStats {
	defer metrics.Timer(metrics.DurationScan)()

	stats := DurationStats{Shortest: math.Inf(1), Longest: 0}
	for _, e := range entries {
		if e.DurationSeconds < stats.Shortest {
			stats.Shortest = e.DurationSeconds
		}
		if e.DurationSeconds > stats.Longest {
			stats.Longest = e.DurationSeconds
		}
	}
	return stats
}

// Classify splits [shortest, longest] into three equal bands. The two lower
// boundaries are inclusive. A degenerate range collapses every boundary to
// shortest and everything lands in SpeedSlow.
func Classify(d, shortest, longest float64) Speed {
	if !(longest > shortest) {
		return SpeedSlow
	}
	band := (longest - shortest) / 3
	switch {
	case d <= shortest+band:
		return SpeedFast
	case d <= shortest+2*band:
		return SpeedMedium
	default:
		return SpeedSlow
	}
}

// Window returns the earliest start and latest end in seconds across all
// entries. ok is false for an empty slice.
func Window(entries []model.CompilationEntry) (earliestStart, latestEnd float64, ok bool) {
	if len(entries) == 0 {
		return 0, 0, false
	}
	earliestStart = math.Inf(1)
	latestEnd = math.Inf(-1)
	for _, e := range entries {
		start := e.StartSeconds()
		end := start + e.DurationSeconds
		if start < earliestStart {
			earliestStart = start
		}
		if end > latestEnd {
			latestEnd = end
		}
	}
	return earliestStart, latestEnd, true
}

// TotalWindowSeconds is latestEnd - earliestStart, or 0 without entries.
// It reflects wall-clock parallelism rather than summed compile time.
func TotalWindowSeconds(entries []model.CompilationEntry) float64 {
	start, end, ok := Window(entries)
	if !ok {
		return 0
	}
	return end - start
}

// SumSeconds adds up every unit's own duration (aggregate compile time).
func SumSeconds(entries []model.CompilationEntry) float64 {
	var total float64
	for _, e := range entries {
		total += e.DurationSeconds
	}
	return total
}

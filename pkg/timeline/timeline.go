// Package timeline lays out a compilation dataset as rows and drives the
// dependency-aware selection over them.
//
// Build runs the duration analyzer once, orders the rows longest first,
// computes labels and bar widths, and registers every row in the index. A
// Controller then owns all visual state; entry data is never mutated.
package timeline

import (
	"fmt"
	"math"
	"sort"

	"github.com/vanderheijden86/buildline/pkg/analysis"
	"github.com/vanderheijden86/buildline/pkg/debug"
	"github.com/vanderheijden86/buildline/pkg/metrics"
	"github.com/vanderheijden86/buildline/pkg/model"
)

// PixelsPerSecond scales a unit's duration to its bar width.
const PixelsPerSecond = 750

// DisplayName strips a known binary extension for display.
func DisplayName(name string) string {
	return model.DisplayName(name)
}

// Label formats the row caption: "[1.23s] Name".
func Label(durationSeconds float64, displayName string) string {
	return fmt.Sprintf("[%.2fs] %s", durationSeconds, displayName)
}

// BarWidth is round(duration × PixelsPerSecond). It is not clamped.
func BarWidth(durationSeconds float64) int {
	return int(math.Round(durationSeconds * PixelsPerSecond))
}

// Row is the visual counterpart of one entry.
type Row struct {
	Entry       model.CompilationEntry
	DisplayName string
	Label       string
	BarWidth    int
	Speed       analysis.Speed

	roles  RoleSet
	hidden bool
}

// Name returns the raw entry name, the row's canonical key.
func (r *Row) Name() string { return r.Entry.Name }

// Roles returns every role the current selection gave this row.
func (r *Row) Roles() RoleSet { return r.roles }

// Hidden reports whether the row is hidden by the current selection.
func (r *Row) Hidden() bool { return r.hidden }

// State reports the dominant visual state of the row.
func (r *Row) State() RowState {
	return stateOf(r.roles, r.hidden)
}

// Timeline is the laid-out dataset.
type Timeline struct {
	Rows  []*Row
	Stats analysis.DurationStats
	Total model.TotalDuration

	index *Index
}

// Build lays out ds. A nil or empty dataset yields an empty timeline.
func Build(ds *model.Dataset) *Timeline {
	defer metrics.Timer(metrics.Layout)()

	var entries []model.CompilationEntry
	tl := &Timeline{}
	if ds != nil {
		entries = ds.Entries
		tl.Total = ds.Total
	}
	tl.Stats = analysis.DurationRange(entries)

	tl.Rows = make([]*Row, 0, len(entries))
	for _, e := range entries {
		display := DisplayName(e.Name)
		tl.Rows = append(tl.Rows, &Row{
			Entry:       e,
			DisplayName: display,
			Label:       Label(e.DurationSeconds, display),
			BarWidth:    BarWidth(e.DurationSeconds),
			Speed:       tl.Stats.Classify(e.DurationSeconds),
		})
	}
	sort.SliceStable(tl.Rows, func(i, j int) bool {
		a, b := tl.Rows[i].Entry, tl.Rows[j].Entry
		if a.DurationSeconds != b.DurationSeconds {
			return a.DurationSeconds > b.DurationSeconds
		}
		return a.Name < b.Name
	})
	tl.index = NewIndex(tl.Rows)

	debug.Log("timeline: built %d rows, range [%v, %v]", len(tl.Rows), tl.Stats.Shortest, tl.Stats.Longest)
	return tl
}

// Len returns the number of rows.
func (t *Timeline) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Lookup finds a row by raw name, or by display name when that is unambiguous.
func (t *Timeline) Lookup(name string) (*Row, bool) {
	if t == nil {
		return nil, false
	}
	return t.index.Lookup(name)
}

// Summary returns the statistics panel for the timeline.
func (t *Timeline) Summary() Summary {
	if t == nil {
		return NewSummary(nil)
	}
	return Summary{
		Title:        SummaryTitle,
		TotalSeconds: t.Total.Seconds,
		TotalKind:    t.Total.Kind,
		Count:        len(t.Rows),
	}
}

// VisibleRows returns the rows not hidden by the current selection, in order.
func (t *Timeline) VisibleRows() []*Row {
	if t == nil {
		return nil
	}
	out := make([]*Row, 0, len(t.Rows))
	for _, r := range t.Rows {
		if !r.hidden {
			out = append(out, r)
		}
	}
	return out
}

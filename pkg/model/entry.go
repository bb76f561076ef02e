// Package model defines the compilation timeline data model: one entry per
// compiled unit plus the dataset that groups them with a total duration.
package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// TicksPerSecond is the number of 100ns ticks in one second.
const TicksPerSecond = 10_000_000

// Validation errors.
var (
	ErrInvalidEntry  = errors.New("invalid compilation entry")
	ErrDuplicateName = errors.New("duplicate compilation entry name")
)

// CompilationEntry is one compiled unit within one build iteration.
type CompilationEntry struct {
	// Name is the raw unit identifier (e.g. "Foo.dll"). It is the canonical
	// lookup key; display code strips the extension on its own.
	Name            string
	DurationSeconds float64
	// StartTimeTicks is only meaningful when HasStartTime is true.
	StartTimeTicks int64
	HasStartTime   bool
	References     []string // units this unit depends on
	Dependants     []string // units that depend on this unit
}

// StartSeconds converts the start tick count to seconds.
func (e CompilationEntry) StartSeconds() float64 {
	return float64(e.StartTimeTicks) / TicksPerSecond
}

// EndSeconds is StartSeconds plus the unit's own duration.
func (e CompilationEntry) EndSeconds() float64 {
	return e.StartSeconds() + e.DurationSeconds
}

// Validate checks the per-entry invariants.
func (e CompilationEntry) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidEntry)
	}
	if math.IsNaN(e.DurationSeconds) || math.IsInf(e.DurationSeconds, 0) {
		return fmt.Errorf("%w: %s: duration is not a finite number", ErrInvalidEntry, e.Name)
	}
	if e.DurationSeconds < 0 {
		return fmt.Errorf("%w: %s: negative duration %v", ErrInvalidEntry, e.Name, e.DurationSeconds)
	}
	return nil
}

// TotalKind records where a dataset's total duration came from.
type TotalKind int

const (
	// TotalSupplied means the producer wrote TotalDurationInSeconds.
	TotalSupplied TotalKind = iota
	// TotalWindow is derived from start ticks: latest end minus earliest start.
	TotalWindow
	// TotalDurationsOnly is the window formula applied without any start
	// ticks, so every unit is assumed to start at zero.
	TotalDurationsOnly
)

func (k TotalKind) String() string {
	switch k {
	case TotalSupplied:
		return "supplied"
	case TotalWindow:
		return "window"
	case TotalDurationsOnly:
		return "durations-only"
	default:
		return fmt.Sprintf("TotalKind(%d)", int(k))
	}
}

// TotalDuration is the resolved total for a dataset together with its origin.
type TotalDuration struct {
	Kind    TotalKind
	Seconds float64
}

// Dataset is the top-level container built once per visualization session.
type Dataset struct {
	Entries []CompilationEntry
	Total   TotalDuration
}

// Len returns the number of entries.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Entries)
}

// Validate checks every entry and the uniqueness of names.
func (d *Dataset) Validate() error {
	seen := make(map[string]int, len(d.Entries))
	for i, e := range d.Entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		if prev, ok := seen[e.Name]; ok {
			return fmt.Errorf("entry %d: %w: %q (first seen at entry %d)", i, ErrDuplicateName, e.Name, prev)
		}
		seen[e.Name] = i
	}
	return nil
}

// Find returns the entry with the given raw name.
func (d *Dataset) Find(name string) (CompilationEntry, bool) {
	if d == nil {
		return CompilationEntry{}, false
	}
	for _, e := range d.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return CompilationEntry{}, false
}

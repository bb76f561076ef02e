package analysis

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/buildline/pkg/model"
)

func TestDurationRange(t *testing.T) {
	entries := []model.CompilationEntry{
		{Name: "A", DurationSeconds: 1},
		{Name: "B", DurationSeconds: 2},
		{Name: "C", DurationSeconds: 9},
	}
	stats := DurationRange(entries)
	if stats.Shortest != 1 || stats.Longest != 9 {
		t.Fatalf("range = (%v, %v), want (1, 9)", stats.Shortest, stats.Longest)
	}
	if stats.Degenerate() {
		t.Error("range should not be degenerate")
	}
}

func TestDurationRangeEmpty(t *testing.T) {
	stats := DurationRange(nil)
	if !math.IsInf(stats.Shortest, 1) || stats.Longest != 0 {
		t.Errorf("empty range = (%v, %v), want (+Inf, 0)", stats.Shortest, stats.Longest)
	}
	if !stats.Degenerate() {
		t.Error("empty range should be degenerate")
	}
}

func TestClassify(t *testing.T) {
	// band = (9-1)/3 = 2.667
	tests := []struct {
		d    float64
		want Speed
	}{
		{1, SpeedFast},
		{2, SpeedFast},
		{1 + 8.0/3, SpeedFast},
		{4, SpeedMedium},
		{1 + 16.0/3, SpeedMedium},
		{6.5, SpeedSlow},
		{9, SpeedSlow},
	}
	for _, tt := range tests {
		if got := Classify(tt.d, 1, 9); got != tt.want {
			t.Errorf("Classify(%v, 1, 9) = %v, want %v", tt.d, got, tt.want)
		}
	}
}

func TestClassifyDegenerate(t *testing.T) {
	tests := []struct {
		name              string
		d, short, longest float64
	}{
		{"all equal", 5, 5, 5},
		{"all zero", 0, 0, 0},
		{"empty sentinel", 0, math.Inf(1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.d, tt.short, tt.longest); got != SpeedSlow {
				t.Errorf("Classify = %v, want slow", got)
			}
		})
	}
}

func TestSpeedString(t *testing.T) {
	if SpeedFast.String() != "fast" || SpeedMedium.String() != "medium" || SpeedSlow.String() != "slow" {
		t.Error("unexpected speed names")
	}
}

func TestWindow(t *testing.T) {
	entries := []model.CompilationEntry{
		{Name: "A", DurationSeconds: 2, StartTimeTicks: 0, HasStartTime: true},
		{Name: "B", DurationSeconds: 3, StartTimeTicks: 50_000_000, HasStartTime: true},
	}
	start, end, ok := Window(entries)
	if !ok || start != 0 || end != 8 {
		t.Errorf("Window = (%v, %v, %v), want (0, 8, true)", start, end, ok)
	}
	if got := TotalWindowSeconds(entries); got != 8 {
		t.Errorf("TotalWindowSeconds = %v, want 8", got)
	}
	if got := SumSeconds(entries); got != 5 {
		t.Errorf("SumSeconds = %v, want 5", got)
	}
}

func TestWindowEmpty(t *testing.T) {
	if _, _, ok := Window(nil); ok {
		t.Error("Window(nil) should report !ok")
	}
	if got := TotalWindowSeconds(nil); got != 0 {
		t.Errorf("TotalWindowSeconds(nil) = %v, want 0", got)
	}
}

func genEntries(t *rapid.T) []model.CompilationEntry {
	n := rapid.IntRange(1, 40).Draw(t, "n")
	entries := make([]model.CompilationEntry, n)
	for i := range entries {
		entries[i] = model.CompilationEntry{
			Name:            rapid.StringMatching(`[A-Z][a-z]{0,6}`).Draw(t, "name"),
			DurationSeconds: rapid.Float64Range(0, 600).Draw(t, "d"),
		}
	}
	return entries
}

func TestRangeBoundsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := genEntries(t)
		stats := DurationRange(entries)
		for _, e := range entries {
			if e.DurationSeconds < stats.Shortest || e.DurationSeconds > stats.Longest {
				t.Fatalf("%v outside [%v, %v]", e.DurationSeconds, stats.Shortest, stats.Longest)
			}
		}
	})
}

func TestClassifyExhaustiveProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		entries := genEntries(t)
		stats := DurationRange(entries)
		band := (stats.Longest - stats.Shortest) / 3
		for _, e := range entries {
			got := stats.Classify(e.DurationSeconds)
			if stats.Degenerate() {
				if got != SpeedSlow {
					t.Fatalf("degenerate range classified %v as %v", e.DurationSeconds, got)
				}
				continue
			}
			var want Speed
			switch {
			case e.DurationSeconds <= stats.Shortest+band:
				want = SpeedFast
			case e.DurationSeconds <= stats.Shortest+2*band:
				want = SpeedMedium
			default:
				want = SpeedSlow
			}
			if got != want {
				t.Fatalf("Classify(%v) = %v, want %v", e.DurationSeconds, got, want)
			}
		}
		if !stats.Degenerate() && stats.Classify(stats.Shortest) != SpeedFast {
			t.Fatal("shortest entry must be fast")
		}
	})
}

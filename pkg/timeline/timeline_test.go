package timeline_test

import (
	"testing"

	"github.com/vanderheijden86/buildline/pkg/analysis"
	"github.com/vanderheijden86/buildline/pkg/model"
	"github.com/vanderheijden86/buildline/pkg/testutil"
	"github.com/vanderheijden86/buildline/pkg/timeline"
)

func TestBuildABC(t *testing.T) {
	tl := timeline.Build(testutil.ToDataset(testutil.ABC(), 12))

	if tl.Len() != 3 {
		t.Fatalf("rows = %d, want 3", tl.Len())
	}
	testutil.AssertSortedByDuration(t, tl.Rows)
	if tl.Rows[0].Name() != "C" || tl.Rows[2].Name() != "A" {
		t.Errorf("order = %s, %s, %s", tl.Rows[0].Name(), tl.Rows[1].Name(), tl.Rows[2].Name())
	}

	if tl.Stats.Shortest != 1 || tl.Stats.Longest != 9 {
		t.Errorf("range = (%v, %v), want (1, 9)", tl.Stats.Shortest, tl.Stats.Longest)
	}

	want := map[string]analysis.Speed{"A": analysis.SpeedFast, "B": analysis.SpeedFast, "C": analysis.SpeedSlow}
	for name, speed := range want {
		row, _ := tl.Lookup(name)
		if row.Speed != speed {
			t.Errorf("%s speed = %v, want %v", name, row.Speed, speed)
		}
	}

	c, _ := tl.Lookup("C")
	if c.Label != "[9.00s] C" {
		t.Errorf("label = %q", c.Label)
	}
	if c.BarWidth != 6750 {
		t.Errorf("bar width = %d, want 6750", c.BarWidth)
	}
}

func TestBuildTiesByName(t *testing.T) {
	ds := &model.Dataset{Entries: []model.CompilationEntry{
		{Name: "Zeta", DurationSeconds: 2},
		{Name: "Alpha", DurationSeconds: 2},
		{Name: "Mid", DurationSeconds: 3},
	}}
	tl := timeline.Build(ds)
	got := []string{tl.Rows[0].Name(), tl.Rows[1].Name(), tl.Rows[2].Name()}
	if got[0] != "Mid" || got[1] != "Alpha" || got[2] != "Zeta" {
		t.Errorf("order = %v, want [Mid Alpha Zeta]", got)
	}
}

func TestBuildEmpty(t *testing.T) {
	for _, ds := range []*model.Dataset{nil, {}} {
		tl := timeline.Build(ds)
		if tl.Len() != 0 {
			t.Errorf("rows = %d, want 0", tl.Len())
		}
		s := tl.Summary()
		if s.DurationLine() != "Total Duration: 0.00 seconds" || s.CountLine() != "Total Assemblies: 0" {
			t.Errorf("empty summary = %q", s.Lines())
		}
	}
}

func TestBuildSingleEntryIsSlow(t *testing.T) {
	tl := timeline.Build(&model.Dataset{Entries: []model.CompilationEntry{{Name: "Only", DurationSeconds: 3}}})
	if tl.Rows[0].Speed != analysis.SpeedSlow {
		t.Errorf("single entry speed = %v, want slow (degenerate range)", tl.Rows[0].Speed)
	}
}

func TestDisplayNameAndLabel(t *testing.T) {
	tl := timeline.Build(&model.Dataset{Entries: []model.CompilationEntry{
		{Name: "Company.Product.Core.dll", DurationSeconds: 1.234},
	}})
	row := tl.Rows[0]
	if row.DisplayName != "Company.Product.Core" {
		t.Errorf("display name = %q", row.DisplayName)
	}
	if row.Label != "[1.23s] Company.Product.Core" {
		t.Errorf("label = %q", row.Label)
	}
	if row.BarWidth != 926 {
		t.Errorf("bar width = %d, want round(1.234*750)=926", row.BarWidth)
	}
}

func TestBarWidthNotClamped(t *testing.T) {
	if got := timeline.BarWidth(120); got != 90000 {
		t.Errorf("BarWidth(120) = %d, want 90000", got)
	}
	if got := timeline.BarWidth(0); got != 0 {
		t.Errorf("BarWidth(0) = %d, want 0", got)
	}
}

func TestLookupAlias(t *testing.T) {
	tl := timeline.Build(&model.Dataset{Entries: []model.CompilationEntry{
		{Name: "Core.dll", DurationSeconds: 1},
	}})
	for _, name := range []string{"Core.dll", "Core"} {
		if _, ok := tl.Lookup(name); !ok {
			t.Errorf("Lookup(%q) missed", name)
		}
	}
	if _, ok := tl.Lookup("Nope"); ok {
		t.Error("Lookup(Nope) should miss")
	}
}

func TestSummary(t *testing.T) {
	ds := &model.Dataset{
		Entries: testutil.ABC(),
		Total:   model.TotalDuration{Kind: model.TotalWindow, Seconds: 8},
	}
	s := timeline.Build(ds).Summary()
	if s.Title != "Compilation Statistics" {
		t.Errorf("title = %q", s.Title)
	}
	if s.DurationLine() != "Total Duration: 8.00 seconds" {
		t.Errorf("duration line = %q", s.DurationLine())
	}
	if s.CountLine() != "Total Assemblies: 3" {
		t.Errorf("count line = %q", s.CountLine())
	}
	if s.Note() == "" {
		t.Error("derived total should carry a note")
	}
	if timeline.NewSummary(ds) != s {
		t.Errorf("NewSummary = %+v, want %+v", timeline.NewSummary(ds), s)
	}
}

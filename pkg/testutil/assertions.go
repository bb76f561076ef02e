package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/buildline/pkg/model"
	"github.com/vanderheijden86/buildline/pkg/timeline"
)

// AssertEntryCount verifies the expected number of entries.
func AssertEntryCount(t *testing.T, entries []model.CompilationEntry, expected int) {
	t.Helper()
	if len(entries) != expected {
		t.Errorf("expected %d entries, got %d", expected, len(entries))
	}
}

// AssertAllValid verifies the entries form a valid dataset.
func AssertAllValid(t *testing.T, entries []model.CompilationEntry) {
	t.Helper()
	ds := &model.Dataset{Entries: entries}
	if err := ds.Validate(); err != nil {
		t.Errorf("dataset invalid: %v", err)
	}
}

// AssertSortedByDuration verifies rows are longest first with ties by name.
func AssertSortedByDuration(t *testing.T, rows []*timeline.Row) {
	t.Helper()
	for i := 1; i < len(rows); i++ {
		a, b := rows[i-1].Entry, rows[i].Entry
		if a.DurationSeconds < b.DurationSeconds ||
			(a.DurationSeconds == b.DurationSeconds && a.Name > b.Name) {
			t.Errorf("rows %d/%d out of order: %s (%v) before %s (%v)",
				i-1, i, a.Name, a.DurationSeconds, b.Name, b.DurationSeconds)
		}
	}
}

// AssertStates checks the state of every named row. Names not in want are
// ignored.
func AssertStates(t *testing.T, tl *timeline.Timeline, want map[string]timeline.RowState) {
	t.Helper()
	for name, state := range want {
		row, ok := tl.Lookup(name)
		if !ok {
			t.Errorf("row %s not found", name)
			continue
		}
		if got := row.State(); got != state {
			t.Errorf("row %s state = %v, want %v", name, got, state)
		}
	}
}

// AssertAllNormal verifies no row carries selection state.
func AssertAllNormal(t *testing.T, tl *timeline.Timeline) {
	t.Helper()
	for _, r := range tl.Rows {
		if r.State() != timeline.StateNormal || r.Hidden() || r.Roles() != 0 {
			t.Errorf("row %s not normal: state=%v hidden=%v roles=%b", r.Name(), r.State(), r.Hidden(), r.Roles())
		}
	}
}

// Golden file helpers

// GoldenFile handles golden file comparisons.
type GoldenFile struct {
	t      *testing.T
	dir    string
	name   string
	update bool
}

// NewGoldenFile creates a golden file helper.
// If GENERATE_GOLDEN env var is set, golden files will be updated.
func NewGoldenFile(t *testing.T, dir, name string) *GoldenFile {
	t.Helper()
	return &GoldenFile{
		t:      t,
		dir:    dir,
		name:   name,
		update: os.Getenv("GENERATE_GOLDEN") != "",
	}
}

// Path returns the full path to the golden file.
func (g *GoldenFile) Path() string {
	return filepath.Join(g.dir, g.name)
}

// Assert compares actual content against the golden file.
func (g *GoldenFile) Assert(actual string) {
	g.t.Helper()
	path := g.Path()

	if g.update {
		if err := os.MkdirAll(g.dir, 0755); err != nil {
			g.t.Fatalf("failed to create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(actual), 0644); err != nil {
			g.t.Fatalf("failed to write golden file: %v", err)
		}
		g.t.Logf("updated golden file: %s", path)
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			g.t.Fatalf("golden file does not exist: %s\nRun with GENERATE_GOLDEN=1 to create it", path)
		}
		g.t.Fatalf("failed to read golden file: %v", err)
	}

	if string(expected) != actual {
		expectedLines := strings.Split(string(expected), "\n")
		actualLines := strings.Split(actual, "\n")
		for i := 0; i < len(expectedLines) || i < len(actualLines); i++ {
			var expLine, actLine string
			if i < len(expectedLines) {
				expLine = expectedLines[i]
			}
			if i < len(actualLines) {
				actLine = actualLines[i]
			}
			if expLine != actLine {
				g.t.Errorf("golden file mismatch at line %d:\nexpected: %s\nactual:   %s", i+1, expLine, actLine)
				return
			}
		}
		g.t.Errorf("golden file mismatch (length differs)")
	}
}

// Document helpers

// TempLogsDir creates a temporary project directory with a Logs/Web
// subdirectory and returns the project path.
func TempLogsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "Logs", "Web"), 0755); err != nil {
		t.Fatalf("failed to create Logs dir: %v", err)
	}
	return dir
}

// WriteDocument writes doc to path and returns path.
func WriteDocument(t *testing.T, path, doc string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
	return path
}

// WriteEntries renders entries with the given total and writes them to path.
func WriteEntries(t *testing.T, path string, entries []model.CompilationEntry, total float64) string {
	t.Helper()
	return WriteDocument(t, path, ToDocument(entries, &total))
}

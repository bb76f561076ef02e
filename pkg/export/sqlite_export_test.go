package export

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func openExport(t *testing.T, b *Bundle) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timeline.sqlite3")
	exp := NewSQLiteExporter(b)
	exp.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	if err := exp.Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func queryString(t *testing.T, db *sql.DB, q string, args ...any) string {
	t.Helper()
	var s string
	if err := db.QueryRow(q, args...).Scan(&s); err != nil {
		t.Fatalf("%s: %v", q, err)
	}
	return s
}

func TestSQLiteExport_Rows(t *testing.T) {
	db := openExport(t, abcBundle())

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM rows`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Fatalf("expected 3 rows, got %d", count)
	}

	var (
		name, speed string
		width, td   int
	)
	err := db.QueryRow(`SELECT name, speed, bar_width, transitive_dependants FROM rows WHERE position = 0`).
		Scan(&name, &speed, &width, &td)
	if err != nil {
		t.Fatal(err)
	}
	if name != "C" || speed != "slow" || width != 6750 || td != 0 {
		t.Errorf("first row = %s %s %d %d", name, speed, width, td)
	}

	if got := queryString(t, db, `SELECT speed FROM rows WHERE name = 'A'`); got != "fast" {
		t.Errorf("A speed = %q, want fast", got)
	}
	if err := db.QueryRow(`SELECT transitive_dependants FROM rows WHERE name = 'A'`).Scan(&td); err != nil || td != 2 {
		t.Errorf("A transitive dependants = %d (%v), want 2", td, err)
	}

	var start sql.NullFloat64
	if err := db.QueryRow(`SELECT start_seconds FROM rows WHERE name = 'A'`).Scan(&start); err != nil {
		t.Fatal(err)
	}
	if start.Valid {
		t.Error("start_seconds should be NULL without start ticks")
	}
}

func TestSQLiteExport_EdgesSummaryMeta(t *testing.T) {
	db := openExport(t, abcBundle())

	var edges int
	if err := db.QueryRow(`SELECT COUNT(*) FROM edges`).Scan(&edges); err != nil {
		t.Fatal(err)
	}
	if edges != 2 {
		t.Errorf("expected 2 edges, got %d", edges)
	}
	if got := queryString(t, db, `SELECT to_name FROM edges WHERE from_name = 'C'`); got != "B" {
		t.Errorf("C depends on %q, want B", got)
	}

	if got := queryString(t, db, `SELECT value FROM summary WHERE key = 'unit_count'`); got != "3" {
		t.Errorf("unit_count = %q", got)
	}
	if got := queryString(t, db, `SELECT value FROM summary WHERE key = 'slowest_chain'`); got != "C -> B -> A" {
		t.Errorf("slowest_chain = %q", got)
	}
	if got := queryString(t, db, `SELECT value FROM meta WHERE key = 'schema_version'`); got != "1" {
		t.Errorf("schema_version = %q", got)
	}
	if got := queryString(t, db, `SELECT value FROM meta WHERE key = 'generated_at'`); got != "2024-01-02T03:04:05Z" {
		t.Errorf("generated_at = %q", got)
	}
}

func TestSQLiteExport_Empty(t *testing.T) {
	db := openExport(t, NewBundle(nil))
	if got := queryString(t, db, `SELECT value FROM summary WHERE key = 'shortest_seconds'`); got != "0.000000" {
		t.Errorf("shortest_seconds = %q, want 0.000000", got)
	}
}

func TestSQLiteExport_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeline.sqlite3")
	for range 2 {
		if err := NewSQLiteExporter(abcBundle()).Export(path); err != nil {
			t.Fatalf("Export: %v", err)
		}
	}
}

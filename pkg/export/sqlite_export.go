package export

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/buildline/pkg/timeline"
	"github.com/vanderheijden86/buildline/pkg/version"
)

// SQLiteExporter writes a timeline into a standalone SQLite database.
type SQLiteExporter struct {
	bundle *Bundle
	now    func() time.Time
}

func NewSQLiteExporter(b *Bundle) *SQLiteExporter {
	return &SQLiteExporter{bundle: b, now: time.Now}
}

// Export writes the database to dbPath, replacing any existing file.
func (e *SQLiteExporter) Export(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertRows(db); err != nil {
		return fmt.Errorf("insert rows: %w", err)
	}
	if err := e.insertEdges(db); err != nil {
		return fmt.Errorf("insert edges: %w", err)
	}
	if err := e.insertSummary(db); err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	return db.Close()
}

func (e *SQLiteExporter) insertRows(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO rows (name, display_name, position, duration_seconds, start_seconds, bar_width, speed,
			direct_references, direct_dependants, transitive_dependants)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range e.bundle.Timeline.Rows {
		var start *float64
		if r.Entry.HasStartTime {
			s := r.Entry.StartSeconds()
			start = &s
		}
		c, _ := e.bundle.Coupling.Lookup(r.Name())
		if _, err := stmt.Exec(
			r.Name(),
			r.DisplayName,
			i,
			r.Entry.DurationSeconds,
			start,
			r.BarWidth,
			r.Speed.String(),
			c.DirectReferences,
			c.DirectDependants,
			c.TransitiveDependants,
		); err != nil {
			return fmt.Errorf("insert row %s: %w", r.Name(), err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertEdges(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO edges (from_name, to_name) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, edge := range e.bundle.Edges {
		if _, err := stmt.Exec(edge.From, edge.To); err != nil {
			return fmt.Errorf("insert edge %s -> %s: %w", edge.From, edge.To, err)
		}
	}
	return tx.Commit()
}

func (e *SQLiteExporter) insertSummary(db *sql.DB) error {
	tl := e.bundle.Timeline
	s := tl.Summary()
	report := e.bundle.Coupling

	values := map[string]string{
		"title":                 s.Title,
		"total_seconds":         fmt.Sprintf("%.6f", s.TotalSeconds),
		"total_kind":            s.TotalKind.String(),
		"unit_count":            fmt.Sprint(s.Count),
		"shortest_seconds":      fmt.Sprintf("%.6f", shortestOrZero(tl)),
		"longest_seconds":       fmt.Sprintf("%.6f", tl.Stats.Longest),
		"cycle_count":           fmt.Sprint(len(report.Cycles)),
		"slowest_chain":         strings.Join(report.SlowestChain, " -> "),
		"slowest_chain_seconds": fmt.Sprintf("%.6f", report.SlowestChainSeconds),
	}
	for key, value := range values {
		if _, err := db.Exec(`INSERT OR REPLACE INTO summary (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("insert summary %s: %w", key, err)
		}
	}
	return nil
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	meta := map[string]string{
		"version":      version.Version,
		"generated_at": e.now().UTC().Format(time.RFC3339),
		"row_count":    fmt.Sprint(len(e.bundle.Timeline.Rows)),
		"edge_count":   fmt.Sprint(len(e.bundle.Edges)),
	}
	for key, value := range meta {
		if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}

// shortestOrZero hides the +Inf sentinel of an empty timeline.
func shortestOrZero(tl *timeline.Timeline) float64 {
	if tl.Len() == 0 {
		return 0
	}
	return tl.Stats.Shortest
}

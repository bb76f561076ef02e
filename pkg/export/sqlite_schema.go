package export

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is recorded in the meta table.
const SchemaVersion = 1

// CreateSchema creates the tables and indexes of the SQLite export.
func CreateSchema(db *sql.DB) error {
	if err := createCoreTables(db); err != nil {
		return fmt.Errorf("create core tables: %w", err)
	}
	if err := createIndexes(db); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	if err := createMetaTable(db); err != nil {
		return fmt.Errorf("create meta table: %w", err)
	}
	return nil
}

func createCoreTables(db *sql.DB) error {
	// One row per compiled unit, in display order.
	rowsSQL := `
		CREATE TABLE IF NOT EXISTS rows (
			name TEXT PRIMARY KEY,
			display_name TEXT NOT NULL,
			position INTEGER NOT NULL,
			duration_seconds REAL NOT NULL,
			start_seconds REAL,
			bar_width INTEGER NOT NULL,
			speed TEXT NOT NULL,
			direct_references INTEGER NOT NULL DEFAULT 0,
			direct_dependants INTEGER NOT NULL DEFAULT 0,
			transitive_dependants INTEGER NOT NULL DEFAULT 0
		)
	`
	if _, err := db.Exec(rowsSQL); err != nil {
		return fmt.Errorf("create rows table: %w", err)
	}

	// from_name depends on to_name.
	edgesSQL := `
		CREATE TABLE IF NOT EXISTS edges (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			from_name TEXT NOT NULL,
			to_name TEXT NOT NULL,
			FOREIGN KEY (from_name) REFERENCES rows(name),
			FOREIGN KEY (to_name) REFERENCES rows(name)
		)
	`
	if _, err := db.Exec(edgesSQL); err != nil {
		return fmt.Errorf("create edges table: %w", err)
	}

	summarySQL := `
		CREATE TABLE IF NOT EXISTS summary (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`
	if _, err := db.Exec(summarySQL); err != nil {
		return fmt.Errorf("create summary table: %w", err)
	}
	return nil
}

func createIndexes(db *sql.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_rows_duration ON rows(duration_seconds DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_speed ON rows(speed)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_from ON edges(from_name)`,
		`CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_name)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func createMetaTable(db *sql.DB) error {
	metaSQL := `
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)
	`
	if _, err := db.Exec(metaSQL); err != nil {
		return err
	}
	_, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, fmt.Sprint(SchemaVersion))
	return err
}

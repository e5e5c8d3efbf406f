package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mlefevre/consoscope/pkg/models"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS consumption_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		value REAL NOT NULL,
		source TEXT NOT NULL,
		acquired_at TEXT NOT NULL,
		published INTEGER DEFAULT 0,
		UNIQUE(date, source)
	);
	CREATE INDEX IF NOT EXISTS idx_consumption_date ON consumption_data(date);
	CREATE INDEX IF NOT EXISTS idx_consumption_source ON consumption_data(source);
	CREATE INDEX IF NOT EXISTS idx_consumption_published ON consumption_data(published);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// ReplaceDataset replaces all records for a source tag with the given
// dataset in one transaction. A fetch fully replaces the previous
// acquisition for that tag (last writer wins).
func (db *DB) ReplaceDataset(sourceTag string, dataset models.Dataset) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM consumption_data WHERE source = ?`, sourceTag); err != nil {
		return fmt.Errorf("clearing previous dataset: %w", err)
	}

	acquiredAt := time.Now().UTC().Format(time.RFC3339)
	stmt, err := tx.Prepare(`
	INSERT INTO consumption_data (date, value, source, acquired_at)
	VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range dataset {
		dateStr := rec.Date.Format("2006-01-02")
		if _, err := stmt.Exec(dateStr, rec.Value, sourceTag, acquiredAt); err != nil {
			return fmt.Errorf("inserting record for %s: %w", dateStr, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// ListRecords retrieves all records for a source tag, oldest first
func (db *DB) ListRecords(sourceTag string) (models.Dataset, error) {
	query := `
	SELECT id, date, value, source
	FROM consumption_data
	WHERE source = ?
	ORDER BY date ASC
	`

	rows, err := db.conn.Query(query, sourceTag)
	if err != nil {
		return nil, fmt.Errorf("querying consumption data: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListUnpublished retrieves records for a source tag that have not
// been published yet, oldest first
func (db *DB) ListUnpublished(sourceTag string) (models.Dataset, error) {
	query := `
	SELECT id, date, value, source
	FROM consumption_data
	WHERE source = ? AND published = 0
	ORDER BY date ASC
	`

	rows, err := db.conn.Query(query, sourceTag)
	if err != nil {
		return nil, fmt.Errorf("querying unpublished data: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// MarkPublished marks a record as published
func (db *DB) MarkPublished(id int) error {
	query := `UPDATE consumption_data SET published = 1 WHERE id = ?`
	if _, err := db.conn.Exec(query, id); err != nil {
		return fmt.Errorf("marking record as published: %w", err)
	}
	return nil
}

// ListSources returns the distinct source tags present in the database
func (db *DB) ListSources() ([]string, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT source FROM consumption_data ORDER BY source`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		sources = append(sources, s)
	}

	return sources, rows.Err()
}

func scanRecords(rows *sql.Rows) (models.Dataset, error) {
	var results models.Dataset
	for rows.Next() {
		var rec models.ConsumptionRecord
		var dateStr string

		if err := rows.Scan(&rec.ID, &dateStr, &rec.Value, &rec.Source); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("parsing date: %w", err)
		}
		rec.Date = date

		results = append(results, rec)
	}

	return results, rows.Err()
}

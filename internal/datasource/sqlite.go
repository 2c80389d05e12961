package datasource

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/wsjfboard/pkg/model"
)

// Schema is the items table a SQLite backlog must provide.
const Schema = `
CREATE TABLE IF NOT EXISTS items (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	complexity       REAL,
	effort           REAL,
	doubt            REAL,
	business_value   REAL,
	time_criticality REAL,
	risk_reduction   REAL,
	color            TEXT,
	item_rank        INTEGER,
	notes            TEXT,
	position         INTEGER
)`

// SQLiteReader provides read access to a backlog database
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	return &SQLiteReader{db: db, path: source.Path}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadItems reads all items in backlog order.
func (r *SQLiteReader) LoadItems() ([]model.WorkItem, error) {
	return r.LoadItemsFiltered(nil)
}

// LoadItemsFiltered reads items matching the filter function. NULL
// estimates read as 0 (not yet estimated); rows failing validation are
// skipped.
func (r *SQLiteReader) LoadItemsFiltered(filter func(*model.WorkItem) bool) ([]model.WorkItem, error) {
	rows, err := r.db.Query(`
		SELECT id, title,
			complexity, effort, doubt,
			business_value, time_criticality, risk_reduction,
			color, item_rank, notes
		FROM items
		ORDER BY COALESCE(position, item_rank, 0), rowid`)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var items []model.WorkItem
	for rows.Next() {
		var it model.WorkItem
		var size, cod [3]sql.NullFloat64
		var color, notes sql.NullString
		var rank sql.NullInt64
		if err := rows.Scan(&it.ID, &it.Title,
			&size[0], &size[1], &size[2],
			&cod[0], &cod[1], &cod[2],
			&color, &rank, &notes); err != nil {
			continue
		}
		for i := 0; i < 3; i++ {
			it.Size[i] = size[i].Float64
			it.CostOfDelay[i] = cod[i].Float64
		}
		it.Color = color.String
		it.Rank = int(rank.Int64)
		it.Notes = notes.String
		if it.Validate() != nil {
			continue
		}
		if filter != nil && !filter(&it) {
			continue
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// WriteSQLite creates (or replaces the contents of) a backlog database at
// path, storing items in order.
func WriteSQLite(path string, items []model.WorkItem) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return fmt.Errorf("cannot open database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM items`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear items: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO items
		(id, title, complexity, effort, doubt, business_value, time_criticality, risk_reduction, color, item_rank, notes, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	for i, it := range items {
		if _, err := stmt.Exec(it.ID, it.Title,
			it.Size[0], it.Size[1], it.Size[2],
			it.CostOfDelay[0], it.CostOfDelay[1], it.CostOfDelay[2],
			it.Color, it.Rank, it.Notes, i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert item %s: %w", it.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

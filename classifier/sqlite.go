package classifier

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const classificationSchema = `
CREATE TABLE IF NOT EXISTS classifications (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	jname      TEXT NOT NULL,
	username   TEXT NOT NULL,
	comment    TEXT NOT NULL,
	tags       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_classifications_jname ON classifications(jname, id);
`

// SQLiteRecorder stores classifications in an SQLite table. Rows are only
// ever inserted, so history is preserved in id order.
type SQLiteRecorder struct {
	db  *sql.DB
	tax *Taxonomy
	now func() time.Time
}

// OpenSQLiteRecorder opens (or creates) the database at path. Use ":memory:" in tests.
func OpenSQLiteRecorder(path string, tax *Taxonomy) (*SQLiteRecorder, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite recorder: mkdir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite recorder: open: %w", err)
	}
	// One connection keeps ":memory:" databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite recorder: %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(classificationSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite recorder: schema: %w", err)
	}
	return &SQLiteRecorder{db: db, tax: tax, now: time.Now}, nil
}

// Append validates e and inserts it.
func (r *SQLiteRecorder) Append(e Entry) error {
	_, err := r.Record(e)
	return err
}

// Record is Append returning the row as inserted.
func (r *SQLiteRecorder) Record(e Entry) (Entry, error) {
	e, err := prepareEntry(e, r.tax)
	if err != nil {
		return Entry{}, err
	}
	_, err = r.db.Exec(
		`INSERT INTO classifications (jname, username, comment, tags, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.Key, e.Username, e.Comment, e.Tags, r.now().Unix(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert classification: %w", err)
	}
	return e, nil
}

// Lookup returns the entries for key in insertion order.
func (r *SQLiteRecorder) Lookup(key string) ([]Entry, error) {
	key = strings.TrimSpace(key)
	rows, err := r.db.Query(
		`SELECT jname, username, comment, tags FROM classifications WHERE jname = ? ORDER BY id`, key)
	if err != nil {
		return nil, fmt.Errorf("query classifications: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Username, &e.Comment, &e.Tags); err != nil {
			return nil, fmt.Errorf("scan classification: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of stored entries.
func (r *SQLiteRecorder) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM classifications`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count classifications: %w", err)
	}
	return n, nil
}

// Import copies flat-file entries in one transaction. Entries are checked
// for structure only: history tagged under an older taxonomy is kept. Entries
// that fail are skipped and returned as errors; the rest are inserted.
func (r *SQLiteRecorder) Import(entries []Entry) (int, []error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, []error{fmt.Errorf("begin import: %w", err)}
	}
	stmt, err := tx.Prepare(
		`INSERT INTO classifications (jname, username, comment, tags, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return 0, []error{fmt.Errorf("prepare import: %w", err)}
	}
	defer stmt.Close()
	var errs []error
	n := 0
	ts := r.now().Unix()
	for i, raw := range entries {
		e, err := prepareEntry(raw, nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i+1, raw.Key, err))
			continue
		}
		if _, err := stmt.Exec(e.Key, e.Username, e.Comment, e.Tags, ts); err != nil {
			tx.Rollback()
			return 0, append(errs, fmt.Errorf("import entry %d: %w", i+1, err))
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, append(errs, fmt.Errorf("commit import: %w", err))
	}
	return n, errs
}

// Close releases the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

// Package benchdb records performance counters from program runs into a
// SQLite database, so that interpreter speed can be compared across runs.
package benchdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Run is one recorded program execution.
type Run struct {
	ID       int64
	Program  string // source digest
	Name     string // source name
	Standard string
	Status   string
	Steps    uint64
	Elapsed  time.Duration
	At       time.Time
}

// Rate returns the run's steps per second.
func (run Run) Rate() float64 {
	if run.Elapsed <= 0 {
		return 0
	}
	return float64(run.Steps) / run.Elapsed.Seconds()
}

// DB is a run history database.
type DB struct {
	db   *sql.DB
	path string
}

const schema = `CREATE TABLE IF NOT EXISTS runs (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	program  TEXT    NOT NULL,
	name     TEXT    NOT NULL,
	standard TEXT    NOT NULL,
	status   TEXT    NOT NULL,
	steps    INTEGER NOT NULL,
	elapsed  INTEGER NOT NULL,
	at       INTEGER NOT NULL
)`

// Open opens, creating if necessary, the history database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	return &DB{db: db, path: path}, nil
}

// Path returns the database file path.
func (db *DB) Path() string { return db.path }

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// Record inserts run, returning its assigned ID.
func (db *DB) Record(ctx context.Context, run Run) (int64, error) {
	if run.At.IsZero() {
		run.At = time.Now()
	}
	res, err := db.db.ExecContext(ctx,
		`INSERT INTO runs (program, name, standard, status, steps, elapsed, at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.Program, run.Name, run.Standard, run.Status,
		int64(run.Steps), int64(run.Elapsed), run.At.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("recording run: %w", err)
	}
	return res.LastInsertId()
}

// History returns up to limit of the most recent runs of the given program
// digest, newest first; a limit <= 0 returns all of them.
func (db *DB) History(ctx context.Context, program string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := db.db.QueryContext(ctx,
		`SELECT id, program, name, standard, status, steps, elapsed, at
		FROM runs WHERE program = ? ORDER BY at DESC, id DESC LIMIT ?`,
		program, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run     Run
			steps   int64
			elapsed int64
			at      int64
		)
		if err := rows.Scan(&run.ID, &run.Program, &run.Name, &run.Standard, &run.Status,
			&steps, &elapsed, &at); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.Steps = uint64(steps)
		run.Elapsed = time.Duration(elapsed)
		run.At = time.Unix(0, at)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/psantana5/timethis/internal/hostinfo"
	"github.com/psantana5/timethis/internal/report"
)

// SQLiteStore keeps measurement history in a SQLite database
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (and creates if needed) the history database at path
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	// WAL plus a busy timeout lets a watch daemon and a one-off run share the file
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS measurements (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		command TEXT,
		mode TEXT NOT NULL,
		loops INTEGER NOT NULL,
		start_time DATETIME NOT NULL,
		end_time DATETIME NOT NULL,
		duration_ns INTEGER NOT NULL,
		error TEXT,
		exit_code INTEGER NOT NULL DEFAULT 0,
		host TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_measurements_label_start ON measurements(label, start_time);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save stores r
func (s *SQLiteStore) Save(ctx context.Context, r *report.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var host sql.NullString
	if r.Host != nil {
		data, err := json.Marshal(r.Host)
		if err != nil {
			return fmt.Errorf("failed to encode host info: %w", err)
		}
		host = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO measurements (id, label, command, mode, loops, start_time, end_time, duration_ns, error, exit_code, host)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Label, r.Command, string(r.Mode), r.Loops,
		r.StartTime.UTC(), r.EndTime.UTC(), int64(r.Duration),
		r.Error, r.ExitCode, host,
	)
	if err != nil {
		return fmt.Errorf("failed to save measurement %s: %w", r.ID, err)
	}
	return nil
}

// List returns up to limit results, newest first. An empty label matches all.
func (s *SQLiteStore) List(ctx context.Context, label string, limit int) ([]*report.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	query := `
		SELECT id, label, command, mode, loops, start_time, end_time, duration_ns, error, exit_code, host
		FROM measurements`
	args := []interface{}{}
	if label != "" {
		query += " WHERE label = ?"
		args = append(args, label)
	}
	query += " ORDER BY start_time DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	var results []*report.Result
	for rows.Next() {
		var (
			r          report.Result
			mode       string
			durationNS int64
			command    sql.NullString
			errText    sql.NullString
			host       sql.NullString
			startTime  time.Time
			endTime    time.Time
		)
		if err := rows.Scan(&r.ID, &r.Label, &command, &mode, &r.Loops, &startTime, &endTime, &durationNS, &errText, &r.ExitCode, &host); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		r.Command = command.String
		r.Mode = report.Mode(mode)
		r.StartTime = startTime
		r.EndTime = endTime
		r.Duration = time.Duration(durationNS)
		r.Error = errText.String
		if host.Valid && host.String != "" {
			var info hostinfo.Info
			if err := json.Unmarshal([]byte(host.String), &info); err == nil {
				r.Host = &info
			}
		}
		results = append(results, &r)
	}
	return results, rows.Err()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

/*
A component used to keep a record of completed analysis runs, so an
operator can line up today's totals against previous days when chasing a
latency regression.

Responsibilities:
	- create the schema on open
	- append one row per completed run
	- answer the most recent runs, newest first
*/
type Store struct {
	db   *sql.DB
	path string
}

// Run is one completed analysis run.
type Run struct {
	LogDate     time.Time
	LogPath     string
	TotalLines  uint64
	FailedLines uint64
	URLCount    int
	ReportPath  string
	CreatedAt   time.Time
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("path can't be empty")
	}
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		mkdirErr := os.MkdirAll(dir, 0o750)
		if mkdirErr != nil {
			return nil, fmt.Errorf("can't create history directory: %v", mkdirErr)
		}
	}
	db, openErr := sql.Open("sqlite", path)
	if openErr != nil {
		return nil, fmt.Errorf("can't open history db: %v", openErr)
	}
	store := &Store{db: db, path: path}
	configureErr := store.configure()
	if configureErr != nil {
		_ = db.Close()
		return nil, configureErr
	}
	schemaErr := store.createSchema()
	if schemaErr != nil {
		_ = db.Close()
		return nil, schemaErr
	}
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		_, execErr := s.db.ExecContext(context.Background(), pragma)
		if execErr != nil {
			return fmt.Errorf("can't execute %s: %v", pragma, execErr)
		}
	}
	return nil
}

func (s *Store) createSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		log_date TEXT NOT NULL,
		log_path TEXT NOT NULL,
		total_lines INTEGER NOT NULL,
		failed_lines INTEGER NOT NULL,
		url_count INTEGER NOT NULL,
		report_path TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`
	_, execErr := s.db.ExecContext(context.Background(), query)
	if execErr != nil {
		return fmt.Errorf("can't create runs table: %v", execErr)
	}
	return nil
}

func (s *Store) RecordRun(ctx context.Context, run Run) error {
	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	query := `
	INSERT INTO runs (log_date, log_path, total_lines, failed_lines, url_count, report_path, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, execErr := s.db.ExecContext(
		ctx, query,
		run.LogDate.Format("2006-01-02"), run.LogPath,
		run.TotalLines, run.FailedLines, run.URLCount,
		run.ReportPath, createdAt.Format(time.RFC3339),
	)
	if execErr != nil {
		return fmt.Errorf("can't record run: %v", execErr)
	}
	return nil
}

func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
	SELECT log_date, log_path, total_lines, failed_lines, url_count, report_path, created_at
	FROM runs ORDER BY id DESC LIMIT ?`
	rows, queryErr := s.db.QueryContext(ctx, query, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("can't query runs: %v", queryErr)
	}
	defer func() { _ = rows.Close() }()

	var result []Run
	for rows.Next() {
		var run Run
		var logDate, createdAt string
		scanErr := rows.Scan(
			&logDate, &run.LogPath,
			&run.TotalLines, &run.FailedLines, &run.URLCount,
			&run.ReportPath, &createdAt,
		)
		if scanErr != nil {
			return nil, fmt.Errorf("can't scan run: %v", scanErr)
		}
		parsedDate, dateErr := time.Parse("2006-01-02", logDate)
		if dateErr != nil {
			return nil, fmt.Errorf("can't parse stored log date %q: %v", logDate, dateErr)
		}
		run.LogDate = parsedDate
		parsedCreatedAt, createdAtErr := time.Parse(time.RFC3339, createdAt)
		if createdAtErr != nil {
			return nil, fmt.Errorf("can't parse stored created at %q: %v", createdAt, createdAtErr)
		}
		run.CreatedAt = parsedCreatedAt
		result = append(result, run)
	}
	return result, rows.Err()
}

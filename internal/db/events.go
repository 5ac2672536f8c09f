// Package db keeps a DuckDB history of download events. The history is
// purely observational: planning always works from the directory tree, and
// a failure to record an event never affects a run.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

// Event types recorded per download task.
const (
	EventDownloadStart = "download_start"
	EventDownloadEnd   = "download_end"
	EventError         = "error"
)

const schemaSequenceSQL = `CREATE SEQUENCE IF NOT EXISTS download_log_id_seq;`

const schemaTableSQL = `
CREATE TABLE IF NOT EXISTS download_log (
    log_id          BIGINT PRIMARY KEY DEFAULT nextval('download_log_id_seq'),
    url             VARCHAR NOT NULL,
    event           VARCHAR NOT NULL,
    event_timestamp TIMESTAMP NOT NULL,
    dest_path       VARCHAR,
    message         VARCHAR,
    bytes           BIGINT,
    duration_ms     BIGINT
);
CREATE INDEX IF NOT EXISTS idx_download_log_url ON download_log (url);
CREATE INDEX IF NOT EXISTS idx_download_log_event_time ON download_log (event, event_timestamp);
`

// Open opens the DuckDB event database and ensures the schema exists.
func Open(path string) (*sql.DB, error) {
	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb %s: %w", path, err)
	}
	if err := initializeSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// initializeSchema creates the sequence before the table that defaults to it.
func initializeSchema(conn *sql.DB) error {
	if _, err := conn.Exec(schemaSequenceSQL); err != nil && !strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return fmt.Errorf("create sequence: %w", err)
	}
	if _, err := conn.Exec(schemaTableSQL); err != nil && !strings.Contains(strings.ToLower(err.Error()), "already exists") {
		return fmt.Errorf("create table: %w", err)
	}
	return nil
}

// LogEvent inserts one event row.
func LogEvent(ctx context.Context, conn *sql.DB, url, event, dest, message string, bytes int64, duration *time.Duration) error {
	query := `
        INSERT INTO download_log (url, event, event_timestamp, dest_path, message, bytes, duration_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?);
    `
	var durationMS sql.NullInt64
	if duration != nil {
		durationMS = sql.NullInt64{Int64: duration.Milliseconds(), Valid: true}
	}
	_, err := conn.ExecContext(ctx, query,
		url,
		event,
		time.Now().UTC(),
		sql.NullString{String: dest, Valid: dest != ""},
		sql.NullString{String: message, Valid: message != ""},
		sql.NullInt64{Int64: bytes, Valid: bytes > 0},
		durationMS,
	)
	if err != nil {
		return fmt.Errorf("log event %q for %s: %w", event, url, err)
	}
	return nil
}

// Event is one row of the download history.
type Event struct {
	URL        string
	Event      string
	Timestamp  time.Time
	DestPath   string
	Message    string
	Bytes      sql.NullInt64
	DurationMS sql.NullInt64
}

// RecentEvents returns the newest events, most recent first.
func RecentEvents(ctx context.Context, conn *sql.DB, limit int) ([]Event, error) {
	query := `
        SELECT url, event, event_timestamp, dest_path, message, bytes, duration_ms
        FROM download_log
        ORDER BY event_timestamp DESC, log_id DESC
        LIMIT ?;
    `
	rows, err := conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var dest, message sql.NullString
		if err := rows.Scan(&e.URL, &e.Event, &e.Timestamp, &dest, &message, &e.Bytes, &e.DurationMS); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		e.DestPath = dest.String
		e.Message = message.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}
	return events, nil
}

// Recorder adapts the event log to the fetcher's EventRecorder seam.
// Recording failures are logged at Warn and otherwise swallowed.
type Recorder struct {
	Conn   *sql.DB
	Logger *slog.Logger
}

func (r *Recorder) DownloadStarted(ctx context.Context, url, dest string) {
	r.log(LogEvent(ctx, r.Conn, url, EventDownloadStart, dest, "", 0, nil))
}

func (r *Recorder) DownloadFinished(ctx context.Context, url, dest string, bytes int64, elapsed time.Duration) {
	r.log(LogEvent(ctx, r.Conn, url, EventDownloadEnd, dest, "", bytes, &elapsed))
}

func (r *Recorder) DownloadFailed(ctx context.Context, url, dest, reason string, elapsed time.Duration) {
	r.log(LogEvent(ctx, r.Conn, url, EventError, dest, reason, 0, &elapsed))
}

func (r *Recorder) log(err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		r.Logger.Warn("failed to record download event", "error", err)
	}
}

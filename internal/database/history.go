package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/iidollbunny/docpipe/internal/model"
)

// FileName is the database file name inside the history directory.
const FileName = "history.db"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// HistoryDB stores stage runs, fetch outcomes and archived reports.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables write-ahead logging so concurrent stage processes
	// can record runs without blocking readers.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	mode := "rw"
	if opts.CreateIfNotExists {
		mode = "rwc"
	}
	// Several stage processes may share the file; wait for locks instead of failing.
	dsn := dbPath + "?mode=" + mode + "&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close() //nolint:errcheck // already failing
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := h.createTables(); err != nil {
		_ = db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return h, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS stage_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		stage TEXT NOT NULL,
		state TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		detail TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_stage ON stage_runs(stage);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON stage_runs(started_at);

	CREATE TABLE IF NOT EXISTS fetches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		fetched_at TEXT NOT NULL,
		status TEXT NOT NULL,
		status_code INTEGER,
		file TEXT,
		size INTEGER,
		attempts INTEGER,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_fetches_url ON fetches(url);

	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		processed_at TEXT NOT NULL,
		documents INTEGER NOT NULL,
		total_words INTEGER NOT NULL,
		unique_words INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_processed ON reports(processed_at);
	`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RecordRun stores a finished stage run and returns its ID.
func (h *HistoryDB) RecordRun(ctx context.Context, run model.StageRun) (int64, error) {
	res, err := h.db.ExecContext(ctx,
		`INSERT INTO stage_runs (stage, state, started_at, finished_at, detail) VALUES (?, ?, ?, ?, ?)`,
		string(run.Stage), string(run.State), formatTimestamp(run.StartedAt), formatTimestamp(run.FinishedAt), run.Detail,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record stage run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs first. An empty stage matches every
// stage; a limit of zero or less returns all runs.
func (h *HistoryDB) ListRuns(ctx context.Context, stage model.Stage, limit int) ([]model.StageRun, error) {
	query := `SELECT id, stage, state, started_at, finished_at, detail FROM stage_runs`
	args := make([]any, 0, 2)
	if stage != "" {
		query += ` WHERE stage = ?`
		args = append(args, string(stage))
	}
	query += ` ORDER BY started_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage runs: %w", err)
	}
	defer rows.Close()

	runs := make([]model.StageRun, 0)
	for rows.Next() {
		var (
			run               model.StageRun
			stageName, state  string
			started, finished string
			detail            sql.NullString
		)
		if err := rows.Scan(&run.ID, &stageName, &state, &started, &finished, &detail); err != nil {
			return nil, fmt.Errorf("failed to scan stage run: %w", err)
		}
		run.Stage = model.Stage(stageName)
		run.State = model.State(state)
		run.StartedAt = parseTimestamp(started)
		run.FinishedAt = parseTimestamp(finished)
		run.Detail = detail.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveFetchMarker stores the per-URL outcomes of a fetch run.
func (h *HistoryDB) SaveFetchMarker(ctx context.Context, marker *model.FetchMarker) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fetches (url, fetched_at, status, status_code, file, size, attempts, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare fetch insert: %w", err)
	}
	defer stmt.Close()

	ts := formatTimestamp(marker.Timestamp)
	for _, r := range marker.Results {
		if _, err := stmt.ExecContext(ctx, r.URL, ts, string(r.Status), r.StatusCode,
			nullString(r.File), nullInt(r.Size), r.Attempts, nullString(r.Error)); err != nil {
			return fmt.Errorf("failed to save fetch of %s: %w", r.URL, err)
		}
	}
	return tx.Commit()
}

// FetchRecord is one stored fetch outcome.
type FetchRecord struct {
	ID         int64
	URL        string
	FetchedAt  time.Time
	Status     model.FetchStatus
	StatusCode int
	File       string
	Size       int64
	Attempts   int
	Error      string
}

// FetchHistory returns every stored outcome for url, newest first.
func (h *HistoryDB) FetchHistory(ctx context.Context, url string) ([]FetchRecord, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, url, fetched_at, status, status_code, file, size, attempts, error
		FROM fetches WHERE url = ? ORDER BY fetched_at DESC, id DESC`, url)
	if err != nil {
		return nil, fmt.Errorf("failed to get fetch history: %w", err)
	}
	defer rows.Close()

	records := make([]FetchRecord, 0)
	for rows.Next() {
		var (
			rec           FetchRecord
			fetchedAt     string
			status        string
			code, size    sql.NullInt64
			attempts      sql.NullInt64
			file, lastErr sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.URL, &fetchedAt, &status, &code, &file, &size, &attempts, &lastErr); err != nil {
			return nil, fmt.Errorf("failed to scan fetch record: %w", err)
		}
		rec.FetchedAt = parseTimestamp(fetchedAt)
		rec.Status = model.FetchStatus(status)
		rec.StatusCode = int(code.Int64)
		rec.File = file.String
		rec.Size = size.Int64
		rec.Attempts = int(attempts.Int64)
		rec.Error = lastErr.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveReport archives an analysis report and returns its ID.
func (h *HistoryDB) SaveReport(ctx context.Context, report *model.Report) (int64, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	res, err := h.db.ExecContext(ctx,
		`INSERT INTO reports (processed_at, documents, total_words, unique_words, report_json) VALUES (?, ?, ?, ?, ?)`,
		formatTimestamp(report.ProcessingTimestamp), report.DocumentsProcessed, report.TotalWords, report.UniqueWords, string(data),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}
	return res.LastInsertId()
}

// ReportMetadata summarizes an archived report without loading it.
type ReportMetadata struct {
	ID          int64
	ProcessedAt time.Time
	Documents   int
	TotalWords  int
	UniqueWords int
}

// ListReports returns metadata of archived reports, newest first.
func (h *HistoryDB) ListReports(ctx context.Context) ([]ReportMetadata, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, processed_at, documents, total_words, unique_words FROM reports ORDER BY processed_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	out := make([]ReportMetadata, 0)
	for rows.Next() {
		var meta ReportMetadata
		var ts string
		if err := rows.Scan(&meta.ID, &ts, &meta.Documents, &meta.TotalWords, &meta.UniqueWords); err != nil {
			return nil, fmt.Errorf("failed to scan report metadata: %w", err)
		}
		meta.ProcessedAt = parseTimestamp(ts)
		out = append(out, meta)
	}
	return out, rows.Err()
}

// GetLatestReport returns the most recently processed archived report.
func (h *HistoryDB) GetLatestReport(ctx context.Context) (*model.Report, error) {
	return h.queryReport(ctx, `SELECT report_json FROM reports ORDER BY processed_at DESC, id DESC LIMIT 1`)
}

// GetReportByID returns an archived report by ID.
func (h *HistoryDB) GetReportByID(ctx context.Context, id int64) (*model.Report, error) {
	return h.queryReport(ctx, `SELECT report_json FROM reports WHERE id = ?`, id)
}

func (h *HistoryDB) queryReport(ctx context.Context, query string, args ...any) (*model.Report, error) {
	var data string
	err := h.db.QueryRowContext(ctx, query, args...).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

// formatTimestamp stores times as sortable UTC RFC 3339 text.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

// timestampFormats contains the formats parseTimestamp accepts, most specific first.
var timestampFormats = []string{
	"2006-01-02T15:04:05.000000000Z",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp parses a stored timestamp, returning the zero time if no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

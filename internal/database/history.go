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

	qrlog "github.com/nao1215/qrreader/internal/log"
	"github.com/nao1215/qrreader/internal/model"
	"github.com/nao1215/qrreader/internal/outcome"
)

// FileName is the database file created inside the database directory.
const FileName = "history.db"

// DefaultListLimit is used by ListRecent when limit is not positive.
const DefaultListLimit = 20

// ErrNilReport is returned by SaveRead when given a nil report.
var ErrNilReport = errors.New("cannot save a nil read report")

// HistoryDB provides SQLite-based storage for read reports.
// It is safe for concurrent use.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per read, successful or not
	CREATE TABLE IF NOT EXISTS reads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		request_id TEXT,
		url TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		date_read TEXT NOT NULL,
		success INTEGER NOT NULL,
		error_code INTEGER,
		text TEXT,
		sha3_256 TEXT,
		format TEXT,
		width INTEGER,
		height INTEGER,
		fetched_bytes INTEGER,
		duration_ms INTEGER,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reads_url ON reads(url);
	CREATE INDEX IF NOT EXISTS idx_reads_digest ON reads(sha3_256);
	CREATE INDEX IF NOT EXISTS idx_reads_timestamp ON reads(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRead stores a read report and sets report.ID to the new row ID.
// Credentials in the URL and in the error message are masked before the
// row is written; report itself is not modified apart from its ID.
func (hdb *HistoryDB) SaveRead(ctx context.Context, report *model.ReadReport) (int64, error) {
	if report == nil {
		return 0, ErrNilReport
	}

	stored := *report
	stored.URL = qrlog.RedactURL(report.URL)
	stored.ErrorMessage = qrlog.RedactURLs(report.ErrorMessage)

	reportJSON, err := json.Marshal(&stored)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	var errorCode sql.NullInt64
	if !report.Outcome.IsSuccess() {
		errorCode = sql.NullInt64{Int64: int64(report.Outcome.Kind().Code()), Valid: true}
	}

	query := `
	INSERT INTO reads (request_id, url, date_read, success, error_code, text, sha3_256,
		format, width, height, fetched_bytes, duration_ms, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		stored.RequestID,
		stored.URL,
		stored.DateRead.UTC().Format(time.RFC3339Nano),
		stored.Outcome.IsSuccess(),
		errorCode,
		stored.Outcome.Text(),
		stored.Digest,
		stored.Format.String(),
		stored.Width,
		stored.Height,
		stored.FetchedBytes,
		stored.Duration.Milliseconds(),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save read: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get inserted ID: %w", err)
	}
	report.ID = id
	return id, nil
}

// GetRead retrieves a full read report by its database ID.
// It returns nil, nil when no such read exists.
func (hdb *HistoryDB) GetRead(ctx context.Context, id int64) (*model.ReadReport, error) {
	query := `
	SELECT report_json FROM reads
	WHERE id = ?
	`

	var reportJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get read: %w", err)
	}

	var report model.ReadReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	report.ID = id

	return &report, nil
}

// ListRecent returns the most recent reads, newest first.
func (hdb *HistoryDB) ListRecent(ctx context.Context, limit int) ([]model.ReadRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `
	SELECT id, request_id, url, date_read, success, error_code, text, sha3_256, format
	FROM reads
	ORDER BY id DESC
	LIMIT ?
	`
	return hdb.queryRecords(ctx, query, limit)
}

// FindByDigest returns every read of the image with the given SHA3-256
// digest, newest first.
func (hdb *HistoryDB) FindByDigest(ctx context.Context, digest string) ([]model.ReadRecord, error) {
	query := `
	SELECT id, request_id, url, date_read, success, error_code, text, sha3_256, format
	FROM reads
	WHERE sha3_256 = ?
	ORDER BY id DESC
	`
	return hdb.queryRecords(ctx, query, digest)
}

func (hdb *HistoryDB) queryRecords(ctx context.Context, query string, args ...any) ([]model.ReadRecord, error) {
	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reads: %w", err)
	}
	defer rows.Close()

	records := []model.ReadRecord{}
	for rows.Next() {
		var (
			rec       model.ReadRecord
			requestID sql.NullString
			dateRead  string
			success   bool
			errorCode sql.NullInt64
			text      sql.NullString
			digest    sql.NullString
			format    sql.NullString
		)
		if err := rows.Scan(&rec.ID, &requestID, &rec.URL, &dateRead, &success,
			&errorCode, &text, &digest, &format); err != nil {
			return nil, fmt.Errorf("failed to scan read: %w", err)
		}

		rec.RequestID = requestID.String
		rec.DateRead = parseTimestamp(dateRead)
		rec.Digest = digest.String
		rec.Format = format.String
		rec.Outcome = recordOutcome(success, errorCode, text.String)

		records = append(records, rec)
	}

	return records, rows.Err()
}

// Stats counts every stored read by outcome.
func (hdb *HistoryDB) Stats(ctx context.Context) (model.Summary, error) {
	query := `
	SELECT success, error_code, COUNT(*)
	FROM reads
	GROUP BY success, error_code
	`

	summary := model.Summary{ByKind: make(map[string]int)}

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return summary, fmt.Errorf("failed to count reads: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			success   bool
			errorCode sql.NullInt64
			count     int
		)
		if err := rows.Scan(&success, &errorCode, &count); err != nil {
			return summary, fmt.Errorf("failed to scan count: %w", err)
		}

		summary.Total += count
		if success {
			summary.Succeeded += count
			continue
		}
		summary.Failed += count
		summary.ByKind[recordOutcome(false, errorCode, "").Kind().String()] += count
	}

	return summary, rows.Err()
}

// recordOutcome rebuilds an outcome from its stored columns.
// Unknown codes become Exception.
func recordOutcome(success bool, errorCode sql.NullInt64, text string) outcome.Outcome {
	if success {
		return outcome.Success(text)
	}
	kind := outcome.KindException
	if errorCode.Valid {
		kind, _ = outcome.KindFromCode(int(errorCode.Int64))
	}
	return outcome.Failure(kind)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // date_read as written by SaveRead
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

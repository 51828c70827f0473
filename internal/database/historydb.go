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

	"github.com/nao1215/onepage/internal/model"
)

// FileName is the database file name inside the database directory.
const FileName = "onepage.db"

// timeLayout is a fixed-width RFC 3339 layout so that stored timestamps
// sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrBuildNotFound is returned when a build id does not exist.
var ErrBuildNotFound = errors.New("build not found")

// HistoryDB stores bundle builds in SQLite.
//
// Design decision: We keep one database per user rather than one per
// project. Builds are keyed by their root path, so several sites can share
// the file and `onepage history` shows them together.
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

	// EnableWAL enables Write-Ahead Logging.
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
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
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
	if _, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
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
	-- One row per bundle run
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root TEXT NOT NULL,
		dest TEXT NOT NULL,
		root_id TEXT NOT NULL,
		title TEXT,
		page_count INTEGER NOT NULL,
		resource_count INTEGER NOT NULL,
		resource_bytes INTEGER NOT NULL,
		missing_count INTEGER NOT NULL,
		output_size INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_builds_root ON builds(root);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);

	-- Pages that ended up in a build, root first
	CREATE TABLE IF NOT EXISTS build_pages (
		build_id INTEGER NOT NULL REFERENCES builds(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		page_id TEXT NOT NULL,
		title TEXT,
		size INTEGER NOT NULL,
		is_root INTEGER NOT NULL DEFAULT 0,
		is_svg INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (build_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_build_pages_page ON build_pages(page_id);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// BuildRecord is the list view of a stored build.
type BuildRecord struct {
	ID            int64
	Root          string
	Dest          string
	RootID        model.PageID
	Title         string
	PageCount     int
	ResourceCount int
	ResourceBytes int64
	MissingCount  int
	OutputSize    int64
	StartedAt     time.Time
	Duration      time.Duration
}

// SaveBuild records a build and its pages in one transaction and returns
// the new build id.
func (hdb *HistoryDB) SaveBuild(ctx context.Context, s *model.Summary) (id int64, err error) {
	summaryJSON, err := json.Marshal(s)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
	INSERT INTO builds (root, dest, root_id, title, page_count, resource_count, resource_bytes,
		missing_count, output_size, started_at, duration_ms, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query,
		s.Root,
		s.Dest,
		s.RootID.String(),
		s.Title,
		len(s.Pages),
		s.Resources,
		s.ResourceBytes,
		len(s.Missing),
		s.OutputSize,
		s.StartedAt.UTC().Format(timeLayout),
		s.Duration.Milliseconds(),
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save build: %w", err)
	}

	id, err = result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get build id: %w", err)
	}

	pageQuery := `
	INSERT INTO build_pages (build_id, position, page_id, title, size, is_root, is_svg)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for i, p := range s.Pages {
		if _, err = tx.ExecContext(ctx, pageQuery, id, i, p.ID.String(), p.Title, p.Size, p.Root, p.SVG); err != nil {
			return 0, fmt.Errorf("failed to save page %s: %w", p.ID.Short(), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit build: %w", err)
	}
	return id, nil
}

// ListBuilds returns the most recent builds, newest first.
// When root is not empty only builds of that root document are returned.
// A limit <= 0 returns every build.
func (hdb *HistoryDB) ListBuilds(ctx context.Context, root string, limit int) ([]BuildRecord, error) {
	query := `
	SELECT id, root, dest, root_id, title, page_count, resource_count, resource_bytes,
		missing_count, output_size, started_at, duration_ms
	FROM builds
	WHERE (? = '' OR root = ?)
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := hdb.db.QueryContext(ctx, query, root, root, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list builds: %w", err)
	}
	defer rows.Close()

	var records []BuildRecord
	for rows.Next() {
		var (
			rec        BuildRecord
			rootID     string
			title      sql.NullString
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&rec.ID, &rec.Root, &rec.Dest, &rootID, &title, &rec.PageCount,
			&rec.ResourceCount, &rec.ResourceBytes, &rec.MissingCount, &rec.OutputSize,
			&startedAt, &durationMS); err != nil {
			return nil, fmt.Errorf("failed to scan build: %w", err)
		}

		if rec.RootID, err = model.ParsePageID(rootID); err != nil {
			return nil, fmt.Errorf("build %d: %w", rec.ID, err)
		}
		rec.Title = title.String
		rec.StartedAt = parseTimestamp(startedAt)
		rec.Duration = time.Duration(durationMS) * time.Millisecond

		records = append(records, rec)
	}

	return records, rows.Err()
}

// GetBuild returns the full summary stored for a build.
// It returns ErrBuildNotFound when id does not exist.
func (hdb *HistoryDB) GetBuild(ctx context.Context, id int64) (*model.Summary, error) {
	var summaryJSON string
	err := hdb.db.QueryRowContext(ctx, `SELECT summary_json FROM builds WHERE id = ?`, id).Scan(&summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrBuildNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get build: %w", err)
	}

	var s model.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &s); err != nil {
		return nil, fmt.Errorf("failed to parse build %d: %w", id, err)
	}
	return &s, nil
}

// GetBuildPages returns the pages of a build in document order.
// It returns ErrBuildNotFound when id does not exist.
func (hdb *HistoryDB) GetBuildPages(ctx context.Context, id int64) ([]model.PageSummary, error) {
	var exists int
	if err := hdb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM builds WHERE id = ?`, id).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to look up build: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %d", ErrBuildNotFound, id)
	}

	query := `
	SELECT page_id, title, size, is_root, is_svg
	FROM build_pages
	WHERE build_id = ?
	ORDER BY position
	`
	rows, err := hdb.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get build pages: %w", err)
	}
	defer rows.Close()

	pages := make([]model.PageSummary, 0)
	for rows.Next() {
		var (
			p      model.PageSummary
			pageID string
			title  sql.NullString
		)
		if err := rows.Scan(&pageID, &title, &p.Size, &p.Root, &p.SVG); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		if p.ID, err = model.ParsePageID(pageID); err != nil {
			return nil, fmt.Errorf("build %d: %w", id, err)
		}
		p.Title = title.String
		pages = append(pages, p)
	}

	return pages, rows.Err()
}

// LatestBuild returns the most recent build of root, or nil when root has
// never been built.
func (hdb *HistoryDB) LatestBuild(ctx context.Context, root string) (*BuildRecord, error) {
	if root == "" {
		return nil, nil
	}
	records, err := hdb.ListBuilds(ctx, root, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// timestampFormats contains the timestamp formats parseTimestamp accepts.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite default datetime format
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

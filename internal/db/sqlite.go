package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/RichardoC/humaniza/internal/models"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverCGO    = "sqlite3" // github.com/mattn/go-sqlite3
	DriverPureGo = "sqlite"  // modernc.org/sqlite
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    remote_id TEXT,
    user_id TEXT NOT NULL,
    original_text TEXT NOT NULL,
    humanized_text TEXT NOT NULL,
    mode TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_user ON history(user_id);
CREATE INDEX IF NOT EXISTS idx_history_mode ON history(mode);
CREATE INDEX IF NOT EXISTS idx_history_remote ON history(remote_id);
CREATE INDEX IF NOT EXISTS idx_history_created ON history(user_id, created_at);`

type Database struct {
	db     *sql.DB
	driver string
	path   string
}

func New(driver, dbPath string) (*Database, error) {
	if driver == "" {
		driver = DriverCGO
	}
	if driver != DriverCGO && driver != DriverPureGo {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	// Pragmas are per connection; one connection keeps them in force and
	// serialises writers.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Database{db: db, driver: driver, path: dbPath}, nil
}

// Path returns the database file path.
func (db *Database) Path() string {
	return db.path
}

// Driver returns the database/sql driver name in use.
func (db *Database) Driver() string {
	return db.driver
}

// InsertRecord stores rec and fills in its LocalID. A zero CreatedAt is set to now.
func (db *Database) InsertRecord(ctx context.Context, rec *models.HistoryRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	result, err := db.db.ExecContext(ctx, `
        INSERT INTO history (remote_id, user_id, original_text, humanized_text, mode, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		nullString(rec.RemoteID),
		rec.OwnerID,
		rec.SourceText,
		rec.ResultText,
		string(rec.Mode),
		models.FormatTimestamp(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read history record id: %w", err)
	}
	rec.LocalID = id
	return nil
}

// SetRemoteID records the remote identity of a freshly mirrored row.
func (db *Database) SetRemoteID(ctx context.Context, localID int64, remoteID string) error {
	_, err := db.db.ExecContext(ctx, "UPDATE history SET remote_id = ? WHERE id = ?", nullString(remoteID), localID)
	if err != nil {
		return fmt.Errorf("failed to set remote id: %w", err)
	}
	return nil
}

// ListRecords returns the owner's records, newest first.
func (db *Database) ListRecords(ctx context.Context, ownerID string) ([]models.HistoryRecord, error) {
	rows, err := db.db.QueryContext(ctx, `
        SELECT id, remote_id, user_id, original_text, humanized_text, mode, created_at
        FROM history
        WHERE user_id = ?
        ORDER BY created_at DESC, id DESC`, ownerID)
	if err != nil {
		return []models.HistoryRecord{}, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := make([]models.HistoryRecord, 0)
	for rows.Next() {
		var (
			rec       models.HistoryRecord
			remoteID  sql.NullString
			mode      string
			createdAt string
		)
		if err := rows.Scan(&rec.LocalID, &remoteID, &rec.OwnerID, &rec.SourceText, &rec.ResultText, &mode, &createdAt); err != nil {
			return []models.HistoryRecord{}, fmt.Errorf("failed to scan history record: %w", err)
		}
		rec.RemoteID = remoteID.String
		rec.Mode = models.Mode(mode)
		if rec.CreatedAt, err = models.ParseTimestamp(createdAt); err != nil {
			return []models.HistoryRecord{}, fmt.Errorf("record %d has bad created_at %q: %w", rec.LocalID, createdAt, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteRecord removes the owner's row with the given local id, and any of the
// owner's rows carrying remoteID when it is non-empty. Rows of other owners are
// never touched. It returns the number of rows removed.
func (db *Database) DeleteRecord(ctx context.Context, ownerID string, localID int64, remoteID string) (int64, error) {
	result, err := db.db.ExecContext(ctx,
		"DELETE FROM history WHERE user_id = ? AND (id = ? OR (? IS NOT NULL AND remote_id = ?))",
		ownerID, localID, nullString(remoteID), nullString(remoteID))
	if err != nil {
		return 0, fmt.Errorf("failed to delete history record: %w", err)
	}
	return result.RowsAffected()
}

// DeleteRecordsByOwner removes every row for the owner and returns how many went.
func (db *Database) DeleteRecordsByOwner(ctx context.Context, ownerID string) (int64, error) {
	result, err := db.db.ExecContext(ctx, "DELETE FROM history WHERE user_id = ?", ownerID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return result.RowsAffected()
}

// CountRecords returns how many rows the owner has.
func (db *Database) CountRecords(ctx context.Context, ownerID string) (int, error) {
	var n int
	err := db.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history WHERE user_id = ?", ownerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// Close checkpoints the WAL and closes the connection.
func (db *Database) Close() error {
	_, _ = db.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return db.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

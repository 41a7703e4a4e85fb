package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// sortableTime is fixed width so timestamps order lexically.
const sortableTime = "2006-01-02T15:04:05.000000000Z"

// SQLiteArchive persists history entries in a SQLite database.
type SQLiteArchive struct {
	db   *sql.DB
	path string
}

// OpenSQLiteArchive creates (or opens) the database at path.
func OpenSQLiteArchive(ctx context.Context, path string) (*SQLiteArchive, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite archive: %w", err)
	}
	store := &SQLiteArchive{db: db, path: path}
	if err := store.init(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite archive: %w", err)
	}
	return store, nil
}

func (s *SQLiteArchive) init(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		utterance TEXT NOT NULL,
		sub_commands INTEGER NOT NULL,
		succeeded INTEGER NOT NULL,
		body TEXT NOT NULL
	);`)
	return err
}

// Append inserts entries in one transaction. Re-archiving an id replaces it.
func (s *SQLiteArchive) Append(ctx context.Context, entries []domain.HistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO entries
		(id, timestamp, utterance, sub_commands, succeeded, body)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, entry := range entries {
		body, err := json.Marshal(entry)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			entry.ID,
			entry.Timestamp.UTC().Format(sortableTime),
			entry.Utterance,
			len(entry.SubCommands),
			boolToInt(entry.Succeeded()),
			string(body),
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Load returns the last limit entries (all when limit <= 0), oldest first.
func (s *SQLiteArchive) Load(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	query := "SELECT body FROM entries ORDER BY timestamp DESC, id DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var entry domain.HistoryEntry
		if err := json.Unmarshal([]byte(body), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Path returns the sqlite database path.
func (s *SQLiteArchive) Path() string {
	return s.path
}

// Close releases the database handle.
func (s *SQLiteArchive) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryArchive = (*SQLiteArchive)(nil)

// Package sqlite persists shelf snapshots and settings in SQLite, either a
// local file through modernc.org/sqlite or a remote libsql/Turso database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	_ "modernc.org/sqlite"                               // Local SQLite driver

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
)

// collections in snapshot order.
var collections = []string{"active", "archived", "trashed"}

// Store wraps the database connection.
type Store struct {
	db     *sql.DB
	driver string
}

// DriverFor picks the database/sql driver for dsn.
func DriverFor(dsn string) string {
	if strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "wss://") || strings.HasPrefix(dsn, "https://") {
		return "libsql"
	}
	return "sqlite"
}

// Open opens or creates the database at dsn and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver := DriverFor(dsn)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if driver == "sqlite" {
		// One writer at a time; WAL lets readers proceed alongside it.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set wal mode: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	s := &Store{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY,
			collection TEXT NOT NULL,
			position INTEGER NOT NULL,
			url TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			domain TEXT NOT NULL DEFAULT '',
			image_url TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			is_loading INTEGER NOT NULL DEFAULT 0,
			trashed_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookmarks_collection ON bookmarks(collection, position)`,
		`CREATE TABLE IF NOT EXISTS snapshot_meta (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			saved_at TEXT NOT NULL
		)`,
	}
	// libsql remote executes one statement per call.
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Name() string { return s.driver }

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// --- Snapshot Methods ---

// SaveSnapshot replaces every persisted bookmark in one transaction.
func (s *Store) SaveSnapshot(ctx context.Context, snap domain.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM bookmarks"); err != nil {
		return fmt.Errorf("clear bookmarks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO bookmarks
		(id, collection, position, url, title, domain, image_url, description, is_loading, trashed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, list := range [][]domain.Bookmark{snap.Active, snap.Archived, snap.Trashed} {
		for pos, b := range list {
			var trashedAt sql.NullString
			if at, ok := snap.TrashedAt[b.ID]; ok && collections[i] == "trashed" {
				trashedAt = sql.NullString{String: at.UTC().Format(time.RFC3339Nano), Valid: true}
			}
			if _, err := stmt.ExecContext(ctx, b.ID, collections[i], pos, b.URL, b.Title,
				b.Domain, b.ImageURL, b.Description, boolToInt(b.IsLoading), trashedAt); err != nil {
				return fmt.Errorf("insert bookmark %s: %w", b.ID, err)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO snapshot_meta (id, saved_at) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET saved_at = excluded.saved_at",
		time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("stamp snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// LoadSnapshot reads the persisted bookmarks back in collection order.
func (s *Store) LoadSnapshot(ctx context.Context) (domain.Snapshot, bool, error) {
	var savedAt string
	err := s.db.QueryRowContext(ctx, "SELECT saved_at FROM snapshot_meta WHERE id = 1").Scan(&savedAt)
	if err == sql.ErrNoRows {
		return domain.Snapshot{}, false, nil
	}
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("read snapshot meta: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, collection, url, title, domain, image_url,
		description, is_loading, trashed_at FROM bookmarks ORDER BY collection, position`)
	if err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("query bookmarks: %w", err)
	}
	defer rows.Close()

	snap := domain.Snapshot{
		Active:    []domain.Bookmark{},
		Archived:  []domain.Bookmark{},
		Trashed:   []domain.Bookmark{},
		TrashedAt: make(map[string]time.Time),
	}
	for rows.Next() {
		var (
			b          domain.Bookmark
			collection string
			loading    int64
			trashedAt  sql.NullString
		)
		if err := rows.Scan(&b.ID, &collection, &b.URL, &b.Title, &b.Domain, &b.ImageURL,
			&b.Description, &loading, &trashedAt); err != nil {
			return domain.Snapshot{}, false, fmt.Errorf("scan bookmark: %w", err)
		}
		b.IsLoading = loading != 0

		switch collection {
		case "active":
			snap.Active = append(snap.Active, b)
		case "archived":
			snap.Archived = append(snap.Archived, b)
		case "trashed":
			snap.Trashed = append(snap.Trashed, b)
			if trashedAt.Valid {
				if at, err := time.Parse(time.RFC3339Nano, trashedAt.String); err == nil {
					snap.TrashedAt[b.ID] = at
				}
			}
		}
	}
	if err := rows.Err(); err != nil {
		return domain.Snapshot{}, false, fmt.Errorf("iterate bookmarks: %w", err)
	}
	return snap, true, nil
}

// --- Settings Methods ---

// GetSetting retrieves a setting value, "" when unset.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var val string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", key, err)
	}
	return val, nil
}

// SetSetting saves a setting.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}

// DeleteSetting removes a setting.
func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete setting %s: %w", key, err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

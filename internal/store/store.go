// Package store is the SQLite record store shared by every dashboard
// module.
//
// One database file holds all entity tables. Each repository type
// (StagedItems, Meals, ScheduledTasks, Notes, Agents) satisfies the
// Repository interface declared by its domain package. Repositories return
// raw driver errors and signal missing records through their results; the
// domain services translate both into the apperr taxonomy.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DBFile is the database file name inside the data directory.
const DBFile = "mission-control.db"

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Config holds record store configuration.
type Config struct {
	DataDir string
}

// DB owns the SQLite connection and hands out repositories.
type DB struct {
	db    *sql.DB
	hooks storeHooks
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type storeHooks struct {
	exec    func(ctx context.Context, db execer, query string, args ...any) (sql.Result, error)
	query   func(ctx context.Context, db queryer, query string, args ...any) (*sql.Rows, error)
	beginTx func(ctx context.Context, db *sql.DB) (*sql.Tx, error)
	commit  func(tx *sql.Tx) error
}

func (s *DB) execHook(ctx context.Context, db execer, query string, args ...any) (sql.Result, error) {
	if s.hooks.exec != nil {
		return s.hooks.exec(ctx, db, query, args...)
	}
	return db.ExecContext(ctx, query, args...)
}

func (s *DB) queryHook(ctx context.Context, db queryer, query string, args ...any) (*sql.Rows, error) {
	if s.hooks.query != nil {
		return s.hooks.query(ctx, db, query, args...)
	}
	return db.QueryContext(ctx, query, args...)
}

func (s *DB) beginTxHook(ctx context.Context) (*sql.Tx, error) {
	if s.hooks.beginTx != nil {
		return s.hooks.beginTx(ctx, s.db)
	}
	return s.db.BeginTx(ctx, nil)
}

func (s *DB) commitHook(tx *sql.Tx) error {
	if s.hooks.commit != nil {
		return s.hooks.commit(tx)
	}
	return tx.Commit()
}

// Open creates the data directory if needed, opens SQLite in WAL mode and
// runs the migrations.
func Open(cfg Config) (*DB, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(cfg.DataDir, DBFile))
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}

	s := &DB{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *DB) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *DB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *DB) StagedItems() *StagedItems       { return &StagedItems{s: s} }
func (s *DB) Meals() *Meals                   { return &Meals{s: s} }
func (s *DB) ScheduledTasks() *ScheduledTasks { return &ScheduledTasks{s: s} }
func (s *DB) Notes() *Notes                   { return &Notes{s: s} }
func (s *DB) Agents() *Agents                 { return &Agents{s: s} }

// ─── Migrations ──────────────────────────────────────────────────────────────

func (s *DB) migrate(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS staged_items (
			id         TEXT PRIMARY KEY,
			kind       TEXT    NOT NULL,
			title      TEXT    NOT NULL,
			stage      TEXT    NOT NULL,
			attrs      TEXT    NOT NULL DEFAULT '{}',
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_items_stage   ON staged_items(kind, stage);
		CREATE INDEX IF NOT EXISTS idx_items_created ON staged_items(kind, created_at DESC);

		CREATE TABLE IF NOT EXISTS scheduled_tasks (
			id           TEXT PRIMARY KEY,
			title        TEXT    NOT NULL,
			scheduled_at INTEGER NOT NULL,
			recurrence   TEXT,
			completed    INTEGER NOT NULL DEFAULT 0,
			created_at   INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_sched_at ON scheduled_tasks(scheduled_at);

		CREATE TABLE IF NOT EXISTS notes (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT    NOT NULL UNIQUE,
			title      TEXT    NOT NULL,
			content    TEXT    NOT NULL,
			date       TEXT    NOT NULL,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_notes_date ON notes(date);

		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			title,
			content,
			content='notes',
			content_rowid='seq'
		);

		CREATE TABLE IF NOT EXISTS agents (
			id               TEXT PRIMARY KEY,
			name             TEXT    NOT NULL,
			role             TEXT    NOT NULL,
			responsibilities TEXT    NOT NULL DEFAULT '[]',
			status           TEXT    NOT NULL,
			avatar           TEXT,
			created_at       INTEGER NOT NULL,
			updated_at       INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_agents_status ON agents(status);

		CREATE TABLE IF NOT EXISTS meals (
			id          TEXT PRIMARY KEY,
			name        TEXT    NOT NULL,
			chef        TEXT,
			last_served INTEGER NOT NULL,
			created_at  INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_meals_name ON meals(name);

		CREATE TABLE IF NOT EXISTS meal_ratings (
			id         TEXT PRIMARY KEY,
			meal_id    TEXT    NOT NULL,
			date       TEXT    NOT NULL,
			chef       TEXT,
			ratings    TEXT    NOT NULL DEFAULT '{}',
			comments   TEXT,
			created_at INTEGER NOT NULL,
			FOREIGN KEY (meal_id) REFERENCES meals(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_ratings_meal    ON meal_ratings(meal_id);
		CREATE INDEX IF NOT EXISTS idx_ratings_created ON meal_ratings(created_at DESC);

		CREATE TRIGGER IF NOT EXISTS notes_fts_insert AFTER INSERT ON notes BEGIN
			INSERT INTO notes_fts(rowid, title, content)
			VALUES (new.seq, new.title, new.content);
		END;

		CREATE TRIGGER IF NOT EXISTS notes_fts_delete AFTER DELETE ON notes BEGIN
			INSERT INTO notes_fts(notes_fts, rowid, title, content)
			VALUES ('delete', old.seq, old.title, old.content);
		END;

		CREATE TRIGGER IF NOT EXISTS notes_fts_update AFTER UPDATE ON notes BEGIN
			INSERT INTO notes_fts(notes_fts, rowid, title, content)
			VALUES ('delete', old.seq, old.title, old.content);
			INSERT INTO notes_fts(rowid, title, content)
			VALUES (new.seq, new.title, new.content);
		END;
	`
	_, err := s.execHook(ctx, s.db, schema)
	return err
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// nullString maps "" to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// optional maps a nil pointer to SQL NULL, for COALESCE-style patches.
func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// affected reports whether res touched at least one row.
func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// rollback is deferred by every transaction; after a successful commit it
// is a no-op.
func rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}

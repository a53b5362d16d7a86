// Package sqlite implements the repository interfaces on an embedded SQLite
// database (modernc.org/sqlite, pure Go, no cgo).
//
// Each collection is one table. Sub-lists of a document are stored as JSON
// text columns and always read and written whole, so a document round-trips
// exactly. Timestamps are stored as Unix nanoseconds to keep ordering exact.
//
//	db, err := sqlite.New("data/devlink.db") // or ":memory:" in tests
//	if err != nil { ... }
//	defer db.Close()
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/devlink/internal/repository"
)

// DB owns the connection pool and hands out one repository per collection.
type DB struct {
	conn *sql.DB
}

var _ repository.Store = (*DB)(nil)

// New opens (creating if needed) the database at dbPath and runs the
// migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every connection to ":memory:" is a separate, empty database.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

func (db *DB) Users() repository.UserRepository { return &UserStore{conn: db.conn} }
func (db *DB) Profiles() repository.ProfileRepository { return &ProfileStore{conn: db.conn} }
func (db *DB) Posts() repository.PostRepository { return &PostStore{conn: db.conn} }

// migrate creates the collections. There are no foreign keys: a profile or
// post may outlive its user.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			avatar     TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS profiles (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL UNIQUE,
			company        TEXT NOT NULL DEFAULT '',
			website        TEXT NOT NULL DEFAULT '',
			location       TEXT NOT NULL DEFAULT '',
			bio            TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL DEFAULT '',
			githubusername TEXT NOT NULL DEFAULT '',
			skills         TEXT NOT NULL DEFAULT '[]',
			social         TEXT NOT NULL DEFAULT 'null',
			experience     TEXT NOT NULL DEFAULT '[]',
			education      TEXT NOT NULL DEFAULT '[]',
			created_at     INTEGER NOT NULL,
			updated_at     INTEGER NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating profiles table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			text       TEXT NOT NULL,
			name       TEXT NOT NULL DEFAULT '',
			avatar     TEXT NOT NULL DEFAULT '',
			likes      TEXT NOT NULL DEFAULT '[]',
			comments   TEXT NOT NULL DEFAULT '[]',
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
		CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n)
}

// encode marshals a sub-document for a JSON text column.
func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// decode unmarshals a JSON text column into dst.
func decode(src string, dst any) error {
	if src == "" {
		return nil
	}
	return json.Unmarshal([]byte(src), dst)
}

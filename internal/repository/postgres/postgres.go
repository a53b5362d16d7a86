// Package postgres implements the repository interfaces on PostgreSQL through
// a pgx connection pool. Sub-lists are JSONB columns that pgx marshals to and
// from the model types directly.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakif/devlink/internal/repository"
)

const uniqueViolation = "23505"

// DB owns the pool and hands out one repository per collection.
type DB struct {
	pool *pgxpool.Pool
}

var _ repository.Store = (*DB)(nil)

// New connects to dsn, verifies the connection and creates the tables.
func New(ctx context.Context, dsn string, maxConns int32) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	db := &DB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

func (db *DB) Users() repository.UserRepository { return &UserStore{pool: db.pool} }
func (db *DB) Profiles() repository.ProfileRepository { return &ProfileStore{pool: db.pool} }
func (db *DB) Posts() repository.PostRepository { return &PostStore{pool: db.pool} }

func (db *DB) migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			avatar     TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS profiles (
			id             TEXT PRIMARY KEY,
			user_id        TEXT NOT NULL UNIQUE,
			company        TEXT NOT NULL DEFAULT '',
			website        TEXT NOT NULL DEFAULT '',
			location       TEXT NOT NULL DEFAULT '',
			bio            TEXT NOT NULL DEFAULT '',
			status         TEXT NOT NULL DEFAULT '',
			githubusername TEXT NOT NULL DEFAULT '',
			skills         JSONB NOT NULL DEFAULT '[]',
			social         JSONB,
			experience     JSONB NOT NULL DEFAULT '[]',
			education      JSONB NOT NULL DEFAULT '[]',
			created_at     TIMESTAMPTZ NOT NULL,
			updated_at     TIMESTAMPTZ NOT NULL
		);

		CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			text       TEXT NOT NULL,
			name       TEXT NOT NULL DEFAULT '',
			avatar     TEXT NOT NULL DEFAULT '',
			likes      JSONB NOT NULL DEFAULT '[]',
			comments   JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
		CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts(user_id);
	`)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

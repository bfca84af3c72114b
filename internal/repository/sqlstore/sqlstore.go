// Package sqlstore implements the repository interfaces on top of
// database/sql through sqlx.
//
// Two drivers are supported:
//   - "sqlite"   → modernc.org/sqlite, a pure Go build of SQLite (the default;
//     use ":memory:" for tests)
//   - "postgres" → github.com/lib/pq
//
// Queries are written with ? placeholders and passed through Rebind, which
// rewrites them to $1, $2, ... for postgres. The schema uses only types and
// constraints both engines understand.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DB owns the connection pool. The per-table stores returned by Users,
// Posts and Comments share it.
type DB struct {
	conn *sqlx.DB
}

// New opens the database, applies connection settings and runs migrations.
func New(driver, dsn string) (*DB, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}

	conn, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: pinging database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite serializes writers anyway, and PRAGMAs are per connection:
		// one connection keeps foreign_keys on for every statement and keeps
		// ":memory:" databases from splitting into one per connection.
		conn.SetMaxOpenConns(1)

		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlstore: setting WAL mode: %w", err)
		}
		if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("sqlstore: enabling foreign keys: %w", err)
		}
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlstore: running migrations: %w", err)
	}

	return db, nil
}

// NewWithConn wraps an already open connection without migrating it.
// Tests use it to put a sqlmock connection behind the stores.
func NewWithConn(conn *sql.DB, driver string) *DB {
	return &DB{conn: sqlx.NewDb(conn, driver)}
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Users returns the user store.
func (db *DB) Users() *UserDB { return &UserDB{conn: db.conn} }

// Posts returns the post store.
func (db *DB) Posts() *PostDB { return &PostDB{conn: db.conn} }

// Comments returns the comment store.
func (db *DB) Comments() *CommentDB { return &CommentDB{conn: db.conn} }

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		username      VARCHAR(50) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id         TEXT PRIMARY KEY,
		title      VARCHAR(100) NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		author_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_title ON posts(title)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id)`,
	`CREATE TABLE IF NOT EXISTS comments (
		id         TEXT PRIMARY KEY,
		text       TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		post_id    TEXT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		author_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_post_author ON comments(post_id, author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_author_id ON comments(author_id)`,
}

// migrate creates missing tables and indexes. Every statement is idempotent.
func (db *DB) migrate() error {
	for i, stmt := range schema {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}

// isUniqueViolation reports whether err comes from a UNIQUE constraint,
// for either driver.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// checkAffected turns a zero-row UPDATE or DELETE into a NotFound error.
func checkAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmgilet-svg/LOCATION-sub000/internal/persistence"
	_ "modernc.org/sqlite"
)

// ConnectionPool manages SQLite database connections with transaction support.
type ConnectionPool struct {
	db *sql.DB
}

// NewConnectionPool opens a SQLite database for the provided DSN and applies
// the planner schema. modernc.org/sqlite is pure Go, so an in-memory DSN
// ("file::memory:?cache=shared") works in any environment.
func NewConnectionPool(dsn string) (*ConnectionPool, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids spurious
	// SQLITE_BUSY under concurrent commits.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	pool := &ConnectionPool{db: db}
	if err := pool.applySchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return pool, nil
}

// DB returns the underlying database handle.
func (cp *ConnectionPool) DB() *sql.DB {
	return cp.db
}

// Close closes the connection pool.
func (cp *ConnectionPool) Close() error {
	if cp.db != nil {
		return cp.db.Close()
	}
	return nil
}

// Ping tests the database connection.
func (cp *ConnectionPool) Ping(ctx context.Context) error {
	return cp.db.PingContext(ctx)
}

// TransactionFunc represents a function executed within a transaction.
type TransactionFunc func(tx *sql.Tx) error

// WithTransaction executes fn inside a transaction, rolling back when fn
// returns an error and committing otherwise.
func (cp *ConnectionPool) WithTransaction(ctx context.Context, fn TransactionFunc) error {
	tx, err := cp.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// mapError translates SQLite driver errors into persistence sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return persistence.ErrNotFound
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return persistence.ErrDuplicate
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return persistence.ErrForeignKeyViolation
	case strings.Contains(msg, "CHECK constraint failed"):
		return persistence.ErrConstraintViolation
	}
	return err
}

// Package repository provides data access for cards, decks and matches.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ErrNotFound is returned by updates that match no row.
var ErrNotFound = errors.New("not found")

// DBTX is satisfied by both *sql.DB and *sql.Tx, so a repository can run
// inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

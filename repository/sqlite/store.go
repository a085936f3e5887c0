// Package sqlite implements the repository ports on an embedded SQLite database.
//
// Transactions begin with BEGIN IMMEDIATE (see infrastructure/sqlite), so a
// writer holds the database lock from its first statement and container locks
// reduce to existence checks.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/fastygo/kanban/repository"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type store struct {
	db *sql.DB
}

// NewStore returns a SQLite-backed Store.
func NewStore(db *sql.DB) repository.Store {
	return &store{db: db}
}

func (s *store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(ctx, &txRepositories{q: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

type txRepositories struct {
	q querier
}

func (t *txRepositories) Users() repository.UserRepository     { return &userRepository{q: t.q} }
func (t *txRepositories) Boards() repository.BoardRepository   { return &boardRepository{q: t.q} }
func (t *txRepositories) Members() repository.MemberRepository { return &memberRepository{q: t.q} }
func (t *txRepositories) Columns() repository.ColumnRepository { return &columnRepository{q: t.q} }
func (t *txRepositories) Tasks() repository.TaskRepository     { return &taskRepository{q: t.q} }

// uniqueViolation reports the "table.column" list of a failed UNIQUE constraint.
func uniqueViolation(err error) (string, bool) {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return strings.TrimPrefix(sqliteErr.Error(), "UNIQUE constraint failed: "), true
	}
	return "", false
}

func exists(ctx context.Context, q querier, query, id string, notFound error) error {
	var found string
	if err := q.QueryRowContext(ctx, query, id).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound
		}
		return err
	}
	return nil
}

func affected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}

type rowScanner interface {
	Scan(dest ...any) error
}

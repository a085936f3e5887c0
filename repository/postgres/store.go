package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/kanban/repository"
)

const (
	uniqueViolation   = "23505"
	invalidTextFormat = "22P02"
)

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type store struct {
	pool *pgxpool.Pool
}

// NewStore returns a Postgres-backed Store. Transactions run at read committed;
// containers are serialized with row locks on their parent rows.
func NewStore(pool *pgxpool.Pool) repository.Store {
	return &store{pool: pool}
}

func (s *store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(context.WithoutCancel(ctx))
	}()

	if err := fn(ctx, &txRepositories{q: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type txRepositories struct {
	q querier
}

func (t *txRepositories) Users() repository.UserRepository     { return &userRepository{q: t.q} }
func (t *txRepositories) Boards() repository.BoardRepository   { return &boardRepository{q: t.q} }
func (t *txRepositories) Members() repository.MemberRepository { return &memberRepository{q: t.q} }
func (t *txRepositories) Columns() repository.ColumnRepository { return &columnRepository{q: t.q} }
func (t *txRepositories) Tasks() repository.TaskRepository     { return &taskRepository{q: t.q} }

func uniqueConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// missingRow reports whether a lookup found nothing. An id that is not a valid
// UUID cannot name any row, so the cast failure counts as not found.
func missingRow(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == invalidTextFormat
}

// lockRow takes a row lock on the container row identified by id. Callers lock
// FOR NO KEY UPDATE: it serializes ledger writers on the container but does not
// conflict with the KEY SHARE locks foreign-key checks take on the same row.
func lockRow(ctx context.Context, q querier, query, id string, notFound error) error {
	var locked string
	if err := q.QueryRow(ctx, query, id).Scan(&locked); err != nil {
		if missingRow(err) {
			return notFound
		}
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

package repository

import (
	"context"

	"github.com/fastygo/kanban/domain"
)

// Store runs units of work against the relational store. fn's changes are
// committed together when it returns nil and rolled back otherwise.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes repositories bound to one open transaction.
type Tx interface {
	Users() UserRepository
	Boards() BoardRepository
	Members() MemberRepository
	Columns() ColumnRepository
	Tasks() TaskRepository
}

// Sequence is an ordered container of items with contiguous positions.
// Columns are sequenced per board, tasks per column.
type Sequence interface {
	// Lock serializes concurrent writers of the container for the rest of the
	// transaction. It fails with a NOT_FOUND error when the container is absent.
	Lock(ctx context.Context, container string) error
	Count(ctx context.Context, container string) (int, error)
	Shift(ctx context.Context, shift domain.Shift) error
}

package usecase

import (
	"context"

	"github.com/fastygo/kanban/repository"
)

// Resolver maps column and task ids back to the board that owns them, so the
// caller can resolve a membership before invoking a board-scoped operation.
type Resolver struct {
	store repository.Store
}

func NewResolver(store repository.Store) *Resolver {
	return &Resolver{store: store}
}

// BoardOfColumn fails with ErrColumnNotFound when the column is absent.
func (r *Resolver) BoardOfColumn(ctx context.Context, columnID string) (string, error) {
	var boardID string
	err := r.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		column, err := tx.Columns().GetByID(ctx, columnID)
		if err != nil {
			return err
		}
		boardID = column.BoardID
		return nil
	})
	return boardID, err
}

// BoardOfTask fails with ErrTaskNotFound when the task is absent.
func (r *Resolver) BoardOfTask(ctx context.Context, taskID string) (string, error) {
	var boardID string
	err := r.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		task, err := tx.Tasks().GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		boardID = task.BoardID
		return nil
	})
	return boardID, err
}

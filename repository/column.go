package repository

import (
	"context"

	"github.com/fastygo/kanban/domain"
)

// ColumnRepository sequences columns by board id.
type ColumnRepository interface {
	Sequence
	GetByID(ctx context.Context, id string) (*domain.Column, error)
	ListByBoard(ctx context.Context, boardID string) ([]domain.Column, error)
	Create(ctx context.Context, column *domain.Column) error
	Update(ctx context.Context, column *domain.Column) error
	// Delete removes the column and its tasks.
	Delete(ctx context.Context, id string) error
}

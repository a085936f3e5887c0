package repository

import (
	"context"

	"github.com/fastygo/kanban/domain"
)

// TaskRepository sequences tasks by column id.
type TaskRepository interface {
	Sequence
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByBoard(ctx context.Context, boardID string) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id string) error
}

package repository

import (
	"context"

	"github.com/fastygo/kanban/domain"
)

// SessionRepository stores sessions until their ExpiresAt; Save replaces the whole record.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}

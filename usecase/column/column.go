// Package column orders the columns of a board and keeps their positions contiguous.
package column

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
	"github.com/fastygo/kanban/usecase/ledger"
	"github.com/fastygo/kanban/usecase/membership"
)

// UpdateInput carries the optional changes of an update. Nil fields are left as they are.
type UpdateInput struct {
	Title    *string
	Position *int
}

type UseCase struct {
	store  repository.Store
	ledger *ledger.Ledger
	cache  repository.BoardCache
	logger *zap.Logger
}

func New(store repository.Store, positions *ledger.Ledger, cache repository.BoardCache, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if positions == nil {
		positions = ledger.New(logger)
	}
	if cache == nil {
		cache = repository.NopBoardCache{}
	}
	return &UseCase{
		store:  store,
		ledger: positions,
		cache:  cache,
		logger: logger,
	}
}

// Create appends a column to the end of m's board.
func (uc *UseCase) Create(ctx context.Context, m *domain.BoardMember, title string) (*domain.Column, error) {
	if m == nil {
		return nil, domain.ErrNotMember
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "title is required", domain.ErrInvalidPayload)
	}

	var column *domain.Column
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		columns := tx.Columns()
		if err := uc.ledger.Lock(ctx, columns, m.BoardID); err != nil {
			return err
		}
		at, err := uc.ledger.Append(ctx, columns, m.BoardID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		column = &domain.Column{
			ID:        uuid.NewString(),
			BoardID:   m.BoardID,
			Title:     title,
			Position:  at.Position,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return columns.Create(ctx, column)
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Evict(ctx, m.BoardID)
	uc.logger.Info("column created",
		zap.String("board_id", column.BoardID),
		zap.String("column_id", column.ID),
		zap.Int("position", column.Position))
	return column, nil
}

// Update renames and/or reorders a column. Reordering shifts the columns in
// between so the board keeps positions 0..n-1.
func (uc *UseCase) Update(ctx context.Context, m *domain.BoardMember, columnID string, in UpdateInput) (*domain.Column, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "title must not be empty", domain.ErrInvalidPayload)
		}
		in.Title = &title
	}

	var (
		column  *domain.Column
		changed bool
	)
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		columns := tx.Columns()
		current, err := columns.GetByID(ctx, columnID)
		if err != nil {
			return err
		}
		if err := membership.RequireBoard(m, current.BoardID); err != nil {
			return err
		}
		if err := uc.ledger.Lock(ctx, columns, current.BoardID); err != nil {
			return err
		}
		if current, err = columns.GetByID(ctx, columnID); err != nil {
			return err
		}
		column = current

		if in.Position != nil && *in.Position != column.Position {
			plan, err := uc.ledger.Move(ctx, columns, column.Placement(), domain.Placement{
				Container: column.BoardID,
				Position:  *in.Position,
			})
			if err != nil {
				return err
			}
			column.Position = plan.Target.Position
			changed = true
		}
		if in.Title != nil && *in.Title != column.Title {
			column.Title = *in.Title
			changed = true
		}
		if !changed {
			return nil
		}

		column.UpdatedAt = time.Now().UTC()
		return columns.Update(ctx, column)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		uc.cache.Evict(ctx, column.BoardID)
		uc.logger.Info("column updated",
			zap.String("board_id", column.BoardID),
			zap.String("column_id", column.ID),
			zap.Int("position", column.Position))
	}
	return column, nil
}

// Delete removes a column with its tasks and closes the gap among its siblings. Owner only.
func (uc *UseCase) Delete(ctx context.Context, m *domain.BoardMember, columnID string) error {
	if err := membership.RequireRole(m, domain.RoleOwner); err != nil {
		return err
	}

	var boardID string
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		columns := tx.Columns()
		column, err := columns.GetByID(ctx, columnID)
		if err != nil {
			return err
		}
		if err := membership.RequireBoard(m, column.BoardID); err != nil {
			return err
		}
		if err := uc.ledger.Lock(ctx, columns, column.BoardID); err != nil {
			return err
		}
		if column, err = columns.GetByID(ctx, columnID); err != nil {
			return err
		}
		boardID = column.BoardID

		if err := columns.Delete(ctx, column.ID); err != nil {
			return err
		}
		return uc.ledger.Remove(ctx, columns, column.Placement())
	})
	if err != nil {
		return err
	}

	uc.cache.Evict(ctx, boardID)
	uc.logger.Info("column deleted", zap.String("board_id", boardID), zap.String("column_id", columnID))
	return nil
}

// List returns the columns of m's board ordered by position.
func (uc *UseCase) List(ctx context.Context, m *domain.BoardMember) ([]domain.Column, error) {
	if m == nil {
		return nil, domain.ErrNotMember
	}

	var columns []domain.Column
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		columns, err = tx.Columns().ListByBoard(ctx, m.BoardID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if columns == nil {
		columns = []domain.Column{}
	}
	return columns, nil
}

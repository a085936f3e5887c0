package board

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
	"github.com/fastygo/kanban/usecase/membership"
)

type UseCase struct {
	store  repository.Store
	cache  repository.BoardCache
	logger *zap.Logger
}

func New(store repository.Store, cache repository.BoardCache, logger *zap.Logger) *UseCase {
	if cache == nil {
		cache = repository.NopBoardCache{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Create stores a board together with the creator's OWNER membership.
func (uc *UseCase) Create(ctx context.Context, userID, title string) (*domain.Board, *domain.BoardMember, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil, domain.WrapError(domain.ErrCodeInvalid, "title is required", domain.ErrInvalidPayload)
	}

	now := time.Now().UTC()
	board := &domain.Board{
		ID:        uuid.NewString(),
		Title:     title,
		OwnerID:   userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	owner := &domain.BoardMember{
		ID:        uuid.NewString(),
		BoardID:   board.ID,
		UserID:    userID,
		Role:      domain.RoleOwner,
		CreatedAt: now,
	}

	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		owner.Email, owner.Name = user.Email, user.Name

		if err := tx.Boards().Create(ctx, board); err != nil {
			return err
		}
		return tx.Members().Create(ctx, owner)
	})
	if err != nil {
		return nil, nil, err
	}

	uc.logger.Info("board created", zap.String("board_id", board.ID), zap.String("owner_id", userID))
	return board, owner, nil
}

// List returns the boards userID is a member of, oldest first.
func (uc *UseCase) List(ctx context.Context, userID string) ([]domain.Board, error) {
	var boards []domain.Board
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		boards, err = tx.Boards().ListForUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if boards == nil {
		boards = []domain.Board{}
	}
	return boards, nil
}

// Get assembles the full view of m's board, serving it from the cache when possible.
func (uc *UseCase) Get(ctx context.Context, m *domain.BoardMember) (*domain.BoardView, error) {
	if m == nil {
		return nil, domain.ErrNotMember
	}
	// The generation is read before the store so that a mutation committed
	// while the view loads keeps it out of the cache.
	cached, generation, ok := uc.cache.Get(ctx, m.BoardID)
	if ok {
		return cached, nil
	}

	view := &domain.BoardView{}
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		board, err := tx.Boards().GetByID(ctx, m.BoardID)
		if err != nil {
			return err
		}
		view.Board = *board

		if view.Columns, err = tx.Columns().ListByBoard(ctx, m.BoardID); err != nil {
			return err
		}
		if view.Tasks, err = tx.Tasks().ListByBoard(ctx, m.BoardID); err != nil {
			return err
		}
		view.Members, err = tx.Members().List(ctx, m.BoardID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if view.Columns == nil {
		view.Columns = []domain.Column{}
	}
	if view.Tasks == nil {
		view.Tasks = []domain.Task{}
	}
	if view.Members == nil {
		view.Members = []domain.BoardMember{}
	}

	uc.cache.Set(ctx, view, generation)
	return view, nil
}

// Delete removes m's board with its columns, tasks and memberships. Owner only.
func (uc *UseCase) Delete(ctx context.Context, m *domain.BoardMember) error {
	if err := membership.RequireRole(m, domain.RoleOwner); err != nil {
		return err
	}

	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.Boards().Delete(ctx, m.BoardID)
	})
	if err != nil {
		return err
	}

	uc.cache.Evict(ctx, m.BoardID)
	uc.logger.Info("board deleted", zap.String("board_id", m.BoardID), zap.String("user_id", m.UserID))
	return nil
}

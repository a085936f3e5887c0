// Package membership decides who may act on a board and at what role.
package membership

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
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

// Resolve returns userID's membership of boardID. It fails with ErrBoardNotFound
// when the board is absent and ErrNotMember when the user has no membership.
func (uc *UseCase) Resolve(ctx context.Context, boardID, userID string) (*domain.BoardMember, error) {
	var member *domain.BoardMember
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.Boards().GetByID(ctx, boardID); err != nil {
			return err
		}
		m, err := tx.Members().Get(ctx, boardID, userID)
		if err != nil {
			return err
		}
		member = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// RequireRole fails with a FORBIDDEN error unless m holds role.
func RequireRole(m *domain.BoardMember, role domain.Role) error {
	if m == nil {
		return domain.ErrNotMember
	}
	if !m.HasRole(role) {
		if role == domain.RoleOwner {
			return domain.ErrOwnerRequired
		}
		return domain.NewError(domain.ErrCodeForbidden, "requires "+string(role)+" role")
	}
	return nil
}

// RequireBoard fails with a FORBIDDEN error unless m grants access to boardID.
func RequireBoard(m *domain.BoardMember, boardID string) error {
	if m == nil {
		return domain.ErrNotMember
	}
	if !m.Covers(boardID) {
		return domain.ErrForeignBoard
	}
	return nil
}

// AddMember invites the user registered under email to the actor's board.
// An empty role means MEMBER; OWNER can never be granted after creation.
func (uc *UseCase) AddMember(ctx context.Context, actor *domain.BoardMember, email string, role domain.Role) (*domain.BoardMember, error) {
	if err := RequireRole(actor, domain.RoleOwner); err != nil {
		return nil, err
	}
	if role == "" {
		role = domain.RoleMember
	}
	if role != domain.RoleMember && role != domain.RoleOwner {
		return nil, domain.ErrInvalidRole
	}

	var member *domain.BoardMember
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.Boards().GetByID(ctx, actor.BoardID); err != nil {
			return err
		}
		user, err := tx.Users().GetByEmail(ctx, domain.NormalizeEmail(email))
		if err != nil {
			return err
		}

		_, err = tx.Members().Get(ctx, actor.BoardID, user.ID)
		switch {
		case err == nil:
			return domain.ErrAlreadyMember
		case !errors.Is(err, domain.ErrNotMember):
			return err
		}

		if role == domain.RoleOwner {
			return domain.ErrOwnerRoleNotAssignable
		}

		member = &domain.BoardMember{
			ID:        uuid.NewString(),
			BoardID:   actor.BoardID,
			UserID:    user.ID,
			Role:      role,
			Email:     user.Email,
			Name:      user.Name,
			CreatedAt: time.Now().UTC(),
		}
		return tx.Members().Create(ctx, member)
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Evict(ctx, actor.BoardID)
	uc.logger.Info("board member added",
		zap.String("board_id", member.BoardID),
		zap.String("user_id", member.UserID),
		zap.String("role", string(member.Role)))
	return member, nil
}

// ListMembers returns every membership of m's board.
func (uc *UseCase) ListMembers(ctx context.Context, m *domain.BoardMember) ([]domain.BoardMember, error) {
	if m == nil {
		return nil, domain.ErrNotMember
	}

	var members []domain.BoardMember
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		members, err = tx.Members().List(ctx, m.BoardID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []domain.BoardMember{}
	}
	return members, nil
}

package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
)

// UpdateInput carries the optional profile changes. Nil fields are left as they are.
type UpdateInput struct {
	Name      *string
	AvatarURL *string
}

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

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	var user *domain.User
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		user, err = tx.Users().GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *UseCase) UpdateProfile(ctx context.Context, userID string, in UpdateInput) (*domain.User, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "name must not be empty", domain.ErrInvalidPayload)
	}

	var (
		user   *domain.User
		boards []domain.Board
	)
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		if user, err = tx.Users().GetByID(ctx, userID); err != nil {
			return err
		}
		if in.Name != nil {
			user.Name = strings.TrimSpace(*in.Name)
		}
		if in.AvatarURL != nil {
			user.AvatarURL = strings.TrimSpace(*in.AvatarURL)
		}
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		// Cached board views embed member names.
		boards, err = tx.Boards().ListForUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	for _, b := range boards {
		uc.cache.Evict(ctx, b.ID)
	}
	uc.logger.Info("profile updated", zap.String("user_id", userID), zap.Int("boards", len(boards)))
	return user, nil
}

package handler

import (
	"context"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/usecase"
	membershipUC "github.com/fastygo/kanban/usecase/membership"
)

// boardScope resolves the caller's membership of the board a request targets,
// directly or through the column or task named in the path.
type boardScope struct {
	members  *membershipUC.UseCase
	resolver *usecase.Resolver
}

func (s boardScope) forBoard(ctx context.Context, boardID, userID string) (*domain.BoardMember, error) {
	if boardID == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "missing board id", domain.ErrInvalidPayload)
	}
	return s.members.Resolve(ctx, boardID, userID)
}

func (s boardScope) forColumn(ctx context.Context, columnID, userID string) (*domain.BoardMember, error) {
	boardID, err := s.resolver.BoardOfColumn(ctx, columnID)
	if err != nil {
		return nil, err
	}
	return s.members.Resolve(ctx, boardID, userID)
}

func (s boardScope) forTask(ctx context.Context, taskID, userID string) (*domain.BoardMember, error) {
	boardID, err := s.resolver.BoardOfTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return s.members.Resolve(ctx, boardID, userID)
}

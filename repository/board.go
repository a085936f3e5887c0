package repository

import (
	"context"

	"github.com/fastygo/kanban/domain"
)

type BoardRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Board, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Board, error)
	Create(ctx context.Context, board *domain.Board) error
	// Delete removes the board together with its tasks, columns and memberships.
	Delete(ctx context.Context, id string) error
}

type MemberRepository interface {
	Get(ctx context.Context, boardID, userID string) (*domain.BoardMember, error)
	List(ctx context.Context, boardID string) ([]domain.BoardMember, error)
	Create(ctx context.Context, member *domain.BoardMember) error
}

// NoGeneration marks a cache read whose generation is unknown; views loaded
// after it are not stored.
const NoGeneration int64 = -1

// BoardCache keeps assembled board views close to the API. A miss reports the
// board's current generation; Set stores a view only while that generation
// still holds, so a view loaded before an Evict is never cached after it.
type BoardCache interface {
	Get(ctx context.Context, boardID string) (view *domain.BoardView, generation int64, ok bool)
	Set(ctx context.Context, view *domain.BoardView, generation int64)
	Evict(ctx context.Context, boardID string)
}

// NopBoardCache never holds anything. It stands in when the cache is disabled.
type NopBoardCache struct{}

func (NopBoardCache) Get(context.Context, string) (*domain.BoardView, int64, bool) {
	return nil, NoGeneration, false
}
func (NopBoardCache) Set(context.Context, *domain.BoardView, int64) {}
func (NopBoardCache) Evict(context.Context, string)                 {}

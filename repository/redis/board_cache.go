package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
)

// generationTTL outlives any board read in flight; an expired counter reads as 0.
const generationTTL = 24 * time.Hour

// setIfGeneration stores the view only while the board's generation counter
// still holds the value observed before the view was loaded.
var setIfGeneration = redislib.NewScript(`
local current = redis.call('GET', KEYS[2])
if not current then
	current = '0'
end
if current ~= ARGV[2] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

type boardCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewBoardCache stores assembled board views under "board:<id>" next to a
// generation counter "board:<id>:gen" that every eviction bumps. A failing
// Redis never fails the caller: reads miss and writes are dropped.
func NewBoardCache(client *redislib.Client, ttl time.Duration, logger *zap.Logger) repository.BoardCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &boardCache{
		client: client,
		prefix: "board:",
		ttl:    ttl,
		logger: logger,
	}
}

func (c *boardCache) Get(ctx context.Context, boardID string) (*domain.BoardView, int64, bool) {
	var viewCmd, genCmd *redislib.StringCmd
	_, err := c.client.Pipelined(ctx, func(pipe redislib.Pipeliner) error {
		viewCmd = pipe.Get(ctx, c.key(boardID))
		genCmd = pipe.Get(ctx, c.generationKey(boardID))
		return nil
	})
	if err != nil && !errors.Is(err, redislib.Nil) {
		c.logger.Warn("board cache read failed", zap.String("board_id", boardID), zap.Error(err))
		return nil, repository.NoGeneration, false
	}

	generation, err := genCmd.Int64()
	if errors.Is(err, redislib.Nil) {
		generation = 0
	} else if err != nil {
		c.logger.Warn("board cache generation unreadable", zap.String("board_id", boardID), zap.Error(err))
		generation = repository.NoGeneration
	}

	payload, err := viewCmd.Bytes()
	if err != nil {
		return nil, generation, false
	}

	var view domain.BoardView
	if err := json.Unmarshal(payload, &view); err != nil {
		c.logger.Warn("dropping undecodable board cache entry", zap.String("board_id", boardID), zap.Error(err))
		c.Evict(ctx, boardID)
		return nil, repository.NoGeneration, false
	}
	return &view, generation, true
}

func (c *boardCache) Set(ctx context.Context, view *domain.BoardView, generation int64) {
	if view == nil || view.Board.ID == "" || generation < 0 {
		return
	}
	payload, err := json.Marshal(view)
	if err != nil {
		c.logger.Warn("board cache encode failed", zap.String("board_id", view.Board.ID), zap.Error(err))
		return
	}

	keys := []string{c.key(view.Board.ID), c.generationKey(view.Board.ID)}
	stored, err := setIfGeneration.Run(ctx, c.client, keys, payload, generation, c.ttl.Milliseconds()).Int()
	if err != nil {
		c.logger.Warn("board cache write failed", zap.String("board_id", view.Board.ID), zap.Error(err))
		return
	}
	if stored == 0 {
		c.logger.Debug("board view changed while loading, not cached", zap.String("board_id", view.Board.ID))
	}
}

// Evict drops the cached view and advances the generation, so a view loaded
// before the eviction can no longer be stored.
func (c *boardCache) Evict(ctx context.Context, boardID string) {
	_, err := c.client.TxPipelined(ctx, func(pipe redislib.Pipeliner) error {
		pipe.Incr(ctx, c.generationKey(boardID))
		pipe.Expire(ctx, c.generationKey(boardID), generationTTL)
		pipe.Del(ctx, c.key(boardID))
		return nil
	})
	if err != nil {
		c.logger.Warn("board cache evict failed", zap.String("board_id", boardID), zap.Error(err))
	}
}

func (c *boardCache) key(boardID string) string {
	return c.prefix + boardID
}

func (c *boardCache) generationKey(boardID string) string {
	return c.prefix + boardID + ":gen"
}

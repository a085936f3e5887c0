package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redislib.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	repo := NewSessionRepository(client, time.Hour)

	session := &domain.Session{
		ID:        "s1",
		UserID:    "u1",
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	if err := repo.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("session:s1") {
		t.Fatalf("expected session key in redis")
	}

	got, err := repo.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != "u1" {
		t.Fatalf("unexpected user id %q", got.UserID)
	}

	if ttl := mr.TTL("session:s1"); ttl <= 0 || ttl > 30*time.Minute {
		t.Fatalf("expected ttl bound to expiry, got %v", ttl)
	}

	if err := repo.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestSessionRepositoryRejects(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	repo := NewSessionRepository(client, 0)

	t.Run("EmptyID", func(t *testing.T) {
		if err := repo.Save(ctx, &domain.Session{}); !errors.Is(err, domain.ErrInvalidPayload) {
			t.Fatalf("expected invalid payload, got %v", err)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		err := repo.Save(ctx, &domain.Session{ID: "old", ExpiresAt: time.Now().Add(-time.Minute)})
		if !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("expected session not found, got %v", err)
		}
		if mr.Exists("session:old") {
			t.Fatal("expired session must not be stored")
		}
	})

	t.Run("DefaultExpiry", func(t *testing.T) {
		session := &domain.Session{ID: "fresh", UserID: "u1"}
		if err := repo.Save(ctx, session); err != nil {
			t.Fatalf("save: %v", err)
		}
		if ttl := mr.TTL("session:fresh"); ttl <= 0 || ttl > time.Hour {
			t.Fatalf("expected default one hour ttl, got %v", ttl)
		}
	})

	t.Run("CorruptEntry", func(t *testing.T) {
		if err := mr.Set("session:bad", "{"); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if _, err := repo.Get(ctx, "bad"); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Fatalf("expected session not found, got %v", err)
		}
		if mr.Exists("session:bad") {
			t.Fatal("expected corrupt session to be dropped")
		}
	})
}

func TestBoardCache(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		mr, client := setupRedis(t)
		cache := NewBoardCache(client, time.Minute, zaptest.NewLogger(t))

		_, generation, ok := cache.Get(ctx, "b1")
		if ok {
			t.Fatalf("expected miss on empty cache")
		}
		if generation != 0 {
			t.Fatalf("expected generation 0 for an untouched board, got %d", generation)
		}

		view := &domain.BoardView{
			Board:   domain.Board{ID: "b1", Title: "Roadmap"},
			Columns: []domain.Column{{ID: "c1", BoardID: "b1", Title: "Todo"}},
		}
		cache.Set(ctx, view, generation)
		if ttl := mr.TTL("board:b1"); ttl != time.Minute {
			t.Fatalf("unexpected ttl %v", ttl)
		}

		got, _, ok := cache.Get(ctx, "b1")
		if !ok {
			t.Fatalf("expected hit")
		}
		if got.Board.Title != "Roadmap" || len(got.Columns) != 1 {
			t.Fatalf("unexpected view %+v", got)
		}

		cache.Evict(ctx, "b1")
		if mr.Exists("board:b1") {
			t.Fatalf("expected key to be evicted")
		}
	})

	t.Run("ViewLoadedBeforeEvictIsNotStored", func(t *testing.T) {
		mr, client := setupRedis(t)
		cache := NewBoardCache(client, time.Minute, zaptest.NewLogger(t))

		_, loadedAt, _ := cache.Get(ctx, "b4")
		cache.Evict(ctx, "b4")

		cache.Set(ctx, &domain.BoardView{Board: domain.Board{ID: "b4", Title: "stale"}}, loadedAt)
		if mr.Exists("board:b4") {
			t.Fatalf("expected stale view to be rejected")
		}

		_, current, ok := cache.Get(ctx, "b4")
		if ok || current != loadedAt+1 {
			t.Fatalf("expected miss at generation %d, got ok=%v generation=%d", loadedAt+1, ok, current)
		}
		cache.Set(ctx, &domain.BoardView{Board: domain.Board{ID: "b4", Title: "fresh"}}, current)
		got, _, ok := cache.Get(ctx, "b4")
		if !ok || got.Board.Title != "fresh" {
			t.Fatalf("expected fresh view to be cached, got %+v ok=%v", got, ok)
		}
		if ttl := mr.TTL("board:b4:gen"); ttl <= 0 {
			t.Fatalf("expected generation counter to expire, got ttl %v", ttl)
		}
	})

	t.Run("UnknownGenerationIsNotStored", func(t *testing.T) {
		mr, client := setupRedis(t)
		cache := NewBoardCache(client, time.Minute, zaptest.NewLogger(t))

		cache.Set(ctx, &domain.BoardView{Board: domain.Board{ID: "b5"}}, repository.NoGeneration)
		if mr.Exists("board:b5") {
			t.Fatalf("expected view without a generation to be skipped")
		}
	})

	t.Run("CorruptEntryIsDropped", func(t *testing.T) {
		mr, client := setupRedis(t)
		cache := NewBoardCache(client, time.Minute, zaptest.NewLogger(t))

		if err := mr.Set("board:b2", "{not json"); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if _, _, ok := cache.Get(ctx, "b2"); ok {
			t.Fatalf("expected miss on corrupt entry")
		}
		if mr.Exists("board:b2") {
			t.Fatalf("expected corrupt entry to be removed")
		}
	})

	t.Run("UnavailableRedisMisses", func(t *testing.T) {
		down, err := miniredis.Run()
		if err != nil {
			t.Fatalf("start miniredis: %v", err)
		}
		client := redislib.NewClient(&redislib.Options{Addr: down.Addr(), MaxRetries: -1})
		t.Cleanup(func() { _ = client.Close() })
		down.Close()
		cache := NewBoardCache(client, time.Minute, zaptest.NewLogger(t))

		cache.Set(ctx, &domain.BoardView{Board: domain.Board{ID: "b3"}}, 0)
		if _, _, ok := cache.Get(ctx, "b3"); ok {
			t.Fatalf("expected miss when redis is down")
		}
	})
}

// Package testutil builds throwaway stores for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/kanban/domain"
	sqlitedb "github.com/fastygo/kanban/internal/infrastructure/sqlite"
	"github.com/fastygo/kanban/repository"
	"github.com/fastygo/kanban/repository/sqlite"
)

// NewStore returns a store over a migrated in-memory SQLite database that is
// closed when the test ends.
func NewStore(t *testing.T) repository.Store {
	t.Helper()

	db, err := sqlitedb.Open(sqlitedb.MemoryPath)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := sqlitedb.RunMigrations(db, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return sqlite.NewStore(db)
}

// CreateUser inserts a user with the given email.
func CreateUser(t *testing.T, store repository.Store, email string) *domain.User {
	t.Helper()

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         email,
		PasswordHash: "not-a-hash",
		CreatedAt:    time.Now().UTC(),
	}
	err := store.WithinTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// Within runs fn in a transaction and fails the test on error.
func Within(t *testing.T, store repository.Store, fn func(ctx context.Context, tx repository.Tx) error) {
	t.Helper()

	if err := store.WithinTx(context.Background(), fn); err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

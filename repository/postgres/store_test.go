package postgres_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/internal/config"
	pgInfra "github.com/fastygo/kanban/internal/infrastructure/postgres"
	"github.com/fastygo/kanban/internal/testutil"
	"github.com/fastygo/kanban/repository"
	"github.com/fastygo/kanban/repository/postgres"
	boardUC "github.com/fastygo/kanban/usecase/board"
	columnUC "github.com/fastygo/kanban/usecase/column"
	"github.com/fastygo/kanban/usecase/task"
)

// newStore connects to the database named by KANBAN_TEST_DATABASE_URL and
// skips the test when it is unset.
func newStore(t *testing.T) repository.Store {
	t.Helper()

	url := os.Getenv("KANBAN_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("KANBAN_TEST_DATABASE_URL not set")
	}
	logger := zaptest.NewLogger(t)
	cfg := &config.Config{
		Database:   config.DatabaseConfig{Driver: config.DriverPostgres, URL: url, Name: "kanban_test", MaxOpenConns: 16},
		Migrations: config.MigrationsConfig{Enabled: true},
	}
	if err := pgInfra.RunMigrations(cfg, logger); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := pgInfra.NewPool(context.Background(), cfg.Database, logger)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { pgInfra.Close(pool, logger) })
	return postgres.NewStore(pool)
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	err := store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := tx.Tasks().GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Errorf("task lookup: expected not found, got %v", err)
		}
		if _, err := tx.Boards().GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrBoardNotFound) {
			t.Errorf("board lookup: expected not found, got %v", err)
		}
		if err := tx.Columns().Lock(ctx, "not-a-uuid"); !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			t.Errorf("column lock: expected not found, got %v", err)
		}
		if err := tx.Tasks().Lock(ctx, uuid.NewString()); !errors.Is(err, domain.ErrColumnNotFound) {
			t.Errorf("task lock: expected column not found, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

// Column reorders lock the board row while task writers insert rows that
// reference it; neither side may deadlock or leave a gap.
func TestConcurrentColumnAndTaskWrites(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	user := testutil.CreateUser(t, store, uuid.NewString()+"@example.com")
	_, owner, err := boardUC.New(store, nil, logger).Create(ctx, user.ID, "Load")
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	columns := columnUC.New(store, nil, nil, logger)
	tasks := task.New(store, nil, nil, logger)

	var cols []*domain.Column
	for _, title := range []string{"Todo", "In_Progress", "Done"} {
		c, err := columns.Create(ctx, owner, title)
		if err != nil {
			t.Fatalf("create column: %v", err)
		}
		cols = append(cols, c)
	}

	const writers = 24
	var wg sync.WaitGroup
	failures := make(chan error, 2*writers)
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			c := cols[i%len(cols)]
			if _, err := tasks.Create(ctx, owner, task.CreateInput{ColumnID: c.ID, BoardID: c.BoardID, Title: "t"}); err != nil {
				failures <- err
			}
		}(i)
		go func(i int) {
			defer wg.Done()
			pos := i % len(cols)
			if _, err := columns.Update(ctx, owner, cols[(i+1)%len(cols)].ID, columnUC.UpdateInput{Position: &pos}); err != nil {
				failures <- err
			}
		}(i)
	}
	wg.Wait()
	close(failures)
	for err := range failures {
		t.Errorf("concurrent write: %v", err)
	}

	listed, err := columns.List(ctx, owner)
	if err != nil {
		t.Fatalf("list columns: %v", err)
	}
	for i, c := range listed {
		if c.Position != i {
			t.Fatalf("column %s at %d, want %d", c.ID, c.Position, i)
		}
	}

	all, err := tasks.List(ctx, owner)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(all) != writers {
		t.Fatalf("expected %d tasks, got %d", writers, len(all))
	}
	next := map[string]int{}
	for _, tk := range all {
		if tk.Position != next[tk.ColumnID] {
			t.Fatalf("task positions in column %s not contiguous at %d", tk.ColumnID, tk.Position)
		}
		next[tk.ColumnID]++
	}
}

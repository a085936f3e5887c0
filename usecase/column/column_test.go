package column_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/internal/testutil"
	"github.com/fastygo/kanban/repository"
	boardUC "github.com/fastygo/kanban/usecase/board"
	"github.com/fastygo/kanban/usecase/column"
	"github.com/fastygo/kanban/usecase/membership"
)

type env struct {
	store repository.Store
	uc    *column.UseCase
	owner *domain.BoardMember
}

func setup(t *testing.T) env {
	t.Helper()

	store := testutil.NewStore(t)
	user := testutil.CreateUser(t, store, "owner@example.com")
	_, owner, err := boardUC.New(store, nil, nil).Create(context.Background(), user.ID, "Roadmap")
	if err != nil {
		t.Fatalf("create board: %v", err)
	}
	return env{store: store, uc: column.New(store, nil, nil, zaptest.NewLogger(t)), owner: owner}
}

func (e env) createColumns(t *testing.T, titles ...string) []*domain.Column {
	t.Helper()

	out := make([]*domain.Column, 0, len(titles))
	for _, title := range titles {
		c, err := e.uc.Create(context.Background(), e.owner, title)
		if err != nil {
			t.Fatalf("create column %q: %v", title, err)
		}
		out = append(out, c)
	}
	return out
}

// order lists column ids by position and checks positions are exactly 0..n-1.
func (e env) order(t *testing.T) []string {
	t.Helper()

	columns, err := e.uc.List(context.Background(), e.owner)
	if err != nil {
		t.Fatalf("list columns: %v", err)
	}
	ids := make([]string, len(columns))
	for i, c := range columns {
		if c.Position != i {
			t.Fatalf("positions not contiguous: %q at %d, want %d", c.Title, c.Position, i)
		}
		ids[i] = c.ID
	}
	return ids
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func ids(cs ...*domain.Column) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestCreateAppends(t *testing.T) {
	e := setup(t)
	cols := e.createColumns(t, "Todo", "Doing", "Done")

	for i, c := range cols {
		if c.Position != i {
			t.Fatalf("column %q at %d, want %d", c.Title, c.Position, i)
		}
	}
	if got := e.order(t); !equal(got, ids(cols...)) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestMoveLastToFirst(t *testing.T) {
	e := setup(t)
	cols := e.createColumns(t, "A", "B", "C")

	moved, err := e.uc.Update(context.Background(), e.owner, cols[2].ID, column.UpdateInput{Position: intPtr(0)})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.Position != 0 {
		t.Fatalf("expected moved column at 0, got %d", moved.Position)
	}
	if got := e.order(t); !equal(got, ids(cols[2], cols[0], cols[1])) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestMoveFirstToLast(t *testing.T) {
	e := setup(t)
	cols := e.createColumns(t, "A", "B", "C", "D")

	if _, err := e.uc.Update(context.Background(), e.owner, cols[0].ID, column.UpdateInput{Position: intPtr(3)}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if got := e.order(t); !equal(got, ids(cols[1], cols[2], cols[3], cols[0])) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestMoveOutOfRange(t *testing.T) {
	e := setup(t)
	cols := e.createColumns(t, "A", "B", "C")

	for _, pos := range []int{-1, 3, 10} {
		_, err := e.uc.Update(context.Background(), e.owner, cols[0].ID, column.UpdateInput{Position: intPtr(pos)})
		if !errors.Is(err, domain.ErrPositionOutOfRange) {
			t.Fatalf("position %d: expected out of range, got %v", pos, err)
		}
	}
	if got := e.order(t); !equal(got, ids(cols...)) {
		t.Fatalf("rejected moves must not change order, got %v", got)
	}
}

func TestRename(t *testing.T) {
	e := setup(t)
	cols := e.createColumns(t, "A", "B")

	updated, err := e.uc.Update(context.Background(), e.owner, cols[1].ID, column.UpdateInput{Title: strPtr(" Review ")})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if updated.Title != "Review" || updated.Position != 1 {
		t.Fatalf("unexpected column %+v", updated)
	}

	if _, err := e.uc.Update(context.Background(), e.owner, cols[1].ID, column.UpdateInput{Title: strPtr("")}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected invalid for empty title, got %v", err)
	}
	if _, err := e.uc.Update(context.Background(), e.owner, "missing", column.UpdateInput{Title: strPtr("X")}); !errors.Is(err, domain.ErrColumnNotFound) {
		t.Fatalf("expected column not found, got %v", err)
	}
}

func TestForeignBoard(t *testing.T) {
	e := setup(t)
	cols := e.createColumns(t, "A")

	other := testutil.CreateUser(t, e.store, "other@example.com")
	_, otherOwner, err := boardUC.New(e.store, nil, nil).Create(context.Background(), other.ID, "Other")
	if err != nil {
		t.Fatalf("create board: %v", err)
	}

	_, err = e.uc.Update(context.Background(), otherOwner, cols[0].ID, column.UpdateInput{Title: strPtr("Hijack")})
	if !errors.Is(err, domain.ErrForeignBoard) {
		t.Fatalf("expected foreign board, got %v", err)
	}
	if err := e.uc.Delete(context.Background(), otherOwner, cols[0].ID); !errors.Is(err, domain.ErrForeignBoard) {
		t.Fatalf("expected foreign board on delete, got %v", err)
	}
}

func TestDeleteCompacts(t *testing.T) {
	e := setup(t)
	cols := e.createColumns(t, "A", "B", "C", "D")

	if err := e.uc.Delete(context.Background(), e.owner, cols[1].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := e.order(t); !equal(got, ids(cols[0], cols[2], cols[3])) {
		t.Fatalf("unexpected order %v", got)
	}

	next, err := e.uc.Create(context.Background(), e.owner, "E")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if next.Position != 3 {
		t.Fatalf("expected append at 3 after compaction, got %d", next.Position)
	}
}

func TestDeleteRequiresOwner(t *testing.T) {
	e := setup(t)
	cols := e.createColumns(t, "A")
	dev := testutil.CreateUser(t, e.store, "dev@example.com")

	devMember, err := membership.New(e.store, nil, nil).AddMember(context.Background(), e.owner, dev.Email, domain.RoleMember)
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := e.uc.Delete(context.Background(), devMember, cols[0].ID); !errors.Is(err, domain.ErrOwnerRequired) {
		t.Fatalf("expected owner required, got %v", err)
	}

	if _, err := e.uc.Update(context.Background(), devMember, cols[0].ID, column.UpdateInput{Title: strPtr("Renamed")}); err != nil {
		t.Fatalf("members may update columns: %v", err)
	}
}

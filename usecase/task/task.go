// Package task applies the task lifecycle: status transitions, column-driven
// status and ledger-backed moves between and within columns.
package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
	"github.com/fastygo/kanban/usecase/ledger"
	"github.com/fastygo/kanban/usecase/membership"
)

type CreateInput struct {
	ColumnID    string
	BoardID     string
	Title       string
	Description *string
}

// UpdateInput carries the optional changes of an update. Nil fields are left as they are.
type UpdateInput struct {
	Title       *string
	Description *string
	Status      *domain.Status
	ColumnID    *string
	Position    *int
}

type UseCase struct {
	store  repository.Store
	ledger *ledger.Ledger
	cache  repository.BoardCache
	logger *zap.Logger
}

func New(store repository.Store, positions *ledger.Ledger, cache repository.BoardCache, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if positions == nil {
		positions = ledger.New(logger)
	}
	if cache == nil {
		cache = repository.NopBoardCache{}
	}
	return &UseCase{
		store:  store,
		ledger: positions,
		cache:  cache,
		logger: logger,
	}
}

// Create appends a task to a column. The status follows the column title and
// defaults to TODO.
func (uc *UseCase) Create(ctx context.Context, m *domain.BoardMember, in CreateInput) (*domain.Task, error) {
	if in.BoardID == "" && m != nil {
		in.BoardID = m.BoardID
	}
	if err := membership.RequireBoard(m, in.BoardID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "title is required", domain.ErrInvalidPayload)
	}

	var task *domain.Task
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		tasks := tx.Tasks()
		if err := uc.ledger.Lock(ctx, tasks, in.ColumnID); err != nil {
			return err
		}
		column, err := tx.Columns().GetByID(ctx, in.ColumnID)
		if err != nil {
			return err
		}
		if column.BoardID != in.BoardID {
			return domain.ErrColumnBoardMismatch
		}

		at, err := uc.ledger.Append(ctx, tasks, column.ID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		task = &domain.Task{
			ID:          uuid.NewString(),
			Title:       title,
			Description: in.Description,
			Status:      domain.InitialStatus(column.Title),
			Position:    at.Position,
			ColumnID:    column.ID,
			BoardID:     column.BoardID,
			CreatedByID: m.UserID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tasks.Create(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	uc.cache.Evict(ctx, task.BoardID)
	uc.logger.Info("task created",
		zap.String("task_id", task.ID),
		zap.String("column_id", task.ColumnID),
		zap.String("status", string(task.Status)),
		zap.Int("position", task.Position))
	return task, nil
}

// Update edits fields, changes status and moves a task in one transaction.
// Moving without a position appends to the target column. When the column is
// given and no status is requested, a column titled after a status drives it.
func (uc *UseCase) Update(ctx context.Context, m *domain.BoardMember, taskID string, in UpdateInput) (*domain.Task, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, domain.WrapError(domain.ErrCodeInvalid, "title must not be empty", domain.ErrInvalidPayload)
		}
		in.Title = &title
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	var (
		task    *domain.Task
		changed bool
		moved   bool
	)
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		tasks := tx.Tasks()
		current, err := tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if err := membership.RequireBoard(m, current.BoardID); err != nil {
			return err
		}
		// A forbidden transition is reported before the move target is resolved.
		if in.Status != nil && *in.Status != current.Status {
			if err := domain.ValidateTransition(current.Status, *in.Status); err != nil {
				return err
			}
		}

		moving := in.ColumnID != nil || in.Position != nil
		var target *domain.Column
		if moving {
			targetID := current.ColumnID
			if in.ColumnID != nil {
				targetID = *in.ColumnID
			}
			if target, err = tx.Columns().GetByID(ctx, targetID); err != nil {
				return err
			}
			if target.BoardID != current.BoardID {
				return domain.ErrCrossBoardMove
			}
		}

		locked := []string{current.ColumnID}
		if target != nil {
			locked = append(locked, target.ID)
		}
		if err := uc.ledger.Lock(ctx, tasks, locked...); err != nil {
			return err
		}
		sourceColumn := current.ColumnID
		if current, err = tasks.GetByID(ctx, taskID); err != nil {
			return err
		}
		if current.ColumnID != sourceColumn {
			return domain.ErrMovedConcurrently
		}
		task = current

		status := task.Status
		if in.Status != nil {
			if *in.Status != task.Status {
				if err := domain.ValidateTransition(task.Status, *in.Status); err != nil {
					return err
				}
			}
			status = *in.Status
		} else if in.ColumnID != nil {
			if derived, ok := domain.StatusForColumn(target.Title); ok {
				status = derived
			}
		}

		if moving {
			to := domain.Placement{Container: target.ID, Position: task.Position}
			switch {
			case in.Position != nil:
				to.Position = *in.Position
			case target.ID != task.ColumnID:
				count, err := tasks.Count(ctx, target.ID)
				if err != nil {
					return err
				}
				to.Position = count
			}

			if to != task.Placement() {
				plan, err := uc.ledger.Move(ctx, tasks, task.Placement(), to)
				if err != nil {
					return err
				}
				task.ColumnID = plan.Target.Container
				task.Position = plan.Target.Position
				changed, moved = true, true
			}
		}

		if status != task.Status {
			task.Status = status
			changed = true
		}
		if in.Title != nil && *in.Title != task.Title {
			task.Title = *in.Title
			changed = true
		}
		if in.Description != nil && (task.Description == nil || *task.Description != *in.Description) {
			task.Description = in.Description
			changed = true
		}
		if !changed {
			return nil
		}

		task.UpdatedAt = time.Now().UTC()
		return tasks.Update(ctx, task)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		uc.cache.Evict(ctx, task.BoardID)
		if moved {
			uc.logger.Info("task moved",
				zap.String("task_id", task.ID),
				zap.String("column_id", task.ColumnID),
				zap.Int("position", task.Position),
				zap.String("status", string(task.Status)))
		}
	}
	return task, nil
}

// Delete removes a task and closes the gap it leaves in its column. Owner only.
func (uc *UseCase) Delete(ctx context.Context, m *domain.BoardMember, taskID string) error {
	if err := membership.RequireRole(m, domain.RoleOwner); err != nil {
		return err
	}

	var boardID string
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		tasks := tx.Tasks()
		task, err := tasks.GetByID(ctx, taskID)
		if err != nil {
			return err
		}
		if err := membership.RequireBoard(m, task.BoardID); err != nil {
			return err
		}
		if err := uc.ledger.Lock(ctx, tasks, task.ColumnID); err != nil {
			return err
		}
		sourceColumn := task.ColumnID
		if task, err = tasks.GetByID(ctx, taskID); err != nil {
			return err
		}
		if task.ColumnID != sourceColumn {
			return domain.ErrMovedConcurrently
		}
		boardID = task.BoardID

		if err := tasks.Delete(ctx, task.ID); err != nil {
			return err
		}
		return uc.ledger.Remove(ctx, tasks, task.Placement())
	})
	if err != nil {
		return err
	}

	uc.cache.Evict(ctx, boardID)
	uc.logger.Info("task deleted", zap.String("board_id", boardID), zap.String("task_id", taskID))
	return nil
}

// List returns the tasks of m's board ordered by column position, then task position.
func (uc *UseCase) List(ctx context.Context, m *domain.BoardMember) ([]domain.Task, error) {
	if m == nil {
		return nil, domain.ErrNotMember
	}

	var tasks []domain.Task
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		tasks, err = tx.Tasks().ListByBoard(ctx, m.BoardID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

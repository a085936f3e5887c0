package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fastygo/kanban/domain"
)

type taskRepository struct {
	q querier
}

const taskColumns = `t.id, t.title, t.description, t.status, t.position, t.column_id, t.board_id, t.created_by, t.created_at, t.updated_at`

func (r *taskRepository) Lock(ctx context.Context, columnID string) error {
	return exists(ctx, r.q, `SELECT id FROM columns WHERE id = ?`, columnID, domain.ErrColumnNotFound)
}

func (r *taskRepository) Count(ctx context.Context, columnID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE column_id = ?`, columnID).Scan(&count)
	return count, err
}

func (r *taskRepository) Shift(ctx context.Context, shift domain.Shift) error {
	query := `
		UPDATE tasks
		SET position = position + ?, updated_at = ?
		WHERE column_id = ? AND position >= ? AND (? < 0 OR position <= ?)
	`
	_, err := r.q.ExecContext(ctx, query, shift.Delta, now(), shift.Container, shift.From, shift.To, shift.To)
	return err
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	return scanTask(r.q.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id))
}

func (r *taskRepository) ListByBoard(ctx context.Context, boardID string) ([]domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		JOIN columns c ON c.id = t.column_id
		WHERE t.board_id = ?
		ORDER BY c.position, t.position
	`
	rows, err := r.q.QueryContext(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidPayload
	}
	query := `
		INSERT INTO tasks (id, title, description, status, position, column_id, board_id, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.q.ExecContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		task.Position,
		task.ColumnID,
		task.BoardID,
		task.CreatedByID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	return err
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}
	query := `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, position = ?, column_id = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.q.ExecContext(ctx, query,
		task.Title,
		task.Description,
		string(task.Status),
		task.Position,
		task.ColumnID,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return err
	}
	return affected(result, domain.ErrTaskNotFound)
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result, domain.ErrTaskNotFound)
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		status      string
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&status,
		&task.Position,
		&task.ColumnID,
		&task.BoardID,
		&task.CreatedByID,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	task.Status = domain.Status(status)
	return &task, nil
}

package postgres

import (
	"context"

	"github.com/fastygo/kanban/domain"
)

type taskRepository struct {
	q querier
}

const taskColumns = `t.id, t.title, t.description, t.status, t.position, t.column_id, t.board_id, t.created_by, t.created_at, t.updated_at`

// Lock serializes ordering changes inside a column by locking the column row.
func (r *taskRepository) Lock(ctx context.Context, columnID string) error {
	return lockRow(ctx, r.q, `SELECT id FROM columns WHERE id = $1 FOR NO KEY UPDATE`, columnID, domain.ErrColumnNotFound)
}

func (r *taskRepository) Count(ctx context.Context, columnID string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE column_id = $1`, columnID).Scan(&count)
	return count, err
}

func (r *taskRepository) Shift(ctx context.Context, shift domain.Shift) error {
	const query = `
	UPDATE tasks
	SET position = position + $2,
		updated_at = NOW()
	WHERE column_id = $1
	  AND position >= $3
	  AND ($4::int < 0 OR position <= $4::int)
	`
	_, err := r.q.Exec(ctx, query, shift.Container, shift.Delta, shift.From, shift.To)
	return err
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1`
	return scanTask(r.q.QueryRow(ctx, query, id))
}

func (r *taskRepository) ListByBoard(ctx context.Context, boardID string) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks t
	JOIN columns c ON c.id = t.column_id
	WHERE t.board_id = $1
	ORDER BY c.position, t.position
	`
	rows, err := r.q.Query(ctx, query, boardID)
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

	const query = `
	INSERT INTO tasks (id, title, description, status, position, column_id, board_id, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.q.Exec(ctx, query,
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

	const query = `
	UPDATE tasks
	SET title = $2,
		description = $3,
		status = $4,
		position = $5,
		column_id = $6,
		updated_at = $7
	WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		string(task.Status),
		task.Position,
		task.ColumnID,
		task.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task   domain.Task
		status string
	)
	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&task.Position,
		&task.ColumnID,
		&task.BoardID,
		&task.CreatedByID,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if missingRow(err) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	task.Status = domain.Status(status)
	return &task, nil
}

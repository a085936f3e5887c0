package postgres

import (
	"context"

	"github.com/fastygo/kanban/domain"
)

type columnRepository struct {
	q querier
}

const columnColumns = `id, board_id, title, position, created_at, updated_at`

// Lock serializes ordering changes on a board by locking the board row.
func (r *columnRepository) Lock(ctx context.Context, boardID string) error {
	return lockRow(ctx, r.q, `SELECT id FROM boards WHERE id = $1 FOR NO KEY UPDATE`, boardID, domain.ErrBoardNotFound)
}

func (r *columnRepository) Count(ctx context.Context, boardID string) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM columns WHERE board_id = $1`, boardID).Scan(&count)
	return count, err
}

func (r *columnRepository) Shift(ctx context.Context, shift domain.Shift) error {
	const query = `
	UPDATE columns
	SET position = position + $2,
		updated_at = NOW()
	WHERE board_id = $1
	  AND position >= $3
	  AND ($4::int < 0 OR position <= $4::int)
	`
	_, err := r.q.Exec(ctx, query, shift.Container, shift.Delta, shift.From, shift.To)
	return err
}

func (r *columnRepository) GetByID(ctx context.Context, id string) (*domain.Column, error) {
	query := `SELECT ` + columnColumns + ` FROM columns WHERE id = $1`
	return scanColumn(r.q.QueryRow(ctx, query, id))
}

func (r *columnRepository) ListByBoard(ctx context.Context, boardID string) ([]domain.Column, error) {
	query := `SELECT ` + columnColumns + ` FROM columns WHERE board_id = $1 ORDER BY position`
	rows, err := r.q.Query(ctx, query, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []domain.Column
	for rows.Next() {
		column, err := scanColumn(rows)
		if err != nil {
			return nil, err
		}
		columns = append(columns, *column)
	}
	return columns, rows.Err()
}

func (r *columnRepository) Create(ctx context.Context, column *domain.Column) error {
	if column == nil || column.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO columns (id, board_id, title, position, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.Exec(ctx, query,
		column.ID,
		column.BoardID,
		column.Title,
		column.Position,
		column.CreatedAt,
		column.UpdatedAt,
	)
	return err
}

func (r *columnRepository) Update(ctx context.Context, column *domain.Column) error {
	if column == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE columns
	SET title = $2,
		position = $3,
		updated_at = $4
	WHERE id = $1
	`
	tag, err := r.q.Exec(ctx, query, column.ID, column.Title, column.Position, column.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrColumnNotFound
	}
	return nil
}

func (r *columnRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM tasks WHERE column_id = $1`, id); err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `DELETE FROM columns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrColumnNotFound
	}
	return nil
}

func scanColumn(row rowScanner) (*domain.Column, error) {
	var column domain.Column
	if err := row.Scan(
		&column.ID,
		&column.BoardID,
		&column.Title,
		&column.Position,
		&column.CreatedAt,
		&column.UpdatedAt,
	); err != nil {
		if missingRow(err) {
			return nil, domain.ErrColumnNotFound
		}
		return nil, err
	}
	return &column, nil
}

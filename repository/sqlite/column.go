package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fastygo/kanban/domain"
)

type columnRepository struct {
	q querier
}

const columnColumns = `id, board_id, title, position, created_at, updated_at`

func (r *columnRepository) Lock(ctx context.Context, boardID string) error {
	return exists(ctx, r.q, `SELECT id FROM boards WHERE id = ?`, boardID, domain.ErrBoardNotFound)
}

func (r *columnRepository) Count(ctx context.Context, boardID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM columns WHERE board_id = ?`, boardID).Scan(&count)
	return count, err
}

func (r *columnRepository) Shift(ctx context.Context, shift domain.Shift) error {
	query := `
		UPDATE columns
		SET position = position + ?, updated_at = ?
		WHERE board_id = ? AND position >= ? AND (? < 0 OR position <= ?)
	`
	_, err := r.q.ExecContext(ctx, query, shift.Delta, now(), shift.Container, shift.From, shift.To, shift.To)
	return err
}

func (r *columnRepository) GetByID(ctx context.Context, id string) (*domain.Column, error) {
	return scanColumn(r.q.QueryRowContext(ctx, `SELECT `+columnColumns+` FROM columns WHERE id = ?`, id))
}

func (r *columnRepository) ListByBoard(ctx context.Context, boardID string) ([]domain.Column, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT `+columnColumns+` FROM columns WHERE board_id = ? ORDER BY position`, boardID)
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
	query := `INSERT INTO columns (id, board_id, title, position, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query,
		column.ID, column.BoardID, column.Title, column.Position, column.CreatedAt, column.UpdatedAt,
	)
	return err
}

func (r *columnRepository) Update(ctx context.Context, column *domain.Column) error {
	if column == nil {
		return domain.ErrInvalidPayload
	}
	query := `UPDATE columns SET title = ?, position = ?, updated_at = ? WHERE id = ?`
	result, err := r.q.ExecContext(ctx, query, column.Title, column.Position, column.UpdatedAt, column.ID)
	if err != nil {
		return err
	}
	return affected(result, domain.ErrColumnNotFound)
}

func (r *columnRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE column_id = ?`, id); err != nil {
		return err
	}
	result, err := r.q.ExecContext(ctx, `DELETE FROM columns WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result, domain.ErrColumnNotFound)
}

func scanColumn(row rowScanner) (*domain.Column, error) {
	var column domain.Column
	if err := row.Scan(
		&column.ID, &column.BoardID, &column.Title, &column.Position, &column.CreatedAt, &column.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrColumnNotFound
		}
		return nil, err
	}
	return &column, nil
}

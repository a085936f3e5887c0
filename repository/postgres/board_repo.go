package postgres

import (
	"context"

	"github.com/fastygo/kanban/domain"
)

type boardRepository struct {
	q querier
}

func (r *boardRepository) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	const query = `
	SELECT id, title, owner_id, created_at, updated_at
	FROM boards
	WHERE id = $1
	`
	return scanBoard(r.q.QueryRow(ctx, query, id))
}

func (r *boardRepository) ListForUser(ctx context.Context, userID string) ([]domain.Board, error) {
	const query = `
	SELECT b.id, b.title, b.owner_id, b.created_at, b.updated_at
	FROM boards b
	JOIN board_members m ON m.board_id = b.id
	WHERE m.user_id = $1
	ORDER BY b.created_at, b.id
	`
	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []domain.Board
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, *board)
	}
	return boards, rows.Err()
}

func (r *boardRepository) Create(ctx context.Context, board *domain.Board) error {
	if board == nil || board.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO boards (id, title, owner_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.q.Exec(ctx, query, board.ID, board.Title, board.OwnerID, board.CreatedAt, board.UpdatedAt)
	return err
}

// Delete removes children explicitly, leaf first, before the board row itself.
func (r *boardRepository) Delete(ctx context.Context, id string) error {
	statements := []string{
		`DELETE FROM tasks WHERE board_id = $1`,
		`DELETE FROM columns WHERE board_id = $1`,
		`DELETE FROM board_members WHERE board_id = $1`,
	}
	for _, stmt := range statements {
		if _, err := r.q.Exec(ctx, stmt, id); err != nil {
			return err
		}
	}

	tag, err := r.q.Exec(ctx, `DELETE FROM boards WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBoardNotFound
	}
	return nil
}

func scanBoard(row rowScanner) (*domain.Board, error) {
	var board domain.Board
	if err := row.Scan(&board.ID, &board.Title, &board.OwnerID, &board.CreatedAt, &board.UpdatedAt); err != nil {
		if missingRow(err) {
			return nil, domain.ErrBoardNotFound
		}
		return nil, err
	}
	return &board, nil
}

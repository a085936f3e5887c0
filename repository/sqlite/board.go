package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/fastygo/kanban/domain"
)

type boardRepository struct {
	q querier
}

func (r *boardRepository) GetByID(ctx context.Context, id string) (*domain.Board, error) {
	query := `SELECT id, title, owner_id, created_at, updated_at FROM boards WHERE id = ?`
	return scanBoard(r.q.QueryRowContext(ctx, query, id))
}

func (r *boardRepository) ListForUser(ctx context.Context, userID string) ([]domain.Board, error) {
	query := `
		SELECT b.id, b.title, b.owner_id, b.created_at, b.updated_at
		FROM boards b
		JOIN board_members m ON m.board_id = b.id
		WHERE m.user_id = ?
		ORDER BY b.created_at, b.id
	`
	rows, err := r.q.QueryContext(ctx, query, userID)
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
	query := `INSERT INTO boards (id, title, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.q.ExecContext(ctx, query, board.ID, board.Title, board.OwnerID, board.CreatedAt, board.UpdatedAt)
	return err
}

func (r *boardRepository) Delete(ctx context.Context, id string) error {
	for _, table := range []string{"tasks", "columns", "board_members"} {
		if _, err := r.q.ExecContext(ctx, `DELETE FROM `+table+` WHERE board_id = ?`, id); err != nil {
			return err
		}
	}
	result, err := r.q.ExecContext(ctx, `DELETE FROM boards WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affected(result, domain.ErrBoardNotFound)
}

func scanBoard(row rowScanner) (*domain.Board, error) {
	var board domain.Board
	if err := row.Scan(&board.ID, &board.Title, &board.OwnerID, &board.CreatedAt, &board.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBoardNotFound
		}
		return nil, err
	}
	return &board, nil
}

type memberRepository struct {
	q querier
}

const memberSelect = `
	SELECT m.id, m.board_id, m.user_id, m.role, u.email, u.name, m.created_at
	FROM board_members m
	JOIN users u ON u.id = m.user_id
`

func (r *memberRepository) Get(ctx context.Context, boardID, userID string) (*domain.BoardMember, error) {
	query := memberSelect + ` WHERE m.board_id = ? AND m.user_id = ?`
	return scanMember(r.q.QueryRowContext(ctx, query, boardID, userID))
}

func (r *memberRepository) List(ctx context.Context, boardID string) ([]domain.BoardMember, error) {
	rows, err := r.q.QueryContext(ctx, memberSelect+` WHERE m.board_id = ? ORDER BY m.created_at, m.id`, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.BoardMember
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}
	return members, rows.Err()
}

func (r *memberRepository) Create(ctx context.Context, member *domain.BoardMember) error {
	if member == nil || member.ID == "" {
		return domain.ErrInvalidPayload
	}

	query := `INSERT INTO board_members (id, board_id, user_id, role, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.q.ExecContext(ctx, query,
		member.ID, member.BoardID, member.UserID, string(member.Role), member.CreatedAt,
	); err != nil {
		if columns, ok := uniqueViolation(err); ok {
			if strings.Contains(columns, "board_members.user_id") {
				return domain.ErrAlreadyMember
			}
			return domain.ErrOwnerRoleNotAssignable
		}
		return err
	}
	return nil
}

func scanMember(row rowScanner) (*domain.BoardMember, error) {
	var (
		member domain.BoardMember
		role   string
	)
	if err := row.Scan(
		&member.ID, &member.BoardID, &member.UserID, &role, &member.Email, &member.Name, &member.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotMember
		}
		return nil, err
	}
	member.Role = domain.Role(role)
	return &member, nil
}

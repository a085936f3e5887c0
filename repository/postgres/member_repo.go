package postgres

import (
	"context"

	"github.com/fastygo/kanban/domain"
)

type memberRepository struct {
	q querier
}

const memberSelect = `
	SELECT m.id, m.board_id, m.user_id, m.role, u.email, u.name, m.created_at
	FROM board_members m
	JOIN users u ON u.id = m.user_id
`

func (r *memberRepository) Get(ctx context.Context, boardID, userID string) (*domain.BoardMember, error) {
	query := memberSelect + ` WHERE m.board_id = $1 AND m.user_id = $2`
	return scanMember(r.q.QueryRow(ctx, query, boardID, userID))
}

func (r *memberRepository) List(ctx context.Context, boardID string) ([]domain.BoardMember, error) {
	query := memberSelect + ` WHERE m.board_id = $1 ORDER BY m.created_at, m.id`
	rows, err := r.q.Query(ctx, query, boardID)
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

	const query = `
	INSERT INTO board_members (id, board_id, user_id, role, created_at)
	VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.q.Exec(ctx, query,
		member.ID,
		member.BoardID,
		member.UserID,
		string(member.Role),
		member.CreatedAt,
	); err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			if constraint == "board_members_single_owner" {
				return domain.ErrOwnerRoleNotAssignable
			}
			return domain.ErrAlreadyMember
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
		&member.ID,
		&member.BoardID,
		&member.UserID,
		&role,
		&member.Email,
		&member.Name,
		&member.CreatedAt,
	); err != nil {
		if missingRow(err) {
			return nil, domain.ErrNotMember
		}
		return nil, err
	}
	member.Role = domain.Role(role)
	return &member, nil
}

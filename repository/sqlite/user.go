package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fastygo/kanban/domain"
)

type userRepository struct {
	q querier
}

const userColumns = `id, email, name, password_hash, avatar_url, created_at`

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}

	query := `
		INSERT INTO users (id, email, name, password_hash, avatar_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := r.q.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.AvatarURL, user.CreatedAt,
	); err != nil {
		if _, ok := uniqueViolation(err); ok {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	result, err := r.q.ExecContext(ctx, `UPDATE users SET name = ?, avatar_url = ? WHERE id = ?`, user.Name, user.AvatarURL, user.ID)
	if err != nil {
		return err
	}
	return affected(result, domain.ErrUserNotFound)
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.AvatarURL, &user.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

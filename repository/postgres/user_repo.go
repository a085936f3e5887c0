package postgres

import (
	"context"

	"github.com/fastygo/kanban/domain"
)

type userRepository struct {
	q querier
}

const userColumns = `id, email, name, password_hash, avatar_url, created_at`

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.q.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.q.QueryRow(ctx, query, email))
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}

	const query = `
	INSERT INTO users (id, email, name, password_hash, avatar_url, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.q.Exec(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.AvatarURL,
		user.CreatedAt,
	); err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return domain.ErrEmailTaken
		}
		return err
	}
	return nil
}

// Update changes the profile fields of a user. Email and credentials are immutable.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}

	tag, err := r.q.Exec(ctx, `UPDATE users SET name = $2, avatar_url = $3 WHERE id = $1`, user.ID, user.Name, user.AvatarURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.AvatarURL,
		&user.CreatedAt,
	); err != nil {
		if missingRow(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/repository"
)

// Claims is the payload of an access token.
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type RegisterInput struct {
	Email     string
	Name      string
	Password  string
	AvatarURL string
}

type UseCase struct {
	store    repository.Store
	sessions repository.SessionRepository
	tokens   TokenConfig
	logger   *zap.Logger
}

func New(store repository.Store, sessions repository.SessionRepository, tokens TokenConfig, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokens.TTL <= 0 {
		tokens.TTL = 24 * time.Hour
	}
	return &UseCase{
		store:    store,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register creates a user with a bcrypt-hashed password.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := domain.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "a valid email is required", domain.ErrInvalidPayload)
	}
	if name == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "name is required", domain.ErrInvalidPayload)
	}
	if len(in.Password) < 8 {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "password must be at least 8 characters", domain.ErrInvalidPayload)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		AvatarURL:    strings.TrimSpace(in.AvatarURL),
		CreatedAt:    time.Now().UTC(),
	}
	err = uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login checks the credentials, opens a session and signs an access token bound to it.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*domain.AccessToken, error) {
	var user *domain.User
	err := uc.store.WithinTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		user, err = tx.Users().GetByEmail(ctx, domain.NormalizeEmail(email))
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	session, err := uc.CreateSession(ctx, user.ID, uc.tokens.TTL)
	if err != nil {
		return nil, err
	}

	token, err := uc.issueToken(session)
	if err != nil {
		return nil, err
	}
	token.User = user

	uc.logger.Info("user logged in", zap.String("user_id", user.ID), zap.String("session_id", session.ID))
	return token, nil
}

// ParseToken verifies an HMAC-signed access token and returns its claims.
func (uc *UseCase) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(uc.tokens.Secret), nil
	})
	if err != nil || !parsed.Valid || claims.UserID == "" || claims.SessionID == "" {
		return nil, domain.ErrUnauthorized
	}
	if uc.tokens.Issuer != "" && claims.Issuer != uc.tokens.Issuer {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (uc *UseCase) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*domain.Session, error) {
	now := time.Now().UTC()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// VerifySession fails with ErrSessionNotFound once the session is revoked or
// expired, and with ErrUnauthorized when it belongs to another user.
func (uc *UseCase) VerifySession(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	if userID != "" && session.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

// Refresh extends a live session by the token TTL and signs a new token for it.
func (uc *UseCase) Refresh(ctx context.Context, sessionID, userID string) (*domain.AccessToken, error) {
	session, err := uc.VerifySession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	session.ExpiresAt = time.Now().UTC().Add(uc.tokens.TTL)
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return uc.issueToken(session)
}

// Logout revokes the session; tokens bound to it stop being accepted.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if err := uc.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	uc.logger.Info("session revoked", zap.String("session_id", sessionID))
	return nil
}

func (uc *UseCase) issueToken(session *domain.Session) (*domain.AccessToken, error) {
	claims := Claims{
		UserID:    session.UserID,
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    uc.tokens.Issuer,
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(uc.tokens.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &domain.AccessToken{
		Token:     token,
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v4"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/internal/testutil"
	redisRepo "github.com/fastygo/kanban/repository/redis"
)

func setup(t *testing.T) (*UseCase, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	uc := New(
		testutil.NewStore(t),
		redisRepo.NewSessionRepository(client, time.Hour),
		TokenConfig{Secret: "test-secret", Issuer: "kanban-test", TTL: time.Hour},
		zaptest.NewLogger(t),
	)
	return uc, mr
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup(t)

	user, err := uc.Register(ctx, RegisterInput{Email: " Ada@Example.com ", Name: "Ada", Password: "correct horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "correct horse" {
		t.Fatalf("password must be hashed")
	}

	if _, err := uc.Register(ctx, RegisterInput{Email: "ada@example.com", Name: "Other", Password: "another pass"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}

	invalid := []RegisterInput{
		{Email: "no-at-sign", Name: "x", Password: "longenough"},
		{Email: "x@example.com", Name: " ", Password: "longenough"},
		{Email: "x@example.com", Name: "x", Password: "short"},
	}
	for _, in := range invalid {
		if _, err := uc.Register(ctx, in); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
			t.Fatalf("expected invalid for %+v, got %v", in, err)
		}
	}
}

func TestLoginLogout(t *testing.T) {
	ctx := context.Background()
	uc, mr := setup(t)

	user, err := uc.Register(ctx, RegisterInput{Email: "ada@example.com", Name: "Ada", Password: "correct horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := uc.Login(ctx, "ada@example.com", "wrong password"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := uc.Login(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}

	token, err := uc.Login(ctx, "ADA@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token.User == nil || token.User.ID != user.ID {
		t.Fatalf("unexpected token user %+v", token.User)
	}
	if !mr.Exists("session:" + token.SessionID) {
		t.Fatalf("expected session in redis")
	}

	claims, err := uc.ParseToken(token.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != user.ID || claims.SessionID != token.SessionID || claims.Issuer != "kanban-test" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := uc.VerifySession(ctx, token.SessionID, user.ID); err != nil {
		t.Fatalf("verify session: %v", err)
	}
	if _, err := uc.VerifySession(ctx, token.SessionID, "someone-else"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for foreign session, got %v", err)
	}

	if err := uc.Logout(ctx, token.SessionID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := uc.VerifySession(ctx, token.SessionID, user.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found after logout, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	uc, _ := setup(t)

	if _, err := uc.Register(ctx, RegisterInput{Email: "ada@example.com", Name: "Ada", Password: "correct horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := uc.Login(ctx, "ada@example.com", "correct horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	refreshed, err := uc.Refresh(ctx, token.SessionID, token.User.ID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.SessionID != token.SessionID {
		t.Fatalf("refresh must keep the session, got %q", refreshed.SessionID)
	}
	if refreshed.ExpiresAt.Before(token.ExpiresAt) {
		t.Fatalf("refresh must not shorten the session")
	}
	if _, err := uc.ParseToken(refreshed.Token); err != nil {
		t.Fatalf("parse refreshed token: %v", err)
	}

	if _, err := uc.Refresh(ctx, "missing", token.User.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestParseTokenRejects(t *testing.T) {
	uc, _ := setup(t)

	sign := func(method jwt.SigningMethod, key interface{}, claims Claims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return token
	}
	valid := Claims{
		UserID:    "u1",
		SessionID: "s1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "kanban-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongIssuer := valid
	wrongIssuer.Issuer = "someone-else"
	noSession := valid
	noSession.SessionID = ""

	cases := map[string]string{
		"WrongSecret": sign(jwt.SigningMethodHS256, []byte("other-secret"), valid),
		"Expired":     sign(jwt.SigningMethodHS256, []byte("test-secret"), expired),
		"WrongIssuer": sign(jwt.SigningMethodHS256, []byte("test-secret"), wrongIssuer),
		"NoSession":   sign(jwt.SigningMethodHS256, []byte("test-secret"), noSession),
		"NoneAlg":     sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid),
		"Garbage":     "not.a.token",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := uc.ParseToken(token); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}

	if _, err := uc.ParseToken(sign(jwt.SigningMethodHS256, []byte("test-secret"), valid)); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
}

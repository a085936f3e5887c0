package middleware

import (
	"context"
	"testing"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/pkg/httpcontext"
	authUC "github.com/fastygo/kanban/usecase/auth"
)

type fakeAuthority struct {
	revoked bool
}

func (f *fakeAuthority) ParseToken(token string) (*authUC.Claims, error) {
	if token != "good" {
		return nil, domain.ErrUnauthorized
	}
	return &authUC.Claims{UserID: "u1", SessionID: "s1"}, nil
}

func (f *fakeAuthority) VerifySession(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	if f.revoked {
		return nil, domain.ErrSessionNotFound
	}
	return &domain.Session{ID: sessionID, UserID: userID}, nil
}

func TestJWTAuth(t *testing.T) {
	run := func(authority *fakeAuthority, header string) (*fasthttp.RequestCtx, bool, string) {
		var (
			called bool
			seen   string
		)
		handler := JWTAuth(authority, 0, zaptest.NewLogger(t))(func(ctx *fasthttp.RequestCtx) {
			called = true
			seen = httpcontext.UserID(ctx)
		})

		ctx := &fasthttp.RequestCtx{}
		ctx.Request.Header.Set(httpcontext.HeaderUserID, "spoofed")
		if header != "" {
			ctx.Request.Header.Set("Authorization", header)
		}
		handler(ctx)
		return ctx, called, seen
	}

	t.Run("ValidToken", func(t *testing.T) {
		_, called, userID := run(&fakeAuthority{}, "Bearer good")
		if !called || userID != "u1" {
			t.Fatalf("expected handler with u1, got called=%v user=%q", called, userID)
		}
	})

	t.Run("MissingToken", func(t *testing.T) {
		ctx, called, _ := run(&fakeAuthority{}, "")
		if called || ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
			t.Fatalf("expected 401, got called=%v status=%d", called, ctx.Response.StatusCode())
		}
		if got := httpcontext.UserID(ctx); got != "" {
			t.Fatalf("spoofed user id must be cleared, got %q", got)
		}
	})

	t.Run("InvalidToken", func(t *testing.T) {
		ctx, called, _ := run(&fakeAuthority{}, "Bearer forged")
		if called || ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
			t.Fatalf("expected 401, got called=%v status=%d", called, ctx.Response.StatusCode())
		}
	})

	t.Run("RevokedSession", func(t *testing.T) {
		ctx, called, _ := run(&fakeAuthority{revoked: true}, "Bearer good")
		if called || ctx.Response.StatusCode() != fasthttp.StatusUnauthorized {
			t.Fatalf("expected 401, got called=%v status=%d", called, ctx.Response.StatusCode())
		}
	})
}

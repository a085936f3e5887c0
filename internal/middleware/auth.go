package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/kanban/domain"
	"github.com/fastygo/kanban/pkg/httpcontext"
	authUC "github.com/fastygo/kanban/usecase/auth"
)

// SessionAuthority verifies access tokens and the sessions they are bound to.
type SessionAuthority interface {
	ParseToken(token string) (*authUC.Claims, error)
	VerifySession(ctx context.Context, sessionID, userID string) (*domain.Session, error)
}

// JWTAuth admits requests carrying a valid bearer token whose session is still
// live, and exposes the principal through the X-User-ID and X-Session-ID headers.
func JWTAuth(authority SessionAuthority, timeout time.Duration, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			// Principal headers are only ever set here.
			ctx.Request.Header.Del(httpcontext.HeaderUserID)
			ctx.Request.Header.Del(httpcontext.HeaderSessionID)

			tokenString := extractToken(ctx)
			if tokenString == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			claims, err := authority.ParseToken(tokenString)
			if err != nil {
				logger.Warn("invalid jwt token", zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			verifyCtx, cancel := context.WithTimeout(context.Background(), timeout)
			_, err = authority.VerifySession(verifyCtx, claims.SessionID, claims.UserID)
			cancel()
			if err != nil {
				logger.Warn("session rejected", zap.String("session_id", claims.SessionID), zap.Error(err))
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}

			ctx.Request.Header.Set(httpcontext.HeaderUserID, claims.UserID)
			ctx.Request.Header.Set(httpcontext.HeaderSessionID, claims.SessionID)

			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Rajangupta9/taskflow/sessions"
	"github.com/Rajangupta9/taskflow/utils"
)

type contextKey struct{}

var claimsKey contextKey

// Authenticator checks bearer tokens and rejects revoked ones.
type Authenticator struct {
	JWT     *utils.JWT
	Revoked sessions.Revoker
}

func (a *Authenticator) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			utils.ResponseWithError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			utils.ResponseWithError(w, http.StatusUnauthorized, "Invalid Token")
			return
		}

		claims, err := a.JWT.ValidateJwt(tokenString)
		if err != nil {
			utils.ResponseWithError(w, http.StatusUnauthorized, "Invalid Token")
			return
		}
		if a.Revoked != nil {
			revoked, err := a.Revoked.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				slog.Error("revocation lookup failed", "error", err)
				utils.ResponseWithError(w, http.StatusInternalServerError, "Failed to check session")
				return
			}
			if revoked {
				utils.ResponseWithError(w, http.StatusUnauthorized, "Session has ended")
				return
			}
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// ClaimsFrom returns the claims stored by Middleware.
func ClaimsFrom(ctx context.Context) (*utils.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*utils.Claims)
	return c, ok
}

// UserID returns the authenticated user id, or "" outside Middleware.
func UserID(ctx context.Context) string {
	if c, ok := ClaimsFrom(ctx); ok {
		return c.UserID()
	}
	return ""
}

// WithClaims is used by tests that call handlers directly.
func WithClaims(ctx context.Context, c *utils.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hugh/docvault/internal/access"
	"github.com/hugh/docvault/internal/auth"
	"github.com/hugh/docvault/internal/database/models"
)

type contextKey string

const callerKey contextKey = "caller"

// TokenCookie is the cookie login sets and logout clears.
const TokenCookie = "access_token"

// Authenticate resolves the request's token to an active user and stores it
// in the request context. Requests without a token, or whose token does not
// resolve, are rejected with 401.
func Authenticate(authn auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, err := authn.IdentifyCaller(r.Context(), TokenFromRequest(r))
			if err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// TokenFromRequest reads the bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); token != "" {
			return token
		}
	}
	if cookie, err := r.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func WithCaller(ctx context.Context, caller *models.User) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFrom returns the authenticated user, or nil outside Authenticate.
func CallerFrom(ctx context.Context) *models.User {
	if caller, ok := ctx.Value(callerKey).(*models.User); ok {
		return caller
	}
	return nil
}

// RequireRole admits callers whose role is one of roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := access.Authorize(roles, CallerFrom(r.Context())); err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

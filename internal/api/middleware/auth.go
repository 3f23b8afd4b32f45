package middleware

import (
	"context"
	"net/http"

	"github.com/gatherhub/server/internal/api/problem"
	"github.com/gatherhub/server/internal/auth"
	"github.com/gatherhub/server/internal/domain/users"
)

const currentUserKey contextKey = "currentUser"

// UserResolver resolves a token subject to a user record.
type UserResolver interface {
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

// RequireUser validates the bearer token and loads the caller into the
// request context. Missing, malformed, and expired tokens all yield 401,
// as do subjects whose account no longer exists.
func RequireUser(tokens *auth.JWTManager, resolver UserResolver, env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolveUser(r, tokens, resolver)
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				problem.Write(w, r, http.StatusUnauthorized, problem.TypeUnauthorized, "Not authenticated", err, env)
				return
			}

			ctx := contextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalUser loads the caller into the context when a valid bearer token
// is present and passes the request through anonymously otherwise.
func OptionalUser(tokens *auth.JWTManager, resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, err := resolveUser(r, tokens, resolver); err == nil {
				r = r.WithContext(contextWithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveUser(r *http.Request, tokens *auth.JWTManager, resolver UserResolver) (*users.User, error) {
	token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}

	subject, err := tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := resolver.GetByEmail(r.Context(), subject)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	return user, nil
}

func contextWithUser(ctx context.Context, user *users.User) context.Context {
	return context.WithValue(ctx, currentUserKey, user)
}

// ContextWithUser adds a user to a context (exported for handler tests).
func ContextWithUser(ctx context.Context, user *users.User) context.Context {
	return contextWithUser(ctx, user)
}

// UserFromContext returns the authenticated caller, or nil for anonymous
// requests.
func UserFromContext(ctx context.Context) *users.User {
	if ctx == nil {
		return nil
	}
	if user, ok := ctx.Value(currentUserKey).(*users.User); ok {
		return user
	}
	return nil
}

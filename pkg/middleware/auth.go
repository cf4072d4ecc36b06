package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shashiranjanraj/marketplace/pkg/auth"
	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"github.com/shashiranjanraj/marketplace/pkg/response"
)

// Principal is the authenticated caller as loaded from the user store.
type Principal struct {
	ID       uint
	Role     string
	Approved bool
}

// LookupFunc loads the current state of a user. It returns (nil, nil) when
// the user no longer exists.
type LookupFunc func(ctx context.Context, id uint) (*Principal, error)

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromCtx returns the caller stored by Authenticate.
func PrincipalFromCtx(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

func UserIDFromCtx(r *http.Request) (uint, bool) {
	p, ok := PrincipalFromCtx(r.Context())
	return p.ID, ok
}

func RoleFromCtx(r *http.Request) (string, bool) {
	p, ok := PrincipalFromCtx(r.Context())
	return p.Role, ok
}

// bearerToken reads "Authorization: Bearer <token>". Websocket upgrades
// may pass the token as ?token= because browsers cannot set headers there.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}

// Authenticate verifies the bearer token and reloads the user through
// lookup so role and approval changes apply without a new token.
func Authenticate(lookup LookupFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.Unauthorized(w, "Not authorized, no token")
				return
			}

			claims, err := auth.ValidateToken(token)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					response.Unauthorized(w, "Not authorized, token expired")
					return
				}
				response.Unauthorized(w, "Not authorized, invalid token")
				return
			}

			p, err := lookup(r.Context(), claims.UserID)
			if err != nil {
				logger.WithCtx(r.Context()).Error("auth: load user", "user_id", claims.UserID, "error", err)
				response.Error(w, http.StatusInternalServerError, "Internal Server Error")
				return
			}
			if p == nil {
				response.Unauthorized(w, "Not authorized, user not found")
				return
			}

			ctx := WithPrincipal(r.Context(), *p)
			ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("user_id", p.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

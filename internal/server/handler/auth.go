// Package handler provides the HTTP handlers of the cart API.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sevigo/cartpilot/internal/core"
	"github.com/sevigo/cartpilot/internal/storage"
)

type contextKey struct{}

// UserID returns the caller identified by Authenticate.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// WithUserID stores the caller's id on ctx.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// Authenticate reads the bearer token and uses it as the user id. Token
// verification belongs to the identity provider in front of this service.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), token)))
	})
}

// RequirePremium rejects free-tier callers. Users are registered on first use.
func RequirePremium(store storage.Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := store.GetOrCreateUser(r.Context(), UserID(r.Context()))
			if err != nil {
				logger.Error("failed to check subscription", "user_id", UserID(r.Context()), "error", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}
			if user.Tier != core.TierPremium {
				writeJSON(w, http.StatusForbidden, map[string]string{
					"error":   "Premium subscription required",
					"message": "Automated cart creation is a premium feature. Please upgrade to access this feature.",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shubhavasar/storefront-backend/pkg/auth"
	"github.com/shubhavasar/storefront-backend/pkg/config"
	"github.com/shubhavasar/storefront-backend/pkg/logger"
)

type identityCtxKey struct{}

// BearerToken extracts the raw token from the Authorization header, or "".
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// OptionalAuth verifies a bearer token when present and attaches the identity
// to the request context. Missing or invalid tokens continue as guest; no
// endpoint behind this middleware requires authentication.
func OptionalAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := auth.ParseIdentityToken(cfg, token)
			if err != nil {
				if logg != nil {
					logg.Warn(r.Context(), fmt.Sprintf("bearer token rejected: %v", err))
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), identityCtxKey{}, identity)
			if logg != nil {
				ctx = logg.WithUserID(ctx, identity.UserID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the verified identity, if any.
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey{}).(*auth.Identity)
	return identity, ok && identity != nil
}

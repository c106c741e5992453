package auth

import (
	"context"
	"net/http"
	"strings"

	"fintrack/internal/log"
)

type contextKey string

const ownerKey contextKey = "auth.owner"

// WithOwner stores the authenticated owner in ctx.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerKey, owner)
}

// OwnerFromContext returns the authenticated owner, or "" when the request
// was not authenticated.
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}

// Middleware authenticates requests with an "Authorization: Bearer" header
// and calls onUnauthorized when the token is missing or invalid.
func Middleware(v *Verifier, onUnauthorized func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := bearerToken(r.Header.Get("Authorization"))
			if tokenStr == "" {
				onUnauthorized(w, r)
				return
			}
			claims, err := v.ParseToken(tokenStr)
			if err != nil {
				log.FromContext(r.Context()).DebugContext(r.Context(), "Token rejected", log.FieldError, err)
				onUnauthorized(w, r)
				return
			}

			ctx := WithOwner(r.Context(), claims.Subject)
			ctx = log.WithLogger(ctx, log.FromContext(ctx).With(log.FieldOwnerID, claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

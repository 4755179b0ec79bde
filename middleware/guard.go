package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	authcore "github.com/localista/authcore"
)

type principalContextKey struct{}

// PrincipalFromContext returns the authenticated principal stored by
// [RequireAccess].
func PrincipalFromContext(ctx context.Context) (authcore.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(authcore.Principal)
	return p, ok
}

// RequireAccess guards a handler with access-token verification. Every
// credential failure answers a generic 401; a revocation-state outage
// answers 503. Internal error detail never reaches the client.
func RequireAccess(manager *authcore.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			principal, err := manager.VerifyAccess(r.Context(), raw)
			if err != nil {
				if errors.Is(err, authcore.ErrVerificationUnavailable) {
					http.Error(w, "service unavailable", http.StatusServiceUnavailable)
					return
				}
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	raw := value[len(bearer):]
	if raw == "" {
		return "", false
	}

	return raw, true
}

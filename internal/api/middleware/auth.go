package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/dealflow-studio/engine/internal/identity"
	"github.com/dealflow-studio/engine/pkg/logger"
)

// Auth resolves the Bearer token through resolver and stores the principal in
// the request context. Requests without a valid token get 401.
func Auth(resolver identity.Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			principal, err := resolver.Resolve(r.Context(), token)
			switch {
			case errors.Is(err, identity.ErrUnauthenticated):
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			case err != nil:
				logger.L().Error("identity provider unavailable",
					zap.String("id", GetRequestID(r.Context())),
					zap.Error(err))
				writeError(w, http.StatusServiceUnavailable, "Authentication service unavailable")
				return
			case principal == nil || principal.ID == "":
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			setRequestUser(r.Context(), principal.ID)
			next.ServeHTTP(w, r.WithContext(identity.WithPrincipal(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	ah := r.Header.Get("Authorization")
	if len(ah) < len("Bearer ") || !strings.EqualFold(ah[:len("Bearer ")], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(ah[len("Bearer "):])
	return token, token != ""
}

// GetPrincipal returns the authenticated principal, or nil outside Auth.
func GetPrincipal(r *http.Request) *identity.Principal {
	return identity.FromContext(r.Context())
}

// GetUserID returns the authenticated user's id, or "".
func GetUserID(r *http.Request) string {
	if p := GetPrincipal(r); p != nil {
		return p.ID
	}
	return ""
}

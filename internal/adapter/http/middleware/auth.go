package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/infrastructure/auth"
)

// Development headers used when token authentication is disabled.
const (
	ActorIDHeader    = "X-Actor-ID"
	ActorNameHeader  = "X-Actor-Name"
	ActorAdminHeader = "X-Actor-Admin"
)

// AuthMiddleware requires a bearer token and attaches the actor it names.
func AuthMiddleware(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			// Parse Bearer token
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeJSONError(w, http.StatusUnauthorized, "invalid authorization header format")
				return
			}

			claims, err := jwtManager.Verify(parts[1])
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := domain.ContextWithActor(r.Context(), claims.Actor())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HeaderActor trusts the X-Actor-* headers. It is meant for development
// and for deployments behind an authenticating proxy.
func HeaderActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(ActorIDHeader))
		if id == "" {
			next.ServeHTTP(w, r)
			return
		}

		privileged, _ := strconv.ParseBool(r.Header.Get(ActorAdminHeader))
		actor := domain.Actor{
			ID:         id,
			Name:       strings.TrimSpace(r.Header.Get(ActorNameHeader)),
			Privileged: privileged,
		}

		next.ServeHTTP(w, r.WithContext(domain.ContextWithActor(r.Context(), actor)))
	})
}

// RequireRole rejects callers whose actor lacks the given role.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := domain.ActorFromContext(r.Context())
			if !ok || !actor.IsAuthenticated() {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			if role.IsPrivileged() && !actor.Privileged {
				writeJSONError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":` + strconv.Quote(message) + `}`))
}

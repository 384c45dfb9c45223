package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"tienda-be/internal/usuario"
)

type contextKey string

const (
	userIDKey contextKey = "userID"
	rolKey    contextKey = "rol"
)

// Auth parses the bearer token, when present, and stows the identity in the
// request context. Requests without a valid token pass through anonymously;
// route-level guards decide whether that is acceptable.
func Auth(tokens *usuario.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := usuario.ExtractAccessToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Parse(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			ctx = context.WithValue(ctx, rolKey, claims.Rol)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID returns the authenticated user's ID, if any.
func GetUserID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(userIDKey).(int)
	return id, ok
}

// GetRol returns the authenticated user's role, if any.
func GetRol(ctx context.Context) (usuario.Rol, bool) {
	rol, ok := ctx.Value(rolKey).(usuario.Rol)
	return rol, ok
}

// RequireAdmin rejects requests whose context does not carry the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rol, ok := GetRol(r.Context())
		if !ok {
			writeStatus(w, http.StatusUnauthorized, "token no proporcionado")
			return
		}
		if rol != usuario.RolAdmin {
			writeStatus(w, http.StatusForbidden, "no autorizado")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeStatus(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}

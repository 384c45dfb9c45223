package usuario

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tienda-be/internal/logger"

	"go.uber.org/zap"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type credentialsRequest struct {
	Nombre   string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "error": "cuerpo de la petición inválido",
		})
		return
	}

	token, u, err := h.svc.Register(r.Context(), req.Nombre, req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Usuario registrado exitosamente",
		"user":    u,
		"token":   token,
	})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false, "error": "cuerpo de la petición inválido",
		})
		return
	}

	token, u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login exitoso",
		"user":    u,
		"token":   token,
	})
}

// Verify handles GET /api/auth/verify.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	token := ExtractAccessToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false, "error": "token no proporcionado",
		})
		return
	}

	u, err := h.svc.Verify(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    u,
	})
}

// Profile handles GET /api/auth/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	token := ExtractAccessToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{
			"success": false, "error": "token no proporcionado",
		})
		return
	}

	u, err := h.svc.Verify(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	perfil, err := h.svc.Profile(r.Context(), u.ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    perfil,
	})
}

// ExtractAccessToken reads the bearer token, preferring the access_token
// cookie over the Authorization header.
func ExtractAccessToken(r *http.Request) string {
	if cookie, err := r.Cookie("access_token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": ve.Error()})
	case errors.Is(err, ErrEmailRegistrado):
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
	case errors.Is(err, ErrCredenciales),
		errors.Is(err, ErrCuentaDesactivada),
		errors.Is(err, ErrTokenInvalido):
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": err.Error()})
	default:
		logger.FromCtx(r.Context()).Error("auth handler error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false, "error": "error interno del servidor",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package dashboard

import (
	"encoding/json"
	"net/http"

	"tienda-be/internal/logger"

	"go.uber.org/zap"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Estadisticas handles GET /api/dashboard/estadisticas.
func (h *Handler) Estadisticas(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.Estadisticas(r.Context())
	if err != nil {
		h.writeError(w, r, "error obteniendo estadísticas", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// UltimasVentas handles GET /api/dashboard/ultimas-ventas.
func (h *Handler) UltimasVentas(w http.ResponseWriter, r *http.Request) {
	ventas, err := h.repo.UltimasVentas(r.Context())
	if err != nil {
		h.writeError(w, r, "error obteniendo últimas ventas", err)
		return
	}
	writeJSON(w, http.StatusOK, ventas)
}

// StockBajo handles GET /api/dashboard/stock-bajo.
func (h *Handler) StockBajo(w http.ResponseWriter, r *http.Request) {
	productos, err := h.repo.StockBajo(r.Context())
	if err != nil {
		h.writeError(w, r, "error obteniendo productos con stock bajo", err)
		return
	}
	writeJSON(w, http.StatusOK, productos)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger.FromCtx(r.Context()).Error(msg, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"success": false,
		"error":   msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

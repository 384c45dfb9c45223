package pago

import (
	"encoding/json"
	"errors"
	"net/http"

	"tienda-be/internal/logger"
	"tienda-be/internal/wompi"

	"go.uber.org/zap"
)

// Handler exposes the payment routes under /api/pagos.
type Handler struct {
	svc       Service
	publicKey string
}

func NewHandler(svc Service, publicKey string) *Handler {
	return &Handler{svc: svc, publicKey: publicKey}
}

// Config hands the frontend the merchant public key. The private key and the
// secrets never leave the backend.
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"publicKey": h.publicKey,
	})
}

// CrearTransaccion handles POST /api/pagos/crear-transaccion.
func (h *Handler) CrearTransaccion(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "cuerpo de la petición inválido",
		})
		return
	}

	res, err := h.svc.CrearTransaccion(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err, "Error al procesar la transacción")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"data":        res.Transaction,
		"redirectUrl": res.RedirectURL,
	})
}

// ConsultarTransaccion handles GET /api/pagos/transaccion/{id}.
func (h *Handler) ConsultarTransaccion(w http.ResponseWriter, r *http.Request) {
	tx, err := h.svc.ConsultarTransaccion(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err, "Error al consultar la transacción")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    tx,
	})
}

// BancosPSE handles GET /api/pagos/bancos-pse.
func (h *Handler) BancosPSE(w http.ResponseWriter, r *http.Request) {
	bancos, err := h.svc.ListarBancos(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Error al obtener lista de bancos")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"banks":   bancos,
	})
}

// writeError maps the error taxonomy to HTTP codes: validation → 400,
// gateway rejection → 500 with the gateway detail, anything else → 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, mensaje string) {
	var ve ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": ve.Error(),
		})
		return
	}

	log := logger.FromCtx(r.Context())

	var apiErr *wompi.APIError
	if errors.As(err, &apiErr) {
		log.Error("gateway rejected the request",
			zap.Int("status", apiErr.StatusCode),
			zap.ByteString("body", apiErr.Body),
		)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":   mensaje,
			"details": json.RawMessage(apiErr.Body),
		})
		return
	}

	log.Error(mensaje, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]any{
		"error":   mensaje,
		"details": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"tienda-be/internal/logger"
	"tienda-be/internal/metrics"
	"tienda-be/internal/orden"
	"tienda-be/internal/pago"
	"tienda-be/internal/wompi"

	"go.uber.org/zap"
)

const proveedor = "WOMPI"

// Handler receives Wompi's asynchronous event callbacks. Its responsibility
// ends at producing a verified, deduplicated, typed event; the resulting
// status transition is delegated to the order service.
type Handler struct {
	OrdenSvc    orden.Service
	Pagos       pago.Repository
	EventSecret string
	Metricas    *metrics.Registry
}

func NewHandler(ordenSvc orden.Service, pagos pago.Repository, eventSecret string, m *metrics.Registry) *Handler {
	return &Handler{
		OrdenSvc:    ordenSvc,
		Pagos:       pagos,
		EventSecret: eventSecret,
		Metricas:    m,
	}
}

// WebhookHandler is the route handler for POST /api/pagos/webhook.
func (h *Handler) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	h.Metricas.WebhooksRecibidos.Inc()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var ev wompi.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	// Nothing in the payload is trusted until the checksum passes. A failure
	// here is rejected without detail: the sender is not the gateway.
	headerChecksum := r.Header.Get(wompi.ChecksumHeader)
	if err := ev.Verify(headerChecksum, h.EventSecret); err != nil {
		h.Metricas.WebhooksRechazados.Inc()
		log.Warn("webhook rejected: bad event checksum",
			zap.String("event", ev.Event),
			zap.String("remote", r.RemoteAddr),
		)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	referencia := ""
	tx, txErr := ev.Transaction()
	if txErr == nil {
		referencia = tx.Reference
	}

	// The checksum is unique per signed content, so it doubles as the event
	// id for deduplication.
	eventoID := ev.Signature.Checksum
	if eventoID == "" {
		eventoID = headerChecksum
	}

	webhookID, duplicado, err := h.Pagos.SaveWebhook(ctx, proveedor, eventoID, ev.Event, referencia, body)
	if err != nil {
		log.Error("failed to record webhook", zap.Error(err))
		http.Error(w, "failed to record webhook", http.StatusInternalServerError)
		return
	}
	if duplicado {
		h.Metricas.WebhooksDuplicados.Inc()
		log.Info("duplicate webhook acknowledged", zap.String("evento_id", eventoID))
		writeOK(w)
		return
	}

	switch ev.Event {
	case "transaction.updated":
		if txErr != nil {
			h.fallar(ctx, w, webhookID, "event carries no transaction", txErr)
			return
		}
		if err := h.aplicarTransaccion(ctx, tx); err != nil {
			h.fallar(ctx, w, webhookID, "failed to apply transaction status", err)
			return
		}
	default:
		// Unknown event types are acknowledged and ignored so new gateway
		// events never bounce.
		log.Info("unhandled webhook event", zap.String("event", ev.Event))
	}

	if err := h.Pagos.MarkWebhookProcesado(ctx, webhookID); err != nil {
		logger.FromCtx(ctx).Error("failed to mark webhook processed", zap.Error(err))
	}

	writeOK(w)
}

// aplicarTransaccion mirrors the gateway-reported status onto the local
// payment row and the order.
func (h *Handler) aplicarTransaccion(ctx context.Context, tx *wompi.Transaction) error {
	log := logger.FromCtx(ctx).With(
		zap.String("transaccion_id", tx.ID),
		zap.String("referencia", tx.Reference),
		zap.String("status", tx.Status),
	)

	if err := h.Pagos.UpdateEstadoByTransaccion(ctx, tx.ID, tx.Status); err != nil {
		log.Error("failed to update payment mirror", zap.Error(err))
	}

	switch tx.Status {
	case wompi.StatusApproved:
		return h.OrdenSvc.MarkAsPaid(ctx, tx.Reference)
	case wompi.StatusDeclined, wompi.StatusVoided, wompi.StatusError:
		return h.OrdenSvc.MarkAsFailed(ctx, tx.Reference)
	default:
		// PENDING and intermediate states carry no final outcome yet.
		log.Info("transaction status has no order effect")
		return nil
	}
}

// fallar records the processing failure and answers 500 so the gateway's
// retry mechanism redelivers the event.
func (h *Handler) fallar(ctx context.Context, w http.ResponseWriter, webhookID int64, motivo string, err error) {
	logger.FromCtx(ctx).Error(motivo, zap.Error(err))
	if markErr := h.Pagos.MarkWebhookFallido(ctx, webhookID, err.Error()); markErr != nil {
		logger.FromCtx(ctx).Error("failed to mark webhook failed", zap.Error(markErr))
	}
	http.Error(w, "failed to process webhook", http.StatusInternalServerError)
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"success":true}`))
}

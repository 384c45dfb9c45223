package webhook

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tienda-be/internal/metrics"
	"tienda-be/internal/orden"
	"tienda-be/internal/pago"
	"tienda-be/internal/wompi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testEventSecret = "evt_secret"

type MockOrdenService struct {
	mock.Mock
}

func (m *MockOrdenService) MarkAsPaid(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

func (m *MockOrdenService) MarkAsFailed(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

type MockPagoRepository struct {
	mock.Mock
}

func (m *MockPagoRepository) SavePago(ctx context.Context, p *pago.Pago) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPagoRepository) UpdateEstadoByTransaccion(ctx context.Context, id, estado string) error {
	return m.Called(ctx, id, estado).Error(0)
}

func (m *MockPagoRepository) GetByReferencia(ctx context.Context, ref string) (*pago.Pago, error) {
	args := m.Called(ctx, ref)
	if p := args.Get(0); p != nil {
		return p.(*pago.Pago), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPagoRepository) SaveWebhook(ctx context.Context, proveedor, eventoID, tipoEvento, referencia string, payload json.RawMessage) (int64, bool, error) {
	args := m.Called(ctx, proveedor, eventoID, tipoEvento, referencia, payload)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockPagoRepository) MarkWebhookProcesado(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPagoRepository) MarkWebhookFallido(ctx context.Context, id int64, motivo string) error {
	return m.Called(ctx, id, motivo).Error(0)
}

// signedEvent builds an event body whose checksum is valid for
// testEventSecret, the way the gateway would sign it.
func signedEvent(t *testing.T, eventType, txID, status string, cents int64, reference string) []byte {
	t.Helper()

	const timestamp = 1530291411
	sum := sha256.Sum256([]byte(
		txID + status + fmt.Sprintf("%d", cents) + fmt.Sprintf("%d", timestamp) + testEventSecret,
	))
	checksum := hex.EncodeToString(sum[:])

	payload := map[string]any{
		"event": eventType,
		"data": map[string]any{
			"transaction": map[string]any{
				"id":              txID,
				"status":          status,
				"amount_in_cents": cents,
				"reference":       reference,
			},
		},
		"signature": map[string]any{
			"properties": []string{"transaction.id", "transaction.status", "transaction.amount_in_cents"},
			"checksum":   checksum,
		},
		"timestamp": timestamp,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func newTestHandler(ordenSvc orden.Service, repo pago.Repository) *Handler {
	return NewHandler(ordenSvc, repo, testEventSecret, metrics.NewRegistry())
}

func post(h *Handler, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/pagos/webhook", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	h.WebhookHandler(w, req)
	return w
}

func TestWebhookHandler(t *testing.T) {
	t.Run("Approved_MarksOrderPaid", func(t *testing.T) {
		ordenSvc := new(MockOrdenService)
		repo := new(MockPagoRepository)
		h := newTestHandler(ordenSvc, repo)

		body := signedEvent(t, "transaction.updated", "tx-1", wompi.StatusApproved, 5000000, "ORD-1")

		repo.On("SaveWebhook", mock.Anything, "WOMPI", mock.Anything, "transaction.updated", "ORD-1", mock.Anything).
			Return(int64(1), false, nil)
		repo.On("UpdateEstadoByTransaccion", mock.Anything, "tx-1", wompi.StatusApproved).Return(nil)
		ordenSvc.On("MarkAsPaid", mock.Anything, "ORD-1").Return(nil)
		repo.On("MarkWebhookProcesado", mock.Anything, int64(1)).Return(nil)

		w := post(h, body)

		assert.Equal(t, http.StatusOK, w.Code)
		ordenSvc.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("Declined_MarksOrderFailed", func(t *testing.T) {
		ordenSvc := new(MockOrdenService)
		repo := new(MockPagoRepository)
		h := newTestHandler(ordenSvc, repo)

		body := signedEvent(t, "transaction.updated", "tx-2", wompi.StatusDeclined, 5000000, "ORD-2")

		repo.On("SaveWebhook", mock.Anything, "WOMPI", mock.Anything, "transaction.updated", "ORD-2", mock.Anything).
			Return(int64(2), false, nil)
		repo.On("UpdateEstadoByTransaccion", mock.Anything, "tx-2", wompi.StatusDeclined).Return(nil)
		ordenSvc.On("MarkAsFailed", mock.Anything, "ORD-2").Return(nil)
		repo.On("MarkWebhookProcesado", mock.Anything, int64(2)).Return(nil)

		w := post(h, body)

		assert.Equal(t, http.StatusOK, w.Code)
		ordenSvc.AssertExpectations(t)
	})

	t.Run("Pending_NoOrderEffect", func(t *testing.T) {
		ordenSvc := new(MockOrdenService)
		repo := new(MockPagoRepository)
		h := newTestHandler(ordenSvc, repo)

		body := signedEvent(t, "transaction.updated", "tx-3", wompi.StatusPending, 5000000, "ORD-3")

		repo.On("SaveWebhook", mock.Anything, "WOMPI", mock.Anything, "transaction.updated", "ORD-3", mock.Anything).
			Return(int64(3), false, nil)
		repo.On("UpdateEstadoByTransaccion", mock.Anything, "tx-3", wompi.StatusPending).Return(nil)
		repo.On("MarkWebhookProcesado", mock.Anything, int64(3)).Return(nil)

		w := post(h, body)

		assert.Equal(t, http.StatusOK, w.Code)
		ordenSvc.AssertNotCalled(t, "MarkAsPaid")
		ordenSvc.AssertNotCalled(t, "MarkAsFailed")
	})

	t.Run("BadChecksum_RejectedForAnyEventType", func(t *testing.T) {
		for _, eventType := range []string{"transaction.updated", "nequi_token.updated", "anything.else"} {
			ordenSvc := new(MockOrdenService)
			repo := new(MockPagoRepository)
			h := newTestHandler(ordenSvc, repo)

			body := signedEvent(t, eventType, "tx-1", wompi.StatusApproved, 5000000, "ORD-1")
			tampered := bytes.Replace(body, []byte("5000000"), []byte("1"), 1)

			w := post(h, tampered)

			assert.Equal(t, http.StatusUnauthorized, w.Code, "event type %s", eventType)
			repo.AssertNotCalled(t, "SaveWebhook")
			ordenSvc.AssertNotCalled(t, "MarkAsPaid")
			ordenSvc.AssertNotCalled(t, "MarkAsFailed")
		}
	})

	t.Run("MissingChecksum_Rejected", func(t *testing.T) {
		ordenSvc := new(MockOrdenService)
		repo := new(MockPagoRepository)
		h := newTestHandler(ordenSvc, repo)

		w := post(h, []byte(`{"event":"transaction.updated","data":{},"timestamp":1}`))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		repo.AssertNotCalled(t, "SaveWebhook")
	})

	t.Run("Duplicate_AcknowledgedWithoutProcessing", func(t *testing.T) {
		ordenSvc := new(MockOrdenService)
		repo := new(MockPagoRepository)
		h := newTestHandler(ordenSvc, repo)

		body := signedEvent(t, "transaction.updated", "tx-1", wompi.StatusApproved, 5000000, "ORD-1")

		repo.On("SaveWebhook", mock.Anything, "WOMPI", mock.Anything, "transaction.updated", "ORD-1", mock.Anything).
			Return(int64(0), true, nil)

		w := post(h, body)

		assert.Equal(t, http.StatusOK, w.Code)
		ordenSvc.AssertNotCalled(t, "MarkAsPaid")
		repo.AssertNotCalled(t, "MarkWebhookProcesado")
	})

	t.Run("UnknownEvent_Ignored", func(t *testing.T) {
		ordenSvc := new(MockOrdenService)
		repo := new(MockPagoRepository)
		h := newTestHandler(ordenSvc, repo)

		body := signedEvent(t, "some.future.event", "tx-1", wompi.StatusApproved, 5000000, "ORD-1")

		repo.On("SaveWebhook", mock.Anything, "WOMPI", mock.Anything, "some.future.event", "ORD-1", mock.Anything).
			Return(int64(5), false, nil)
		repo.On("MarkWebhookProcesado", mock.Anything, int64(5)).Return(nil)

		w := post(h, body)

		assert.Equal(t, http.StatusOK, w.Code)
		ordenSvc.AssertNotCalled(t, "MarkAsPaid")
		ordenSvc.AssertNotCalled(t, "MarkAsFailed")
	})

	t.Run("OrderUpdateError_Returns500", func(t *testing.T) {
		ordenSvc := new(MockOrdenService)
		repo := new(MockPagoRepository)
		h := newTestHandler(ordenSvc, repo)

		body := signedEvent(t, "transaction.updated", "tx-1", wompi.StatusApproved, 5000000, "ORD-1")

		repo.On("SaveWebhook", mock.Anything, "WOMPI", mock.Anything, "transaction.updated", "ORD-1", mock.Anything).
			Return(int64(7), false, nil)
		repo.On("UpdateEstadoByTransaccion", mock.Anything, "tx-1", wompi.StatusApproved).Return(nil)
		ordenSvc.On("MarkAsPaid", mock.Anything, "ORD-1").Return(errors.New("db down"))
		repo.On("MarkWebhookFallido", mock.Anything, int64(7), "db down").Return(nil)

		w := post(h, body)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		repo.AssertCalled(t, "MarkWebhookFallido", mock.Anything, int64(7), "db down")
	})

	t.Run("FailedDeliveryIsReprocessedOnRetry", func(t *testing.T) {
		ordenSvc := new(MockOrdenService)
		repo := new(MockPagoRepository)
		h := newTestHandler(ordenSvc, repo)

		body := signedEvent(t, "transaction.updated", "tx-1", wompi.StatusApproved, 5000000, "ORD-1")

		// The repository hands the same row back on the retry because the
		// first delivery never reached MarkWebhookProcesado.
		repo.On("SaveWebhook", mock.Anything, "WOMPI", mock.Anything, "transaction.updated", "ORD-1", mock.Anything).
			Return(int64(7), false, nil).Twice()
		repo.On("UpdateEstadoByTransaccion", mock.Anything, "tx-1", wompi.StatusApproved).Return(nil)
		ordenSvc.On("MarkAsPaid", mock.Anything, "ORD-1").Return(errors.New("db down")).Once()
		repo.On("MarkWebhookFallido", mock.Anything, int64(7), "db down").Return(nil).Once()
		ordenSvc.On("MarkAsPaid", mock.Anything, "ORD-1").Return(nil).Once()
		repo.On("MarkWebhookProcesado", mock.Anything, int64(7)).Return(nil).Once()

		first := post(h, body)
		retry := post(h, body)

		assert.Equal(t, http.StatusInternalServerError, first.Code)
		assert.Equal(t, http.StatusOK, retry.Code)
		ordenSvc.AssertNumberOfCalls(t, "MarkAsPaid", 2)
		repo.AssertCalled(t, "MarkWebhookProcesado", mock.Anything, int64(7))
	})

	t.Run("InvalidJSON_BadRequest", func(t *testing.T) {
		h := newTestHandler(new(MockOrdenService), new(MockPagoRepository))

		w := post(h, []byte(`{nope`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

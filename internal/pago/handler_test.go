package pago

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"tienda-be/internal/wompi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandler_Config(t *testing.T) {
	h := NewHandler(nil, "pub_test_123")

	req := httptest.NewRequest("GET", "/api/pagos/config", nil)
	w := httptest.NewRecorder()
	h.Config(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pub_test_123", resp["publicKey"])
}

func TestHandler_CrearTransaccion(t *testing.T) {
	newHandler := func(gw *fakeGateway) *Handler {
		repo := new(MockRepository)
		repo.On("SavePago", mock.Anything, mock.Anything).Return(nil)
		return NewHandler(newTestService(gw, repo), "pub_test_123")
	}

	t.Run("Success", func(t *testing.T) {
		gw := &fakeGateway{
			createResp: approvedPSEResponse("tx-1", "ORD-1", "https://bank.example/pay/123", 5000000),
		}
		h := newHandler(gw)

		body := `{
			"amount": 50000,
			"currency": "COP",
			"customerEmail": "a@b.com",
			"reference": "ORD-1",
			"customerData": {"userType": 0, "legalIdType": "CC", "legalId": "123", "bankCode": "1007"}
		}`
		req := httptest.NewRequest("POST", "/api/pagos/crear-transaccion", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		h.CrearTransaccion(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success     bool               `json:"success"`
			RedirectURL string             `json:"redirectUrl"`
			Data        *wompi.Transaction `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "https://bank.example/pay/123", resp.RedirectURL)
		assert.Equal(t, "tx-1", resp.Data.ID)
		assert.Equal(t, int64(5000000), gw.lastRequest.AmountInCents)
	})

	t.Run("InvalidJSONBody", func(t *testing.T) {
		h := newHandler(&fakeGateway{})

		req := httptest.NewRequest("POST", "/api/pagos/crear-transaccion", bytes.NewBufferString(`{nope`))
		w := httptest.NewRecorder()
		h.CrearTransaccion(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ValidationError400", func(t *testing.T) {
		gw := &fakeGateway{}
		h := newHandler(gw)

		body := `{"amount": 50000, "currency": "COP", "reference": "ORD-1", "customerData": {}}`
		req := httptest.NewRequest("POST", "/api/pagos/crear-transaccion", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		h.CrearTransaccion(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, gw.createCalls)
		assert.Contains(t, w.Body.String(), "customerEmail")
	})

	t.Run("GatewayError500WithDetails", func(t *testing.T) {
		gw := &fakeGateway{
			createErr: &wompi.APIError{
				StatusCode: 422,
				Body:       []byte(`{"error":{"type":"INVALID_DATA"}}`),
			},
		}
		h := newHandler(gw)

		body := `{"amount": 50000, "customerEmail": "a@b.com", "reference": "ORD-1", "customerData": {}}`
		req := httptest.NewRequest("POST", "/api/pagos/crear-transaccion", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		h.CrearTransaccion(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_DATA")
	})

	t.Run("MissingRedirect500", func(t *testing.T) {
		gw := &fakeGateway{
			createResp: approvedPSEResponse("tx-1", "ORD-1", "", 5000000),
		}
		h := newHandler(gw)

		body := `{"amount": 50000, "customerEmail": "a@b.com", "reference": "ORD-1", "customerData": {}}`
		req := httptest.NewRequest("POST", "/api/pagos/crear-transaccion", bytes.NewBufferString(body))
		w := httptest.NewRecorder()
		h.CrearTransaccion(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandler_ConsultarTransaccion(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		gw := &fakeGateway{getResp: &wompi.Transaction{ID: "tx-9", Status: wompi.StatusApproved}}
		h := NewHandler(newTestService(gw, new(MockRepository)), "pub")

		req := httptest.NewRequest("GET", "/api/pagos/transaccion/tx-9", nil)
		req.SetPathValue("id", "tx-9")
		w := httptest.NewRecorder()
		h.ConsultarTransaccion(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "APPROVED")
	})

	t.Run("GatewayError", func(t *testing.T) {
		gw := &fakeGateway{getErr: &wompi.APIError{StatusCode: 404, Body: []byte(`{"error":{"type":"NOT_FOUND_ERROR"}}`)}}
		h := NewHandler(newTestService(gw, new(MockRepository)), "pub")

		req := httptest.NewRequest("GET", "/api/pagos/transaccion/missing", nil)
		req.SetPathValue("id", "missing")
		w := httptest.NewRecorder()
		h.ConsultarTransaccion(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandler_BancosPSE(t *testing.T) {
	gw := &fakeGateway{banks: []wompi.FinancialInstitution{
		{Code: "1007", Name: "Bancolombia"},
	}}
	h := NewHandler(newTestService(gw, new(MockRepository)), "pub")

	req := httptest.NewRequest("GET", "/api/pagos/bancos-pse", nil)
	w := httptest.NewRecorder()
	h.BancosPSE(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool                         `json:"success"`
		Banks   []wompi.FinancialInstitution `json:"banks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Banks, 1)
	assert.Equal(t, "Bancolombia", resp.Banks[0].Name)
}

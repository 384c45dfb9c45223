package wompi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"tienda-be/internal/logger"

	"go.uber.org/zap"
)

// APIError carries the gateway's own error body so callers can surface it
// instead of swallowing it.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wompi error: status %d: %s", e.StatusCode, string(e.Body))
}

// Client is a thin wrapper over Wompi's REST API. Read-only calls use the
// merchant public key, transaction creation uses the private key. No call is
// ever retried here: a duplicated POST could double-charge.
type Client struct {
	publicKey  string
	privateKey string
	baseURL    string
	httpClient *http.Client
}

func NewClient(publicKey, privateKey, baseURL string) *Client {
	if publicKey == "" || privateKey == "" {
		logger.L().Warn("Wompi keys are empty")
	}

	return &Client{
		publicKey:  publicKey,
		privateKey: privateKey,
		baseURL:    baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// dataEnvelope is Wompi's standard response wrapper.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// CreateTransaction submits a new transaction. The payload must already carry
// the integrity signature for its amount/currency/reference.
func (c *Client) CreateTransaction(ctx context.Context, req *TransactionRequest) (*Transaction, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("reference", req.Reference),
		zap.Int64("amount_in_cents", req.AmountInCents),
		zap.String("currency", req.Currency),
	)

	body, err := c.do(ctx, http.MethodPost, "/transactions", c.privateKey, req)
	if err != nil {
		log.Error("Wompi transaction creation failed", zap.Error(err))
		return nil, err
	}

	tx, err := decodeTransaction(body)
	if err != nil {
		log.Error("failed decoding Wompi response", zap.Error(err))
		return nil, err
	}

	log.Info("Wompi transaction created",
		zap.String("transaction_id", tx.ID),
		zap.String("status", tx.Status),
	)
	return tx, nil
}

// GetTransaction fetches a transaction by its gateway-assigned id.
func (c *Client) GetTransaction(ctx context.Context, id string) (*Transaction, error) {
	log := logger.FromCtx(ctx).With(zap.String("transaction_id", id))

	body, err := c.do(ctx, http.MethodGet, "/transactions/"+id, c.publicKey, nil)
	if err != nil {
		log.Error("Wompi transaction lookup failed", zap.Error(err))
		return nil, err
	}

	tx, err := decodeTransaction(body)
	if err != nil {
		log.Error("failed decoding Wompi response", zap.Error(err))
		return nil, err
	}
	return tx, nil
}

// ListFinancialInstitutions returns the PSE redirect banks.
func (c *Client) ListFinancialInstitutions(ctx context.Context) ([]FinancialInstitution, error) {
	body, err := c.do(ctx, http.MethodGet, "/pse/financial_institutions", c.publicKey, nil)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list PSE banks", zap.Error(err))
		return nil, err
	}

	var env dataEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode wompi response: %w", err)
	}

	var banks []FinancialInstitution
	if err := json.Unmarshal(env.Data, &banks); err != nil {
		return nil, fmt.Errorf("decode wompi response: %w", err)
	}
	return banks, nil
}

// do issues one request with bearer auth and returns the raw response body.
// Non-2xx responses become an *APIError carrying the gateway body.
func (c *Client) do(ctx context.Context, method, path, key string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+key)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read wompi response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}

func decodeTransaction(body []byte) (*Transaction, error) {
	var env dataEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode wompi response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil, fmt.Errorf("decode wompi response: missing data field")
	}

	var tx Transaction
	if err := json.Unmarshal(env.Data, &tx); err != nil {
		return nil, fmt.Errorf("decode wompi response: %w", err)
	}
	return &tx, nil
}

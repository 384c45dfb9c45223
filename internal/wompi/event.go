package wompi

import (
	"bytes"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ChecksumHeader carries the event checksum on webhook deliveries.
const ChecksumHeader = "X-Event-Checksum"

var (
	ErrInvalidChecksum = errors.New("invalid event checksum")
	ErrNoChecksum      = errors.New("event carries no checksum")
)

// Event is one webhook delivery from Wompi. Data is kept raw so the checksum
// can be computed over the exact values the gateway signed.
type Event struct {
	Event       string          `json:"event"`
	Data        json.RawMessage `json:"data"`
	Environment string          `json:"environment,omitempty"`
	Signature   EventSignature  `json:"signature"`
	Timestamp   int64           `json:"timestamp"`
	SentAt      string          `json:"sent_at,omitempty"`
}

type EventSignature struct {
	// Properties lists the data paths whose values are covered by the
	// checksum, e.g. "transaction.id".
	Properties []string `json:"properties"`
	Checksum   string   `json:"checksum"`
}

// Transaction decodes data.transaction from the event payload.
func (e *Event) Transaction() (*Transaction, error) {
	var data struct {
		Transaction *Transaction `json:"transaction"`
	}
	if err := json.Unmarshal(e.Data, &data); err != nil {
		return nil, fmt.Errorf("decode event data: %w", err)
	}
	if data.Transaction == nil {
		return nil, errors.New("event data carries no transaction")
	}
	return data.Transaction, nil
}

// Verify checks the event's authenticity against the merchant event secret:
// SHA-256 over the concatenated signature.properties values, the timestamp
// and the secret. The header checksum is authoritative when present,
// otherwise the body's signature.checksum is used. Nothing in the payload may
// be trusted before this passes.
func (e *Event) Verify(headerChecksum, eventSecret string) error {
	expected := headerChecksum
	if expected == "" {
		expected = e.Signature.Checksum
	}
	if expected == "" {
		return ErrNoChecksum
	}

	computed, err := e.checksum(eventSecret)
	if err != nil {
		return err
	}

	// Wompi documents the checksum in uppercase hex; compare case-insensitively
	// and in constant time.
	if subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(expected)),
		[]byte(computed),
	) != 1 {
		return ErrInvalidChecksum
	}
	return nil
}

func (e *Event) checksum(secret string) (string, error) {
	var sb strings.Builder
	for _, prop := range e.Signature.Properties {
		value, err := e.resolveProperty(prop)
		if err != nil {
			return "", err
		}
		sb.WriteString(value)
	}
	sb.WriteString(strconv.FormatInt(e.Timestamp, 10))
	sb.WriteString(secret)

	sum := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:]), nil
}

// resolveProperty walks a dotted path like "transaction.amount_in_cents"
// through the raw data object. Numbers keep their wire form via json.Number
// so integer amounts do not turn into scientific notation.
func (e *Event) resolveProperty(path string) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(e.Data))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return "", fmt.Errorf("decode event data: %w", err)
	}

	var current any = data
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return "", fmt.Errorf("signature property %q not found", path)
		}
		current, ok = obj[part]
		if !ok {
			return "", fmt.Errorf("signature property %q not found", path)
		}
	}

	switch v := current.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("signature property %q has unsupported type", path)
	}
}

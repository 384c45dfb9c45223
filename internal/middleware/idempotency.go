package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"
)

// cachedResponse is a completed response held for replay.
type cachedResponse struct {
	bodyHash   string
	statusCode int
	header     http.Header
	body       []byte
	storedAt   time.Time
}

// inFlight marks a key whose first request has not finished yet.
type entry struct {
	done     chan struct{}
	response *cachedResponse
	bodyHash string
}

// IdempotencyCache replays the stored response when a client retries a
// request with the same Idempotency-Key. A reused key with a different
// body is a client bug and gets a 409.
type IdempotencyCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
}

func NewIdempotencyCache(ttl time.Duration) *IdempotencyCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	c := &IdempotencyCache{
		entries: make(map[string]*entry),
		ttl:     ttl,
	}
	go c.sweep()
	return c
}

func (c *IdempotencyCache) sweep() {
	for {
		time.Sleep(time.Minute)

		c.mu.Lock()
		for key, e := range c.entries {
			if e.response != nil && time.Since(e.response.storedAt) > c.ttl {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}

// bufferingWriter retains the response so it can be replayed later.
type bufferingWriter struct {
	http.ResponseWriter
	statusCode int
	buf        bytes.Buffer
}

func (w *bufferingWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bufferingWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware guards a mutating endpoint against client retries. Requests
// without an Idempotency-Key header pass through untouched.
func (c *IdempotencyCache) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("Idempotency-Key")
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "error leyendo el cuerpo", http.StatusBadRequest)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		sum := sha256.Sum256(body)
		bodyHash := hex.EncodeToString(sum[:])

		c.mu.Lock()
		e, exists := c.entries[key]
		if !exists {
			e = &entry{done: make(chan struct{}), bodyHash: bodyHash}
			c.entries[key] = e
			c.mu.Unlock()

			rec := &bufferingWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			c.mu.Lock()
			// Only successful outcomes are worth replaying; a failed
			// attempt should be retried for real.
			if rec.statusCode >= 200 && rec.statusCode < 300 {
				e.response = &cachedResponse{
					bodyHash:   bodyHash,
					statusCode: rec.statusCode,
					header:     w.Header().Clone(),
					body:       rec.buf.Bytes(),
					storedAt:   time.Now(),
				}
			} else {
				delete(c.entries, key)
			}
			c.mu.Unlock()
			close(e.done)
			return
		}
		c.mu.Unlock()

		// Wait for the first attempt to settle before answering a retry.
		select {
		case <-e.done:
		case <-r.Context().Done():
			return
		}

		c.mu.Lock()
		resp := e.response
		c.mu.Unlock()

		if resp == nil {
			// First attempt failed and was evicted; process this one fresh.
			r.Body = io.NopCloser(bytes.NewReader(body))
			c.Middleware(next).ServeHTTP(w, r)
			return
		}

		if resp.bodyHash != bodyHash {
			http.Error(w, "Idempotency-Key ya usado con otro cuerpo", http.StatusConflict)
			return
		}

		for k, vals := range resp.header {
			for _, v := range vals {
				w.Header()[k] = append(w.Header()[k], v)
			}
		}
		w.Header().Set("Idempotency-Replayed", "true")
		w.WriteHeader(resp.statusCode)
		_, _ = w.Write(resp.body)
	})
}

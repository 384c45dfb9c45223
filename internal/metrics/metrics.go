package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Registry groups the payment-flow counters.
type Registry struct {
	TransaccionesCreadas  Counter
	TransaccionesFallidas Counter
	WebhooksRecibidos     Counter
	WebhooksRechazados    Counter
	WebhooksDuplicados    Counter

	gatewayLlamadas Counter
	gatewayMsTotal  Counter
}

func NewRegistry() *Registry {
	return &Registry{}
}

// ObserveGateway accumulates one gateway round trip so the admin endpoint
// can expose call count and total latency.
func (r *Registry) ObserveGateway(d time.Duration) {
	r.gatewayLlamadas.Inc()
	r.gatewayMsTotal.Add(uint64(d.Milliseconds()))
}

// Snapshot returns the current counter values for the admin endpoint.
func (r *Registry) Snapshot() map[string]uint64 {
	return map[string]uint64{
		"transacciones_creadas":  r.TransaccionesCreadas.Load(),
		"transacciones_fallidas": r.TransaccionesFallidas.Load(),
		"webhooks_recibidos":     r.WebhooksRecibidos.Load(),
		"webhooks_rechazados":    r.WebhooksRechazados.Load(),
		"webhooks_duplicados":    r.WebhooksDuplicados.Load(),
		"gateway_llamadas":       r.gatewayLlamadas.Load(),
		"gateway_ms_total":       r.gatewayMsTotal.Load(),
	}
}

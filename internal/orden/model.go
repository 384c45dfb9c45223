package orden

import "time"

// EstadoPago is the payment status mirrored from the gateway onto an order.
type EstadoPago string

const (
	PagoPendiente EstadoPago = "PENDIENTE"
	PagoAprobado  EstadoPago = "PAGADO"
	PagoFallido   EstadoPago = "FALLIDO"
)

type Orden struct {
	ID             int
	UsuarioID      *int
	Total          float64
	EstadoPago     EstadoPago
	ReferenciaPago string
	FechaCreacion  time.Time
}

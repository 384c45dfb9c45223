package pago

import (
	"fmt"
	"time"

	"tienda-be/internal/wompi"

	"github.com/shopspring/decimal"
)

// CheckoutRequest is what the storefront posts to crear-transaccion. Amounts
// arrive in major currency units (pesos, not centavos).
type CheckoutRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	CustomerEmail   string          `json:"customerEmail"`
	Reference       string          `json:"reference"`
	AcceptanceToken string          `json:"acceptance_token,omitempty"`
	CustomerData    CustomerData    `json:"customerData"`
}

type CustomerData struct {
	UserType    int    `json:"userType"`
	LegalIDType string `json:"legalIdType"`
	LegalID     string `json:"legalId"`
	BankCode    string `json:"bankCode"`
	Description string `json:"description"`
}

// Resultado carries what the caller needs after a successful initiation.
type Resultado struct {
	RedirectURL   string
	TransaccionID string
	Transaction   *wompi.Transaction
}

// Pago is the locally persisted mirror of a created gateway transaction.
type Pago struct {
	ID                 int
	Referencia         string
	TransaccionID      string
	MontoCentavos      int64
	Moneda             string
	Estado             string
	EmailCliente       string
	BancoCodigo        string
	RedirectURL        string
	FechaCreacion      time.Time
	FechaActualizacion time.Time
}

// ValidationError is a client-caused rejection issued before any network call.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

// ErrSinRedirectURL marks a gateway response that reported success but omitted
// the async payment URL: an integration contract violation, never defaulted.
var ErrSinRedirectURL = fmt.Errorf("gateway response carries no async_payment_url")

// CentavosDe converts a major-unit amount to integer minor units, rounding
// halves away from zero. This is the single conversion point shared by the
// gateway payload and the integrity signature; if the two ever diverged the
// signature would not match what the gateway recomputes.
func CentavosDe(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

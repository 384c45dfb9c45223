package pago

import (
	"context"
	"strings"

	"tienda-be/internal/logger"
	"tienda-be/internal/metrics"
	"tienda-be/internal/wompi"

	"go.uber.org/zap"
)

const descripcionDefault = "Pago mediante PSE"

// Gateway is the outbound surface this service needs from the payment
// provider. *wompi.Client satisfies it; tests substitute doubles.
type Gateway interface {
	CreateTransaction(ctx context.Context, req *wompi.TransactionRequest) (*wompi.Transaction, error)
	GetTransaction(ctx context.Context, id string) (*wompi.Transaction, error)
	ListFinancialInstitutions(ctx context.Context) ([]wompi.FinancialInstitution, error)
}

type Service interface {
	CrearTransaccion(ctx context.Context, req *CheckoutRequest) (*Resultado, error)
	ConsultarTransaccion(ctx context.Context, id string) (*wompi.Transaction, error)
	ListarBancos(ctx context.Context) ([]wompi.FinancialInstitution, error)
}

type service struct {
	gateway  Gateway
	signer   *wompi.Signer
	repo     Repository
	metricas *metrics.Registry

	// confirmURL is where the gateway sends the customer's browser after the
	// bank flow finishes.
	confirmURL string
}

func NewService(gateway Gateway, signer *wompi.Signer, repo Repository, baseURL string, m *metrics.Registry) Service {
	return &service{
		gateway:    gateway,
		signer:     signer,
		repo:       repo,
		metricas:   m,
		confirmURL: strings.TrimRight(baseURL, "/") + "/confirmacion-pago.html",
	}
}

// CrearTransaccion validates the checkout request, signs it and submits it to
// the gateway. Validation is fail-fast: nothing leaves the process until the
// request is complete, and a gateway call is never retried from here.
func (s *service) CrearTransaccion(ctx context.Context, req *CheckoutRequest) (*Resultado, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("referencia", req.Reference),
		zap.String("email", req.CustomerEmail),
	)

	if !req.Amount.IsPositive() {
		return nil, ValidationError("amount es requerido y debe ser mayor a 0")
	}
	if strings.TrimSpace(req.CustomerEmail) == "" {
		return nil, ValidationError("customerEmail es requerido")
	}
	if strings.TrimSpace(req.Reference) == "" {
		return nil, ValidationError("reference es requerida")
	}

	moneda := req.Currency
	if moneda == "" {
		moneda = "COP"
	}

	descripcion := req.CustomerData.Description
	if descripcion == "" {
		descripcion = descripcionDefault
	}

	centavos := CentavosDe(req.Amount)

	payload := &wompi.TransactionRequest{
		AcceptanceToken: req.AcceptanceToken,
		AmountInCents:   centavos,
		Currency:        moneda,
		CustomerEmail:   req.CustomerEmail,
		Reference:       req.Reference,
		RedirectURL:     s.confirmURL,
		PaymentMethod: wompi.PSEPaymentMethod{
			Type:                     wompi.PaymentMethodPSE,
			UserType:                 req.CustomerData.UserType,
			UserLegalIDType:          req.CustomerData.LegalIDType,
			UserLegalID:              req.CustomerData.LegalID,
			FinancialInstitutionCode: req.CustomerData.BankCode,
			PaymentDescription:       descripcion,
		},
		Signature: wompi.TransactionSignature{
			Integrity: s.signer.Sign(req.Reference, centavos, moneda),
		},
	}

	timer := metrics.StartTimer()
	tx, err := s.gateway.CreateTransaction(ctx, payload)
	s.metricas.ObserveGateway(timer.Duration())
	if err != nil {
		s.metricas.TransaccionesFallidas.Inc()
		return nil, err
	}

	redirect := tx.AsyncPaymentURL()
	if redirect == "" {
		s.metricas.TransaccionesFallidas.Inc()
		log.Error("gateway accepted the transaction without a redirect URL",
			zap.String("transaccion_id", tx.ID),
		)
		return nil, ErrSinRedirectURL
	}

	// The gateway's ledger is the source of truth; a failed local insert must
	// not turn an already-created transaction into a client-facing error.
	p := &Pago{
		Referencia:    tx.Reference,
		TransaccionID: tx.ID,
		MontoCentavos: tx.AmountInCents,
		Moneda:        moneda,
		Estado:        tx.Status,
		EmailCliente:  req.CustomerEmail,
		BancoCodigo:   req.CustomerData.BankCode,
		RedirectURL:   redirect,
	}
	if err := s.repo.SavePago(ctx, p); err != nil {
		log.Error("failed to persist payment mirror", zap.Error(err),
			zap.String("transaccion_id", tx.ID),
		)
	}

	s.metricas.TransaccionesCreadas.Inc()
	log.Info("PSE transaction initiated",
		zap.String("transaccion_id", tx.ID),
		zap.Int64("monto_centavos", centavos),
	)

	return &Resultado{
		RedirectURL:   redirect,
		TransaccionID: tx.ID,
		Transaction:   tx,
	}, nil
}

func (s *service) ConsultarTransaccion(ctx context.Context, id string) (*wompi.Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ValidationError("id de transacción requerido")
	}
	return s.gateway.GetTransaction(ctx, id)
}

func (s *service) ListarBancos(ctx context.Context) ([]wompi.FinancialInstitution, error) {
	return s.gateway.ListFinancialInstitutions(ctx)
}

package orden

import (
	"context"

	"tienda-be/internal/logger"

	"go.uber.org/zap"
)

// Service applies gateway-reported payment outcomes to stored orders. The
// webhook receiver produces the validated event; this is where the status
// transition actually lands.
type Service interface {
	MarkAsPaid(ctx context.Context, referencia string) error
	MarkAsFailed(ctx context.Context, referencia string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) MarkAsPaid(ctx context.Context, referencia string) error {
	return s.aplicarEstado(ctx, referencia, PagoAprobado)
}

func (s *service) MarkAsFailed(ctx context.Context, referencia string) error {
	return s.aplicarEstado(ctx, referencia, PagoFallido)
}

// aplicarEstado is idempotent: a status already applied is not re-applied, so
// duplicate webhook deliveries are harmless here.
func (s *service) aplicarEstado(ctx context.Context, referencia string, estado EstadoPago) error {
	log := logger.FromCtx(ctx).With(
		zap.String("referencia", referencia),
		zap.String("estado_pago", string(estado)),
	)

	o, err := s.repo.GetByReferencia(ctx, referencia)
	if err != nil {
		log.Error("failed to load order for payment status", zap.Error(err))
		return err
	}

	if o.EstadoPago == estado {
		log.Info("payment status already applied")
		return nil
	}

	if err := s.repo.UpdateEstadoPagoByReferencia(ctx, referencia, estado); err != nil {
		log.Error("failed to update payment status", zap.Error(err))
		return err
	}

	log.Info("order payment status updated")
	return nil
}

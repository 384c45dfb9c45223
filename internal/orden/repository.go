package orden

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNoEncontrada = errors.New("orden no encontrada")

type Repository interface {
	GetByReferencia(ctx context.Context, referencia string) (*Orden, error)
	UpdateEstadoPagoByReferencia(ctx context.Context, referencia string, estado EstadoPago) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByReferencia(ctx context.Context, referencia string) (*Orden, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, usuario_id, total, estado_pago, referencia_pago, fecha_creacion
		FROM ordenes WHERE referencia_pago = $1
	`, referencia)

	var o Orden
	err := row.Scan(
		&o.ID, &o.UsuarioID, &o.Total,
		&o.EstadoPago, &o.ReferenciaPago, &o.FechaCreacion,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoEncontrada
		}
		return nil, err
	}
	return &o, nil
}

func (r *repository) UpdateEstadoPagoByReferencia(ctx context.Context, referencia string, estado EstadoPago) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE ordenes SET estado_pago = $1 WHERE referencia_pago = $2
	`, estado, referencia)
	if err != nil {
		return err
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoEncontrada
	}
	return nil
}

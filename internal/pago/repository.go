package pago

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type Repository interface {
	SavePago(ctx context.Context, p *Pago) error
	UpdateEstadoByTransaccion(ctx context.Context, transaccionID, estado string) error
	GetByReferencia(ctx context.Context, referencia string) (*Pago, error)

	SaveWebhook(
		ctx context.Context,
		proveedor string,
		eventoID string,
		tipoEvento string,
		referencia string,
		payload json.RawMessage,
	) (webhookID int64, esDuplicado bool, err error)
	MarkWebhookProcesado(ctx context.Context, webhookID int64) error
	MarkWebhookFallido(ctx context.Context, webhookID int64, motivo string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SavePago(ctx context.Context, p *Pago) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pagos (referencia,
		transaccion_id,
		monto_centavos,
		moneda,
		estado,
		email_cliente,
		banco_codigo,
		redirect_url,
		proveedor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		p.Referencia, p.TransaccionID, p.MontoCentavos, p.Moneda, p.Estado,
		p.EmailCliente, p.BancoCodigo, p.RedirectURL, "WOMPI",
	)
	return err
}

func (r *repository) UpdateEstadoByTransaccion(ctx context.Context, transaccionID, estado string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE pagos SET estado = $1, fecha_actualizacion = now() WHERE transaccion_id = $2
	`, estado, transaccionID)
	return err
}

func (r *repository) GetByReferencia(ctx context.Context, referencia string) (*Pago, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, referencia, transaccion_id, monto_centavos, moneda, estado,
		       email_cliente, banco_codigo, redirect_url, fecha_creacion, fecha_actualizacion
		FROM pagos WHERE referencia = $1
		ORDER BY id DESC LIMIT 1
	`, referencia)

	var p Pago
	err := row.Scan(
		&p.ID, &p.Referencia, &p.TransaccionID, &p.MontoCentavos, &p.Moneda,
		&p.Estado, &p.EmailCliente, &p.BancoCodigo, &p.RedirectURL,
		&p.FechaCreacion, &p.FechaActualizacion,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveWebhook records one webhook delivery. A redelivery (same provider +
// event id) counts as a duplicate only once the first delivery was fully
// processed; a row left unprocessed by an earlier failure is reclaimed so
// the gateway's retry runs the event again.
func (r *repository) SaveWebhook(
	ctx context.Context,
	proveedor string,
	eventoID string,
	tipoEvento string,
	referencia string,
	payload json.RawMessage,
) (int64, bool, error) {

	const q = `
	INSERT INTO pago_webhooks (
		proveedor,
		evento_id,
		tipo_evento,
		referencia,
		payload
	)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (proveedor, evento_id)
	DO UPDATE SET error_proceso = NULL
	WHERE pago_webhooks.procesado_en IS NULL
	RETURNING id;
	`

	var id int64
	err := r.db.QueryRowContext(ctx, q, proveedor, eventoID, tipoEvento, referencia, payload).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, true, nil
		}
		return 0, false, err
	}

	return id, false, nil
}

func (r *repository) MarkWebhookProcesado(ctx context.Context, webhookID int64) error {
	const q = `
	UPDATE pago_webhooks
	SET procesado_en = now()
	WHERE id = $1;
	`
	_, err := r.db.ExecContext(ctx, q, webhookID)
	return err
}

func (r *repository) MarkWebhookFallido(ctx context.Context, webhookID int64, motivo string) error {
	const q = `
	UPDATE pago_webhooks
	SET error_proceso = $2
	WHERE id = $1;
	`
	_, err := r.db.ExecContext(ctx, q, webhookID, motivo)
	return err
}

package dashboard

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Estadisticas lleva los contadores que consume el panel de administración.
type Estadisticas struct {
	TotalProductos     int             `json:"totalProductos"`
	TotalCategorias    int             `json:"totalCategorias"`
	TotalClientes      int             `json:"totalClientes"`
	OrdenesHoy         int             `json:"ordenesHoy"`
	VentasHoy          decimal.Decimal `json:"ventasHoy"`
	ProductosStockBajo int             `json:"productosStockBajo"`
}

type VentaReciente struct {
	ID             int             `json:"id"`
	UsuarioID      *int            `json:"usuario_id,omitempty"`
	Total          decimal.Decimal `json:"total"`
	EstadoPago     string          `json:"estado_pago"`
	ReferenciaPago *string         `json:"referencia_pago,omitempty"`
	FechaCreacion  time.Time       `json:"fecha_creacion"`
	ClienteNombre  *string         `json:"cliente_nombre,omitempty"`
}

type ProductoStockBajo struct {
	ID          int             `json:"id"`
	Nombre      string          `json:"nombre"`
	StockActual int             `json:"stock_actual"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
}

type Repository interface {
	Estadisticas(ctx context.Context) (Estadisticas, error)
	UltimasVentas(ctx context.Context) ([]VentaReciente, error)
	StockBajo(ctx context.Context) ([]ProductoStockBajo, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Estadisticas(ctx context.Context) (Estadisticas, error) {
	var e Estadisticas

	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM productos`).Scan(&e.TotalProductos); err != nil {
		return Estadisticas{}, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT categoria_id) FROM productos`).Scan(&e.TotalCategorias); err != nil {
		return Estadisticas{}, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM productos WHERE stock_actual < 10 AND activo = true`).Scan(&e.ProductosStockBajo); err != nil {
		return Estadisticas{}, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(total), 0) FROM ordenes`).Scan(&e.OrdenesHoy, &e.VentasHoy); err != nil {
		return Estadisticas{}, err
	}
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM usuarios WHERE rol = 'cliente'`).Scan(&e.TotalClientes); err != nil {
		return Estadisticas{}, err
	}

	return e, nil
}

func (r *repository) UltimasVentas(ctx context.Context) ([]VentaReciente, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.usuario_id, o.total, o.estado_pago, o.referencia_pago, o.fecha_creacion,
		       u.nombre AS cliente_nombre
		FROM ordenes o
		LEFT JOIN usuarios u ON o.usuario_id = u.id
		ORDER BY o.fecha_creacion DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ventas := make([]VentaReciente, 0, 10)
	for rows.Next() {
		var v VentaReciente
		if err := rows.Scan(&v.ID, &v.UsuarioID, &v.Total, &v.EstadoPago,
			&v.ReferenciaPago, &v.FechaCreacion, &v.ClienteNombre); err != nil {
			return nil, err
		}
		ventas = append(ventas, v)
	}
	return ventas, rows.Err()
}

func (r *repository) StockBajo(ctx context.Context) ([]ProductoStockBajo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, nombre, stock_actual, precio_venta
		FROM productos
		WHERE stock_actual < 10 AND activo = true
		ORDER BY stock_actual ASC
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	productos := make([]ProductoStockBajo, 0, 10)
	for rows.Next() {
		var p ProductoStockBajo
		if err := rows.Scan(&p.ID, &p.Nombre, &p.StockActual, &p.PrecioVenta); err != nil {
			return nil, err
		}
		productos = append(productos, p)
	}
	return productos, rows.Err()
}

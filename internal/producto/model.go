package producto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto usa alias camelCase en JSON porque el frontend consume
// precioVenta/stockActual/imagenUrl tal cual.
type Producto struct {
	ID            int             `json:"id"`
	Nombre        string          `json:"nombre"`
	Descripcion   *string         `json:"descripcion,omitempty"`
	PrecioVenta   decimal.Decimal `json:"precioVenta"`
	StockActual   int             `json:"stockActual"`
	CategoriaID   *int            `json:"categoriaId,omitempty"`
	ImagenURL     *string         `json:"imagenUrl,omitempty"`
	Activo        bool            `json:"-"`
	FechaCreacion *time.Time      `json:"fecha_creacion,omitempty"`
}

// Pagination acompaña toda respuesta de listado.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

type ListResult struct {
	Productos  []Producto `json:"productos"`
	Pagination Pagination `json:"pagination"`
}

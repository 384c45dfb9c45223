package producto

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidationError is a client-caused rejection; handlers map it to 400.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Service interface {
	List(ctx context.Context, page, limit int) (ListResult, error)
	Get(ctx context.Context, id int) (Producto, error)
	Create(ctx context.Context, p *Producto) (Producto, error)
	Update(ctx context.Context, p *Producto) (Producto, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, page, limit int) (ListResult, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	productos, total, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return ListResult{}, err
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}

	return ListResult{
		Productos: productos,
		Pagination: Pagination{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

func (s *service) Get(ctx context.Context, id int) (Producto, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, p *Producto) (Producto, error) {
	if err := validar(p); err != nil {
		return Producto{}, err
	}
	return s.repo.Create(ctx, p)
}

func (s *service) Update(ctx context.Context, p *Producto) (Producto, error) {
	if p.ID <= 0 {
		return Producto{}, ValidationError("id de producto inválido")
	}
	if err := validar(p); err != nil {
		return Producto{}, err
	}
	return s.repo.Update(ctx, p)
}

func (s *service) Delete(ctx context.Context, id int) error {
	if id <= 0 {
		return ValidationError("id de producto inválido")
	}
	return s.repo.Delete(ctx, id)
}

func validar(p *Producto) error {
	if strings.TrimSpace(p.Nombre) == "" {
		return ValidationError("el nombre es requerido")
	}
	if p.PrecioVenta.LessThanOrEqual(decimal.Zero) {
		return ValidationError("el precio de venta debe ser mayor que cero")
	}
	if p.StockActual < 0 {
		return ValidationError("el stock no puede ser negativo")
	}
	return nil
}

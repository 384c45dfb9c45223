package producto

import (
	"context"
	"database/sql"
	"errors"
)

var ErrNoEncontrado = errors.New("producto no encontrado")

type Repository interface {
	List(ctx context.Context, limit, offset int) ([]Producto, int, error)
	GetByID(ctx context.Context, id int) (Producto, error)
	Create(ctx context.Context, p *Producto) (Producto, error)
	Update(ctx context.Context, p *Producto) (Producto, error)
	Delete(ctx context.Context, id int) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]Producto, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM productos WHERE activo = true`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, nombre, descripcion, precio_venta, stock_actual, categoria_id, imagen_url, fecha_creacion
		FROM productos
		WHERE activo = true
		ORDER BY id
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	productos := make([]Producto, 0, limit)
	for rows.Next() {
		var p Producto
		if err := rows.Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.PrecioVenta,
			&p.StockActual, &p.CategoriaID, &p.ImagenURL, &p.FechaCreacion); err != nil {
			return nil, 0, err
		}
		p.Activo = true
		productos = append(productos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return productos, total, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (Producto, error) {
	var p Producto
	err := r.db.QueryRowContext(ctx, `
		SELECT id, nombre, descripcion, precio_venta, stock_actual, categoria_id, imagen_url, activo, fecha_creacion
		FROM productos WHERE id = $1
	`, id).Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.PrecioVenta,
		&p.StockActual, &p.CategoriaID, &p.ImagenURL, &p.Activo, &p.FechaCreacion)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Producto{}, ErrNoEncontrado
		}
		return Producto{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, p *Producto) (Producto, error) {
	var creado Producto
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO productos (nombre, descripcion, precio_venta, stock_actual, categoria_id, imagen_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, nombre, descripcion, precio_venta, stock_actual, categoria_id, imagen_url, activo, fecha_creacion
	`, p.Nombre, p.Descripcion, p.PrecioVenta, p.StockActual, p.CategoriaID, p.ImagenURL).
		Scan(&creado.ID, &creado.Nombre, &creado.Descripcion, &creado.PrecioVenta,
			&creado.StockActual, &creado.CategoriaID, &creado.ImagenURL, &creado.Activo, &creado.FechaCreacion)

	if err != nil {
		return Producto{}, err
	}
	return creado, nil
}

func (r *repository) Update(ctx context.Context, p *Producto) (Producto, error) {
	var actualizado Producto
	err := r.db.QueryRowContext(ctx, `
		UPDATE productos
		SET nombre = $2, descripcion = $3, precio_venta = $4, stock_actual = $5, categoria_id = $6, imagen_url = $7
		WHERE id = $1 AND activo = true
		RETURNING id, nombre, descripcion, precio_venta, stock_actual, categoria_id, imagen_url, activo, fecha_creacion
	`, p.ID, p.Nombre, p.Descripcion, p.PrecioVenta, p.StockActual, p.CategoriaID, p.ImagenURL).
		Scan(&actualizado.ID, &actualizado.Nombre, &actualizado.Descripcion, &actualizado.PrecioVenta,
			&actualizado.StockActual, &actualizado.CategoriaID, &actualizado.ImagenURL,
			&actualizado.Activo, &actualizado.FechaCreacion)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Producto{}, ErrNoEncontrado
		}
		return Producto{}, err
	}
	return actualizado, nil
}

// Delete desactiva el producto; nunca se borra la fila para conservar
// el historial de órdenes.
func (r *repository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE productos SET activo = false WHERE id = $1 AND activo = true`, id)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoEncontrado
	}
	return nil
}

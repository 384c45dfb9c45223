package usuario

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

var ErrNoEncontrado = errors.New("usuario no encontrado")

type Repository interface {
	Create(ctx context.Context, nombre, email, passwordHash string) (Usuario, error)
	FindByEmail(ctx context.Context, email string) (Usuario, error)
	FindByID(ctx context.Context, id int) (Usuario, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, nombre, email, passwordHash string) (Usuario, error) {
	var u Usuario
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO usuarios (nombre, email, password, rol)
		VALUES ($1, $2, $3, 'cliente')
		RETURNING id, nombre, email, rol, fecha_creacion
	`, nombre, email, passwordHash).Scan(&u.ID, &u.Nombre, &u.Email, &u.Rol, &u.FechaCreacion)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return Usuario{}, ErrEmailRegistrado
		}
		return Usuario{}, err
	}

	u.Activo = true
	return u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (Usuario, error) {
	var u Usuario
	err := r.db.QueryRowContext(ctx, `
		SELECT id, nombre, email, password, rol, activo
		FROM usuarios WHERE email = $1
	`, email).Scan(&u.ID, &u.Nombre, &u.Email, &u.Password, &u.Rol, &u.Activo)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Usuario{}, ErrNoEncontrado
		}
		return Usuario{}, err
	}
	return u, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (Usuario, error) {
	var u Usuario
	err := r.db.QueryRowContext(ctx, `
		SELECT id, nombre, email, telefono, direccion, rol, activo, fecha_creacion
		FROM usuarios WHERE id = $1
	`, id).Scan(&u.ID, &u.Nombre, &u.Email, &u.Telefono, &u.Direccion, &u.Rol, &u.Activo, &u.FechaCreacion)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Usuario{}, ErrNoEncontrado
		}
		return Usuario{}, err
	}
	return u, nil
}

package usuario

import "time"

type Rol string

const (
	RolCliente Rol = "cliente"
	RolAdmin   Rol = "admin"
)

type Usuario struct {
	ID            int        `json:"id"`
	Nombre        string     `json:"nombre"`
	Email         string     `json:"email"`
	Password      string     `json:"-"`
	Telefono      *string    `json:"telefono,omitempty"`
	Direccion     *string    `json:"direccion,omitempty"`
	Rol           Rol        `json:"rol"`
	Activo        bool       `json:"-"`
	FechaCreacion *time.Time `json:"fecha_creacion,omitempty"`
}

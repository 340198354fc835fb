package entity

import "time"

// Role rol de un usuario; solo existen dos.
type Role string

// Roles válidos para User.
const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "empleado"
)

// Valid indica si el rol es uno de los dos conocidos.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// Label nombre para mostrar en el Kardex y reportes.
func (r Role) Label() string {
	if r == RoleAdmin {
		return "Admin"
	}
	return "Empleado"
}

// User representa un usuario del sistema.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin atajo para el control de permisos.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Actor identidad de quien ejecuta una operación; el valor cero es un anónimo.
type Actor struct {
	UserID   string
	Username string
	Role     Role
}

// IsAdmin true si el actor tiene privilegios de administrador.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Ref devuelve el id para atribuir eventos; nil si no hay usuario.
func (a Actor) Ref() *string {
	if a.UserID == "" {
		return nil
	}
	id := a.UserID
	return &id
}

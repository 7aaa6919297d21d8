package entity

import "time"

// Roles válidos para User.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User representa un cliente o administrador de la tienda.
// PasswordHash queda vacío para cuentas creadas vía Google.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	PictureURL   string
	Role         string // USER, ADMIN
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin indica si el usuario tiene rol ADMIN.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

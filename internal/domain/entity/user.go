package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Estados del ciclo de vida de la cuenta.
// Solo una cuenta active puede iniciar sesión; pending espera aprobación
// de un admin y blocked fue rechazada o bloqueada.
const (
	StatusPending = "pending"
	StatusActive  = "active"
	StatusBlocked = "blocked"
)

// User representa un principal del sistema.
type User struct {
	ID           string
	Username     string // único
	Email        string // único
	Phone        string // único
	Name         string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Role         string // admin, user
	Status       string // pending, active, blocked
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin indica si el usuario tiene rol privilegiado.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

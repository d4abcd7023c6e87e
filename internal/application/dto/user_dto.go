package dto

import "time"

// RegisterRequest entrada para registro. La cuenta nace en estado pending
// hasta que un admin la apruebe.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=60"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,max=30"`
	Name     string `json:"name" validate:"omitempty,max=200"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest entrada para login. Se envía exactamente uno de username o email.
type LoginRequest struct {
	Username string `json:"username" validate:"omitempty"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest entrada para rotar el par de credenciales.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TokenPairResponse par de credenciales emitido en login y refresh.
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // "Bearer"
}

// LoginResponse salida de login: tokens + usuario.
type LoginResponse struct {
	TokenPairResponse
	User UserResponse `json:"user"`
}

package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	// ErrInvalidCredentials cubre tanto "usuario no existe" como "password incorrecto".
	// Nunca se distinguen para evitar enumeración de cuentas.
	ErrInvalidCredentials = errors.New("credenciales inválidas")
	// ErrAccountNotActive identidad verificada pero la cuenta no está en estado active.
	ErrAccountNotActive = errors.New("la cuenta no está activa")
	// ErrUnauthenticated token de acceso inválido, expirado o malformado (todos idénticos).
	ErrUnauthenticated = errors.New("no autenticado")
	// ErrInvalidRefresh refresh token ya rotado o revocado (posible replay, evento de seguridad).
	ErrInvalidRefresh = errors.New("refresh token inválido")
	ErrForbidden      = errors.New("acceso denegado")
	ErrNotFound       = errors.New("recurso no encontrado")
	// ErrInvalidTransition el pedido no está en el estado requerido para la transición.
	ErrInvalidTransition = errors.New("transición de estado inválida")
	ErrInvalidAction     = errors.New("acción inválida")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
)

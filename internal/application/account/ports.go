package account

import "context"

// Notifier puerto del despachador de notificaciones externo.
// Los errores de envío se registran y se descartan: la transición de
// estado es la fuente de verdad, la notificación es best-effort.
type Notifier interface {
	Send(recipient, subject, body string) error
}

// TokenRevoker revoca en bloque los refresh tokens de un usuario.
// Se usa al bloquear una cuenta para cancelar sus sesiones vigentes.
type TokenRevoker interface {
	RevokeAll(ctx context.Context, userID string) error
}

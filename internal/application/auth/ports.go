package auth

import (
	"context"
	"time"
)

// TokenStore puerto del Credential Store: registra los refresh tokens
// vigentes por jti para poder revocarlos y detectar replays.
// Los access tokens no se rastrean (bearer puro, solo expiran).
type TokenStore interface {
	// Save registra un jti recién emitido como vigente, con TTL.
	Save(ctx context.Context, userID, jti string, ttl time.Duration) error
	// Rotate consume oldJTI e inscribe newJTI en una sola operación atómica.
	// Si oldJTI no está vigente (ya rotado o revocado) devuelve
	// domain.ErrInvalidRefresh; bajo rotaciones concurrentes del mismo token
	// exactamente una gana.
	Rotate(ctx context.Context, userID, oldJTI, newJTI string, ttl time.Duration) error
	// RevokeAll elimina todos los jti vigentes del usuario. Idempotente.
	RevokeAll(ctx context.Context, userID string) error
}

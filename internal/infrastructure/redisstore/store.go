package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/pedidos-api/internal/application/auth"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable indica un fallo de infraestructura del Credential Store,
// distinto de los errores de dominio (un refresh inválido no es un fallo de Redis).
var ErrRedisUnavailable = errors.New("redis no disponible")

var _ auth.TokenStore = (*Store)(nil)

// rotateScript consume el jti viejo e inscribe el nuevo en una sola operación.
// El EXISTS+DEL dentro del script hace la rotación linealizable por jti:
// de dos rotaciones concurrentes del mismo token exactamente una ve el 1.
const rotateScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("SREM", KEYS[3], ARGV[1])
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
redis.call("SADD", KEYS[3], ARGV[4])
redis.call("PEXPIRE", KEYS[3], ARGV[3])
return 1
`

var rotateLua = redis.NewScript(rotateScript)

// revokeAllScript lee el índice y borra índice y llaves de token en una sola
// operación. SMEMBERS seguido de DELs fuera de script dejaría una ventana en
// la que un Save concurrente inscribe un jti que el borrado ya no ve.
const revokeAllScript = `
local jtis = redis.call("SMEMBERS", KEYS[1])
for _, jti in ipairs(jtis) do
  redis.call("DEL", ARGV[1] .. jti)
end
redis.call("DEL", KEYS[1])
return #jtis
`

var revokeAllLua = redis.NewScript(revokeAllScript)

// Store es el Credential Store sobre Redis: registra los refresh tokens
// vigentes por jti (con TTL) y un índice por usuario para revocación en bloque.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore construye el store. prefix delimita el namespace de llaves en Redis.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "pedidos"
	}
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) tokenKey(jti string) string {
	return s.prefix + ":rt:" + jti
}

func (s *Store) userKey(userID string) string {
	return s.prefix + ":rtu:" + userID
}

// Save registra un jti recién emitido como vigente, con TTL igual a la vida
// del refresh token.
func (s *Store) Save(ctx context.Context, userID, jti string, ttl time.Duration) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(jti), userID, ttl)
		pipe.SAdd(ctx, s.userKey(userID), jti)
		pipe.Expire(ctx, s.userKey(userID), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Rotate consume oldJTI e inscribe newJTI atómicamente (script Lua).
// Si oldJTI no está vigente devuelve domain.ErrInvalidRefresh: cubre el
// replay de un token ya rotado o revocado y la segunda de dos rotaciones
// concurrentes.
func (s *Store) Rotate(ctx context.Context, userID, oldJTI, newJTI string, ttl time.Duration) error {
	keys := []string{s.tokenKey(oldJTI), s.tokenKey(newJTI), s.userKey(userID)}
	res, err := rotateLua.Run(ctx, s.redis, keys,
		oldJTI, userID, ttl.Milliseconds(), newJTI,
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if res == 0 {
		return domain.ErrInvalidRefresh
	}
	return nil
}

// RevokeAll elimina atómicamente todos los jti vigentes del usuario (script
// Lua). Idempotente: sin tokens vigentes no hace nada y no es error.
func (s *Store) RevokeAll(ctx context.Context, userID string) error {
	err := revokeAllLua.Run(ctx, s.redis, []string{s.userKey(userID)}, s.prefix+":rt:").Err()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping verifica disponibilidad de Redis (health check).
func (s *Store) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

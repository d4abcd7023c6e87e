package redisstore_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/infrastructure/redisstore"
)

func newTestStore(t *testing.T) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return redisstore.NewStore(client, "test"), mr
}

func TestSaveYRotate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", "jti-1", time.Hour))
	require.NoError(t, store.Rotate(ctx, "u1", "jti-1", "jti-2", time.Hour))

	// El jti viejo quedó consumido; el nuevo es rotable.
	assert.ErrorIs(t, store.Rotate(ctx, "u1", "jti-1", "jti-3", time.Hour), domain.ErrInvalidRefresh)
	assert.NoError(t, store.Rotate(ctx, "u1", "jti-2", "jti-3", time.Hour))
}

func TestRotate_JTIDesconocido(t *testing.T) {
	store, _ := newTestStore(t)
	err := store.Rotate(context.Background(), "u1", "nunca-emitido", "jti-x", time.Hour)
	assert.ErrorIs(t, err, domain.ErrInvalidRefresh)
}

// De N rotaciones concurrentes del mismo jti exactamente una gana.
func TestRotate_ConcurrenciaUnSoloGanador(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "u1", "jti-viejo", time.Hour))

	const intentos = 20
	var wg sync.WaitGroup
	errs := make([]error, intentos)
	for i := 0; i < intentos; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.Rotate(ctx, "u1", "jti-viejo", fmt.Sprintf("jti-nuevo-%d", i), time.Hour)
		}(i)
	}
	wg.Wait()

	ganadores := 0
	for _, err := range errs {
		if err == nil {
			ganadores++
		} else {
			assert.ErrorIs(t, err, domain.ErrInvalidRefresh)
		}
	}
	assert.Equal(t, 1, ganadores)
}

func TestRevokeAll(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", "jti-a", time.Hour))
	require.NoError(t, store.Save(ctx, "u1", "jti-b", time.Hour))
	require.NoError(t, store.Save(ctx, "u2", "jti-c", time.Hour))

	require.NoError(t, store.RevokeAll(ctx, "u1"))

	assert.ErrorIs(t, store.Rotate(ctx, "u1", "jti-a", "x", time.Hour), domain.ErrInvalidRefresh)
	assert.ErrorIs(t, store.Rotate(ctx, "u1", "jti-b", "y", time.Hour), domain.ErrInvalidRefresh)
	// Los tokens de otro usuario no se ven afectados.
	assert.NoError(t, store.Rotate(ctx, "u2", "jti-c", "z", time.Hour))
}

// Saves concurrentes con RevokeAll nunca dejan un jti vivo fuera del índice:
// la revocación final debe ver (y borrar) todo lo inscrito antes de ella.
func TestRevokeAll_AtomicoFrenteASavesConcurrentes(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const total = 30
	var wg sync.WaitGroup
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Save(ctx, "u1", fmt.Sprintf("jti-%d", i), time.Hour))
			if i%10 == 0 {
				assert.NoError(t, store.RevokeAll(ctx, "u1"))
			}
		}(i)
	}
	wg.Wait()

	require.NoError(t, store.RevokeAll(ctx, "u1"))
	for i := 0; i < total; i++ {
		err := store.Rotate(ctx, "u1", fmt.Sprintf("jti-%d", i), "jti-x", time.Hour)
		assert.ErrorIs(t, err, domain.ErrInvalidRefresh)
	}
}

func TestRevokeAll_SinTokensEsIdempotente(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NoError(t, store.RevokeAll(context.Background(), "sin-sesiones"))
}

// Un jti expira solo con el TTL del refresh: pasado ese plazo la rotación falla.
func TestRotate_TokenExpirado(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "u1", "jti-1", time.Minute))
	mr.FastForward(2 * time.Minute)

	err := store.Rotate(ctx, "u1", "jti-1", "jti-2", time.Minute)
	assert.ErrorIs(t, err, domain.ErrInvalidRefresh)
}

func TestPing(t *testing.T) {
	store, mr := newTestStore(t)
	assert.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.ErrorIs(t, store.Ping(context.Background()), redisstore.ErrRedisUnavailable)
}

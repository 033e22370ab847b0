package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-sync/internal/domain"
	infraredis "github.com/jhoicas/inventario-sync/internal/infrastructure/redis"
	"github.com/jhoicas/inventario-sync/pkg/config"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requiere un Redis real: REDIS_TEST_ADDR=localhost:6379 go test ./internal/infrastructure/redis/...
func newLocker(t *testing.T, ttl time.Duration) *infraredis.ShopLocker {
	t.Helper()
	locker, _ := newLockerWithClient(t, ttl)
	return locker
}

func newLockerWithClient(t *testing.T, ttl time.Duration) (*infraredis.ShopLocker, *goredis.Client) {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR no definido")
	}
	rdb, err := infraredis.Connect(context.Background(), config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return infraredis.NewShopLocker(rdb, ttl, zerolog.Nop()), rdb
}

func TestShopLocker_SegundoLockDevuelveErrSyncInProgress(t *testing.T) {
	locker := newLocker(t, time.Minute)
	shopID := uuid.New().String()
	ctx := context.Background()

	_, unlock, err := locker.Lock(ctx, shopID)
	require.NoError(t, err)

	_, _, err = locker.Lock(ctx, shopID)
	require.ErrorIs(t, err, domain.ErrSyncInProgress)

	require.NoError(t, unlock(ctx))

	_, unlock2, err := locker.Lock(ctx, shopID)
	require.NoError(t, err, "tras liberar se puede volver a tomar")
	require.NoError(t, unlock2(ctx))
}

func TestShopLocker_TiendasIndependientes(t *testing.T) {
	locker := newLocker(t, time.Minute)
	ctx := context.Background()

	_, a, err := locker.Lock(ctx, uuid.New().String())
	require.NoError(t, err)
	_, b, err := locker.Lock(ctx, uuid.New().String())
	require.NoError(t, err)

	assert.NoError(t, a(ctx))
	assert.NoError(t, b(ctx))
}

func TestShopLocker_RefrescoMantieneElLock(t *testing.T) {
	locker := newLocker(t, 300*time.Millisecond)
	shopID := uuid.New().String()
	ctx := context.Background()

	lockCtx, unlock, err := locker.Lock(ctx, shopID)
	require.NoError(t, err)
	time.Sleep(700 * time.Millisecond)

	_, _, err = locker.Lock(ctx, shopID)
	require.ErrorIs(t, err, domain.ErrSyncInProgress, "el lock sigue vivo más allá del TTL inicial")
	assert.NoError(t, lockCtx.Err())
	require.NoError(t, unlock(ctx))
	assert.ErrorIs(t, lockCtx.Err(), context.Canceled, "unlock cierra el contexto del lock")
}

func TestShopLocker_RefrescoFallidoCancelaElContexto(t *testing.T) {
	locker, rdb := newLockerWithClient(t, 300*time.Millisecond)
	shopID := uuid.New().String()
	ctx := context.Background()

	lockCtx, unlock, err := locker.Lock(ctx, shopID)
	require.NoError(t, err)
	defer func() { _ = unlock(ctx) }()

	// Otro actor borra la clave: el próximo refresco ya no encuentra el lock.
	require.NoError(t, rdb.Del(ctx, "inventario-sync:lock:shop:"+shopID).Err())

	select {
	case <-lockCtx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("el contexto del lock no se canceló")
	}
	assert.ErrorIs(t, context.Cause(lockCtx), domain.ErrLockLost)
}

func TestConnect_DireccionInvalida(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := infraredis.Connect(ctx, config.RedisConfig{Addr: "127.0.0.1:1"})

	require.Error(t, err)
}

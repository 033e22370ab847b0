package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/jhoicas/inventario-sync/internal/application/catalogsync"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/pkg/config"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var _ catalogsync.ShopLocker = (*ShopLocker)(nil)

const keyPrefix = "inventario-sync:lock:shop:"

// Connect abre el cliente Redis y verifica la conexión.
func Connect(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// ShopLocker lock distribuido por tienda sobre redislock. El lock se refresca mientras la corrida
// sigue viva, así una corrida larga no lo pierde por TTL.
type ShopLocker struct {
	client *redislock.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewShopLocker construye el locker. ttl <= 0 usa 30 minutos.
func NewShopLocker(rdb goredis.UniversalClient, ttl time.Duration, log zerolog.Logger) *ShopLocker {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ShopLocker{client: redislock.New(rdb), ttl: ttl, log: log}
}

// Lock toma el lock de la tienda sin esperar. Si otro proceso lo tiene devuelve
// domain.ErrSyncInProgress. Si un refresco falla, el contexto devuelto se cancela con causa
// domain.ErrLockLost. unlock libera el lock y detiene el refresco.
func (l *ShopLocker) Lock(ctx context.Context, shopID string) (context.Context, func(context.Context) error, error) {
	lock, err := l.client.Obtain(ctx, keyPrefix+shopID, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, nil, domain.ErrSyncInProgress
	}
	if err != nil {
		return nil, nil, fmt.Errorf("obtain shop lock: %w", err)
	}

	lockCtx, cancel := context.WithCancelCause(ctx)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(l.ttl / 2)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := lock.Refresh(context.Background(), l.ttl, nil); err != nil {
					l.log.Error().Err(err).Str("shop_id", shopID).Msg("no se pudo refrescar el lock de la tienda, se cancela la corrida")
					cancel(fmt.Errorf("%w: %v", domain.ErrLockLost, err))
					return
				}
			}
		}
	}()

	return lockCtx, func(ctx context.Context) error {
		close(stop)
		<-done
		cancel(nil)
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("release shop lock: %w", err)
		}
		return nil
	}, nil
}

package catalogsync

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/inventario-sync/internal/application/dto"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
	"github.com/rs/zerolog"
)

// ShopLocker serializa las corridas de una misma tienda entre procesos.
// Lock devuelve domain.ErrSyncInProgress si la tienda ya tiene una corrida activa. El contexto
// devuelto se cancela con causa domain.ErrLockLost si el lock se pierde antes de unlock.
type ShopLocker interface {
	Lock(ctx context.Context, shopID string) (lockCtx context.Context, unlock func(context.Context) error, err error)
}

// Coordinator es el llamador que serializa el trabajo por tienda: toma el lock antes de
// sincronizar o recalcular métricas y recorre las tiendas de a una. Sin locker se continúa sin
// lock distribuido.
type Coordinator struct {
	sync   *SyncUseCase
	shops  repository.ShopRepository
	locker ShopLocker
	log    zerolog.Logger
}

// NewCoordinator construye el coordinador. locker puede ser nil.
func NewCoordinator(sync *SyncUseCase, shops repository.ShopRepository, locker ShopLocker, log zerolog.Logger) *Coordinator {
	return &Coordinator{sync: sync, shops: shops, locker: locker, log: log}
}

// SyncShop sincroniza una tienda con su lock tomado.
func (c *Coordinator) SyncShop(ctx context.Context, shopID string, opts SyncOptions) (*dto.SyncRunSummary, error) {
	var out *dto.SyncRunSummary
	err := c.withShopLock(ctx, shopID, func(ctx context.Context) error {
		var err error
		out, err = c.sync.SyncShop(ctx, shopID, opts)
		return err
	})
	return out, err
}

// RecomputeAll recalcula las métricas de la tienda con el mismo lock que la sincronización.
func (c *Coordinator) RecomputeAll(ctx context.Context, shopID string) (dto.MetricsRunSummary, error) {
	var out dto.MetricsRunSummary
	err := c.withShopLock(ctx, shopID, func(ctx context.Context) error {
		var err error
		out, err = c.sync.metrics.RecomputeAll(ctx, shopID)
		return err
	})
	return out, err
}

func (c *Coordinator) withShopLock(ctx context.Context, shopID string, fn func(ctx context.Context) error) error {
	log := c.log.With().Str("shop_id", shopID).Logger()
	if c.locker == nil {
		log.Warn().Msg("lock distribuido no configurado; se continúa sin lock")
		return fn(ctx)
	}
	lockCtx, unlock, err := c.locker.Lock(ctx, shopID)
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("no se pudo liberar el lock")
		}
	}()
	err = fn(lockCtx)
	if errors.Is(context.Cause(lockCtx), domain.ErrLockLost) {
		log.Error().Msg("se perdió el lock durante la corrida; el trabajo se interrumpió")
	}
	return err
}

// SyncAll sincroniza todas las tiendas en secuencia. Una tienda que falla o que ya tiene
// corrida activa no detiene a las demás.
func (c *Coordinator) SyncAll(ctx context.Context, opts SyncOptions) ([]dto.SyncRunSummary, error) {
	shops, err := c.shops.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	summaries := make([]dto.SyncRunSummary, 0, len(shops))
	for _, shop := range shops {
		if ctx.Err() != nil {
			return summaries, ctx.Err()
		}
		summary, err := c.SyncShop(ctx, shop.ID, opts)
		switch {
		case errors.Is(err, domain.ErrSyncInProgress):
			c.log.Info().Str("shop_id", shop.ID).Msg("la tienda ya tiene una corrida activa, se omite")
			continue
		case err != nil:
			c.log.Error().Err(err).Str("shop_id", shop.ID).Msg("no se pudo sincronizar la tienda")
			continue
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

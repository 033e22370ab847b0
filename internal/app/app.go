// Package app arma el grafo de dependencias compartido por los binarios api y sync.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/inventario-sync/internal/application/catalogsync"
	appmetrics "github.com/jhoicas/inventario-sync/internal/application/metrics"
	"github.com/jhoicas/inventario-sync/internal/application/usecase"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/inventario-sync/internal/infrastructure/redis"
	"github.com/jhoicas/inventario-sync/internal/infrastructure/shopify"
	"github.com/jhoicas/inventario-sync/pkg/config"
	"github.com/jhoicas/inventario-sync/pkg/logger"
	goredis "github.com/redis/go-redis/v9"
)

// Services casos de uso listos para exponer por HTTP o por el scheduler.
type Services struct {
	Sync        *catalogsync.SyncUseCase
	Coordinator *catalogsync.Coordinator
	Metrics     *appmetrics.ShopMetricsOrchestrator
	Products    *usecase.ProductUseCase
	Warehouses  *usecase.WarehouseUseCase

	pool  *pgxpool.Pool
	redis *goredis.Client
}

// Close libera el pool y la conexión a Redis.
func (s *Services) Close() {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

// New conecta PostgreSQL (y Redis si está configurado) y construye los casos de uso.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	s := &Services{pool: pool}

	if cfg.DB.ApplySchema {
		if err := postgres.ApplySchema(ctx, pool); err != nil {
			s.Close()
			return nil, err
		}
		log.Info().Msg("esquema aplicado")
	}

	var locker catalogsync.ShopLocker
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.Connect(ctx, cfg.Redis)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		s.redis = rdb
		locker = infraredis.NewShopLocker(rdb, cfg.Sync.LockTTL, log.Component("locker"))
	}

	shopRepo := postgres.NewShopRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	variantRepo := postgres.NewVariantRepository(pool)
	levelRepo := postgres.NewInventoryLevelRepository(pool)
	runRepo := postgres.NewSyncRunRepository(pool)

	throttle := catalogsync.NewWriteThrottle(cfg.DB.MaxConcurrentWrites)
	shopifyOpts := shopify.OptionsFromConfig(cfg.Shopify, log.Component("shopify"))
	sources := func(shop *entity.Shop) catalogsync.CatalogSource {
		return shopify.ForShop(shop, shopifyOpts)
	}

	s.Metrics = appmetrics.NewShopMetricsOrchestrator(shopRepo, productRepo, throttle, cfg.Sync.MetricsBatchSize, log.Component("metrics"))
	resolver := catalogsync.NewLocationResolver(warehouseRepo, throttle, log.Component("locations"))
	writer := catalogsync.NewReconciliationWriter(productRepo, variantRepo, levelRepo, throttle, log.Component("reconciliation"))
	s.Sync = catalogsync.NewSyncUseCase(shopRepo, runRepo, sources, resolver, writer, s.Metrics, throttle, log.Component("sync"))
	s.Coordinator = catalogsync.NewCoordinator(s.Sync, shopRepo, locker, log.Component("coordinator"))
	s.Products = usecase.NewProductUseCase(productRepo, levelRepo)
	s.Warehouses = usecase.NewWarehouseUseCase(warehouseRepo)

	return s, nil
}

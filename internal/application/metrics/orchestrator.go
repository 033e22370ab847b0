package metrics

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-sync/internal/application/catalogsync"
	"github.com/jhoicas/inventario-sync/internal/application/dto"
	"github.com/jhoicas/inventario-sync/internal/domain"
	calc "github.com/jhoicas/inventario-sync/internal/domain/metrics"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
	"github.com/rs/zerolog"
)

var _ catalogsync.MetricsRecomputer = (*ShopMetricsOrchestrator)(nil)

// DefaultBatchSize productos por lote al recorrer el catálogo local.
const DefaultBatchSize = 100

// ShopMetricsOrchestrator recalcula status, stockout days y trending de todos los productos de
// una tienda, por lotes, con los umbrales resueltos una sola vez por corrida.
type ShopMetricsOrchestrator struct {
	shops     repository.ShopRepository
	products  repository.ProductRepository
	throttle  *catalogsync.WriteThrottle
	batchSize int
	log       zerolog.Logger
}

// NewShopMetricsOrchestrator construye el orquestador. batchSize <= 0 usa DefaultBatchSize.
func NewShopMetricsOrchestrator(
	shops repository.ShopRepository,
	products repository.ProductRepository,
	throttle *catalogsync.WriteThrottle,
	batchSize int,
	log zerolog.Logger,
) *ShopMetricsOrchestrator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ShopMetricsOrchestrator{shops: shops, products: products, throttle: throttle, batchSize: batchSize, log: log}
}

// RecomputeAll recalcula las métricas de la tienda. Solo falla si la tienda no existe o si no se
// puede leer un lote; un producto que no se puede actualizar se registra y se omite.
func (o *ShopMetricsOrchestrator) RecomputeAll(ctx context.Context, shopID string) (dto.MetricsRunSummary, error) {
	summary := dto.MetricsRunSummary{ShopID: shopID}

	shop, err := o.shops.GetByID(ctx, shopID)
	if err != nil {
		return summary, fmt.Errorf("get shop: %w", err)
	}
	if shop == nil {
		summary.Message = "tienda no encontrada"
		return summary, domain.ErrShopNotFound
	}
	settings, err := o.shops.GetSettings(ctx, shopID)
	if err != nil {
		return summary, fmt.Errorf("get shop settings: %w", err)
	}
	th := calc.ResolveThresholds(settings, shop)
	log := o.log.With().Str("shop_id", shopID).Logger()
	log.Debug().
		Int("low_units", th.LowUnits).
		Int("critical_units", th.CriticalUnits).
		Int("critical_days", th.CriticalDays).
		Str("trending_velocity", th.TrendingVelocity.String()).
		Msg("umbrales resueltos")

	afterID := ""
	for {
		if err := ctx.Err(); err != nil {
			summary.Message = "recálculo interrumpido"
			return summary, err
		}
		rows, err := o.products.ListMetricsRows(ctx, shopID, afterID, o.batchSize)
		if err != nil {
			summary.Message = "no se pudo leer el catálogo local"
			return summary, fmt.Errorf("list metrics batch: %w", err)
		}
		for _, row := range rows {
			res := calc.Calculate(calc.Input{Quantities: row.Quantities, SalesVelocity: row.SalesVelocity}, th)
			update := repository.ProductMetricsUpdate{
				Status:                res.Status,
				StockoutDays:          res.StockoutDays,
				Trending:              res.Trending,
				CurrentTotalInventory: res.TotalInventory,
			}
			err := o.throttle.Do(ctx, func(ctx context.Context) error {
				return o.products.UpdateMetrics(ctx, row.ProductID, update)
			})
			if err != nil {
				log.Warn().Err(err).Str("product_id", row.ProductID).Msg("no se pudieron guardar las métricas del producto")
				summary.ProductsFailed++
				continue
			}
			summary.ProductsUpdated++
		}
		if len(rows) < o.batchSize {
			break
		}
		afterID = rows[len(rows)-1].ProductID
	}

	summary.Success = true
	summary.Message = fmt.Sprintf("%d productos actualizados, %d con error", summary.ProductsUpdated, summary.ProductsFailed)
	log.Info().Int("updated", summary.ProductsUpdated).Int("failed", summary.ProductsFailed).Msg("métricas recalculadas")
	return summary, nil
}

package catalogsync

import (
	"context"

	"github.com/jhoicas/inventario-sync/internal/domain/catalog"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
	"github.com/rs/zerolog"
)

// PageResult contadores de una página reconciliada.
type PageResult struct {
	Products        int
	Variants        int
	InventoryRows   int
	SkippedUnmapped int
	Failed          int
}

// Add acumula otro resultado.
func (r PageResult) Add(o PageResult) PageResult {
	return PageResult{
		Products:        r.Products + o.Products,
		Variants:        r.Variants + o.Variants,
		InventoryRows:   r.InventoryRows + o.InventoryRows,
		SkippedUnmapped: r.SkippedUnmapped + o.SkippedUnmapped,
		Failed:          r.Failed + o.Failed,
	}
}

// ReconciliationWriter aplica una página del catálogo externo sobre productos, variantes e
// inventario locales. Cada fila se escribe por separado: un fallo se registra, se cuenta y no
// detiene a las demás.
type ReconciliationWriter struct {
	products  repository.ProductRepository
	variants  repository.VariantRepository
	inventory repository.InventoryLevelRepository
	throttle  *WriteThrottle
	log       zerolog.Logger
}

// NewReconciliationWriter construye el writer.
func NewReconciliationWriter(
	products repository.ProductRepository,
	variants repository.VariantRepository,
	inventory repository.InventoryLevelRepository,
	throttle *WriteThrottle,
	log zerolog.Logger,
) *ReconciliationWriter {
	return &ReconciliationWriter{products: products, variants: variants, inventory: inventory, throttle: throttle, log: log}
}

// WritePage hace upsert de los productos de la página, sus variantes y sus niveles de inventario.
func (w *ReconciliationWriter) WritePage(ctx context.Context, shopID string, products []catalog.Product, locations LocationMap) PageResult {
	var res PageResult
	log := w.log.With().Str("shop_id", shopID).Logger()

	for _, ext := range products {
		if ctx.Err() != nil {
			break
		}
		product := &entity.Product{
			ShopID:      shopID,
			ExternalID:  ext.ExternalID,
			Title:       ext.Title,
			Vendor:      ext.Vendor,
			ProductType: ext.ProductType,
			Tags:        ext.Tags,
		}
		var productID string
		err := w.throttle.Do(ctx, func(ctx context.Context) error {
			var err error
			productID, err = w.products.UpsertFromCatalog(ctx, product)
			return err
		})
		if err != nil {
			dependents := len(ext.InventoryLevels)
			for _, v := range ext.Variants.Items {
				dependents += 1 + levelCount(v)
			}
			log.Warn().Err(err).Str("product_external_id", ext.ExternalID).Int("dependent_rows", dependents).
				Msg("no se pudo guardar el producto, se omiten sus variantes e inventario")
			res.Failed += 1 + dependents
			continue
		}
		res.Products++

		plog := log.With().Str("product_external_id", ext.ExternalID).Logger()
		for _, level := range ext.InventoryLevels {
			w.writeLevel(ctx, &res, plog, productID, nil, level, locations)
		}
		for _, v := range ext.Variants.Items {
			w.writeVariant(ctx, &res, plog, productID, v, locations)
		}
	}
	return res
}

func (w *ReconciliationWriter) writeVariant(ctx context.Context, res *PageResult, log zerolog.Logger, productID string, ext catalog.Variant, locations LocationMap) {
	variant := &entity.Variant{
		ProductID:         productID,
		ExternalID:        ext.ExternalID,
		Title:             ext.Title,
		SKU:               ext.SKU,
		Price:             ext.Price,
		InventoryQuantity: ext.InventoryQuantity,
	}
	if ext.InventoryItem != nil {
		variant.ExternalInventoryItemID = ext.InventoryItem.ExternalID
	}
	var variantID string
	err := w.throttle.Do(ctx, func(ctx context.Context) error {
		var err error
		variantID, err = w.variants.Upsert(ctx, variant)
		return err
	})
	if err != nil {
		log.Warn().Err(err).Str("variant_external_id", ext.ExternalID).Int("dependent_rows", levelCount(ext)).
			Msg("no se pudo guardar la variante, se omite su inventario")
		res.Failed += 1 + levelCount(ext)
		return
	}
	res.Variants++

	if ext.InventoryItem == nil {
		return
	}
	vlog := log.With().Str("variant_external_id", ext.ExternalID).Logger()
	for _, level := range ext.InventoryItem.Levels.Items {
		w.writeLevel(ctx, res, vlog, productID, &variantID, level, locations)
	}
}

func (w *ReconciliationWriter) writeLevel(ctx context.Context, res *PageResult, log zerolog.Logger, productID string, variantID *string, ext catalog.InventoryLevel, locations LocationMap) {
	warehouseID, ok := locations[ext.LocationExternalID]
	if !ok {
		log.Warn().Str("external_location_id", ext.LocationExternalID).Msg("ubicación sin bodega mapeada, se omite el inventario")
		res.SkippedUnmapped++
		return
	}
	level := &entity.InventoryLevel{
		ProductID:   productID,
		VariantID:   variantID,
		WarehouseID: warehouseID,
		Quantity:    ext.Quantity(),
	}
	err := w.throttle.Do(ctx, func(ctx context.Context) error {
		return w.inventory.Upsert(ctx, level)
	})
	if err != nil {
		log.Warn().Err(err).Str("external_location_id", ext.LocationExternalID).Msg("no se pudo guardar el inventario")
		res.Failed++
		return
	}
	res.InventoryRows++
}

func levelCount(v catalog.Variant) int {
	if v.InventoryItem == nil {
		return 0
	}
	return len(v.InventoryItem.Levels.Items)
}

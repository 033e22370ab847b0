package catalogsync

import (
	"context"

	"github.com/jhoicas/inventario-sync/internal/application/dto"
	"github.com/jhoicas/inventario-sync/internal/domain/catalog"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// CatalogSource puerto de lectura del catálogo externo de una tienda. Cada método devuelve una
// página; after vacío = primera página. Una página sin los campos esperados devuelve un error
// que envuelve domain.ErrMalformedPage.
type CatalogSource interface {
	FetchLocations(ctx context.Context, after string) (catalog.Page[catalog.Location], error)
	FetchProducts(ctx context.Context, after string) (catalog.Page[catalog.Product], error)
	FetchProductVariants(ctx context.Context, productExternalID, after string) (catalog.Page[catalog.Variant], error)
	FetchInventoryLevels(ctx context.Context, inventoryItemExternalID, after string) (catalog.Page[catalog.InventoryLevel], error)
}

// SourceFactory construye el cliente del catálogo con las credenciales de la tienda.
type SourceFactory func(shop *entity.Shop) CatalogSource

// MetricsRecomputer recalcula las métricas derivadas de todos los productos de una tienda.
type MetricsRecomputer interface {
	RecomputeAll(ctx context.Context, shopID string) (dto.MetricsRunSummary, error)
}

package catalogsync

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-sync/internal/domain/catalog"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
	"github.com/rs/zerolog"
)

// LocationMap ID de ubicación externa -> ID de bodega local.
type LocationMap map[string]string

// LocationResolver mapea las ubicaciones externas a bodegas locales, creándolas si faltan.
type LocationResolver struct {
	warehouses repository.WarehouseRepository
	throttle   *WriteThrottle
	log        zerolog.Logger
}

// NewLocationResolver construye el resolver.
func NewLocationResolver(warehouses repository.WarehouseRepository, throttle *WriteThrottle, log zerolog.Logger) *LocationResolver {
	return &LocationResolver{warehouses: warehouses, throttle: throttle, log: log}
}

// Resolve recorre todas las ubicaciones y hace upsert de cada bodega. Un fallo de una ubicación
// se registra y se omite. Si falla la paginación se devuelve el mapa acumulado junto con el error.
func (r *LocationResolver) Resolve(ctx context.Context, shopID string, source CatalogSource) (LocationMap, error) {
	locations := make(LocationMap)
	log := r.log.With().Str("shop_id", shopID).Logger()

	pager := NewPager("locations", source.FetchLocations, "", log)
	err := pager.Each(ctx, func(ctx context.Context, page catalog.Page[catalog.Location]) error {
		for _, loc := range page.Items {
			extID := loc.ExternalID
			warehouse := &entity.Warehouse{
				ShopID:             shopID,
				Name:               loc.Name,
				Location:           loc.Name,
				ExternalLocationID: &extID,
				CreatedAt:          time.Now(),
			}
			var id string
			err := r.throttle.Do(ctx, func(ctx context.Context) error {
				var err error
				id, err = r.warehouses.UpsertByExternalLocation(ctx, warehouse)
				return err
			})
			if err != nil {
				log.Warn().Err(err).Str("external_location_id", extID).Msg("no se pudo mapear la ubicación")
				continue
			}
			locations[extID] = id
		}
		return nil
	})
	if err != nil {
		return locations, err
	}
	log.Debug().Int("locations", len(locations)).Msg("ubicaciones resueltas")
	return locations, nil
}

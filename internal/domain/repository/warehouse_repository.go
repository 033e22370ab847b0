package repository

import (
	"context"

	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	// UpsertByExternalLocation crea la bodega (name y location = nombre externo) o actualiza solo
	// el nombre si ya existe una con el mismo ExternalLocationID. Devuelve el ID local.
	UpsertByExternalLocation(ctx context.Context, warehouse *entity.Warehouse) (string, error)
	ListByShop(ctx context.Context, shopID string) ([]*entity.Warehouse, error)
}

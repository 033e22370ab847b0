package repository

import (
	"context"

	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// InventoryLevelRepository define el puerto para el stock por (producto o variante, bodega) (DIP).
// Las escrituras fallan si la bodega no tiene ubicación externa mapeada.
type InventoryLevelRepository interface {
	// Upsert usa (VariantID, WarehouseID) si VariantID no es nil; si no, (ProductID, WarehouseID).
	Upsert(ctx context.Context, level *entity.InventoryLevel) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryLevel, error)
}

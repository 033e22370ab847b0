package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
)

var _ repository.InventoryLevelRepository = (*InventoryLevelRepo)(nil)

// InventoryLevelRepo implementación de InventoryLevelRepository sobre PostgreSQL.
type InventoryLevelRepo struct {
	q Querier
}

// NewInventoryLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventoryLevelRepository(q Querier) *InventoryLevelRepo {
	return &InventoryLevelRepo{q: q}
}

// Upsert escribe la cantidad autoritativa. El SELECT sobre warehouses descarta bodegas sin
// external_location_id: en ese caso no se inserta nada y se devuelve domain.ErrInvalidInput.
func (r *InventoryLevelRepo) Upsert(ctx context.Context, level *entity.InventoryLevel) error {
	conflict := `ON CONFLICT (product_id, warehouse_id) WHERE variant_id IS NULL`
	if level.VariantID != nil {
		conflict = `ON CONFLICT (variant_id, warehouse_id) WHERE variant_id IS NOT NULL`
	}
	query := `
		INSERT INTO inventory (id, product_id, variant_id, warehouse_id, quantity, updated_at)
		SELECT $1::uuid, $2::uuid, $3::uuid, w.id, $5::int4, now()
		FROM warehouses w
		WHERE w.id = $4 AND w.external_location_id IS NOT NULL
		` + conflict + `
		DO UPDATE SET quantity = EXCLUDED.quantity, product_id = EXCLUDED.product_id, updated_at = now()`
	cmd, err := r.q.Exec(ctx, query, uuid.New().String(), level.ProductID, level.VariantID, level.WarehouseID, level.Quantity)
	if err != nil {
		return fmt.Errorf("upsert inventory level: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: bodega %s sin ubicación externa", domain.ErrInvalidInput, level.WarehouseID)
	}
	return nil
}

// ListByProduct lista las filas de inventario de un producto (todas sus variantes y bodegas).
func (r *InventoryLevelRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryLevel, error) {
	if !isUUID(productID) {
		return nil, nil
	}
	query := `
		SELECT id, product_id, variant_id, warehouse_id, quantity, updated_at
		FROM inventory WHERE product_id = $1
		ORDER BY warehouse_id, variant_id NULLS FIRST`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list inventory levels by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryLevel
	for rows.Next() {
		var l entity.InventoryLevel
		if err := rows.Scan(&l.ID, &l.ProductID, &l.VariantID, &l.WarehouseID, &l.Quantity, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory level: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

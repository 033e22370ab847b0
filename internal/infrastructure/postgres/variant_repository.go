package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
)

var _ repository.VariantRepository = (*VariantRepo)(nil)

// VariantRepo implementación de VariantRepository sobre PostgreSQL.
type VariantRepo struct {
	q Querier
}

// NewVariantRepository construye el adaptador. Acepta pool o tx (Querier).
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

// Upsert crea o actualiza la variante por external_id y devuelve el ID local.
func (r *VariantRepo) Upsert(ctx context.Context, v *entity.Variant) (string, error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	query := `
		INSERT INTO variants (id, product_id, external_id, title, sku, price, inventory_quantity,
		                      external_inventory_item_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (external_id)
		DO UPDATE SET product_id = EXCLUDED.product_id,
		              title = EXCLUDED.title,
		              sku = EXCLUDED.sku,
		              price = EXCLUDED.price,
		              inventory_quantity = EXCLUDED.inventory_quantity,
		              external_inventory_item_id = EXCLUDED.external_inventory_item_id,
		              updated_at = now()
		RETURNING id`
	var id string
	err := r.q.QueryRow(ctx, query,
		v.ID, v.ProductID, v.ExternalID, v.Title, nullableText(v.SKU), v.Price, v.InventoryQuantity,
		nullableText(v.ExternalInventoryItemID),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", domain.ErrDuplicate
		}
		return "", fmt.Errorf("upsert variant: %w", err)
	}
	v.ID = id
	return id, nil
}

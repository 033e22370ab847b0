package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
)

var _ repository.WarehouseRepository = (*WarehouseRepo)(nil)

// WarehouseRepo implementación del puerto WarehouseRepository sobre PostgreSQL.
type WarehouseRepo struct {
	q Querier
}

// NewWarehouseRepository construye el adaptador de persistencia para bodegas.
func NewWarehouseRepository(q Querier) *WarehouseRepo {
	return &WarehouseRepo{q: q}
}

// UpsertByExternalLocation crea la bodega mapeada o renombra la existente.
// Una ubicación externa ya reclamada por otra tienda devuelve domain.ErrDuplicate.
func (r *WarehouseRepo) UpsertByExternalLocation(ctx context.Context, w *entity.Warehouse) (string, error) {
	if !w.IsMapped() {
		return "", fmt.Errorf("%w: bodega sin ubicación externa", domain.ErrInvalidInput)
	}
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	query := `
		INSERT INTO warehouses (id, shop_id, name, location, external_location_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3, $4, now(), now())
		ON CONFLICT (external_location_id)
		DO UPDATE SET name = EXCLUDED.name, updated_at = now()
		WHERE warehouses.shop_id = EXCLUDED.shop_id
		RETURNING id`
	var id string
	err := r.q.QueryRow(ctx, query, w.ID, w.ShopID, w.Name, *w.ExternalLocationID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: ubicación %s pertenece a otra tienda", domain.ErrDuplicate, *w.ExternalLocationID)
		}
		return "", fmt.Errorf("upsert warehouse: %w", err)
	}
	w.ID = id
	return id, nil
}

// ListByShop lista las bodegas de una tienda (mapeadas y locales).
func (r *WarehouseRepo) ListByShop(ctx context.Context, shopID string) ([]*entity.Warehouse, error) {
	query := `
		SELECT id, shop_id, name, location, external_location_id, created_at, updated_at
		FROM warehouses WHERE shop_id = $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, shopID)
	if err != nil {
		return nil, fmt.Errorf("list warehouses: %w", err)
	}
	defer rows.Close()
	var list []*entity.Warehouse
	for rows.Next() {
		var w entity.Warehouse
		if err := rows.Scan(&w.ID, &w.ShopID, &w.Name, &w.Location, &w.ExternalLocationID, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan warehouse: %w", err)
		}
		list = append(list, &w)
	}
	return list, rows.Err()
}

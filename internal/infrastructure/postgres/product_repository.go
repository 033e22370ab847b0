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

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, shop_id, external_id, title, vendor, product_type, tags, status, stockout_days,
	trending, sales_velocity, current_total_inventory, metrics_updated_at, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.ShopID, &p.ExternalID, &p.Title, &p.Vendor, &p.ProductType, &p.Tags, &p.Status,
		&p.StockoutDays, &p.Trending, &p.SalesVelocity, &p.CurrentTotalInventory, &p.MetricsUpdatedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// UpsertFromCatalog inserta o actualiza los campos descriptivos por (shop_id, external_id).
// status, stockout_days, trending y current_total_inventory no se tocan en el conflicto.
func (r *ProductRepo) UpsertFromCatalog(ctx context.Context, p *entity.Product) (string, error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	query := `
		INSERT INTO products (id, shop_id, external_id, title, vendor, product_type, tags,
		                      status, trending, sales_velocity, current_total_inventory, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, 0, 0, now(), now())
		ON CONFLICT (shop_id, external_id)
		DO UPDATE SET title = EXCLUDED.title,
		              vendor = EXCLUDED.vendor,
		              product_type = EXCLUDED.product_type,
		              tags = EXCLUDED.tags,
		              updated_at = now()
		RETURNING id`
	var id string
	err := r.q.QueryRow(ctx, query,
		p.ID, p.ShopID, p.ExternalID, p.Title, p.Vendor, p.ProductType, tags, entity.ProductStatusUnknown,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert product: %w", err)
	}
	p.ID = id
	return id, nil
}

// ListMetricsRows devuelve un lote ordenado por ID con las cantidades de todas sus filas de inventario.
func (r *ProductRepo) ListMetricsRows(ctx context.Context, shopID, afterID string, limit int) ([]repository.ProductMetricsRow, error) {
	query := `
		SELECT p.id, p.sales_velocity,
		       COALESCE(array_agg(i.quantity) FILTER (WHERE i.id IS NOT NULL), '{}')::int4[]
		FROM products p
		LEFT JOIN inventory i ON i.product_id = p.id
		WHERE p.shop_id = $1 AND ($2::uuid IS NULL OR p.id > $2::uuid)
		GROUP BY p.id, p.sales_velocity
		ORDER BY p.id
		LIMIT $3`
	rows, err := r.q.Query(ctx, query, shopID, nullableID(afterID), limit)
	if err != nil {
		return nil, fmt.Errorf("list product metrics rows: %w", err)
	}
	defer rows.Close()
	var list []repository.ProductMetricsRow
	for rows.Next() {
		var (
			row        repository.ProductMetricsRow
			quantities []int32
		)
		if err := rows.Scan(&row.ProductID, &row.SalesVelocity, &quantities); err != nil {
			return nil, fmt.Errorf("scan product metrics row: %w", err)
		}
		row.Quantities = make([]int, len(quantities))
		for i, q := range quantities {
			row.Quantities[i] = int(q)
		}
		list = append(list, row)
	}
	return list, rows.Err()
}

// UpdateMetrics escribe los campos derivados de un producto.
func (r *ProductRepo) UpdateMetrics(ctx context.Context, productID string, u repository.ProductMetricsUpdate) error {
	if !entity.IsPersistableStatus(u.Status) {
		return fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, u.Status)
	}
	if !isUUID(productID) {
		return domain.ErrNotFound
	}
	query := `
		UPDATE products
		SET status = $2, stockout_days = $3, trending = $4, current_total_inventory = $5,
		    metrics_updated_at = now(), updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, productID, u.Status, u.StockoutDays, u.Trending, u.CurrentTotalInventory)
	if err != nil {
		return fmt.Errorf("update product metrics: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByShop lista productos de una tienda, opcionalmente filtrados por estado.
func (r *ProductRepo) ListByShop(ctx context.Context, shopID, status string, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + `
		FROM products
		WHERE shop_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY title, id LIMIT $3 OFFSET $4`
	rows, err := r.q.Query(ctx, query, shopID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	if !isUUID(id) {
		return nil, nil
	}
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

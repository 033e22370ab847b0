package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
)

var _ repository.ShopRepository = (*ShopRepo)(nil)

// ShopRepo implementación de ShopRepository sobre PostgreSQL.
type ShopRepo struct {
	q Querier
}

// NewShopRepository construye el adaptador de lectura de tiendas. Pasar pool o tx (Querier).
func NewShopRepository(q Querier) *ShopRepo {
	return &ShopRepo{q: q}
}

const shopColumns = `id, domain, access_token, default_low_stock_threshold, created_at, updated_at`

func scanShop(row pgx.Row) (*entity.Shop, error) {
	var s entity.Shop
	if err := row.Scan(&s.ID, &s.Domain, &s.AccessToken, &s.DefaultLowStockThreshold, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID obtiene una tienda por ID.
func (r *ShopRepo) GetByID(ctx context.Context, id string) (*entity.Shop, error) {
	if !isUUID(id) {
		return nil, nil
	}
	s, err := scanShop(r.q.QueryRow(ctx, `SELECT `+shopColumns+` FROM shops WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shop: %w", err)
	}
	return s, nil
}

// List devuelve todas las tiendas instaladas, en orden de creación.
func (r *ShopRepo) List(ctx context.Context) ([]*entity.Shop, error) {
	rows, err := r.q.Query(ctx, `SELECT `+shopColumns+` FROM shops ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}
	defer rows.Close()
	var list []*entity.Shop
	for rows.Next() {
		s, err := scanShop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shop: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// GetSettings obtiene los overrides de umbrales de la tienda.
func (r *ShopRepo) GetSettings(ctx context.Context, shopID string) (*entity.ShopSettings, error) {
	if !isUUID(shopID) {
		return nil, nil
	}
	query := `
		SELECT shop_id, low_stock_threshold, critical_stock_threshold, critical_days_threshold,
		       trending_velocity_threshold, updated_at
		FROM shop_settings WHERE shop_id = $1`
	var s entity.ShopSettings
	err := r.q.QueryRow(ctx, query, shopID).Scan(
		&s.ShopID, &s.LowStockThreshold, &s.CriticalStockThreshold, &s.CriticalDaysThreshold,
		&s.TrendingVelocityThreshold, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shop settings: %w", err)
	}
	return &s, nil
}

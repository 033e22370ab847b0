package memstore

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ShopRepository           = (*ShopRepo)(nil)
	_ repository.WarehouseRepository      = (*WarehouseRepo)(nil)
	_ repository.ProductRepository        = (*ProductRepo)(nil)
	_ repository.VariantRepository        = (*VariantRepo)(nil)
	_ repository.InventoryLevelRepository = (*InventoryLevelRepo)(nil)
	_ repository.SyncRunRepository        = (*SyncRunRepo)(nil)
)

func mustDecimal(v string) decimal.Decimal { return decimal.RequireFromString(v) }

// ── shops ────────────────────────────────────────────────────────────────────

type ShopRepo struct{ s *Store }

func (s *Store) Shops() *ShopRepo { return &ShopRepo{s: s} }

func (r *ShopRepo) GetByID(_ context.Context, id string) (*entity.Shop, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	shop, ok := r.s.shops[id]
	if !ok {
		return nil, nil
	}
	c := *shop
	return &c, nil
}

func (r *ShopRepo) List(_ context.Context) ([]*entity.Shop, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Shop
	for _, shop := range r.s.shops {
		c := *shop
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ShopRepo) GetSettings(_ context.Context, shopID string) (*entity.ShopSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.settings[shopID]
	if !ok {
		return nil, nil
	}
	c := *st
	return &c, nil
}

// ── warehouses ───────────────────────────────────────────────────────────────

type WarehouseRepo struct{ s *Store }

func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s: s} }

func (r *WarehouseRepo) UpsertByExternalLocation(_ context.Context, w *entity.Warehouse) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !w.IsMapped() {
		return "", domain.ErrInvalidInput
	}
	if err := r.s.FailLocation[*w.ExternalLocationID]; err != nil {
		return "", err
	}
	r.s.Writes++
	for _, existing := range r.s.warehouses {
		if existing.ExternalLocationID != nil && *existing.ExternalLocationID == *w.ExternalLocationID {
			if existing.ShopID != w.ShopID {
				return "", domain.ErrDuplicate
			}
			existing.Name = w.Name
			existing.UpdatedAt = r.s.Now()
			return existing.ID, nil
		}
	}
	ext := *w.ExternalLocationID
	c := &entity.Warehouse{
		ID:                 r.s.nextID("wh"),
		ShopID:             w.ShopID,
		Name:               w.Name,
		Location:           w.Name,
		ExternalLocationID: &ext,
		CreatedAt:          r.s.Now(),
		UpdatedAt:          r.s.Now(),
	}
	r.s.warehouses[c.ID] = c
	return c.ID, nil
}

func (r *WarehouseRepo) ListByShop(_ context.Context, shopID string) ([]*entity.Warehouse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Warehouse
	for _, w := range r.s.warehouses {
		if w.ShopID == shopID {
			c := *w
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ── products ─────────────────────────────────────────────────────────────────

type ProductRepo struct{ s *Store }

func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) UpsertFromCatalog(_ context.Context, p *entity.Product) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.FailProduct[p.ExternalID]; err != nil {
		return "", err
	}
	r.s.Writes++
	for _, existing := range r.s.products {
		if existing.ShopID == p.ShopID && existing.ExternalID == p.ExternalID {
			existing.Title = p.Title
			existing.Vendor = p.Vendor
			existing.ProductType = p.ProductType
			existing.Tags = append([]string(nil), p.Tags...)
			existing.UpdatedAt = r.s.Now()
			return existing.ID, nil
		}
	}
	c := &entity.Product{
		ID:          r.s.nextID("prod"),
		ShopID:      p.ShopID,
		ExternalID:  p.ExternalID,
		Title:       p.Title,
		Vendor:      p.Vendor,
		ProductType: p.ProductType,
		Tags:        append([]string(nil), p.Tags...),
		Status:      entity.ProductStatusUnknown,
		CreatedAt:   r.s.Now(),
		UpdatedAt:   r.s.Now(),
	}
	r.s.products[c.ID] = c
	return c.ID, nil
}

func (r *ProductRepo) ListMetricsRows(_ context.Context, shopID, afterID string, limit int) ([]repository.ProductMetricsRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for id, p := range r.s.products {
		if p.ShopID == shopID && (afterID == "" || id > afterID) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]repository.ProductMetricsRow, 0, len(ids))
	for _, id := range ids {
		row := repository.ProductMetricsRow{ProductID: id, SalesVelocity: r.s.products[id].SalesVelocity, Quantities: []int{}}
		for _, l := range r.s.inventory {
			if l.ProductID == id {
				row.Quantities = append(row.Quantities, l.Quantity)
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func (r *ProductRepo) UpdateMetrics(_ context.Context, productID string, u repository.ProductMetricsUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.FailMetrics[productID]; err != nil {
		return err
	}
	if !entity.IsPersistableStatus(u.Status) {
		return fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, u.Status)
	}
	p, ok := r.s.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	r.s.Writes++
	now := r.s.Now()
	p.Status = u.Status
	p.StockoutDays = u.StockoutDays
	p.Trending = u.Trending
	p.CurrentTotalInventory = u.CurrentTotalInventory
	p.MetricsUpdatedAt = &now
	p.UpdatedAt = now
	return nil
}

func (r *ProductRepo) ListByShop(_ context.Context, shopID, status string, limit, offset int) ([]*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.ShopID == shopID && (status == "" || p.Status == status) {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

// ── variants ─────────────────────────────────────────────────────────────────

type VariantRepo struct{ s *Store }

func (s *Store) Variants() *VariantRepo { return &VariantRepo{s: s} }

func (r *VariantRepo) Upsert(_ context.Context, v *entity.Variant) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.FailVariant[v.ExternalID]; err != nil {
		return "", err
	}
	r.s.Writes++
	for _, existing := range r.s.variants {
		if existing.ExternalID == v.ExternalID {
			existing.ProductID = v.ProductID
			existing.Title = v.Title
			existing.SKU = v.SKU
			existing.Price = v.Price
			existing.InventoryQuantity = v.InventoryQuantity
			existing.ExternalInventoryItemID = v.ExternalInventoryItemID
			existing.UpdatedAt = r.s.Now()
			return existing.ID, nil
		}
	}
	c := *v
	c.ID = r.s.nextID("var")
	c.CreatedAt, c.UpdatedAt = r.s.Now(), r.s.Now()
	r.s.variants[c.ID] = &c
	return c.ID, nil
}

// ── inventory ────────────────────────────────────────────────────────────────

type InventoryLevelRepo struct{ s *Store }

func (s *Store) Inventory() *InventoryLevelRepo { return &InventoryLevelRepo{s: s} }

func (r *InventoryLevelRepo) Upsert(_ context.Context, level *entity.InventoryLevel) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.warehouses[level.WarehouseID]
	if !ok || !w.IsMapped() {
		return fmt.Errorf("%w: bodega %s sin ubicación externa", domain.ErrInvalidInput, level.WarehouseID)
	}
	if err := r.s.FailLevelLocation[*w.ExternalLocationID]; err != nil {
		return err
	}
	r.s.Writes++
	for _, existing := range r.s.inventory {
		if existing.WarehouseID != level.WarehouseID {
			continue
		}
		sameVariant := level.VariantID != nil && existing.VariantID != nil && *existing.VariantID == *level.VariantID
		sameProduct := level.VariantID == nil && existing.VariantID == nil && existing.ProductID == level.ProductID
		if sameVariant || sameProduct {
			existing.Quantity = level.Quantity
			existing.ProductID = level.ProductID
			existing.UpdatedAt = r.s.Now()
			return nil
		}
	}
	c := *level
	if level.VariantID != nil {
		v := *level.VariantID
		c.VariantID = &v
	}
	c.ID = r.s.nextID("inv")
	c.UpdatedAt = r.s.Now()
	r.s.inventory[c.ID] = &c
	return nil
}

func (r *InventoryLevelRepo) ListByProduct(_ context.Context, productID string) ([]*entity.InventoryLevel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventoryLevel
	for _, l := range r.s.inventory {
		if l.ProductID == productID {
			c := *l
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── sync runs ────────────────────────────────────────────────────────────────

type SyncRunRepo struct{ s *Store }

func (s *Store) SyncRuns() *SyncRunRepo { return &SyncRunRepo{s: s} }

func (r *SyncRunRepo) Create(_ context.Context, run *entity.SyncRun) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.Writes++
	if run.ID == "" {
		run.ID = r.s.nextID("run")
	}
	c := *run
	r.s.runs[c.ID] = &c
	r.s.runOrder = append(r.s.runOrder, c.ID)
	return nil
}

func (r *SyncRunRepo) SaveCursor(_ context.Context, runID, cursor string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	run, ok := r.s.runs[runID]
	if !ok {
		return domain.ErrNotFound
	}
	r.s.Writes++
	run.ProductCursor = cursor
	return nil
}

func (r *SyncRunRepo) Finish(_ context.Context, run *entity.SyncRun) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.runs[run.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.Writes++
	c := *run
	r.s.runs[run.ID] = &c
	return nil
}

func (r *SyncRunRepo) LastResumable(_ context.Context, shopID string) (*entity.SyncRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := len(r.s.runOrder) - 1; i >= 0; i-- {
		run := r.s.runs[r.s.runOrder[i]]
		if run.ShopID != shopID {
			continue
		}
		if run.Status == entity.SyncRunStatusSuccess || run.ProductCursor == "" {
			return nil, nil
		}
		c := *run
		return &c, nil
	}
	return nil, nil
}

func (r *SyncRunRepo) ListByShop(_ context.Context, shopID string, limit int) ([]*entity.SyncRun, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.SyncRun
	for i := len(r.s.runOrder) - 1; i >= 0 && len(out) < limit; i-- {
		run := r.s.runs[r.s.runOrder[i]]
		if run.ShopID == shopID {
			c := *run
			out = append(out, &c)
		}
	}
	return out, nil
}

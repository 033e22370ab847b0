package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-sync/internal/application/dto"
	"github.com/jhoicas/inventario-sync/internal/domain"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
)

// ProductUseCase consultas de productos y su salud de stock para los consumidores de la API.
type ProductUseCase struct {
	repo      repository.ProductRepository
	inventory repository.InventoryLevelRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, inventory repository.InventoryLevelRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, inventory: inventory}
}

// List lista productos de la tienda, filtrados por estado si status no es vacío.
func (uc *ProductUseCase) List(ctx context.Context, shopID, status string, page dto.PageRequest) (*dto.ProductListResponse, error) {
	if status != "" && !entity.IsPersistableStatus(status) && status != entity.ProductStatusUnknown {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	page.DefaultPage()
	list, err := uc.repo.ListByShop(ctx, shopID, status, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Get devuelve el producto con su inventario por bodega. Un producto de otra tienda se trata
// como inexistente.
func (uc *ProductUseCase) Get(ctx context.Context, shopID, id string) (*dto.ProductDetailResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil || p.ShopID != shopID {
		return nil, domain.ErrNotFound
	}
	levels, err := uc.inventory.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductDetailResponse{
		ProductResponse: *toProductResponse(p),
		Inventory:       make([]dto.InventoryLevelResponse, 0, len(levels)),
	}
	for _, l := range levels {
		out.Inventory = append(out.Inventory, dto.InventoryLevelResponse{
			WarehouseID: l.WarehouseID,
			VariantID:   l.VariantID,
			Quantity:    l.Quantity,
			UpdatedAt:   l.UpdatedAt,
		})
	}
	return out, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	out := &dto.ProductResponse{
		ID:                    p.ID,
		ShopID:                p.ShopID,
		ExternalID:            p.ExternalID,
		Title:                 p.Title,
		Vendor:                p.Vendor,
		ProductType:           p.ProductType,
		Tags:                  p.Tags,
		Status:                p.Status,
		Trending:              p.Trending,
		SalesVelocity:         p.SalesVelocity,
		CurrentTotalInventory: p.CurrentTotalInventory,
		MetricsUpdatedAt:      p.MetricsUpdatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
	if p.StockoutDays.Valid {
		days := p.StockoutDays.Decimal
		out.StockoutDays = &days
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

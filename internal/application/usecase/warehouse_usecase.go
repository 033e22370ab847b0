package usecase

import (
	"context"

	"github.com/jhoicas/inventario-sync/internal/application/dto"
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/jhoicas/inventario-sync/internal/domain/repository"
)

// WarehouseUseCase consultas de bodegas de una tienda. Las bodegas mapeadas las crea la sincronización.
type WarehouseUseCase struct {
	repo repository.WarehouseRepository
}

// NewWarehouseUseCase construye el caso de uso.
func NewWarehouseUseCase(repo repository.WarehouseRepository) *WarehouseUseCase {
	return &WarehouseUseCase{repo: repo}
}

// List lista las bodegas de la tienda, mapeadas y locales.
func (uc *WarehouseUseCase) List(ctx context.Context, shopID string) (*dto.WarehouseListResponse, error) {
	list, err := uc.repo.ListByShop(ctx, shopID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.WarehouseResponse, 0, len(list))
	for _, w := range list {
		items = append(items, *toWarehouseResponse(w))
	}
	return &dto.WarehouseListResponse{Items: items}, nil
}

func toWarehouseResponse(w *entity.Warehouse) *dto.WarehouseResponse {
	if w == nil {
		return nil
	}
	return &dto.WarehouseResponse{
		ID:                 w.ID,
		ShopID:             w.ShopID,
		Name:               w.Name,
		Location:           w.Location,
		ExternalLocationID: w.ExternalLocationID,
		Mapped:             w.IsMapped(),
		CreatedAt:          w.CreatedAt,
		UpdatedAt:          w.UpdatedAt,
	}
}

package repository

import (
	"context"

	"github.com/jhoicas/inventario-sync/internal/domain/entity"
)

// ShopRepository define el puerto de lectura de tiendas y sus overrides de umbrales (DIP).
// Las tiendas las crea el colaborador de instalación; aquí solo se leen.
type ShopRepository interface {
	// GetByID devuelve nil, nil si la tienda no existe.
	GetByID(ctx context.Context, id string) (*entity.Shop, error)
	List(ctx context.Context) ([]*entity.Shop, error)
	// GetSettings devuelve nil, nil si la tienda no tiene overrides.
	GetSettings(ctx context.Context, shopID string) (*entity.ShopSettings, error)
}

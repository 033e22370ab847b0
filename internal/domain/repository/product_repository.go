package repository

import (
	"context"

	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// ProductMetricsRow datos crudos de un producto para el cálculo de métricas:
// velocidad de venta y cantidad de cada fila de inventario del producto.
type ProductMetricsRow struct {
	ProductID     string
	SalesVelocity decimal.Decimal
	Quantities    []int
}

// ProductMetricsUpdate campos derivados que escribe el orquestador de métricas.
type ProductMetricsUpdate struct {
	Status                string
	StockoutDays          decimal.NullDecimal
	Trending              bool
	CurrentTotalInventory int
}

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	// UpsertFromCatalog inserta con defaults (status Unknown, trending false) o actualiza solo
	// los campos descriptivos. Nunca toca los campos derivados. Devuelve el ID local.
	UpsertFromCatalog(ctx context.Context, product *entity.Product) (string, error)
	// ListMetricsRows pagina por keyset (ID > afterID, vacío = desde el inicio).
	ListMetricsRows(ctx context.Context, shopID, afterID string, limit int) ([]ProductMetricsRow, error)
	UpdateMetrics(ctx context.Context, productID string, update ProductMetricsUpdate) error
	// ListByShop filtra por estado si status no es vacío.
	ListByShop(ctx context.Context, shopID, status string, limit, offset int) ([]*entity.Product, error)
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}

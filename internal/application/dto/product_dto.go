package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductResponse salida de un producto con sus métricas derivadas.
// StockoutDays es null cuando no hay quiebre proyectado (velocidad 0 con stock).
type ProductResponse struct {
	ID                    string           `json:"id"`
	ShopID                string           `json:"shop_id"`
	ExternalID            string           `json:"external_id"`
	Title                 string           `json:"title"`
	Vendor                string           `json:"vendor"`
	ProductType           string           `json:"product_type"`
	Tags                  []string         `json:"tags"`
	Status                string           `json:"status"`
	StockoutDays          *decimal.Decimal `json:"stockout_days"`
	Trending              bool             `json:"trending"`
	SalesVelocity         decimal.Decimal  `json:"sales_velocity"`
	CurrentTotalInventory int              `json:"current_total_inventory"`
	MetricsUpdatedAt      *time.Time       `json:"metrics_updated_at,omitempty"`
	UpdatedAt             time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// InventoryLevelResponse stock de un producto o variante en una bodega.
type InventoryLevelResponse struct {
	WarehouseID string    `json:"warehouse_id"`
	VariantID   *string   `json:"variant_id"`
	Quantity    int       `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductDetailResponse producto con su inventario por bodega.
type ProductDetailResponse struct {
	ProductResponse
	Inventory []InventoryLevelResponse `json:"inventory"`
}

package entity

import "time"

// InventoryLevel representa el stock de un producto (o de una de sus variantes) en una bodega.
// VariantID nil = fila a nivel de producto. Único por (item, bodega).
type InventoryLevel struct {
	ID          string
	ProductID   string
	VariantID   *string
	WarehouseID string
	Quantity    int
	UpdatedAt   time.Time
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant representa una variante externa de un producto (único por ID externo).
// ExternalInventoryItemID se conserva para que otros colaboradores puedan empujar cambios
// de inventario de vuelta a la plataforma.
type Variant struct {
	ID                      string
	ProductID               string
	ExternalID              string
	Title                   string
	SKU                     string
	Price                   decimal.Decimal
	InventoryQuantity       int
	ExternalInventoryItemID string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// Package catalog contiene la forma del catálogo externo tal como llega de la plataforma:
// ubicaciones, productos, variantes y niveles de inventario, todos paginados por cursor.
package catalog

import "github.com/shopspring/decimal"

// QuantityAvailable es la cantidad con nombre que se toma como stock autoritativo.
const QuantityAvailable = "available"

// Page es una página de una conexión paginada por cursor.
type Page[T any] struct {
	Items       []T
	HasNextPage bool
	EndCursor   string
}

// Location ubicación física externa.
type Location struct {
	ExternalID string
	Name       string
}

// Product producto externo con la primera página de variantes embebida.
// InventoryLevels es stock a nivel de producto (filas con variant_id NULL) para fuentes que lo
// reportan así. El cliente de Shopify nunca lo llena: allí el stock cuelga del ítem de
// inventario de cada variante.
type Product struct {
	ExternalID      string
	Title           string
	Vendor          string
	ProductType     string
	Tags            []string
	Variants        Page[Variant]
	InventoryLevels []InventoryLevel
}

// Variant variante externa. InventoryItem nil = la variante no rastrea inventario.
type Variant struct {
	ExternalID        string
	Title             string
	SKU               string
	Price             decimal.Decimal
	InventoryQuantity int
	InventoryItem     *InventoryItem
}

// InventoryItem ítem de inventario de una variante con la primera página de niveles embebida.
type InventoryItem struct {
	ExternalID string
	Levels     Page[InventoryLevel]
}

// InventoryLevel stock de un ítem en una ubicación externa.
// Available nil = la cantidad "available" no vino en el registro.
type InventoryLevel struct {
	LocationExternalID string
	Available          *int
}

// Quantity devuelve la cantidad disponible, 0 si no vino informada.
func (l InventoryLevel) Quantity() int {
	if l.Available == nil {
		return 0
	}
	return *l.Available
}

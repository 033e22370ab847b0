package entity

import "time"

// Warehouse representa una ubicación física de la tienda.
// ExternalLocationID nil = bodega local sin mapeo; queda fuera de las escrituras de inventario.
type Warehouse struct {
	ID                 string
	ShopID             string
	Name               string
	Location           string
	ExternalLocationID *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsMapped indica si la bodega tiene una ubicación externa asociada.
func (w *Warehouse) IsMapped() bool {
	return w.ExternalLocationID != nil && *w.ExternalLocationID != ""
}

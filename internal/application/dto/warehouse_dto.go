package dto

import "time"

// WarehouseResponse salida de una bodega. Mapped=false indica que no recibe inventario externo.
type WarehouseResponse struct {
	ID                 string    `json:"id"`
	ShopID             string    `json:"shop_id"`
	Name               string    `json:"name"`
	Location           string    `json:"location"`
	ExternalLocationID *string   `json:"external_location_id"`
	Mapped             bool      `json:"mapped"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// WarehouseListResponse lista de bodegas de la tienda.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
}

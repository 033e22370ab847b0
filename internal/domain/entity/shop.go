package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shop representa el tenant raíz: una tienda instalada en la plataforma externa.
// Se crea en la instalación (colaborador externo); este servicio nunca la elimina.
type Shop struct {
	ID                       string
	Domain                   string // ej: mi-tienda.myshopify.com
	AccessToken              string // credencial offline entregada por el colaborador de auth
	DefaultLowStockThreshold *int   // nil = usar la constante del sistema
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// ShopSettings overrides de umbrales por tienda. Cualquier campo nil cae al default de la tienda
// y luego a la constante del sistema.
type ShopSettings struct {
	ShopID                    string
	LowStockThreshold         *int
	CriticalStockThreshold    *int
	CriticalDaysThreshold     *int
	TrendingVelocityThreshold *decimal.Decimal
	UpdatedAt                 time.Time
}

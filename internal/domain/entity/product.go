package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de salud de stock de un producto.
const (
	ProductStatusUnknown  = "Unknown" // default transitorio antes del primer cálculo de métricas
	ProductStatusHealthy  = "Healthy"
	ProductStatusLow      = "Low"
	ProductStatusCritical = "Critical"
)

// IsPersistableStatus indica si el estado puede guardarse como resultado de un cálculo.
func IsPersistableStatus(s string) bool {
	switch s {
	case ProductStatusHealthy, ProductStatusLow, ProductStatusCritical:
		return true
	}
	return false
}

// Product representa un producto externo reconciliado en la base local (único por tienda + ID externo).
// Status, StockoutDays, Trending y CurrentTotalInventory son derivados: solo los escribe el
// orquestador de métricas, nunca la reconciliación del catálogo.
type Product struct {
	ID                    string
	ShopID                string
	ExternalID            string
	Title                 string
	Vendor                string
	ProductType           string
	Tags                  []string
	Status                string
	StockoutDays          decimal.NullDecimal // inválido = sin quiebre proyectado
	Trending              bool
	SalesVelocity         decimal.Decimal // unidades vendidas por día (dato externo)
	CurrentTotalInventory int
	MetricsUpdatedAt      *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

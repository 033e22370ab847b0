package metrics

import (
	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Input datos de un producto necesarios para el cálculo: cantidades por fila de inventario
// (todas sus variantes y bodegas) y velocidad de venta en unidades/día.
type Input struct {
	Quantities    []int
	SalesVelocity decimal.Decimal
}

// Result métricas derivadas de un producto.
type Result struct {
	TotalInventory int
	StockoutDays   decimal.NullDecimal // inválido = sin quiebre proyectado (velocidad 0)
	Status         string
	Trending       bool
}

// Calculate calcula inventario total, días hasta quiebre, estado y tendencia (servicio de dominio, sin I/O).
//
// Precedencia del estado (gana la primera regla):
//  1. total == 0                                          -> Critical
//  2. total <= CriticalUnits                              -> Critical
//  3. días finitos <= CriticalDays y velocidad > 0        -> Critical
//  4. total <= LowUnits                                   -> Low
//  5. días finitos <= LowUnits/velocidad y velocidad > 0  -> Low
//  6. resto                                               -> Healthy
func Calculate(in Input, th Thresholds) Result {
	total := 0
	for _, q := range in.Quantities {
		total += q
	}
	velocity := in.SalesVelocity
	days := StockoutDays(total, velocity)
	return Result{
		TotalInventory: total,
		StockoutDays:   days,
		Status:         classify(total, velocity, days, th),
		Trending:       velocity.GreaterThan(th.TrendingVelocity),
	}
}

// StockoutDays proyecta los días de stock restantes, redondeados a 2 decimales.
// Sin inventario devuelve 0; con velocidad no positiva y stock devuelve un valor inválido.
func StockoutDays(total int, velocity decimal.Decimal) decimal.NullDecimal {
	if total == 0 {
		return decimal.NewNullDecimal(decimal.Zero)
	}
	if velocity.IsPositive() {
		return decimal.NewNullDecimal(decimal.NewFromInt(int64(total)).Div(velocity).Round(2))
	}
	return decimal.NullDecimal{}
}

func classify(total int, velocity decimal.Decimal, days decimal.NullDecimal, th Thresholds) string {
	if total == 0 {
		return entity.ProductStatusCritical
	}
	if total <= th.CriticalUnits {
		return entity.ProductStatusCritical
	}
	moving := velocity.IsPositive()
	if days.Valid && moving && days.Decimal.LessThanOrEqual(decimal.NewFromInt(int64(th.CriticalDays))) {
		return entity.ProductStatusCritical
	}
	if total <= th.LowUnits {
		return entity.ProductStatusLow
	}
	if days.Valid && moving {
		lowDays := decimal.NewFromInt(int64(th.LowUnits)).Div(velocity)
		if days.Decimal.LessThanOrEqual(lowDays) {
			return entity.ProductStatusLow
		}
	}
	return entity.ProductStatusHealthy
}

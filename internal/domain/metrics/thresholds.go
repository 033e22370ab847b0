package metrics

import (
	"math"

	"github.com/jhoicas/inventario-sync/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Constantes del sistema, último eslabón de la cadena override -> default de tienda -> constante.
const (
	DefaultLowStockThreshold     = 10
	DefaultCriticalDaysThreshold = 3
	MaxDefaultCriticalUnits      = 5
	criticalUnitsRatio           = 0.3
)

// DefaultTrendingVelocity unidades/día por encima de las cuales un producto es tendencia.
var DefaultTrendingVelocity = decimal.NewFromInt(50)

// Thresholds umbrales efectivos, ya resueltos, para clasificar los productos de una tienda.
type Thresholds struct {
	LowUnits         int
	CriticalUnits    int
	CriticalDays     int
	TrendingVelocity decimal.Decimal
}

// DefaultCriticalUnits = min(5, floor(lowUnits * 0.3)).
func DefaultCriticalUnits(lowUnits int) int {
	derived := int(math.Floor(float64(lowUnits) * criticalUnitsRatio))
	if derived > MaxDefaultCriticalUnits {
		return MaxDefaultCriticalUnits
	}
	return derived
}

// ResolveThresholds resuelve una sola vez los umbrales efectivos de la tienda.
// settings y shop pueden ser nil.
func ResolveThresholds(settings *entity.ShopSettings, shop *entity.Shop) Thresholds {
	var (
		lowOverride, criticalOverride, daysOverride *int
		trendOverride                               *decimal.Decimal
		shopLow                                     *int
	)
	if settings != nil {
		lowOverride = settings.LowStockThreshold
		criticalOverride = settings.CriticalStockThreshold
		daysOverride = settings.CriticalDaysThreshold
		trendOverride = settings.TrendingVelocityThreshold
	}
	if shop != nil {
		shopLow = shop.DefaultLowStockThreshold
	}

	low := firstInt(DefaultLowStockThreshold, lowOverride, shopLow)
	th := Thresholds{
		LowUnits:         low,
		CriticalUnits:    firstInt(DefaultCriticalUnits(low), criticalOverride),
		CriticalDays:     firstInt(DefaultCriticalDaysThreshold, daysOverride),
		TrendingVelocity: DefaultTrendingVelocity,
	}
	if trendOverride != nil {
		th.TrendingVelocity = *trendOverride
	}
	return th
}

// firstInt devuelve el primer valor no nil de candidates, o def.
func firstInt(def int, candidates ...*int) int {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return def
}

package entity

import "time"

// Estados de una corrida de sincronización.
const (
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusPartial = "partial" // terminó con filas omitidas o página inválida
	SyncRunStatusFailed  = "failed"
)

// SyncRun registra una corrida de sincronización de catálogo + métricas para una tienda.
// ProductCursor se actualiza después de cada página confirmada y permite reanudar.
// ResumedFrom guarda el cursor con el que arrancó la corrida ("" si empezó desde el inicio).
type SyncRun struct {
	ID              string
	ShopID          string
	Status          string
	ProductCursor   string
	ResumedFrom     string
	LocationsMapped int
	ProductsSynced  int
	VariantsSynced  int
	InventoryRows   int
	SkippedRows     int
	FailedRows      int
	ProductsUpdated int
	Message         string
	StartedAt       time.Time
	FinishedAt      *time.Time
}

// Stalled indica que la corrida se reanudó desde un cursor y terminó sin avanzar de él.
func (r *SyncRun) Stalled() bool {
	return r.ResumedFrom != "" && r.ResumedFrom == r.ProductCursor
}

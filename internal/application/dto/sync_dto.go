package dto

import "time"

// SyncRequest entrada del disparo manual de sincronización.
type SyncRequest struct {
	Resume      bool `json:"resume"`
	SkipMetrics bool `json:"skip_metrics"`
}

// SyncRunSummary resumen de una corrida de sincronización + métricas.
// Message es corto; el detalle de errores queda en los logs.
type SyncRunSummary struct {
	RunID                string     `json:"run_id"`
	ShopID               string     `json:"shop_id"`
	Success              bool       `json:"success"`
	Status               string     `json:"status"`
	ProductsUpdatedCount int        `json:"products_updated_count"`
	LocationsMapped      int        `json:"locations_mapped"`
	ProductsSynced       int        `json:"products_synced"`
	VariantsSynced       int        `json:"variants_synced"`
	InventoryRows        int        `json:"inventory_rows"`
	SkippedRows          int        `json:"skipped_rows"`
	FailedRows           int        `json:"failed_rows"`
	Message              string     `json:"message"`
	StartedAt            time.Time  `json:"started_at"`
	FinishedAt           *time.Time `json:"finished_at,omitempty"`
}

// SyncRunListResponse historial de corridas.
type SyncRunListResponse struct {
	Items []SyncRunSummary `json:"items"`
}

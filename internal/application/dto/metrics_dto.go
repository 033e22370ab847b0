package dto

// MetricsRunSummary resultado de recalcular las métricas de todos los productos de una tienda.
type MetricsRunSummary struct {
	ShopID          string `json:"shop_id"`
	Success         bool   `json:"success"`
	ProductsUpdated int    `json:"products_updated_count"`
	ProductsFailed  int    `json:"products_failed_count"`
	Message         string `json:"message"`
}

package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-sync/internal/application/catalogsync"
	"github.com/jhoicas/inventario-sync/internal/application/dto"
	"github.com/rs/zerolog"
)

type shopSyncer interface {
	SyncShop(ctx context.Context, shopID string, opts catalogsync.SyncOptions) (*dto.SyncRunSummary, error)
}

type runLister interface {
	ListRuns(ctx context.Context, shopID string, limit int) (*dto.SyncRunListResponse, error)
}

type metricsRecomputer interface {
	RecomputeAll(ctx context.Context, shopID string) (dto.MetricsRunSummary, error)
}

// SyncHandler dispara sincronizaciones y recálculos para la tienda del token. Ambos pasan por el
// lock de la tienda.
type SyncHandler struct {
	syncer  shopSyncer
	runs    runLister
	metrics metricsRecomputer
	log     zerolog.Logger
}

// NewSyncHandler construye el handler.
func NewSyncHandler(syncer shopSyncer, runs runLister, metrics metricsRecomputer, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{syncer: syncer, runs: runs, metrics: metrics, log: log}
}

// Sync godoc
// @Summary      Sincronizar catálogo e inventario
// @Description  Ejecuta una corrida completa (ubicaciones, catálogo, métricas) para la tienda del token.
// @Tags         sync
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SyncRequest  false  "Opciones"
// @Success      200   {object}  dto.SyncRunSummary
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sync [post]
func (h *SyncHandler) Sync(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	var in dto.SyncRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
		}
	}
	out, err := h.syncer.SyncShop(c.UserContext(), shopID, catalogsync.SyncOptions{Resume: in.Resume, SkipMetrics: in.SkipMetrics})
	if err != nil {
		h.log.Warn().Err(err).Str("shop_id", shopID).Msg("sincronización rechazada")
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListRuns godoc
// @Summary      Historial de sincronizaciones
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Límite"  default(20)
// @Success      200    {object}  dto.SyncRunListResponse
// @Router       /api/sync/runs [get]
func (h *SyncHandler) ListRuns(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20)}
	page.DefaultPage()
	out, err := h.runs.ListRuns(c.UserContext(), GetShopID(c), page.Limit)
	if err != nil {
		h.log.Error().Err(err).Msg("listar corridas")
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RecomputeMetrics godoc
// @Summary      Recalcular métricas de stock
// @Tags         metrics
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.MetricsRunSummary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/metrics/recompute [post]
func (h *SyncHandler) RecomputeMetrics(c *fiber.Ctx) error {
	shopID := GetShopID(c)
	out, err := h.metrics.RecomputeAll(c.UserContext(), shopID)
	if err != nil {
		h.log.Warn().Err(err).Str("shop_id", shopID).Msg("recálculo de métricas fallido")
		return writeError(c, err)
	}
	return c.JSON(out)
}

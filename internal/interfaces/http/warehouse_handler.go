package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-sync/internal/application/usecase"
)

// WarehouseHandler maneja las consultas de bodegas (protegido).
type WarehouseHandler struct {
	uc *usecase.WarehouseUseCase
}

// NewWarehouseHandler construye el handler.
func NewWarehouseHandler(uc *usecase.WarehouseUseCase) *WarehouseHandler {
	return &WarehouseHandler{uc: uc}
}

// List godoc
// @Summary      Listar bodegas de la tienda
// @Description  Incluye bodegas locales sin ubicación externa (mapped=false), que no reciben inventario.
// @Tags         warehouses
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.WarehouseListResponse
// @Router       /api/warehouses [get]
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext(), GetShopID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

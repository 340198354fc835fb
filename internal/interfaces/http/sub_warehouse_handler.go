package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/usecase"
)

// SubWarehouseHandler expone el catálogo fijo de subalmacenes.
type SubWarehouseHandler struct {
	uc *usecase.SubWarehouseUseCase
}

// NewSubWarehouseHandler construye el handler.
func NewSubWarehouseHandler(uc *usecase.SubWarehouseUseCase) *SubWarehouseHandler {
	return &SubWarehouseHandler{uc: uc}
}

// List godoc
// @Summary      Listar subalmacenes
// @Tags         sub-warehouses
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.SubWarehouseResponse
// @Router       /api/sub-warehouses [get]
func (h *SubWarehouseHandler) List(c *fiber.Ctx) error {
	return c.JSON(h.uc.List())
}

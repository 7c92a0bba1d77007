package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Repuestos-api/internal/application/usecase"
)

// DashboardHandler expone el resumen operativo.
type DashboardHandler struct {
	uc *usecase.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *usecase.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Summary godoc
// @Summary      Resumen del tablero
// @Description  Conteos de repuestos y documentos, stock bajo y últimos movimientos.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Router       /api/dashboard [get]
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	out, err := h.uc.Summary()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

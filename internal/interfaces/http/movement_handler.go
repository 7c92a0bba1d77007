package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Repuestos-api/internal/application/usecase"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// MovementHandler maneja consultas del libro de movimientos y ajustes manuales.
type MovementHandler struct {
	uc       *usecase.MovementUseCase
	adjustUC *inventory.AdjustmentUseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *usecase.MovementUseCase, adjustUC *inventory.AdjustmentUseCase) *MovementHandler {
	return &MovementHandler{uc: uc, adjustUC: adjustUC}
}

// List godoc
// @Summary      Listar movimientos del libro
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        part_id      query  string  false  "Filtrar por repuesto"
// @Param        document_id  query  string  false  "Filtrar por documento"
// @Param        type         query  string  false  "in | out | adjustment"
// @Param        from         query  string  false  "Instante RFC3339"
// @Param        to           query  string  false  "Instante RFC3339"
// @Param        limit        query  int     false  "Límite"   default(20)
// @Param        offset       query  int     false  "Offset"   default(0)
// @Success      200          {object}  dto.MovementListResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		PartID:     c.Query("part_id"),
		DocumentID: c.Query("document_id"),
		Type:       c.Query("type"),
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from debe ser RFC3339"})
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to debe ser RFC3339"})
		}
		filter.To = &t
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(filter, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Registrar ajuste manual de stock
// @Description  Asienta un movimiento de ajuste con signo, sin documento asociado.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "Ajuste con signo"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements/adjust [post]
func (h *MovementHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.adjustUC.Register(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

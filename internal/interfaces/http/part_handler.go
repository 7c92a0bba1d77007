package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Repuestos-api/internal/application/usecase"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// PartHandler maneja las peticiones HTTP del catálogo de repuestos y la
// proyección de stock.
type PartHandler struct {
	uc        *usecase.PartUseCase
	movUC     *usecase.MovementUseCase
	projector *inventory.StockProjector
}

// NewPartHandler construye el handler.
func NewPartHandler(uc *usecase.PartUseCase, movUC *usecase.MovementUseCase, projector *inventory.StockProjector) *PartHandler {
	return &PartHandler{uc: uc, movUC: movUC, projector: projector}
}

// Create godoc
// @Summary      Crear repuesto
// @Tags         parts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePartRequest  true  "Datos del repuesto"
// @Success      201   {object}  dto.PartResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/parts [post]
func (h *PartHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePartRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.PartNumber == "" || in.PartName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "part_number y part_name son requeridos"})
	}
	out, err := h.uc.Create(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener repuesto por ID
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del repuesto"
// @Success      200  {object}  dto.PartResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/parts/{id} [get]
func (h *PartHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar repuestos
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        search  query  string  false  "Busca en códigos, nombre y modelo"
// @Param        status  query  string  false  "active | inactive | in_stock | low_stock | out_of_stock"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {object}  dto.PartListResponse
// @Router       /api/parts [get]
func (h *PartHandler) List(c *fiber.Ctx) error {
	filter := repository.PartFilter{
		Search:       c.Query("search"),
		StatusFilter: c.Query("status"),
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(filter, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar repuesto
// @Tags         parts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del repuesto"
// @Param        body  body  dto.UpdatePartRequest  true  "Datos a actualizar"
// @Success      200   {object}  dto.PartResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/parts/{id} [put]
func (h *PartHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePartRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Borrar repuesto (lógico)
// @Tags         parts
// @Security     Bearer
// @Param        id  path  string  true  "ID del repuesto"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/parts/{id} [delete]
func (h *PartHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.SoftDelete(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stock godoc
// @Summary      Proyección de stock de un repuesto
// @Description  Cantidad actual, u opcionalmente al instante as_of (RFC3339) derivada del libro.
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        id     path   string  true   "ID del repuesto"
// @Param        as_of  query  string  false  "Instante RFC3339"
// @Success      200    {object}  dto.StockResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Router       /api/parts/{id}/stock [get]
func (h *PartHandler) Stock(c *fiber.Ctx) error {
	id := c.Params("id")
	out := dto.StockResponse{PartID: id}
	if raw := c.Query("as_of"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "as_of debe ser RFC3339"})
		}
		qty, err := h.projector.QuantityAsOf(c.Context(), id, t)
		if err != nil {
			return respondError(c, err)
		}
		out.Quantity = qty
		out.AsOf = &t
		return c.JSON(out)
	}
	qty, err := h.projector.QuantityOf(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	out.Quantity = qty
	return c.JSON(out)
}

// Movements godoc
// @Summary      Historia de movimientos de un repuesto
// @Tags         parts
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del repuesto"
// @Param        since   query  string  false  "Instante RFC3339"
// @Param        limit   query  int     false  "Límite"   default(20)
// @Param        offset  query  int     false  "Offset"   default(0)
// @Success      200     {object}  dto.MovementListResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/parts/{id}/movements [get]
func (h *PartHandler) Movements(c *fiber.Ctx) error {
	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "since debe ser RFC3339"})
		}
		since = &t
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.movUC.ListByPart(c.Params("id"), since, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/application/inventory"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// DocumentHandler maneja el ciclo de vida de un kind de documento
// (receivings, outgoings o requests). El router monta una instancia por kind;
// las rutas y permisos varían, el comportamiento es el mismo.
type DocumentHandler struct {
	kind string
	uc   *inventory.DocumentUseCase
}

// NewDocumentHandler construye el handler para un kind.
func NewDocumentHandler(kind string, uc *inventory.DocumentUseCase) *DocumentHandler {
	return &DocumentHandler{kind: kind, uc: uc}
}

// Create godoc
// @Summary      Crear documento en borrador
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateDocumentRequest  true  "Documento con líneas"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/{kind} [post]
func (h *DocumentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Create(c.Context(), GetUserID(c), h.kind, in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar documentos del kind
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        status         query  string  false  "draft | confirmed | completed | cancelled"
// @Param        doc_number     query  string  false  "Búsqueda parcial"
// @Param        pending_goods  query  bool    false  "Solo completed sin GR/GI"
// @Param        limit          query  int     false  "Límite"   default(20)
// @Param        offset         query  int     false  "Offset"   default(0)
// @Success      200            {object}  dto.DocumentListResponse
// @Router       /api/{kind} [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	filter := repository.DocumentFilter{
		Kind:         h.kind,
		Status:       c.Query("status"),
		DocNumber:    c.Query("doc_number"),
		PendingGoods: c.QueryBool("pending_goods", false),
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	out, err := h.uc.List(c.Context(), filter, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener documento por ID
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id} [get]
func (h *DocumentHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), h.kind, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Editar borrador
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del documento"
// @Param        body  body  dto.UpdateDocumentRequest  true  "Campos a editar"
// @Success      200   {object}  dto.DocumentResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id} [put]
func (h *DocumentHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateDocumentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	out, err := h.uc.Update(c.Context(), GetUserID(c), h.kind, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Borrar documento (lógico)
// @Tags         documents
// @Security     Bearer
// @Param        id  path  string  true  "ID del documento"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.SoftDelete(c.Context(), GetUserID(c), h.kind, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Confirm godoc
// @Summary      Confirmar documento (draft → confirmed)
// @Description  Para salidas y solicitudes verifica disponibilidad y reserva stock.
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id}/confirm [post]
func (h *DocumentHandler) Confirm(c *fiber.Ctx) error {
	out, err := h.uc.Confirm(c.Context(), GetUserID(c), h.kind, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Complete godoc
// @Summary      Completar documento (confirmed → completed)
// @Description  Asienta un movimiento por línea en el libro y actualiza el stock. Irreversible.
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id}/complete [post]
func (h *DocumentHandler) Complete(c *fiber.Ctx) error {
	out, err := h.uc.Complete(c.Context(), GetUserID(c), h.kind, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar documento (draft|confirmed → cancelled)
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id}/cancel [post]
func (h *DocumentHandler) Cancel(c *fiber.Ctx) error {
	out, err := h.uc.Cancel(c.Context(), GetUserID(c), h.kind, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ConfirmGoods godoc
// @Summary      Confirmación física GR/GI sobre un documento completed
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.DocumentResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/{kind}/{id}/confirm-goods [post]
func (h *DocumentHandler) ConfirmGoods(c *fiber.Ctx) error {
	out, err := h.uc.ConfirmGoods(c.Context(), GetUserID(c), h.kind, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SupplyItem godoc
// @Summary      Marcar línea de solicitud como entregada
// @Tags         requests
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID de la solicitud"
// @Param        itemId  path  string  true  "ID de la línea"
// @Success      200     {object}  dto.DocumentResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/items/{itemId}/supply [post]
func (h *DocumentHandler) SupplyItem(c *fiber.Ctx) error {
	out, err := h.uc.SupplyItem(c.Context(), GetUserID(c), c.Params("id"), c.Params("itemId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

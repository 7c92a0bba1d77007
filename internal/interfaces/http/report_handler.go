package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/application/report"
)

// ReportHandler genera reportes descargables del libro de movimientos.
type ReportHandler struct {
	uc *report.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// MovementsPDF godoc
// @Summary      Reporte PDF de movimientos
// @Description  Genera un PDF con los asientos del libro que cumplen el filtro.
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        part_id  query  string  false  "Filtrar por repuesto"
// @Param        type     query  string  false  "in | out | adjustment"
// @Param        from     query  string  false  "Instante RFC3339"
// @Param        to       query  string  false  "Instante RFC3339"
// @Success      200  {file}  binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/movements.pdf [get]
func (h *ReportHandler) MovementsPDF(c *fiber.Ctx) error {
	filter := report.ReportFilter{
		PartID: c.Query("part_id"),
		Type:   c.Query("type"),
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

	pdfBytes, filename, err := h.uc.MovementsPDF(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdfBytes)
}

package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// Máximo de asientos por reporte: el PDF es un corte, no un dump del libro.
const maxReportRows = 500

// MovementRow asiento del libro enriquecido con los datos del repuesto.
type MovementRow struct {
	entity.PartMovement
	PartNumber string
	PartName   string
}

// ReportFilter criterios del reporte de movimientos.
type ReportFilter struct {
	PartID string
	Type   string
	From   *time.Time
	To     *time.Time
}

// MovementsPDFGenerator puerto de render del reporte.
type MovementsPDFGenerator interface {
	GenerateMovementsPDF(ctx context.Context, rows []MovementRow, filter ReportFilter, generatedAt time.Time) ([]byte, error)
}

// ReportUseCase genera el reporte PDF del libro de movimientos.
type ReportUseCase struct {
	movRepo   repository.MovementRepository
	partRepo  repository.PartRepository
	generator MovementsPDFGenerator
}

// NewReportUseCase construye el caso de uso de reportes.
func NewReportUseCase(movRepo repository.MovementRepository, partRepo repository.PartRepository, generator MovementsPDFGenerator) *ReportUseCase {
	return &ReportUseCase{movRepo: movRepo, partRepo: partRepo, generator: generator}
}

// MovementsPDF recupera los asientos que cumplen el filtro, los enriquece con
// part_number/nombre y genera el PDF.
func (uc *ReportUseCase) MovementsPDF(ctx context.Context, filter ReportFilter) (pdfBytes []byte, filename string, err error) {
	movs, err := uc.movRepo.List(repository.MovementFilter{
		PartID: filter.PartID,
		Type:   filter.Type,
		From:   filter.From,
		To:     filter.To,
	}, maxReportRows, 0)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: listar movimientos: %w", err)
	}

	// Cache local de repuestos: el mismo part suele repetirse muchas veces
	parts := make(map[string]*entity.Part)
	rows := make([]MovementRow, 0, len(movs))
	for _, m := range movs {
		part, ok := parts[m.PartID]
		if !ok {
			part, err = uc.partRepo.GetByIDAnyState(m.PartID)
			if err != nil {
				return nil, "", fmt.Errorf("reporte: obtener repuesto: %w", err)
			}
			parts[m.PartID] = part
		}
		row := MovementRow{PartMovement: *m}
		if part != nil {
			row.PartNumber = part.PartNumber
			row.PartName = part.PartName
		}
		rows = append(rows, row)
	}

	now := time.Now()
	pdfBytes, err = uc.generator.GenerateMovementsPDF(ctx, rows, filter, now)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: generación fallida: %w", err)
	}
	filename = fmt.Sprintf("movimientos_%s.pdf", now.Format("20060102_150405"))
	return pdfBytes, filename, nil
}

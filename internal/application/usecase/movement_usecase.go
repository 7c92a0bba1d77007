package usecase

import (
	"time"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// MovementUseCase consultas de solo lectura sobre el libro de movimientos.
type MovementUseCase struct {
	movRepo  repository.MovementRepository
	partRepo repository.PartRepository
}

// NewMovementUseCase construye el caso de uso de movimientos.
func NewMovementUseCase(movRepo repository.MovementRepository, partRepo repository.PartRepository) *MovementUseCase {
	return &MovementUseCase{movRepo: movRepo, partRepo: partRepo}
}

// List devuelve la página de movimientos que cumplen el filtro.
func (uc *MovementUseCase) List(filter repository.MovementFilter, page dto.PageRequest) (*dto.MovementListResponse, error) {
	page.DefaultPage()
	movs, err := uc.movRepo.List(filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.movRepo.Count(filter)
	if err != nil {
		return nil, err
	}
	out := &dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(movs)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, m := range movs {
		out.Items = append(out.Items, *ToMovementResponse(m))
	}
	return out, nil
}

// ListByPart devuelve la historia de un repuesto, opcionalmente desde un
// instante. El repuesto debe existir, aunque esté borrado: su historia no se va.
func (uc *MovementUseCase) ListByPart(partID string, since *time.Time, page dto.PageRequest) (*dto.MovementListResponse, error) {
	part, err := uc.partRepo.GetByIDAnyState(partID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ErrNotFound
	}
	page.DefaultPage()
	movs, err := uc.movRepo.ListByPart(partID, since, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.movRepo.Count(repository.MovementFilter{PartID: partID, From: since})
	if err != nil {
		return nil, err
	}
	out := &dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(movs)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, m := range movs {
		out.Items = append(out.Items, *ToMovementResponse(m))
	}
	return out, nil
}

// ToMovementResponse mapea el asiento a su representación de API.
func ToMovementResponse(m *entity.PartMovement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:          m.ID,
		Seq:         m.Seq,
		PartID:      m.PartID,
		DocumentID:  m.DocumentID,
		LineNo:      m.LineNo,
		Type:        m.Type,
		Quantity:    m.Quantity,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
		CreatedAt:   m.CreatedAt,
		CreatedBy:   m.CreatedBy,
	}
}

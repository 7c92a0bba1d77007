package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// PartUseCase CRUD del catálogo de repuestos. El stock no se edita por aquí:
// solo los documentos completados y los ajustes mueven el contador.
type PartUseCase struct {
	partRepo repository.PartRepository
}

// NewPartUseCase construye el caso de uso de repuestos.
func NewPartUseCase(partRepo repository.PartRepository) *PartUseCase {
	return &PartUseCase{partRepo: partRepo}
}

// Create registra un repuesto con stock cero.
// Devuelve ErrDuplicate si el part_number ya existe entre los no borrados.
func (uc *PartUseCase) Create(in dto.CreatePartRequest) (*dto.PartResponse, error) {
	if in.PartNumber == "" || in.PartName == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.partRepo.GetByPartNumber(in.PartNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	part := &entity.Part{
		ID:           uuid.New().String(),
		PartNumber:   in.PartNumber,
		PartName:     in.PartName,
		CustomerCode: in.CustomerCode,
		SupplierCode: in.SupplierCode,
		Model:        in.Model,
		UnitMeasure:  in.UnitMeasure,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.partRepo.Create(part); err != nil {
		return nil, err
	}
	return ToPartResponse(part), nil
}

// Get devuelve un repuesto vigente por ID.
func (uc *PartUseCase) Get(id string) (*dto.PartResponse, error) {
	part, err := uc.partRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ErrNotFound
	}
	return ToPartResponse(part), nil
}

// List devuelve la página de repuestos que cumplen el filtro.
func (uc *PartUseCase) List(filter repository.PartFilter, page dto.PageRequest) (*dto.PartListResponse, error) {
	page.DefaultPage()
	parts, err := uc.partRepo.List(filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.partRepo.Count(filter)
	if err != nil {
		return nil, err
	}
	out := &dto.PartListResponse{
		Items: make([]dto.PartResponse, 0, len(parts)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, p := range parts {
		out.Items = append(out.Items, *ToPartResponse(p))
	}
	return out, nil
}

// Update edita los campos descriptivos del repuesto. Cambiar el part_number a
// uno ya ocupado devuelve ErrDuplicate.
func (uc *PartUseCase) Update(id string, in dto.UpdatePartRequest) (*dto.PartResponse, error) {
	part, err := uc.partRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, domain.ErrNotFound
	}
	if in.PartNumber != nil && *in.PartNumber != part.PartNumber {
		if *in.PartNumber == "" {
			return nil, domain.ErrInvalidInput
		}
		existing, err := uc.partRepo.GetByPartNumber(*in.PartNumber)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, domain.ErrDuplicate
		}
		part.PartNumber = *in.PartNumber
	}
	if in.PartName != nil {
		if *in.PartName == "" {
			return nil, domain.ErrInvalidInput
		}
		part.PartName = *in.PartName
	}
	if in.CustomerCode != nil {
		part.CustomerCode = *in.CustomerCode
	}
	if in.SupplierCode != nil {
		part.SupplierCode = *in.SupplierCode
	}
	if in.Model != nil {
		part.Model = *in.Model
	}
	if in.UnitMeasure != nil {
		part.UnitMeasure = *in.UnitMeasure
	}
	if in.IsActive != nil {
		part.IsActive = *in.IsActive
	}
	part.UpdatedAt = time.Now()
	if err := uc.partRepo.Update(part); err != nil {
		return nil, err
	}
	return ToPartResponse(part), nil
}

// SoftDelete retira el repuesto del catálogo. Su historia en el libro queda
// intacta y la proyección sigue respondiendo por él.
func (uc *PartUseCase) SoftDelete(id string) error {
	part, err := uc.partRepo.GetByID(id)
	if err != nil {
		return err
	}
	if part == nil {
		return domain.ErrNotFound
	}
	if !part.Reserved.IsZero() {
		return domain.ErrInvalidState
	}
	return uc.partRepo.SoftDelete(id, time.Now())
}

// ToPartResponse mapea la entidad a su representación de API.
func ToPartResponse(p *entity.Part) *dto.PartResponse {
	return &dto.PartResponse{
		ID:           p.ID,
		PartNumber:   p.PartNumber,
		PartName:     p.PartName,
		CustomerCode: p.CustomerCode,
		SupplierCode: p.SupplierCode,
		Model:        p.Model,
		UnitMeasure:  p.UnitMeasure,
		Stock:        p.Stock,
		Reserved:     p.Reserved,
		Available:    p.Available(),
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

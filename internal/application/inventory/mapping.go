package inventory

import (
	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

func toDocumentResponse(doc *entity.Document) *dto.DocumentResponse {
	out := &dto.DocumentResponse{
		ID:             doc.ID,
		Kind:           doc.Kind,
		DocNumber:      doc.DocNumber,
		Status:         doc.Status,
		Notes:          doc.Notes,
		Destination:    doc.Destination,
		GoodsConfirmed: doc.GoodsConfirmed,
		Items:          make([]dto.DocumentItemResponse, 0, len(doc.Items)),
		CreatedBy:      doc.CreatedBy,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	for _, it := range doc.Items {
		out.Items = append(out.Items, dto.DocumentItemResponse{
			ID:         it.ID,
			LineNo:     it.LineNo,
			PartID:     it.PartID,
			Qty:        it.Qty,
			IsUrgent:   it.IsUrgent,
			IsSupplied: it.IsSupplied,
		})
	}
	return out
}

func toMovementResponse(m *entity.PartMovement) *dto.MovementResponse {
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

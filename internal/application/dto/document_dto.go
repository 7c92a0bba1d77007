package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentItemRequest línea de documento en creación/edición.
type DocumentItemRequest struct {
	PartID   string          `json:"part_id"`
	Qty      decimal.Decimal `json:"qty"`
	IsUrgent bool            `json:"is_urgent"`
}

// CreateDocumentRequest datos para crear un documento en borrador.
type CreateDocumentRequest struct {
	DocNumber   string                `json:"doc_number"`
	Notes       string                `json:"notes"`
	Destination string                `json:"destination"` // solo requests
	Items       []DocumentItemRequest `json:"items"`
}

// UpdateDocumentRequest campos editables de un borrador. Punteros = opcional;
// Items no nil reemplaza todas las líneas.
type UpdateDocumentRequest struct {
	DocNumber   *string                `json:"doc_number"`
	Notes       *string                `json:"notes"`
	Destination *string                `json:"destination"`
	Items       *[]DocumentItemRequest `json:"items"`
}

// DocumentItemResponse línea de documento.
type DocumentItemResponse struct {
	ID         string          `json:"id"`
	LineNo     int             `json:"line_no"`
	PartID     string          `json:"part_id"`
	Qty        decimal.Decimal `json:"qty"`
	IsUrgent   bool            `json:"is_urgent"`
	IsSupplied bool            `json:"is_supplied,omitempty"`
}

// DocumentResponse documento con sus líneas.
type DocumentResponse struct {
	ID             string                 `json:"id"`
	Kind           string                 `json:"kind"`
	DocNumber      string                 `json:"doc_number"`
	Status         string                 `json:"status"`
	Notes          string                 `json:"notes,omitempty"`
	Destination    string                 `json:"destination,omitempty"`
	GoodsConfirmed bool                   `json:"goods_confirmed"`
	Items          []DocumentItemResponse `json:"items"`
	CreatedBy      string                 `json:"created_by"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// DocumentListResponse página de documentos.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// AdjustmentRequest ajuste manual de stock (movimiento directo al libro).
type AdjustmentRequest struct {
	PartID   string          `json:"part_id"`
	Quantity decimal.Decimal `json:"quantity"` // con signo: positivo suma, negativo resta
	Reason   string          `json:"reason"`
}

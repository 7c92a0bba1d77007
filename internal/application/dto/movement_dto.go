package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementResponse registro del libro de movimientos.
type MovementResponse struct {
	ID          string          `json:"id"`
	Seq         int64           `json:"seq"`
	PartID      string          `json:"part_id"`
	DocumentID  string          `json:"document_id,omitempty"`
	LineNo      int             `json:"line_no,omitempty"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	StockBefore decimal.Decimal `json:"stock_before"`
	StockAfter  decimal.Decimal `json:"stock_after"`
	CreatedAt   time.Time       `json:"created_at"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

// MovementListResponse página de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

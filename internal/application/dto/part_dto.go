package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePartRequest datos para crear un repuesto.
type CreatePartRequest struct {
	PartNumber   string `json:"part_number"`
	PartName     string `json:"part_name"`
	CustomerCode string `json:"customer_code"`
	SupplierCode string `json:"supplier_code"`
	Model        string `json:"model"`
	UnitMeasure  string `json:"unit_measure"`
}

// UpdatePartRequest campos actualizables de un repuesto. Punteros = opcional.
type UpdatePartRequest struct {
	PartNumber   *string `json:"part_number"`
	PartName     *string `json:"part_name"`
	CustomerCode *string `json:"customer_code"`
	SupplierCode *string `json:"supplier_code"`
	Model        *string `json:"model"`
	UnitMeasure  *string `json:"unit_measure"`
	IsActive     *bool   `json:"is_active"`
}

// PartResponse representación del repuesto con su stock proyectado.
type PartResponse struct {
	ID           string          `json:"id"`
	PartNumber   string          `json:"part_number"`
	PartName     string          `json:"part_name"`
	CustomerCode string          `json:"customer_code,omitempty"`
	SupplierCode string          `json:"supplier_code,omitempty"`
	Model        string          `json:"model,omitempty"`
	UnitMeasure  string          `json:"unit_measure,omitempty"`
	Stock        decimal.Decimal `json:"stock"`
	Reserved     decimal.Decimal `json:"reserved"`
	Available    decimal.Decimal `json:"available"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// PartListResponse página de repuestos.
type PartListResponse struct {
	Items []PartResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

// StockResponse proyección de stock de un repuesto.
type StockResponse struct {
	PartID   string          `json:"part_id"`
	Quantity decimal.Decimal `json:"quantity"`
	AsOf     *time.Time      `json:"as_of,omitempty"`
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Part representa un repuesto del almacén.
// Stock es el contador mantenido; siempre igual a la suma firmada de sus movimientos
// porque ambos se actualizan dentro de la misma transacción de BD.
// Reserved es la cantidad asignada por documentos de salida confirmados pero aún
// no completados; se libera al cancelar y se consume al completar.
type Part struct {
	ID           string
	PartNumber   string // código único entre repuestos no borrados
	PartName     string
	CustomerCode string
	SupplierCode string
	Model        string
	UnitMeasure  string
	Stock        decimal.Decimal
	Reserved     decimal.Decimal
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time // soft delete; nil = vigente
}

// Available devuelve el stock disponible para nuevas confirmaciones de salida.
func (p *Part) Available() decimal.Decimal {
	return p.Stock.Sub(p.Reserved)
}

// IsDeleted indica si el repuesto fue borrado lógicamente.
func (p *Part) IsDeleted() bool {
	return p.DeletedAt != nil
}

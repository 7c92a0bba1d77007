package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de documento de inventario.
const (
	DocumentKindReceiving = "receiving" // entrada de mercancía
	DocumentKindOutgoing  = "outgoing"  // salida de mercancía
	DocumentKindRequest   = "request"   // solicitud de repuestos
)

// Estados del documento. La máquina es monótona:
// draft -> confirmed -> completed, con cancelled alcanzable solo desde draft o confirmed.
const (
	StatusDraft     = "draft"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Document es una transacción de inventario (receiving, outgoing o request) con sus líneas.
// Las líneas pertenecen al documento (ciclo de vida en cascada); un documento completed
// es terminal y sus líneas no pueden cambiar.
type Document struct {
	ID             string
	Kind           string
	DocNumber      string
	Status         string
	Notes          string
	Destination    string // solo requests
	GoodsConfirmed bool   // GR (receivings) / GI (outgoings): confirmación física posterior
	Items          []DocumentItem
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time
}

// DocumentItem es una línea del documento: repuesto + cantidad solicitada.
type DocumentItem struct {
	ID         string
	DocumentID string
	LineNo     int
	PartID     string
	Qty        decimal.Decimal
	IsUrgent   bool
	IsSupplied bool // solo requests: marcada al entregar la línea
}

// CanTransition valida la máquina de estados del documento.
func CanTransition(from, to string) bool {
	switch to {
	case StatusConfirmed:
		return from == StatusDraft
	case StatusCompleted:
		return from == StatusConfirmed
	case StatusCancelled:
		return from == StatusDraft || from == StatusConfirmed
	default:
		return false
	}
}

// IsTerminal indica si el estado no admite más transiciones.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// IsEditable: solo los borradores admiten edición de campos y líneas.
func (d *Document) IsEditable() bool {
	return d.Status == StatusDraft && d.DeletedAt == nil
}

// IsDeleted indica si el documento fue borrado lógicamente.
func (d *Document) IsDeleted() bool {
	return d.DeletedAt != nil
}

// ConsumesStock: outgoings y requests descuentan stock al completarse.
func (d *Document) ConsumesStock() bool {
	return d.Kind == DocumentKindOutgoing || d.Kind == DocumentKindRequest
}

// Sign devuelve el signo del movimiento que produce cada línea al completar:
// +1 para receivings, -1 para outgoings y requests.
func (d *Document) Sign() decimal.Decimal {
	if d.Kind == DocumentKindReceiving {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(-1)
}

// MovementType devuelve el tipo de movimiento del libro según el kind.
func (d *Document) MovementType() string {
	if d.Kind == DocumentKindReceiving {
		return MovementTypeIN
	}
	return MovementTypeOUT
}

// CanConfirmGoods: la confirmación física (GR/GI) requiere documento completed y no confirmado aún.
func (d *Document) CanConfirmGoods() bool {
	return d.Status == StatusCompleted && !d.GoodsConfirmed
}

// ValidKind valida el kind del documento.
func ValidKind(kind string) bool {
	switch kind {
	case DocumentKindReceiving, DocumentKindOutgoing, DocumentKindRequest:
		return true
	}
	return false
}

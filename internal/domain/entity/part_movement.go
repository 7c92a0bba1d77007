package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementTypeIN         = "in"         // entrada (receiving)
	MovementTypeOUT        = "out"        // salida (outgoing / request)
	MovementTypeADJUSTMENT = "adjustment" // ajuste manual
)

// PartMovement es un registro inmutable del libro de movimientos (append-only).
// No existe operación de update ni delete sobre esta entidad: las correcciones
// se hacen con un movimiento de ajuste nuevo, nunca reescribiendo historia.
type PartMovement struct {
	ID          string
	Seq         int64 // orden de inserción (bigserial); desempate determinista al reproducir
	PartID      string
	DocumentID  string
	LineNo      int // línea del documento origen; (DocumentID, LineNo) es único
	Type        string
	Quantity    decimal.Decimal // con signo: positivo entrada, negativo salida
	StockBefore decimal.Decimal
	StockAfter  decimal.Decimal
	CreatedAt   time.Time
	CreatedBy   string
}

package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// MovementFilter criterios para listar el libro de movimientos.
type MovementFilter struct {
	PartID     string
	DocumentID string
	Type       string // in | out | adjustment
	From       *time.Time
	To         *time.Time
}

// MovementRepository define el puerto del libro de movimientos (append-only).
// No expone update ni delete: el libro es write-once, read-many.
type MovementRepository interface {
	// Append persiste un movimiento. Devuelve domain.ErrConstraint si el
	// repuesto o documento referenciado no existe, y domain.ErrDuplicate si
	// ya hay un movimiento para el mismo (documento, línea).
	Append(movement *entity.PartMovement) error
	GetByID(id string) (*entity.PartMovement, error)
	// ListByPart devuelve los movimientos de un repuesto ordenados por
	// created_at y seq (el orden de inserción desempata: replay determinista).
	ListByPart(partID string, since *time.Time, limit, offset int) ([]*entity.PartMovement, error)
	ListByDocument(documentID string) ([]*entity.PartMovement, error)
	List(filter MovementFilter, limit, offset int) ([]*entity.PartMovement, error)
	Count(filter MovementFilter) (int, error)
	// SumByPart devuelve la suma firmada de todos los movimientos del repuesto.
	SumByPart(partID string) (decimal.Decimal, error)
	// SumByPartAsOf restringe la suma a movimientos con created_at <= t.
	SumByPartAsOf(partID string, t time.Time) (decimal.Decimal, error)
}

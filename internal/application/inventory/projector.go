package inventory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// StockProjector responde consultas de stock proyectado. La cantidad actual
// sale del contador mantenido en el repuesto (actualizado en la misma
// transacción que cada asiento); las consultas históricas y de verificación
// se derivan sumando el libro de movimientos.
type StockProjector struct {
	partRepo repository.PartRepository
	movRepo  repository.MovementRepository
}

// NewStockProjector crea el proyector de stock.
func NewStockProjector(partRepo repository.PartRepository, movRepo repository.MovementRepository) *StockProjector {
	return &StockProjector{partRepo: partRepo, movRepo: movRepo}
}

// QuantityOf devuelve la cantidad actual del repuesto. Los repuestos con
// borrado lógico siguen reportando su última cantidad conocida: retirar del
// catálogo no borra historia.
func (p *StockProjector) QuantityOf(ctx context.Context, partID string) (decimal.Decimal, error) {
	part, err := p.partRepo.GetByIDAnyState(partID)
	if err != nil {
		return decimal.Zero, err
	}
	if part == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return part.Stock, nil
}

// QuantityAsOf devuelve la cantidad del repuesto en el instante t, derivada
// del libro: suma firmada de los movimientos con created_at <= t.
func (p *StockProjector) QuantityAsOf(ctx context.Context, partID string, t time.Time) (decimal.Decimal, error) {
	part, err := p.partRepo.GetByIDAnyState(partID)
	if err != nil {
		return decimal.Zero, err
	}
	if part == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return p.movRepo.SumByPartAsOf(partID, t)
}

// LedgerQuantityOf deriva la cantidad actual sumando todo el libro.
// Debe coincidir con el contador mantenido; sirve para auditoría.
func (p *StockProjector) LedgerQuantityOf(ctx context.Context, partID string) (decimal.Decimal, error) {
	part, err := p.partRepo.GetByIDAnyState(partID)
	if err != nil {
		return decimal.Zero, err
	}
	if part == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return p.movRepo.SumByPart(partID)
}

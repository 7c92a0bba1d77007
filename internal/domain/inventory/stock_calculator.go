package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// ProjectQuantity calcula el stock proyectado como la suma firmada de todos los
// movimientos de un repuesto. Es la definición de referencia de la proyección:
// el contador mantenido en parts.stock debe coincidir siempre con este fold.
func ProjectQuantity(movements []*entity.PartMovement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.Quantity)
	}
	return total
}

// ProjectQuantityAsOf restringe la suma a movimientos con CreatedAt <= t
// (consultas de auditoría punto-en-el-tiempo).
func ProjectQuantityAsOf(movements []*entity.PartMovement, t time.Time) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		if m.CreatedAt.After(t) {
			continue
		}
		total = total.Add(m.Quantity)
	}
	return total
}

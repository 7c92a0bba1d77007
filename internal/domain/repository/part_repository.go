package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// Filtros de estado de stock para listados de repuestos.
const (
	StockFilterActive     = "active"
	StockFilterInactive   = "inactive"
	StockFilterInStock    = "in_stock"
	StockFilterLowStock   = "low_stock"
	StockFilterOutOfStock = "out_of_stock"
)

// PartFilter criterios de búsqueda para listados de repuestos.
type PartFilter struct {
	Search       string // busca en part_number, part_name, customer_code, supplier_code y model
	StatusFilter string // uno de los StockFilter*
}

// PartRepository define el puerto de persistencia para repuestos.
// Todas las consultas excluyen borrados lógicos salvo que se indique lo contrario.
type PartRepository interface {
	Create(part *entity.Part) error
	// GetByID devuelve nil, nil si no existe o está borrado.
	GetByID(id string) (*entity.Part, error)
	// GetByIDAnyState incluye borrados lógicos (la proyección de stock sigue
	// reportando la última cantidad conocida de repuestos retirados).
	GetByIDAnyState(id string) (*entity.Part, error)
	GetByPartNumber(partNumber string) (*entity.Part, error)
	List(filter PartFilter, limit, offset int) ([]*entity.Part, error)
	Count(filter PartFilter) (int, error)
	Update(part *entity.Part) error
	SoftDelete(id string, at time.Time) error
	// GetManyForUpdate bloquea las filas de los repuestos indicados
	// (SELECT ... FOR UPDATE NOWAIT, en orden de ID para evitar deadlocks).
	// Devuelve domain.ErrContention si otra transacción mantiene el bloqueo.
	GetManyForUpdate(ids []string) (map[string]*entity.Part, error)
	// UpdateStock actualiza los contadores mantenidos (stock y reservado);
	// solo dentro de la misma transacción que añade los movimientos
	// correspondientes o que cambia el estado del documento que reserva.
	UpdateStock(id string, stock, reserved decimal.Decimal, at time.Time) error
}

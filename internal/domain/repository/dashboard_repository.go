package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// DashboardSummary agregados para el tablero.
type DashboardSummary struct {
	TotalParts        int
	ActiveParts       int
	TotalStock        decimal.Decimal
	DraftReceivings   int
	DraftOutgoings    int
	PendingRequests   int
	MovementsLast24h  int
	PendingGoodsRecv  int // completed sin GR
	PendingGoodsIssue int // completed sin GI
}

// DashboardRepository consultas agregadas de solo lectura para el tablero.
type DashboardRepository interface {
	Summary() (*DashboardSummary, error)
	// LowStock devuelve repuestos activos con stock <= threshold.
	LowStock(threshold decimal.Decimal, limit int) ([]*entity.Part, error)
	// RecentMovements últimos movimientos del libro.
	RecentMovements(limit int) ([]*entity.PartMovement, error)
}

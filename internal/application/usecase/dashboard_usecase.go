package usecase

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// Umbral por defecto de stock bajo en el tablero.
var defaultLowStockThreshold = decimal.NewFromInt(5)

const (
	lowStockLimit        = 10
	recentMovementsLimit = 10
)

// DashboardUseCase arma el tablero: agregados, stock bajo y últimos asientos.
type DashboardUseCase struct {
	dashRepo repository.DashboardRepository
}

// NewDashboardUseCase construye el caso de uso del tablero.
func NewDashboardUseCase(dashRepo repository.DashboardRepository) *DashboardUseCase {
	return &DashboardUseCase{dashRepo: dashRepo}
}

// Summary devuelve la foto del tablero.
func (uc *DashboardUseCase) Summary() (*dto.DashboardResponse, error) {
	summary, err := uc.dashRepo.Summary()
	if err != nil {
		return nil, err
	}
	low, err := uc.dashRepo.LowStock(defaultLowStockThreshold, lowStockLimit)
	if err != nil {
		return nil, err
	}
	recent, err := uc.dashRepo.RecentMovements(recentMovementsLimit)
	if err != nil {
		return nil, err
	}

	out := &dto.DashboardResponse{
		TotalParts:        summary.TotalParts,
		ActiveParts:       summary.ActiveParts,
		TotalStock:        summary.TotalStock,
		DraftReceivings:   summary.DraftReceivings,
		DraftOutgoings:    summary.DraftOutgoings,
		PendingRequests:   summary.PendingRequests,
		MovementsLast24h:  summary.MovementsLast24h,
		PendingGoodsRecv:  summary.PendingGoodsRecv,
		PendingGoodsIssue: summary.PendingGoodsIssue,
		LowStock:          make([]dto.PartResponse, 0, len(low)),
		RecentMovements:   make([]dto.MovementResponse, 0, len(recent)),
	}
	for _, p := range low {
		out.LowStock = append(out.LowStock, *ToPartResponse(p))
	}
	for _, m := range recent {
		out.RecentMovements = append(out.RecentMovements, *ToMovementResponse(m))
	}
	return out, nil
}

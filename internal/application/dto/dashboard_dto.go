package dto

import "github.com/shopspring/decimal"

// DashboardResponse agregados del tablero.
type DashboardResponse struct {
	TotalParts        int                `json:"total_parts"`
	ActiveParts       int                `json:"active_parts"`
	TotalStock        decimal.Decimal    `json:"total_stock"`
	DraftReceivings   int                `json:"draft_receivings"`
	DraftOutgoings    int                `json:"draft_outgoings"`
	PendingRequests   int                `json:"pending_requests"`
	MovementsLast24h  int                `json:"movements_last_24h"`
	PendingGoodsRecv  int                `json:"pending_gr"`
	PendingGoodsIssue int                `json:"pending_gi"`
	LowStock          []PartResponse     `json:"low_stock"`
	RecentMovements   []MovementResponse `json:"recent_movements"`
}

package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas agregadas de solo lectura para el tablero.
type DashboardRepo struct {
	q Querier
}

// NewDashboardRepository construye el adaptador. Pasar pool (no necesita tx).
func NewDashboardRepository(q Querier) *DashboardRepo {
	return &DashboardRepo{q: q}
}

// Summary arma los agregados en una sola pasada por tabla.
func (r *DashboardRepo) Summary() (*repository.DashboardSummary, error) {
	ctx := context.Background()
	var s repository.DashboardSummary

	partsQuery := `
		SELECT count(*),
		       count(*) FILTER (WHERE is_active),
		       COALESCE(SUM(stock), 0)
		FROM parts WHERE deleted_at IS NULL`
	if err := r.q.QueryRow(ctx, partsQuery).Scan(&s.TotalParts, &s.ActiveParts, &s.TotalStock); err != nil {
		return nil, fmt.Errorf("dashboard parts: %w", err)
	}

	docsQuery := `
		SELECT count(*) FILTER (WHERE kind = 'receiving' AND status = 'draft'),
		       count(*) FILTER (WHERE kind = 'outgoing' AND status = 'draft'),
		       count(*) FILTER (WHERE kind = 'request' AND status IN ('draft', 'confirmed')),
		       count(*) FILTER (WHERE kind = 'receiving' AND status = 'completed' AND NOT goods_confirmed),
		       count(*) FILTER (WHERE kind = 'outgoing' AND status = 'completed' AND NOT goods_confirmed)
		FROM documents WHERE deleted_at IS NULL`
	if err := r.q.QueryRow(ctx, docsQuery).Scan(
		&s.DraftReceivings, &s.DraftOutgoings, &s.PendingRequests,
		&s.PendingGoodsRecv, &s.PendingGoodsIssue,
	); err != nil {
		return nil, fmt.Errorf("dashboard documents: %w", err)
	}

	movsQuery := `SELECT count(*) FROM part_movements WHERE created_at >= now() - interval '24 hours'`
	if err := r.q.QueryRow(ctx, movsQuery).Scan(&s.MovementsLast24h); err != nil {
		return nil, fmt.Errorf("dashboard movements: %w", err)
	}
	return &s, nil
}

// LowStock devuelve repuestos activos con stock <= threshold, los más bajos primero.
func (r *DashboardRepo) LowStock(threshold decimal.Decimal, limit int) ([]*entity.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts
		WHERE deleted_at IS NULL AND is_active AND stock <= $1
		ORDER BY stock, part_number
		LIMIT $2`
	rows, err := r.q.Query(context.Background(), query, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("dashboard low stock: %w", err)
	}
	defer rows.Close()

	var list []*entity.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan low stock part: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// RecentMovements últimos asientos del libro.
func (r *DashboardRepo) RecentMovements(limit int) ([]*entity.PartMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM part_movements ORDER BY created_at DESC, seq DESC LIMIT $1`
	rows, err := r.q.Query(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("dashboard recent movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.PartMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recent movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

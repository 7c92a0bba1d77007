package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, seq, part_id, document_id, line_no, type, quantity, stock_before, stock_after, created_at, created_by`

// MovementRepo implementación del libro de movimientos sobre PostgreSQL.
// Solo INSERT y SELECT: la tabla no admite UPDATE ni DELETE desde la aplicación.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

func scanMovement(row pgx.Row) (*entity.PartMovement, error) {
	var m entity.PartMovement
	var documentID, createdBy *string
	var lineNo *int
	err := row.Scan(
		&m.ID, &m.Seq, &m.PartID, &documentID, &lineNo, &m.Type,
		&m.Quantity, &m.StockBefore, &m.StockAfter, &m.CreatedAt, &createdBy,
	)
	if err != nil {
		return nil, err
	}
	if documentID != nil {
		m.DocumentID = *documentID
	}
	if lineNo != nil {
		m.LineNo = *lineNo
	}
	if createdBy != nil {
		m.CreatedBy = *createdBy
	}
	return &m, nil
}

// Append asienta un movimiento. Los ajustes llevan document_id NULL; para
// documentos, el índice único (document_id, line_no) garantiza un asiento por
// línea y convierte el doble-complete en ErrDuplicate a nivel de BD.
func (r *MovementRepo) Append(m *entity.PartMovement) error {
	query := `
		INSERT INTO part_movements (id, part_id, document_id, line_no, type, quantity, stock_before, stock_after, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING seq`
	documentID := (*string)(nil)
	lineNo := (*int)(nil)
	if m.DocumentID != "" {
		documentID = &m.DocumentID
		lineNo = &m.LineNo
	}
	createdBy := (*string)(nil)
	if m.CreatedBy != "" {
		createdBy = &m.CreatedBy
	}
	err := r.q.QueryRow(context.Background(), query,
		m.ID, m.PartID, documentID, lineNo, m.Type,
		m.Quantity, m.StockBefore, m.StockAfter, m.CreatedAt, createdBy,
	).Scan(&m.Seq)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return domain.ErrConstraint
		}
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

// GetByID obtiene un movimiento; nil, nil si no existe.
func (r *MovementRepo) GetByID(id string) (*entity.PartMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM part_movements WHERE id = $1`
	m, err := scanMovement(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByPart lista la historia de un repuesto en orden de asiento
// (created_at y seq como desempate determinista).
func (r *MovementRepo) ListByPart(partID string, since *time.Time, limit, offset int) ([]*entity.PartMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM part_movements WHERE part_id = $1`
	args := []any{partID}
	pos := 2
	if since != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *since)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at, seq LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)
	return r.queryMovements(query, args)
}

// ListByDocument lista los asientos de un documento en orden de línea.
func (r *MovementRepo) ListByDocument(documentID string) ([]*entity.PartMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM part_movements WHERE document_id = $1 ORDER BY line_no`
	return r.queryMovements(query, []any{documentID})
}

// buildMovementFilter arma el WHERE del listado general.
func buildMovementFilter(filter repository.MovementFilter) (string, []any) {
	where := " WHERE TRUE"
	var args []any
	pos := 1
	if filter.PartID != "" {
		where += fmt.Sprintf(" AND part_id = $%d", pos)
		args = append(args, filter.PartID)
		pos++
	}
	if filter.DocumentID != "" {
		where += fmt.Sprintf(" AND document_id = $%d", pos)
		args = append(args, filter.DocumentID)
		pos++
	}
	if filter.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, filter.Type)
		pos++
	}
	if filter.From != nil {
		where += fmt.Sprintf(" AND created_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND created_at <= $%d", pos)
		args = append(args, *filter.To)
		pos++
	}
	return where, args
}

// List devuelve la página de movimientos, más recientes primero.
func (r *MovementRepo) List(filter repository.MovementFilter, limit, offset int) ([]*entity.PartMovement, error) {
	where, args := buildMovementFilter(filter)
	query := `SELECT ` + movementColumns + ` FROM part_movements` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, seq DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)
	return r.queryMovements(query, args)
}

// Count cuenta los movimientos que cumplen el filtro.
func (r *MovementRepo) Count(filter repository.MovementFilter) (int, error) {
	where, args := buildMovementFilter(filter)
	var total int
	err := r.q.QueryRow(context.Background(), `SELECT count(*) FROM part_movements`+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count movements: %w", err)
	}
	return total, nil
}

// SumByPart suma firmada de todos los asientos del repuesto.
func (r *MovementRepo) SumByPart(partID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(quantity), 0) FROM part_movements WHERE part_id = $1`
	if err := r.q.QueryRow(context.Background(), query, partID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum by part: %w", err)
	}
	return sum, nil
}

// SumByPartAsOf suma firmada de los asientos con created_at <= t.
func (r *MovementRepo) SumByPartAsOf(partID string, t time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(quantity), 0) FROM part_movements WHERE part_id = $1 AND created_at <= $2`
	if err := r.q.QueryRow(context.Background(), query, partID, t).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("sum by part as of: %w", err)
	}
	return sum, nil
}

func (r *MovementRepo) queryMovements(query string, args []any) ([]*entity.PartMovement, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var list []*entity.PartMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

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

var _ repository.PartRepository = (*PartRepo)(nil)

const partColumns = `id, part_number, part_name, customer_code, supplier_code, model, unit_measure, stock, reserved, is_active, created_at, updated_at, deleted_at`

// PartRepo implementación de PartRepository sobre PostgreSQL (usable con pool o tx).
type PartRepo struct {
	q Querier
}

// NewPartRepository construye el adaptador de repuestos. Pasar pool o tx (Querier).
func NewPartRepository(q Querier) *PartRepo {
	return &PartRepo{q: q}
}

func scanPart(row pgx.Row) (*entity.Part, error) {
	var p entity.Part
	err := row.Scan(
		&p.ID, &p.PartNumber, &p.PartName, &p.CustomerCode, &p.SupplierCode,
		&p.Model, &p.UnitMeasure, &p.Stock, &p.Reserved, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un repuesto nuevo. Devuelve ErrDuplicate si el part_number
// ya existe entre los no borrados (índice único parcial).
func (r *PartRepo) Create(part *entity.Part) error {
	query := `
		INSERT INTO parts (` + partColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULL)`
	_, err := r.q.Exec(context.Background(), query,
		part.ID, part.PartNumber, part.PartName, part.CustomerCode, part.SupplierCode,
		part.Model, part.UnitMeasure, part.Stock, part.Reserved, part.IsActive,
		part.CreatedAt, part.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create part: %w", err)
	}
	return nil
}

// GetByID obtiene un repuesto vigente; nil, nil si no existe o está borrado.
func (r *PartRepo) GetByID(id string) (*entity.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts WHERE id = $1 AND deleted_at IS NULL`
	p, err := scanPart(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part: %w", err)
	}
	return p, nil
}

// GetByIDAnyState obtiene un repuesto incluyendo borrados lógicos.
func (r *PartRepo) GetByIDAnyState(id string) (*entity.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts WHERE id = $1`
	p, err := scanPart(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part any state: %w", err)
	}
	return p, nil
}

// GetByPartNumber obtiene un repuesto vigente por part_number.
func (r *PartRepo) GetByPartNumber(partNumber string) (*entity.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts WHERE part_number = $1 AND deleted_at IS NULL`
	p, err := scanPart(r.q.QueryRow(context.Background(), query, partNumber))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part by number: %w", err)
	}
	return p, nil
}

// buildPartFilter arma el WHERE del listado según el filtro.
func buildPartFilter(filter repository.PartFilter) (string, []any) {
	where := " WHERE deleted_at IS NULL"
	var args []any
	pos := 1
	if filter.Search != "" {
		where += fmt.Sprintf(
			" AND (part_number ILIKE $%d OR part_name ILIKE $%d OR customer_code ILIKE $%d OR supplier_code ILIKE $%d OR model ILIKE $%d)",
			pos, pos, pos, pos, pos)
		args = append(args, "%"+filter.Search+"%")
		pos++
	}
	switch filter.StatusFilter {
	case repository.StockFilterActive:
		where += " AND is_active"
	case repository.StockFilterInactive:
		where += " AND NOT is_active"
	case repository.StockFilterInStock:
		where += " AND stock > 0"
	case repository.StockFilterLowStock:
		where += " AND stock > 0 AND stock <= 5"
	case repository.StockFilterOutOfStock:
		where += " AND stock <= 0"
	}
	return where, args
}

// List devuelve la página de repuestos ordenada por part_number.
func (r *PartRepo) List(filter repository.PartFilter, limit, offset int) ([]*entity.Part, error) {
	where, args := buildPartFilter(filter)
	query := `SELECT ` + partColumns + ` FROM parts` + where +
		fmt.Sprintf(" ORDER BY part_number LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()

	var list []*entity.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Count cuenta los repuestos que cumplen el filtro.
func (r *PartRepo) Count(filter repository.PartFilter) (int, error) {
	where, args := buildPartFilter(filter)
	var total int
	err := r.q.QueryRow(context.Background(), `SELECT count(*) FROM parts`+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count parts: %w", err)
	}
	return total, nil
}

// Update persiste los campos descriptivos del repuesto (no toca stock/reserved).
func (r *PartRepo) Update(part *entity.Part) error {
	query := `
		UPDATE parts
		SET part_number = $2, part_name = $3, customer_code = $4, supplier_code = $5,
		    model = $6, unit_measure = $7, is_active = $8, updated_at = $9
		WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query,
		part.ID, part.PartNumber, part.PartName, part.CustomerCode, part.SupplierCode,
		part.Model, part.UnitMeasure, part.IsActive, part.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update part: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca el repuesto como borrado. Su historia queda intacta.
func (r *PartRepo) SoftDelete(id string, at time.Time) error {
	query := `UPDATE parts SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, id, at)
	if err != nil {
		return fmt.Errorf("soft delete part: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetManyForUpdate bloquea las filas de los repuestos indicados con
// FOR UPDATE NOWAIT. Los IDs se ordenan en SQL para que todas las
// transacciones adquieran locks en el mismo orden global.
func (r *PartRepo) GetManyForUpdate(ids []string) (map[string]*entity.Part, error) {
	if len(ids) == 0 {
		return map[string]*entity.Part{}, nil
	}
	query := `SELECT ` + partColumns + ` FROM parts
		WHERE id = ANY($1) AND deleted_at IS NULL
		ORDER BY id
		FOR UPDATE NOWAIT`
	rows, err := r.q.Query(context.Background(), query, ids)
	if err != nil {
		if isLockNotAvailable(err) {
			return nil, domain.ErrContention
		}
		return nil, fmt.Errorf("lock parts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*entity.Part, len(ids))
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan locked part: %w", err)
		}
		out[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		if isLockNotAvailable(err) {
			return nil, domain.ErrContention
		}
		return nil, err
	}
	return out, nil
}

// UpdateStock escribe los contadores mantenidos. Solo debe llamarse dentro de
// la transacción que asienta los movimientos o cambia el estado que reserva.
func (r *PartRepo) UpdateStock(id string, stock, reserved decimal.Decimal, at time.Time) error {
	query := `UPDATE parts SET stock = $2, reserved = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, stock, reserved, at)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

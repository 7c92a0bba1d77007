package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

const documentColumns = `id, kind, doc_number, status, notes, destination, goods_confirmed, created_by, created_at, updated_at, deleted_at`

// DocumentRepo implementación de DocumentRepository sobre PostgreSQL.
// Las líneas viven en document_items y se cargan siempre con el documento.
type DocumentRepo struct {
	q Querier
}

// NewDocumentRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	err := row.Scan(
		&d.ID, &d.Kind, &d.DocNumber, &d.Status, &d.Notes, &d.Destination,
		&d.GoodsConfirmed, &d.CreatedBy, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create persiste el documento con sus líneas.
func (r *DocumentRepo) Create(doc *entity.Document) error {
	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULL)`
	_, err := r.q.Exec(context.Background(), query,
		doc.ID, doc.Kind, doc.DocNumber, doc.Status, doc.Notes, doc.Destination,
		doc.GoodsConfirmed, doc.CreatedBy, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConstraint
		}
		return fmt.Errorf("create document: %w", err)
	}
	return r.insertItems(doc.ID, doc.Items)
}

func (r *DocumentRepo) insertItems(docID string, items []entity.DocumentItem) error {
	query := `
		INSERT INTO document_items (id, document_id, line_no, part_id, qty, is_urgent, is_supplied)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, it := range items {
		_, err := r.q.Exec(context.Background(), query,
			it.ID, docID, it.LineNo, it.PartID, it.Qty, it.IsUrgent, it.IsSupplied,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrConstraint
			}
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert document item: %w", err)
		}
	}
	return nil
}

func (r *DocumentRepo) loadItems(doc *entity.Document) error {
	query := `
		SELECT id, document_id, line_no, part_id, qty, is_urgent, is_supplied
		FROM document_items WHERE document_id = $1 ORDER BY line_no`
	rows, err := r.q.Query(context.Background(), query, doc.ID)
	if err != nil {
		return fmt.Errorf("load document items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.DocumentItem
		if err := rows.Scan(&it.ID, &it.DocumentID, &it.LineNo, &it.PartID, &it.Qty, &it.IsUrgent, &it.IsSupplied); err != nil {
			return fmt.Errorf("scan document item: %w", err)
		}
		doc.Items = append(doc.Items, it)
	}
	return rows.Err()
}

// GetByID obtiene el documento con líneas; nil, nil si no existe o está borrado.
func (r *DocumentRepo) GetByID(id string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND deleted_at IS NULL`
	return r.getWith(query, id)
}

// GetByIDForUpdate bloquea la fila del documento (FOR UPDATE NOWAIT) para
// serializar transiciones concurrentes del mismo documento.
func (r *DocumentRepo) GetByIDForUpdate(id string) (*entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 AND deleted_at IS NULL FOR UPDATE NOWAIT`
	return r.getWith(query, id)
}

func (r *DocumentRepo) getWith(query, id string) (*entity.Document, error) {
	doc, err := scanDocument(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		if isLockNotAvailable(err) {
			return nil, domain.ErrContention
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if err := r.loadItems(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// buildDocumentFilter arma el WHERE del listado.
func buildDocumentFilter(filter repository.DocumentFilter) (string, []any) {
	where := " WHERE deleted_at IS NULL AND kind = $1"
	args := []any{filter.Kind}
	pos := 2
	if filter.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, filter.Status)
		pos++
	}
	if filter.DocNumber != "" {
		where += fmt.Sprintf(" AND doc_number ILIKE $%d", pos)
		args = append(args, "%"+filter.DocNumber+"%")
		pos++
	}
	if filter.PendingGoods {
		where += " AND status = 'completed' AND NOT goods_confirmed"
	}
	return where, args
}

// List devuelve la página de documentos del kind, más recientes primero.
func (r *DocumentRepo) List(filter repository.DocumentFilter, limit, offset int) ([]*entity.Document, error) {
	where, args := buildDocumentFilter(filter)
	query := `SELECT ` + documentColumns + ` FROM documents` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var list []*entity.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, doc := range list {
		if err := r.loadItems(doc); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// Count cuenta los documentos que cumplen el filtro.
func (r *DocumentRepo) Count(filter repository.DocumentFilter) (int, error) {
	where, args := buildDocumentFilter(filter)
	var total int
	err := r.q.QueryRow(context.Background(), `SELECT count(*) FROM documents`+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return total, nil
}

// Update reemplaza campos editables y líneas. Solo válido en draft; el
// orquestador ya lo verificó bajo el lock del documento.
func (r *DocumentRepo) Update(doc *entity.Document) error {
	query := `
		UPDATE documents
		SET doc_number = $2, notes = $3, destination = $4, updated_at = $5
		WHERE id = $1 AND deleted_at IS NULL AND status = 'draft'`
	tag, err := r.q.Exec(context.Background(), query,
		doc.ID, doc.DocNumber, doc.Notes, doc.Destination, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvalidState
	}
	if _, err := r.q.Exec(context.Background(), `DELETE FROM document_items WHERE document_id = $1`, doc.ID); err != nil {
		return fmt.Errorf("replace document items: %w", err)
	}
	return r.insertItems(doc.ID, doc.Items)
}

// UpdateStatus escribe el nuevo estado. Las transiciones válidas las decide el
// dominio; aquí solo se persiste.
func (r *DocumentRepo) UpdateStatus(id, status string, at time.Time) error {
	query := `UPDATE documents SET status = $2, updated_at = $3 WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, id, status, at)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetGoodsConfirmed marca la confirmación física GR/GI.
func (r *DocumentRepo) SetGoodsConfirmed(id string, at time.Time) error {
	query := `UPDATE documents SET goods_confirmed = TRUE, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, id, at)
	if err != nil {
		return fmt.Errorf("set goods confirmed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MarkItemSupplied marca una línea de solicitud como entregada.
func (r *DocumentRepo) MarkItemSupplied(itemID string, at time.Time) error {
	query := `UPDATE document_items SET is_supplied = TRUE WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, itemID)
	if err != nil {
		return fmt.Errorf("mark item supplied: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	_, err = r.q.Exec(context.Background(),
		`UPDATE documents SET updated_at = $2 WHERE id = (SELECT document_id FROM document_items WHERE id = $1)`,
		itemID, at)
	if err != nil {
		return fmt.Errorf("touch document: %w", err)
	}
	return nil
}

// SoftDelete retira el documento de los listados.
func (r *DocumentRepo) SoftDelete(id string, at time.Time) error {
	query := `UPDATE documents SET deleted_at = $2, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, id, at)
	if err != nil {
		return fmt.Errorf("soft delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

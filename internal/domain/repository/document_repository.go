package repository

import (
	"time"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// DocumentFilter criterios para listar documentos de un kind.
type DocumentFilter struct {
	Kind         string // obligatorio: receiving | outgoing | request
	Status       string
	DocNumber    string // búsqueda parcial case-insensitive
	PendingGoods bool   // completed y sin confirmación GR/GI
}

// DocumentRepository define el puerto de persistencia para documentos
// (receivings, outgoings y requests) con sus líneas en cascada.
type DocumentRepository interface {
	// Create persiste el documento con sus líneas (line_no asignado por orden).
	Create(doc *entity.Document) error
	// GetByID devuelve el documento con líneas; nil, nil si no existe o está borrado.
	GetByID(id string) (*entity.Document, error)
	// GetByIDForUpdate bloquea la fila del documento (FOR UPDATE NOWAIT) para
	// serializar confirmaciones/completados concurrentes del mismo documento.
	GetByIDForUpdate(id string) (*entity.Document, error)
	List(filter DocumentFilter, limit, offset int) ([]*entity.Document, error)
	Count(filter DocumentFilter) (int, error)
	// Update reemplaza campos editables y líneas; solo válido en draft.
	Update(doc *entity.Document) error
	UpdateStatus(id, status string, at time.Time) error
	SetGoodsConfirmed(id string, at time.Time) error
	MarkItemSupplied(itemID string, at time.Time) error
	SoftDelete(id string, at time.Time) error
}

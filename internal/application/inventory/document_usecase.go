package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/application/events"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/permission"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
	"github.com/jhoicas/Repuestos-api/pkg/logger"
)

// Acciones gateadas del ciclo de vida documental.
const (
	actionCreate       = "create"
	actionUpdate       = "update"
	actionDelete       = "delete"
	actionConfirm      = "confirm"
	actionComplete     = "complete"
	actionCancel       = "cancel"
	actionConfirmGoods = "confirm_goods"
)

var permsByKind = map[string]map[string]string{
	entity.DocumentKindReceiving: {
		actionCreate:       permission.ReceivingsCreate,
		actionUpdate:       permission.ReceivingsUpdate,
		actionDelete:       permission.ReceivingsDelete,
		actionConfirm:      permission.ReceivingsConfirm,
		actionComplete:     permission.ReceivingsComplete,
		actionCancel:       permission.ReceivingsCancel,
		actionConfirmGoods: permission.ReceivingsConfirmGR,
	},
	entity.DocumentKindOutgoing: {
		actionCreate:       permission.OutgoingsCreate,
		actionUpdate:       permission.OutgoingsUpdate,
		actionDelete:       permission.OutgoingsDelete,
		actionConfirm:      permission.OutgoingsConfirm,
		actionComplete:     permission.OutgoingsComplete,
		actionCancel:       permission.OutgoingsCancel,
		actionConfirmGoods: permission.OutgoingsConfirmGI,
	},
	entity.DocumentKindRequest: {
		actionCreate:   permission.RequestsCreate,
		actionUpdate:   permission.RequestsUpdate,
		actionDelete:   permission.RequestsDelete,
		actionConfirm:  permission.RequestsConfirm,
		actionComplete: permission.RequestsComplete,
		actionCancel:   permission.RequestsCancel,
	},
}

// DocumentUseCase orquesta el ciclo de vida de receivings, outgoings y requests:
// creación en borrador, confirmación con reserva de stock, completado con
// asiento de movimientos y cancelación con liberación de reservas.
//
// Toda mutación corre dentro de una transacción de BD y re-verifica el permiso
// del actor contra la fila de usuario vigente: revocar un permiso surte efecto
// en la siguiente operación, sin importar tokens emitidos antes.
type DocumentUseCase struct {
	txRunner TxRunner
	docRepo  repository.DocumentRepository
	partRepo repository.PartRepository
	notifier Notifier
	log      *logger.Logger
}

// NewDocumentUseCase crea el orquestador documental.
func NewDocumentUseCase(
	txRunner TxRunner,
	docRepo repository.DocumentRepository,
	partRepo repository.PartRepository,
	notifier Notifier,
	log *logger.Logger,
) *DocumentUseCase {
	return &DocumentUseCase{
		txRunner: txRunner,
		docRepo:  docRepo,
		partRepo: partRepo,
		notifier: notifier,
		log:      log,
	}
}

// authorize carga al actor desde la tx y evalúa el permiso. El conjunto
// efectivo se resuelve fresco: nunca se confía en permisos embebidos en el token.
func authorize(userRepo repository.UserRepository, actorID, perm string) error {
	actor, err := userRepo.GetByID(actorID)
	if err != nil {
		return err
	}
	if actor == nil {
		return domain.ErrUnauthorized
	}
	if !permission.Allowed(actor, perm) {
		return domain.ErrForbidden
	}
	return nil
}

func permissionFor(kind, action string) string {
	return permsByKind[kind][action]
}

// Create crea un documento en borrador con sus líneas numeradas.
// Valida que cada línea tenga cantidad positiva y referencie un repuesto
// existente y activo. Un borrador no toca stock ni libro de movimientos.
func (uc *DocumentUseCase) Create(ctx context.Context, actorID, kind string, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if !entity.ValidKind(kind) {
		return nil, domain.ErrInvalidInput
	}
	if req.DocNumber == "" || len(req.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, it := range req.Items {
		if it.PartID == "" || !it.Qty.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
	}

	now := time.Now()
	doc := &entity.Document{
		ID:          uuid.New().String(),
		Kind:        kind,
		DocNumber:   req.DocNumber,
		Status:      entity.StatusDraft,
		Notes:       req.Notes,
		Destination: req.Destination,
		CreatedBy:   actorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, it := range req.Items {
		doc.Items = append(doc.Items, entity.DocumentItem{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			LineNo:     i + 1,
			PartID:     it.PartID,
			Qty:        it.Qty,
			IsUrgent:   it.IsUrgent,
		})
	}

	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		partRepo repository.PartRepository,
		movRepo repository.MovementRepository,
		userRepo repository.UserRepository,
	) error {
		if err := authorize(userRepo, actorID, permissionFor(kind, actionCreate)); err != nil {
			return err
		}
		for _, it := range doc.Items {
			part, err := partRepo.GetByID(it.PartID)
			if err != nil {
				return err
			}
			if part == nil || !part.IsActive {
				return domain.ErrInvalidInput
			}
		}
		return docRepo.Create(doc)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("kind", kind).Str("document_id", doc.ID).Str("doc_number", doc.DocNumber).Msg("documento creado")
	uc.notifier.Publish(events.NewDocumentEvent(doc))
	if kind == entity.DocumentKindRequest {
		for _, it := range doc.Items {
			uc.notifier.Publish(events.NewRequestItemCreatedEvent(doc.ID, it.ID, it.PartID, it.IsUrgent))
		}
	}
	return toDocumentResponse(doc), nil
}

// Get devuelve un documento del kind indicado.
func (uc *DocumentUseCase) Get(ctx context.Context, kind, id string) (*dto.DocumentResponse, error) {
	doc, err := uc.docRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.Kind != kind {
		return nil, domain.ErrNotFound
	}
	return toDocumentResponse(doc), nil
}

// List devuelve la página de documentos que cumplen el filtro.
func (uc *DocumentUseCase) List(ctx context.Context, filter repository.DocumentFilter, page dto.PageRequest) (*dto.DocumentListResponse, error) {
	page.DefaultPage()
	docs, err := uc.docRepo.List(filter, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.docRepo.Count(filter)
	if err != nil {
		return nil, err
	}
	out := &dto.DocumentListResponse{
		Items: make([]dto.DocumentResponse, 0, len(docs)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, d := range docs {
		out.Items = append(out.Items, *toDocumentResponse(d))
	}
	return out, nil
}

// Update edita campos y líneas de un borrador. Documentos fuera de draft
// devuelven ErrInvalidState: confirmed y completed son inmutables en contenido.
func (uc *DocumentUseCase) Update(ctx context.Context, actorID, kind, id string, req dto.UpdateDocumentRequest) (*dto.DocumentResponse, error) {
	var updated *entity.Document
	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		partRepo repository.PartRepository,
		movRepo repository.MovementRepository,
		userRepo repository.UserRepository,
	) error {
		doc, err := docRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if doc == nil || doc.Kind != kind {
			return domain.ErrNotFound
		}
		if err := authorize(userRepo, actorID, permissionFor(kind, actionUpdate)); err != nil {
			return err
		}
		if !doc.IsEditable() {
			return domain.ErrInvalidState
		}

		if req.DocNumber != nil {
			if *req.DocNumber == "" {
				return domain.ErrInvalidInput
			}
			doc.DocNumber = *req.DocNumber
		}
		if req.Notes != nil {
			doc.Notes = *req.Notes
		}
		if req.Destination != nil {
			doc.Destination = *req.Destination
		}
		if req.Items != nil {
			if len(*req.Items) == 0 {
				return domain.ErrInvalidInput
			}
			items := make([]entity.DocumentItem, 0, len(*req.Items))
			for i, it := range *req.Items {
				if it.PartID == "" || !it.Qty.GreaterThan(decimal.Zero) {
					return domain.ErrInvalidInput
				}
				part, err := partRepo.GetByID(it.PartID)
				if err != nil {
					return err
				}
				if part == nil || !part.IsActive {
					return domain.ErrInvalidInput
				}
				items = append(items, entity.DocumentItem{
					ID:         uuid.New().String(),
					DocumentID: doc.ID,
					LineNo:     i + 1,
					PartID:     it.PartID,
					Qty:        it.Qty,
					IsUrgent:   it.IsUrgent,
				})
			}
			doc.Items = items
		}
		doc.UpdatedAt = time.Now()
		if err := docRepo.Update(doc); err != nil {
			return err
		}
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDocumentResponse(updated), nil
}

// Confirm transiciona draft -> confirmed. Para documentos que consumen stock
// (outgoings y requests) verifica disponibilidad bajo bloqueo de fila y reserva
// las cantidades: dos confirmaciones concurrentes que compiten por el mismo
// stock nunca reservan ambas más de lo disponible.
func (uc *DocumentUseCase) Confirm(ctx context.Context, actorID, kind, id string) (*dto.DocumentResponse, error) {
	var updated *entity.Document
	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		partRepo repository.PartRepository,
		movRepo repository.MovementRepository,
		userRepo repository.UserRepository,
	) error {
		doc, err := docRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if doc == nil || doc.Kind != kind {
			return domain.ErrNotFound
		}
		if err := authorize(userRepo, actorID, permissionFor(kind, actionConfirm)); err != nil {
			return err
		}
		if !entity.CanTransition(doc.Status, entity.StatusConfirmed) {
			return domain.ErrInvalidState
		}

		now := time.Now()
		if doc.ConsumesStock() {
			required, ids := requiredByPart(doc)
			parts, err := partRepo.GetManyForUpdate(ids)
			if err != nil {
				return err
			}
			for _, partID := range ids {
				part, ok := parts[partID]
				if !ok {
					return domain.ErrConstraint
				}
				if part.Available().LessThan(required[partID]) {
					return domain.ErrInsufficientStock
				}
			}
			for _, partID := range ids {
				part := parts[partID]
				if err := partRepo.UpdateStock(partID, part.Stock, part.Reserved.Add(required[partID]), now); err != nil {
					return err
				}
			}
		}

		if err := docRepo.UpdateStatus(doc.ID, entity.StatusConfirmed, now); err != nil {
			return err
		}
		doc.Status = entity.StatusConfirmed
		doc.UpdatedAt = now
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("kind", kind).Str("document_id", id).Msg("documento confirmado")
	uc.notifier.Publish(events.NewDocumentEvent(updated))
	return toDocumentResponse(updated), nil
}

// Complete transiciona confirmed -> completed: el punto de durabilidad.
// Añade al libro un movimiento por línea (con stock_before/stock_after),
// actualiza el contador mantenido de cada repuesto y consume las reservas.
// Todo dentro de la misma transacción: un fallo parcial no deja nada escrito.
func (uc *DocumentUseCase) Complete(ctx context.Context, actorID, kind, id string) (*dto.DocumentResponse, error) {
	var updated *entity.Document
	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		partRepo repository.PartRepository,
		movRepo repository.MovementRepository,
		userRepo repository.UserRepository,
	) error {
		doc, err := docRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if doc == nil || doc.Kind != kind {
			return domain.ErrNotFound
		}
		if err := authorize(userRepo, actorID, permissionFor(kind, actionComplete)); err != nil {
			return err
		}
		if !entity.CanTransition(doc.Status, entity.StatusCompleted) {
			return domain.ErrInvalidState
		}

		now := time.Now()
		_, ids := requiredByPart(doc)
		parts, err := partRepo.GetManyForUpdate(ids)
		if err != nil {
			return err
		}
		for _, partID := range ids {
			if _, ok := parts[partID]; !ok {
				return domain.ErrConstraint
			}
		}

		sign := doc.Sign()
		for _, item := range doc.Items {
			part := parts[item.PartID]
			if doc.ConsumesStock() && part.Stock.LessThan(item.Qty) {
				return domain.ErrInsufficientStock
			}
			before := part.Stock
			part.Stock = before.Add(item.Qty.Mul(sign))
			if doc.ConsumesStock() {
				part.Reserved = part.Reserved.Sub(item.Qty)
				if part.Reserved.IsNegative() {
					part.Reserved = decimal.Zero
				}
			}
			mov := &entity.PartMovement{
				ID:          uuid.New().String(),
				PartID:      item.PartID,
				DocumentID:  doc.ID,
				LineNo:      item.LineNo,
				Type:        doc.MovementType(),
				Quantity:    item.Qty.Mul(sign),
				StockBefore: before,
				StockAfter:  part.Stock,
				CreatedAt:   now,
				CreatedBy:   actorID,
			}
			if err := movRepo.Append(mov); err != nil {
				return err
			}
		}
		for _, partID := range ids {
			part := parts[partID]
			if err := partRepo.UpdateStock(partID, part.Stock, part.Reserved, now); err != nil {
				return err
			}
		}

		if err := docRepo.UpdateStatus(doc.ID, entity.StatusCompleted, now); err != nil {
			return err
		}
		doc.Status = entity.StatusCompleted
		doc.UpdatedAt = now
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("kind", kind).Str("document_id", id).Int("lines", len(updated.Items)).Msg("documento completado")
	uc.notifier.Publish(events.NewDocumentEvent(updated))
	return toDocumentResponse(updated), nil
}

// Cancel transiciona draft|confirmed -> cancelled. Cancelar un confirmed que
// consume stock libera sus reservas; un completed nunca se cancela: el libro
// es irreversible y solo un ajuste manual compensa.
func (uc *DocumentUseCase) Cancel(ctx context.Context, actorID, kind, id string) (*dto.DocumentResponse, error) {
	var updated *entity.Document
	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		partRepo repository.PartRepository,
		movRepo repository.MovementRepository,
		userRepo repository.UserRepository,
	) error {
		doc, err := docRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if doc == nil || doc.Kind != kind {
			return domain.ErrNotFound
		}
		if err := authorize(userRepo, actorID, permissionFor(kind, actionCancel)); err != nil {
			return err
		}
		if !entity.CanTransition(doc.Status, entity.StatusCancelled) {
			return domain.ErrInvalidState
		}

		now := time.Now()
		if doc.Status == entity.StatusConfirmed && doc.ConsumesStock() {
			required, ids := requiredByPart(doc)
			parts, err := partRepo.GetManyForUpdate(ids)
			if err != nil {
				return err
			}
			for _, partID := range ids {
				part, ok := parts[partID]
				if !ok {
					continue
				}
				reserved := part.Reserved.Sub(required[partID])
				if reserved.IsNegative() {
					reserved = decimal.Zero
				}
				if err := partRepo.UpdateStock(partID, part.Stock, reserved, now); err != nil {
					return err
				}
			}
		}

		if err := docRepo.UpdateStatus(doc.ID, entity.StatusCancelled, now); err != nil {
			return err
		}
		doc.Status = entity.StatusCancelled
		doc.UpdatedAt = now
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("kind", kind).Str("document_id", id).Msg("documento cancelado")
	uc.notifier.Publish(events.NewDocumentEvent(updated))
	return toDocumentResponse(updated), nil
}

// ConfirmGoods registra la confirmación física GR (receivings) o GI (outgoings)
// sobre un documento ya completed. No toca stock ni libro: es un acuse.
func (uc *DocumentUseCase) ConfirmGoods(ctx context.Context, actorID, kind, id string) (*dto.DocumentResponse, error) {
	perm := permissionFor(kind, actionConfirmGoods)
	if perm == "" {
		return nil, domain.ErrInvalidInput
	}

	var updated *entity.Document
	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		partRepo repository.PartRepository,
		movRepo repository.MovementRepository,
		userRepo repository.UserRepository,
	) error {
		doc, err := docRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if doc == nil || doc.Kind != kind {
			return domain.ErrNotFound
		}
		if err := authorize(userRepo, actorID, perm); err != nil {
			return err
		}
		if !doc.CanConfirmGoods() {
			return domain.ErrInvalidState
		}

		now := time.Now()
		if err := docRepo.SetGoodsConfirmed(doc.ID, now); err != nil {
			return err
		}
		doc.GoodsConfirmed = true
		doc.UpdatedAt = now
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Publish(events.NewDocumentEvent(updated))
	return toDocumentResponse(updated), nil
}

// SupplyItem marca una línea de solicitud como entregada y lo difunde al
// tablero. El descuento de stock ocurre al completar la solicitud, no aquí.
func (uc *DocumentUseCase) SupplyItem(ctx context.Context, actorID, docID, itemID string) (*dto.DocumentResponse, error) {
	var (
		updated    *entity.Document
		partNumber string
	)
	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		partRepo repository.PartRepository,
		movRepo repository.MovementRepository,
		userRepo repository.UserRepository,
	) error {
		doc, err := docRepo.GetByIDForUpdate(docID)
		if err != nil {
			return err
		}
		if doc == nil || doc.Kind != entity.DocumentKindRequest {
			return domain.ErrNotFound
		}
		if err := authorize(userRepo, actorID, permission.RequestsSupply); err != nil {
			return err
		}
		if doc.Status != entity.StatusConfirmed {
			return domain.ErrInvalidState
		}

		var item *entity.DocumentItem
		for i := range doc.Items {
			if doc.Items[i].ID == itemID {
				item = &doc.Items[i]
				break
			}
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if item.IsSupplied {
			return domain.ErrInvalidState
		}

		now := time.Now()
		if err := docRepo.MarkItemSupplied(item.ID, now); err != nil {
			return err
		}
		item.IsSupplied = true
		doc.UpdatedAt = now

		if part, err := partRepo.GetByIDAnyState(item.PartID); err == nil && part != nil {
			partNumber = part.PartNumber
		}
		updated = doc
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Publish(events.NewRequestItemSuppliedEvent(docID, itemID, partNumber))
	return toDocumentResponse(updated), nil
}

// SoftDelete retira un documento de los listados. Solo borradores y cancelados:
// un confirmed mantiene reservas vivas y un completed está referenciado por el libro.
func (uc *DocumentUseCase) SoftDelete(ctx context.Context, actorID, kind, id string) error {
	return uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		partRepo repository.PartRepository,
		movRepo repository.MovementRepository,
		userRepo repository.UserRepository,
	) error {
		doc, err := docRepo.GetByIDForUpdate(id)
		if err != nil {
			return err
		}
		if doc == nil || doc.Kind != kind {
			return domain.ErrNotFound
		}
		if err := authorize(userRepo, actorID, permissionFor(kind, actionDelete)); err != nil {
			return err
		}
		if doc.Status != entity.StatusDraft && doc.Status != entity.StatusCancelled {
			return domain.ErrInvalidState
		}
		return docRepo.SoftDelete(doc.ID, time.Now())
	})
}

// requiredByPart agrega las cantidades por repuesto y devuelve los IDs en orden
// ascendente: el orden de bloqueo es global para evitar deadlocks entre
// transacciones que compiten por los mismos repuestos.
func requiredByPart(doc *entity.Document) (map[string]decimal.Decimal, []string) {
	required := make(map[string]decimal.Decimal, len(doc.Items))
	for _, it := range doc.Items {
		required[it.PartID] = required[it.PartID].Add(it.Qty)
	}
	ids := make([]string, 0, len(required))
	for id := range required {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return required, ids
}

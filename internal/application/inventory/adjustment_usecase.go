package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/application/events"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/permission"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
	"github.com/jhoicas/Repuestos-api/pkg/logger"
)

// AdjustmentUseCase registra ajustes manuales de stock: movimientos directos
// al libro sin documento asociado (conteos físicos, mermas, correcciones).
type AdjustmentUseCase struct {
	txRunner TxRunner
	notifier Notifier
	log      *logger.Logger
}

// NewAdjustmentUseCase crea el caso de uso de ajustes.
func NewAdjustmentUseCase(txRunner TxRunner, notifier Notifier, log *logger.Logger) *AdjustmentUseCase {
	return &AdjustmentUseCase{txRunner: txRunner, notifier: notifier, log: log}
}

// Register asienta un ajuste con signo: positivo suma, negativo resta.
// Un ajuste negativo nunca deja el stock bajo cero.
func (uc *AdjustmentUseCase) Register(ctx context.Context, actorID string, req dto.AdjustmentRequest) (*dto.MovementResponse, error) {
	if req.PartID == "" || req.Quantity.IsZero() {
		return nil, domain.ErrInvalidInput
	}

	var mov *entity.PartMovement
	err := uc.txRunner.Run(ctx, func(
		docRepo repository.DocumentRepository,
		partRepo repository.PartRepository,
		movRepo repository.MovementRepository,
		userRepo repository.UserRepository,
	) error {
		if err := authorize(userRepo, actorID, permission.MovementsAdjust); err != nil {
			return err
		}
		parts, err := partRepo.GetManyForUpdate([]string{req.PartID})
		if err != nil {
			return err
		}
		part, ok := parts[req.PartID]
		if !ok {
			return domain.ErrNotFound
		}

		after := part.Stock.Add(req.Quantity)
		if after.IsNegative() {
			return domain.ErrInsufficientStock
		}

		now := time.Now()
		mov = &entity.PartMovement{
			ID:          uuid.New().String(),
			PartID:      part.ID,
			Type:        entity.MovementTypeADJUSTMENT,
			Quantity:    req.Quantity,
			StockBefore: part.Stock,
			StockAfter:  after,
			CreatedAt:   now,
			CreatedBy:   actorID,
		}
		if err := movRepo.Append(mov); err != nil {
			return err
		}
		return partRepo.UpdateStock(part.ID, after, part.Reserved, now)
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("part_id", req.PartID).Str("quantity", req.Quantity.String()).Msg("ajuste de stock registrado")
	uc.notifier.Publish(events.Event{
		Type: events.TypeDocumentChanged,
		Data: events.DocumentEventData{
			TransactionID:   mov.ID,
			Kind:            "adjustment",
			NewStatus:       entity.StatusCompleted,
			AffectedPartIDs: []string{req.PartID},
		},
		Timestamp: time.Now().UTC(),
	})
	return toMovementResponse(mov), nil
}

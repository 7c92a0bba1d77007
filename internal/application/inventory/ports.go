package inventory

import (
	"context"

	"github.com/jhoicas/Repuestos-api/internal/application/events"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el orquestador:
// o aterrizan todos los movimientos y el cambio de estado, o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		docRepo repository.DocumentRepository,
		partRepo repository.PartRepository,
		movRepo repository.MovementRepository,
		userRepo repository.UserRepository,
	) error) error
}

// Notifier publica eventos de cambio tras confirmarse el punto de durabilidad.
// Nunca se invoca antes del Commit: los suscriptores no deben ver estado que
// aún pueda revertirse.
type Notifier interface {
	Publish(evt events.Event) int
}

// Package permission define el catálogo de permisos nombrados y la resolución
// del conjunto efectivo de un actor. La resolución se calcula siempre en el
// momento de autorizar, nunca se cachea sobre el usuario.
package permission

import "github.com/jhoicas/Repuestos-api/internal/domain/entity"

// Catálogo de permisos. Cada operación del orquestador declara el permiso que exige.
const (
	PartsView   = "parts.view"
	PartsCreate = "parts.create"
	PartsUpdate = "parts.update"
	PartsDelete = "parts.delete"

	ReceivingsView      = "receivings.view"
	ReceivingsCreate    = "receivings.create"
	ReceivingsUpdate    = "receivings.update"
	ReceivingsDelete    = "receivings.delete"
	ReceivingsConfirm   = "receivings.confirm"
	ReceivingsComplete  = "receivings.complete"
	ReceivingsCancel    = "receivings.cancel"
	ReceivingsConfirmGR = "receivings.confirm_gr"

	OutgoingsView      = "outgoings.view"
	OutgoingsCreate    = "outgoings.create"
	OutgoingsUpdate    = "outgoings.update"
	OutgoingsDelete    = "outgoings.delete"
	OutgoingsConfirm   = "outgoings.confirm"
	OutgoingsComplete  = "outgoings.complete"
	OutgoingsCancel    = "outgoings.cancel"
	OutgoingsConfirmGI = "outgoings.confirm_gi"

	RequestsView     = "requests.view"
	RequestsCreate   = "requests.create"
	RequestsUpdate   = "requests.update"
	RequestsDelete   = "requests.delete"
	RequestsConfirm  = "requests.confirm"
	RequestsComplete = "requests.complete"
	RequestsCancel   = "requests.cancel"
	RequestsSupply   = "requests.supply"

	MovementsView   = "movements.view"
	MovementsAdjust = "movements.adjust"
	DashboardView = "dashboard.view"
	ReportsView   = "reports.view"
	ManageUsers   = "manage_users"
)

var catalog = []string{
	PartsView, PartsCreate, PartsUpdate, PartsDelete,
	ReceivingsView, ReceivingsCreate, ReceivingsUpdate, ReceivingsDelete,
	ReceivingsConfirm, ReceivingsComplete, ReceivingsCancel, ReceivingsConfirmGR,
	OutgoingsView, OutgoingsCreate, OutgoingsUpdate, OutgoingsDelete,
	OutgoingsConfirm, OutgoingsComplete, OutgoingsCancel, OutgoingsConfirmGI,
	RequestsView, RequestsCreate, RequestsUpdate, RequestsDelete,
	RequestsConfirm, RequestsComplete, RequestsCancel, RequestsSupply,
	MovementsView, MovementsAdjust, DashboardView, ReportsView, ManageUsers,
}

// All devuelve el catálogo completo de permisos (copia).
func All() []string {
	out := make([]string, len(catalog))
	copy(out, catalog)
	return out
}

// IsKnown valida que un nombre de permiso pertenezca al catálogo.
func IsKnown(name string) bool {
	for _, p := range catalog {
		if p == name {
			return true
		}
	}
	return false
}

// Effective calcula el conjunto efectivo de permisos del actor:
// granted ∪ (catálogo completo si role == admin). Se calcula fresco en cada llamada.
func Effective(u *entity.User) map[string]struct{} {
	set := make(map[string]struct{}, len(u.Permissions))
	for _, p := range u.Permissions {
		set[p] = struct{}{}
	}
	if u.Role == entity.RoleAdmin {
		for _, p := range catalog {
			set[p] = struct{}{}
		}
	}
	return set
}

// Allowed evalúa si el actor tiene el permiso nombrado. Usuarios inactivos o
// borrados nunca están autorizados, sin importar su rol.
func Allowed(u *entity.User, name string) bool {
	if u == nil || !u.IsActive() {
		return false
	}
	if u.Role == entity.RoleAdmin {
		return true
	}
	_, ok := Effective(u)[name]
	return ok
}

// AllowedAny evalúa si el actor tiene alguno de los permisos nombrados.
func AllowedAny(u *entity.User, names ...string) bool {
	for _, n := range names {
		if Allowed(u, n) {
			return true
		}
	}
	return false
}

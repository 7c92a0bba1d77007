package entity

import "time"

// Roles de usuario.
const (
	RoleAdmin     = "admin"     // tiene implícitamente todos los permisos
	RoleWarehouse = "warehouse" // bodeguero
	RoleRequester = "requester" // solicitante
)

// User representa el actor autenticado que opera el almacén.
// Permissions es el conjunto de permisos otorgados por nombre; un admin
// no necesita enumerarlos (ver permission.Effective).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Permissions  []string
	Status       string // active | inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// IsActive indica si el usuario puede operar.
func (u *User) IsActive() bool {
	return u.Status == "active" && u.DeletedAt == nil
}

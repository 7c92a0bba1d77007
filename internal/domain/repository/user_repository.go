package repository

import (
	"time"

	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para usuarios.
type UserRepository interface {
	Create(user *entity.User) error
	// GetByID devuelve nil, nil si no existe o está borrado.
	GetByID(id string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	List(limit, offset int) ([]*entity.User, error)
	Count() (int, error)
	Update(user *entity.User) error
	// UpdatePermissions reemplaza el conjunto de permisos otorgados.
	UpdatePermissions(id string, permissions []string, at time.Time) error
	SoftDelete(id string, at time.Time) error
}

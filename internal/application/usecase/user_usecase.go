package usecase

import (
	"time"

	"github.com/jhoicas/Repuestos-api/internal/application/auth"
	"github.com/jhoicas/Repuestos-api/internal/application/dto"
	"github.com/jhoicas/Repuestos-api/internal/domain"
	"github.com/jhoicas/Repuestos-api/internal/domain/entity"
	"github.com/jhoicas/Repuestos-api/internal/domain/permission"
	"github.com/jhoicas/Repuestos-api/internal/domain/repository"
)

// UserUseCase administración de usuarios y otorgamiento de permisos.
// Las rutas que lo exponen exigen manage_users.
type UserUseCase struct {
	userRepo repository.UserRepository
}

// NewUserUseCase construye el caso de uso de usuarios.
func NewUserUseCase(userRepo repository.UserRepository) *UserUseCase {
	return &UserUseCase{userRepo: userRepo}
}

// Get devuelve un usuario por ID.
func (uc *UserUseCase) Get(id string) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return auth.ToUserResponse(user), nil
}

// List devuelve la página de usuarios.
func (uc *UserUseCase) List(page dto.PageRequest) (*dto.UserListResponse, error) {
	page.DefaultPage()
	users, err := uc.userRepo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.userRepo.Count()
	if err != nil {
		return nil, err
	}
	out := &dto.UserListResponse{
		Items: make([]dto.UserResponse, 0, len(users)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}
	for _, u := range users {
		out.Items = append(out.Items, *auth.ToUserResponse(u))
	}
	return out, nil
}

// Update edita nombre, rol, estado y permisos. Los permisos otorgados deben
// pertenecer al catálogo; el cambio surte efecto en la siguiente operación del
// usuario porque el conjunto efectivo se resuelve fresco en cada autorización.
func (uc *UserUseCase) Update(id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := uc.userRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Role != nil {
		switch *in.Role {
		case entity.RoleAdmin, entity.RoleWarehouse, entity.RoleRequester:
			user.Role = *in.Role
		default:
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Status != nil {
		if *in.Status != "active" && *in.Status != "inactive" {
			return nil, domain.ErrInvalidInput
		}
		user.Status = *in.Status
	}
	if in.Permissions != nil {
		for _, p := range *in.Permissions {
			if !permission.IsKnown(p) {
				return nil, domain.ErrInvalidInput
			}
		}
		user.Permissions = *in.Permissions
	}
	user.UpdatedAt = time.Now()
	if err := uc.userRepo.Update(user); err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

// SoftDelete desactiva y retira al usuario. Sus operaciones pasadas quedan
// en el libro con su ID como created_by.
func (uc *UserUseCase) SoftDelete(id string) error {
	user, err := uc.userRepo.GetByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return uc.userRepo.SoftDelete(id, time.Now())
}

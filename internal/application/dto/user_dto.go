package dto

import "time"

// RegisterRequest datos para crear un usuario.
type RegisterRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`        // admin | warehouse | requester
	Permissions []string `json:"permissions"` // nombres del catálogo
}

// LoginRequest credenciales de acceso.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse token JWT + usuario autenticado.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse representación pública del usuario (sin hash).
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateUserRequest campos actualizables de un usuario. Punteros = opcional.
type UpdateUserRequest struct {
	Name        *string   `json:"name"`
	Role        *string   `json:"role"`
	Status      *string   `json:"status"`
	Permissions *[]string `json:"permissions"`
}

// UserListResponse página de usuarios.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}

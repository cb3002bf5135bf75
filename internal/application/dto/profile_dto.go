package dto

import "time"

// ProfileResponse perfil de usuario.
type ProfileResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	FullName    string     `json:"full_name"`
	PhoneNumber string     `json:"phone_number"`
	Job         string     `json:"job"`
	Location    string     `json:"location"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
}

// UpdateProfileRequest campos personales editables. El rol y el email no se editan aquí.
type UpdateProfileRequest struct {
	FullName    string `json:"full_name" validate:"max=200"`
	PhoneNumber string `json:"phone_number" validate:"max=30"`
	Job         string `json:"job" validate:"max=100"`
	Location    string `json:"location" validate:"max=200"`
}

// UserListResponse listado paginado de perfiles (panel de administración).
type UserListResponse struct {
	Items []ProfileResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

package dto

import "time"

// RegisterRequest entrada para registro: email, password y rol elegido.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=landlord tenant seller buyer"`
}

// LoginRequest entrada para login. Role es el rol declarado en el formulario.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// PasswordResetRequest solicitud de restablecimiento.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// PasswordResetConfirmRequest confirmación con el token recibido fuera de banda.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// DemoRequest entrada para iniciar una demo.
type DemoRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required"`
	Role        string `json:"role" validate:"required,oneof=landlord tenant seller buyer"`
}

// SessionResponse token de sesión del BFF.
type SessionResponse struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NavigateRequest acción de navegación: dashboard, profile, admin, manage_user (con target) o end_demo.
type NavigateRequest struct {
	Action string `json:"action" validate:"required"`
	Target string `json:"target,omitempty"`
}

// ViewDTO vista activa.
type ViewDTO struct {
	Tag           string `json:"tag"`
	Scope         string `json:"scope,omitempty"`
	ReadOnly      bool   `json:"read_only"`
	Impersonating bool   `json:"impersonating"`
}

// FeatureDTO tarjeta del tablero.
type FeatureDTO struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// LayoutDTO tablero del rol.
type LayoutDTO struct {
	Role       string       `json:"role"`
	Title      string       `json:"title"`
	Features   []FeatureDTO `json:"features"`
	AdminEntry bool         `json:"admin_entry"`
}

// StateResponse estado de la sesión y de la vista.
type StateResponse struct {
	Status     string     `json:"status"`
	IdentityID string     `json:"identity_id,omitempty"`
	Email      string     `json:"email,omitempty"`
	Role       string     `json:"role,omitempty"`
	Demo       bool       `json:"demo"`
	View       ViewDTO    `json:"view"`
	Layout     *LayoutDTO `json:"layout,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}

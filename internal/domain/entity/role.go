package entity

import "strings"

// Role categoría de autorización almacenada en el perfil del usuario.
type Role string

// Roles válidos para Profile.
const (
	RoleLandlord   Role = "landlord"
	RoleTenant     Role = "tenant"
	RoleSeller     Role = "seller"
	RoleBuyer      Role = "buyer"
	RoleAdmin      Role = "admin"
	RoleUnassigned Role = "unassigned"
)

// ParseRole convierte un string en Role. Vacío equivale a RoleUnassigned.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleLandlord, RoleTenant, RoleSeller, RoleBuyer, RoleAdmin, RoleUnassigned:
		return r, true
	case "":
		return RoleUnassigned, true
	default:
		return RoleUnassigned, false
	}
}

// Selectable indica si el rol puede elegirse en el registro, el login o la demo.
// admin solo se asigna desde la CLI de administración.
func (r Role) Selectable() bool {
	switch r {
	case RoleLandlord, RoleTenant, RoleSeller, RoleBuyer:
		return true
	default:
		return false
	}
}

// IsAdmin indica si el rol tiene privilegios de administración.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

func (r Role) String() string { return string(r) }

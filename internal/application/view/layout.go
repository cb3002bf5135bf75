package view

import "github.com/jhoicas/amlak-api/internal/domain/entity"

// Feature tarjeta del tablero.
type Feature struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Layout tablero según rol.
type Layout struct {
	Role       entity.Role `json:"role"`
	Title      string      `json:"title"`
	Features   []Feature   `json:"features"`
	AdminEntry bool        `json:"admin_entry"`
}

var layouts = map[entity.Role]Layout{
	entity.RoleLandlord: {
		Role:  entity.RoleLandlord,
		Title: "Panel del propietario",
		Features: []Feature{
			{Key: "rental_requests", Title: "Revisar solicitudes", Description: "Vea las solicitudes de alquiler"},
			{Key: "payment_tracking", Title: "Seguimiento de pagos", Description: "Estado de los pagos de alquiler"},
		},
	},
	entity.RoleTenant: {
		Role:  entity.RoleTenant,
		Title: "Panel del inquilino",
		Features: []Feature{
			{Key: "property_search", Title: "Buscar inmuebles", Description: "Encuentre inmuebles nuevos"},
			{Key: "rent_payment", Title: "Pagar alquiler", Description: "Pague el alquiler mensual"},
		},
	},
	entity.RoleSeller: {
		Role:  entity.RoleSeller,
		Title: "Panel del vendedor",
		Features: []Feature{
			{Key: "listings", Title: "Mis publicaciones", Description: "Administre los inmuebles en venta"},
			{Key: "offers", Title: "Ofertas recibidas", Description: "Revise las ofertas de compra"},
		},
	},
	entity.RoleBuyer: {
		Role:  entity.RoleBuyer,
		Title: "Panel del comprador",
		Features: []Feature{
			{Key: "property_search", Title: "Buscar inmuebles", Description: "Encuentre inmuebles en venta"},
			{Key: "saved", Title: "Guardados", Description: "Inmuebles que marcó como favoritos"},
		},
	},
}

// DashboardFor tablero del rol. El admin usa el tablero del propietario más el acceso al panel de administración.
// Roles sin tablero devuelven false.
func DashboardFor(role entity.Role) (Layout, bool) {
	if role.IsAdmin() {
		l := layouts[entity.RoleLandlord]
		l.Role = entity.RoleAdmin
		l.AdminEntry = true
		return l, true
	}
	l, ok := layouts[role]
	return l, ok
}

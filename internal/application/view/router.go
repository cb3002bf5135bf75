package view

import (
	"fmt"

	"github.com/jhoicas/amlak-api/internal/domain/entity"
)

// Tag vista activa.
type Tag int

const (
	Login Tag = iota
	Dashboard
	Profile
	Admin
	Forbidden
)

func (t Tag) String() string {
	switch t {
	case Login:
		return "login"
	case Dashboard:
		return "dashboard"
	case Profile:
		return "profile"
	case Admin:
		return "admin"
	case Forbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

// View vista activa con su ámbito (ID del dueño de los datos mostrados).
type View struct {
	Tag   Tag
	Scope string
	// Owner identidad para la que se calculó la vista.
	Owner    string
	ReadOnly bool
}

// Impersonating indica si la vista muestra datos de otro usuario.
func (v View) Impersonating() bool {
	return v.Scope != "" && v.Owner != "" && v.Scope != v.Owner
}

// Input estado de sesión relevante para el ruteo.
type Input struct {
	Authenticated bool
	IdentityID    string
	Role          entity.Role
	DemoActive    bool
}

// ActionKind acción de navegación.
type ActionKind int

const (
	SessionChanged ActionKind = iota // la sesión publicó un estado nuevo
	ShowDashboard
	ShowProfile
	ShowAdmin
	ManageUser // Target = ID del usuario a gestionar
	EndDemo
)

func (k ActionKind) String() string {
	switch k {
	case SessionChanged:
		return "session_changed"
	case ShowDashboard:
		return "dashboard"
	case ShowProfile:
		return "profile"
	case ShowAdmin:
		return "admin"
	case ManageUser:
		return "manage_user"
	case EndDemo:
		return "end_demo"
	default:
		return fmt.Sprintf("action(%d)", int(k))
	}
}

// ParseAction convierte el nombre de una acción de navegación.
func ParseAction(s string) (ActionKind, bool) {
	for k := ShowDashboard; k <= EndDemo; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Action navegación solicitada.
type Action struct {
	Kind   ActionKind
	Target string
}

// Route calcula la vista siguiente. Es pura y total: toda combinación de vista,
// estado y acción tiene un resultado definido.
func Route(cur View, in Input, act Action) View {
	switch {
	case in.DemoActive:
		if act.Kind == EndDemo {
			return View{Tag: Login}
		}
		return View{Tag: Dashboard, Owner: in.IdentityID, ReadOnly: true}
	case !in.Authenticated || in.IdentityID == "":
		return View{Tag: Login}
	case !in.Role.Selectable() && !in.Role.IsAdmin():
		return View{Tag: Forbidden, Owner: in.IdentityID}
	}

	home := View{Tag: Dashboard, Scope: in.IdentityID, Owner: in.IdentityID}
	switch act.Kind {
	case ShowDashboard:
		return home
	case ShowProfile:
		return View{Tag: Profile, Scope: in.IdentityID, Owner: in.IdentityID}
	case ShowAdmin:
		if in.Role.IsAdmin() {
			return View{Tag: Admin, Owner: in.IdentityID}
		}
		return retain(cur, in, home)
	case ManageUser:
		if in.Role.IsAdmin() && act.Target != "" {
			return View{Tag: Profile, Scope: act.Target, Owner: in.IdentityID}
		}
		return retain(cur, in, home)
	default: // SessionChanged, EndDemo fuera de demo
		return retain(cur, in, home)
	}
}

// retain conserva la vista actual si sigue siendo válida para in; si no, vuelve a home.
func retain(cur View, in Input, home View) View {
	if cur.Owner != in.IdentityID || cur.ReadOnly {
		return home
	}
	switch cur.Tag {
	case Dashboard:
		return home
	case Profile:
		if cur.Scope == in.IdentityID || in.Role.IsAdmin() {
			return cur
		}
	case Admin:
		if in.Role.IsAdmin() {
			return cur
		}
	}
	return home
}

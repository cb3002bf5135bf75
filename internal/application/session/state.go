package session

import (
	"fmt"

	"github.com/jhoicas/amlak-api/internal/domain/entity"
)

// Status estado de la máquina de sesión.
type Status int

const (
	StatusUnauthenticated Status = iota
	StatusAuthenticating         // transitorio
	StatusAuthenticated
	StatusDemoActive
)

func (s Status) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticating:
		return "authenticating"
	case StatusAuthenticated:
		return "authenticated"
	case StatusDemoActive:
		return "demo_active"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State estado publicado a los consumidores de la sesión.
type State struct {
	Status   Status
	Identity *entity.Identity
	Role     entity.Role
	Demo     *entity.DemoSession
	// LastErr error de la última operación fallida de login/registro/demo.
	LastErr error
	// Generation cambia cada vez que cambia quién actúa (identidad, rol o modo demo).
	// Un resultado tardío se descarta si la generación ya no es la actual.
	Generation uint64
}

// Authenticated indica si hay una identidad verificada activa.
func (s State) Authenticated() bool { return s.Status == StatusAuthenticated }

// DemoActive indica si la sesión está en modo demo.
func (s State) DemoActive() bool { return s.Status == StatusDemoActive }

// Principal quién actúa; false si no hay identidad ni demo.
func (s State) Principal() (entity.Principal, bool) {
	switch s.Status {
	case StatusAuthenticated, StatusDemoActive:
		if s.Identity == nil {
			return entity.Principal{}, false
		}
		return entity.Principal{ID: s.Identity.ID, Role: s.Role, Demo: s.Status == StatusDemoActive}, true
	default:
		return entity.Principal{}, false
	}
}

func (s State) scopeKey() string {
	id := ""
	if s.Identity != nil {
		id = s.Identity.ID
	}
	// Authenticating no cambia quién actúa hasta que se resuelve.
	status := s.Status
	if status == StatusAuthenticating {
		status = StatusUnauthenticated
		id = ""
	}
	return fmt.Sprintf("%d|%s|%s", status, id, s.Role)
}

// ResetResult resultado de un restablecimiento de contraseña. Nunca se devuelve como error.
type ResetResult struct {
	Success bool
	Error   string
}

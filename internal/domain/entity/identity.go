package entity

import "time"

// CredentialState estado de la credencial de una Identity.
type CredentialState string

const (
	CredentialVerified CredentialState = "verified" // autenticada contra el proveedor
	CredentialDemo     CredentialState = "demo"     // sesión de demostración, sin credencial
)

// Identity principal autenticado de la sesión actual.
type Identity struct {
	ID              string
	Email           string
	CredentialState CredentialState
}

// IsDemo indica si la identidad pertenece a una sesión de demostración.
func (i *Identity) IsDemo() bool {
	return i != nil && i.CredentialState == CredentialDemo
}

// DemoSession vista previa no persistente. Solo vive en memoria del proceso.
type DemoSession struct {
	PhoneNumber string
	ChosenRole  Role
	StartedAt   time.Time
}

// Principal quién actúa y con qué rol; lo usan los casos de uso para autorizar.
type Principal struct {
	ID   string
	Role Role
	Demo bool
	// Current, si está definido, indica si este principal sigue actuando en su sesión.
	Current func() bool
}

// Valid indica si el principal sigue vigente. Sin Current se asume vigente.
func (p Principal) Valid() bool { return p.Current == nil || p.Current() }

// CanRead indica si el principal puede leer datos del dueño ownerID.
func (p Principal) CanRead(ownerID string) bool {
	if p.ID == "" || ownerID == "" {
		return false
	}
	return p.ID == ownerID || p.Role.IsAdmin()
}

// CanWrite como CanRead, pero las sesiones demo son de solo lectura.
func (p Principal) CanWrite(ownerID string) bool {
	return !p.Demo && p.CanRead(ownerID)
}

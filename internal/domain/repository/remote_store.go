package repository

import (
	"context"
	"time"

	"github.com/jhoicas/amlak-api/internal/domain/entity"
)

// Colecciones del almacén remoto.
const (
	CollectionUsers        = "users"         // Profile, clave = ID de la identidad
	CollectionProperties   = "properties"    // Property, ID automático, filtrado por ownerId
	CollectionActivityLogs = "activity_logs" // append-only
	CollectionDemoLeads    = "demo_leads"    // append-only
)

// Document documento genérico: ID más campos.
type Document struct {
	ID     string
	Fields map[string]any
}

// Snapshot vista completa de los documentos que cumplen una consulta en un instante.
type Snapshot struct {
	Collection string
	Docs       []Document
	ReadAt     time.Time
}

// StoreEvent elemento del canal de Subscribe: un snapshot nuevo o un error terminal.
type StoreEvent struct {
	Snapshot *Snapshot
	Err      error
}

// DocumentStore puerto de datos del almacén remoto (DIP).
type DocumentStore interface {
	// Read lectura puntual. Devuelve domain.ErrNotFound si el documento no existe.
	Read(ctx context.Context, collection, id string) (*Document, error)
	// Write upsert: fusiona fields sobre el documento existente.
	Write(ctx context.Context, collection, id string, fields map[string]any) error
	// Append crea un documento con ID automático.
	Append(ctx context.Context, collection string, fields map[string]any) (string, error)
	// Query consulta puntual.
	Query(ctx context.Context, q Query) (*Snapshot, error)
	// Subscribe abre un canal que recibe el snapshot actual y uno nuevo por cada cambio.
	// El canal se cierra al cancelar ctx o después de un evento con Err (terminal).
	Subscribe(ctx context.Context, q Query) (<-chan StoreEvent, error)
}

// CredentialStore puerto del proveedor de credenciales.
type CredentialStore interface {
	// Authenticate devuelve domain.ErrInvalidCredentials si email/password no coinciden.
	Authenticate(ctx context.Context, email, password string) (*entity.Identity, error)
	// CreateIdentity devuelve domain.ErrDuplicateIdentity si el email ya existe.
	CreateIdentity(ctx context.Context, email, password string) (*entity.Identity, error)
	// SendCredentialReset dispara el flujo de restablecimiento fuera de banda.
	SendCredentialReset(ctx context.Context, email string) error
	// ConfirmCredentialReset consume un token de un solo uso y fija la nueva contraseña.
	ConfirmCredentialReset(ctx context.Context, token, newPassword string) error
}

// RemoteStore almacén remoto completo consumido por la aplicación.
type RemoteStore interface {
	DocumentStore
	CredentialStore
}

// ResetTokenRepository guarda tokens de restablecimiento con expiración.
type ResetTokenRepository interface {
	Save(ctx context.Context, token, identityID string, ttl time.Duration) error
	// Consume devuelve el identityID y borra el token; domain.ErrNotFound si no existe o expiró.
	Consume(ctx context.Context, token string) (string, error)
}

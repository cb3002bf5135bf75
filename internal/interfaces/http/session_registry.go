package http

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/amlak-api/internal/application/realtime"
	"github.com/jhoicas/amlak-api/internal/application/session"
	"github.com/jhoicas/amlak-api/internal/application/workspace"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

// SessionRegistry workspaces vivos indexados por ID de sesión.
// Al superar la capacidad se cierra el workspace menos usado (sus suscripciones y su sesión).
type SessionRegistry struct {
	cache  *lru.Cache[string, *workspace.Workspace]
	store  repository.RemoteStore
	engine *realtime.Engine
	log    zerolog.Logger
}

// NewSessionRegistry construye el registro con capacidad size.
func NewSessionRegistry(size int, store repository.RemoteStore, engine *realtime.Engine, log zerolog.Logger) (*SessionRegistry, error) {
	r := &SessionRegistry{
		store:  store,
		engine: engine,
		log:    log.With().Str("component", "sessions").Logger(),
	}
	cache, err := lru.NewWithEvict[string, *workspace.Workspace](size, r.onEvict)
	if err != nil {
		return nil, fmt.Errorf("registro de sesiones: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Create abre una sesión nueva: proveedor de identidad propio, manager y workspace.
func (r *SessionRegistry) Create(ctx context.Context) *workspace.Workspace {
	id := uuid.New().String()
	manager := session.NewManager(session.NewProvider(r.store), r.store, r.log.With().Str("session_id", id).Logger())
	manager.Start(ctx)
	ws := workspace.New(id, manager, r.engine, r.log)
	r.cache.Add(id, ws)
	r.log.Debug().Str("session_id", id).Int("live", r.cache.Len()).Msg("sesión abierta")
	return ws
}

// Get workspace de la sesión; false si no existe o fue desalojada.
func (r *SessionRegistry) Get(id string) (*workspace.Workspace, bool) {
	return r.cache.Get(id)
}

// Remove cierra la sesión. Idempotente.
func (r *SessionRegistry) Remove(id string) bool {
	return r.cache.Remove(id)
}

// Len número de sesiones vivas.
func (r *SessionRegistry) Len() int { return r.cache.Len() }

// Close cierra todas las sesiones.
func (r *SessionRegistry) Close() { r.cache.Purge() }

func (r *SessionRegistry) onEvict(id string, ws *workspace.Workspace) {
	ws.Close()
	r.log.Debug().Str("session_id", id).Msg("sesión cerrada")
}

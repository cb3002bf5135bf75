package workspace

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/amlak-api/internal/application/realtime"
	"github.com/jhoicas/amlak-api/internal/application/session"
	"github.com/jhoicas/amlak-api/internal/application/view"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

type stream int

const (
	streamProperties stream = iota
	streamProfile
	streamUsers
)

func (s stream) String() string {
	switch s {
	case streamProperties:
		return "properties"
	case streamProfile:
		return "profile"
	default:
		return "users"
	}
}

// Snapshot lo que una pantalla necesita para dibujarse.
type Snapshot struct {
	Version    uint64
	View       view.View
	Session    session.State
	Layout     *view.Layout
	Profile    *entity.Profile
	Properties []*entity.Property
	Users      []*entity.Profile
	SyncErr    error
}

// Workspace estado de pantalla de una sesión: la vista activa y las suscripciones de su ámbito.
// Cada cambio de sesión o navegación recalcula la vista y reemplaza las suscripciones.
type Workspace struct {
	id      string
	manager *session.Manager
	engine  *realtime.Engine
	log     zerolog.Logger

	navMu   sync.Mutex // serializa cambios de vista; los callbacks nunca lo toman
	handles []*realtime.Handle

	mu         sync.Mutex // datos; nunca se mantiene mientras se llama al engine
	closed     bool
	view       view.View
	state      session.State
	profile    *entity.Profile
	properties []*entity.Property
	users      []*entity.Profile
	syncErr    error
	version    uint64
	changed    chan struct{}

	stopWatch func()
}

// New crea el workspace y lo engancha a los cambios de la sesión.
func New(id string, manager *session.Manager, engine *realtime.Engine, log zerolog.Logger) *Workspace {
	w := &Workspace{
		id:      id,
		manager: manager,
		engine:  engine,
		log:     log.With().Str("component", "workspace").Str("workspace_id", id).Logger(),
		changed: make(chan struct{}, 1),
	}
	w.stopWatch = manager.Watch(func(st session.State) {
		w.apply(context.Background(), st, view.Action{Kind: view.SessionChanged}, false)
	})
	w.apply(context.Background(), manager.State(), view.Action{Kind: view.SessionChanged}, false)
	return w
}

// ID identificador del workspace.
func (w *Workspace) ID() string { return w.id }

// Session manager de la sesión.
func (w *Workspace) Session() *session.Manager { return w.manager }

// Navigate aplica una acción de navegación y devuelve la vista resultante.
// Las acciones no permitidas se ignoran y conservan la vista actual.
func (w *Workspace) Navigate(ctx context.Context, act view.Action) view.View {
	return w.apply(ctx, w.manager.State(), act, false)
}

// Refresh vuelve a adjuntar las suscripciones de la vista activa, por ejemplo tras un error de sincronización.
func (w *Workspace) Refresh(ctx context.Context) view.View {
	return w.apply(ctx, w.manager.State(), view.Action{Kind: view.SessionChanged}, true)
}

// View vista activa.
func (w *Workspace) View() view.View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// Current copia del estado visible.
func (w *Workspace) Current() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := Snapshot{
		Version:    w.version,
		View:       w.view,
		Session:    w.state,
		Profile:    w.profile,
		Properties: append([]*entity.Property(nil), w.properties...),
		Users:      append([]*entity.Profile(nil), w.users...),
		SyncErr:    w.syncErr,
	}
	if w.view.Tag == view.Dashboard {
		if l, ok := view.DashboardFor(w.state.Role); ok {
			snap.Layout = &l
		}
	}
	return snap
}

// Changes recibe una señal (coalescida) cada vez que cambia el estado visible.
// Se cierra con Close.
func (w *Workspace) Changes() <-chan struct{} { return w.changed }

// Close desadjunta todo y cierra la sesión.
func (w *Workspace) Close() {
	w.stopWatch()

	w.navMu.Lock()
	for _, h := range w.handles {
		h.Unsubscribe()
	}
	w.handles = nil
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.changed)
	}
	w.mu.Unlock()
	w.navMu.Unlock()

	w.manager.Close()
}

func (w *Workspace) apply(ctx context.Context, st session.State, act view.Action, force bool) view.View {
	w.navMu.Lock()
	defer w.navMu.Unlock()

	w.mu.Lock()
	if w.closed {
		cur := w.view
		w.mu.Unlock()
		return cur
	}
	cur := w.view
	next := view.Route(cur, inputFrom(st), act)
	if next == cur && w.handles != nil && !force {
		w.state = st
		w.version++
		w.mu.Unlock()
		w.signal()
		return next
	}
	w.mu.Unlock()

	// desadjuntar el ámbito anterior antes de adjuntar el nuevo
	for _, h := range w.handles {
		h.Unsubscribe()
	}
	w.handles = []*realtime.Handle{}

	w.mu.Lock()
	w.view = next
	w.state = st
	w.profile, w.properties, w.users, w.syncErr = nil, nil, nil, nil
	w.version++
	w.mu.Unlock()
	w.signal()

	if next != cur {
		w.log.Debug().Str("view", next.Tag.String()).Str("scope", next.Scope).Msg("vista activa")
	}

	for _, sub := range w.requests(next) {
		h, err := w.engine.Subscribe(ctx, sub.req, w.deliver(next, sub.kind, sub.req.Scope))
		if err != nil {
			w.log.Warn().Err(err).Str("stream", sub.kind.String()).Msg("no se pudo suscribir")
			w.mu.Lock()
			w.syncErr = err
			w.version++
			w.mu.Unlock()
			w.signal()
			continue
		}
		w.handles = append(w.handles, h)
	}
	return next
}

type subscription struct {
	kind stream
	req  realtime.Request
}

func (w *Workspace) requests(v view.View) []subscription {
	consumer := func(s stream) string { return w.id + ":" + s.String() }
	switch v.Tag {
	case view.Dashboard:
		if v.Scope == "" {
			return nil // demo
		}
		return []subscription{
			{streamProperties, realtime.OwnedBy(consumer(streamProperties), repository.CollectionProperties, v.Scope)},
		}
	case view.Profile:
		return []subscription{
			{streamProfile, realtime.Doc(consumer(streamProfile), repository.CollectionUsers, v.Scope)},
			{streamProperties, realtime.OwnedBy(consumer(streamProperties), repository.CollectionProperties, v.Scope)},
		}
	case view.Admin:
		return []subscription{{streamUsers, realtime.Request{
			Consumer: consumer(streamUsers),
			Query: repository.Query{
				Collection: repository.CollectionUsers,
				Order:      &repository.Order{Field: entity.FieldCreatedAt, Desc: true},
			},
		}}}
	default:
		return nil
	}
}

// deliver callback de una suscripción de la vista v. Descarta lo que no pertenece a la vista activa.
func (w *Workspace) deliver(v view.View, kind stream, scope string) realtime.Callback {
	return func(s realtime.Snapshot) {
		w.mu.Lock()
		if w.closed || w.view != v || s.Scope != scope {
			w.mu.Unlock()
			w.log.Debug().Str("scope", s.Scope).Msg("snapshot fuera de ámbito descartado")
			return
		}
		if s.Err != nil {
			w.syncErr = s.Err
		} else {
			switch kind {
			case streamProperties:
				w.properties = make([]*entity.Property, 0, len(s.Docs))
				for _, d := range s.Docs {
					w.properties = append(w.properties, entity.PropertyFromFields(d.ID, d.Fields))
				}
			case streamProfile:
				w.profile = nil
				if len(s.Docs) > 0 {
					w.profile = entity.ProfileFromFields(s.Docs[0].ID, s.Docs[0].Fields)
				}
			case streamUsers:
				w.users = make([]*entity.Profile, 0, len(s.Docs))
				for _, d := range s.Docs {
					w.users = append(w.users, entity.ProfileFromFields(d.ID, d.Fields))
				}
			}
		}
		w.version++
		w.mu.Unlock()
		w.signal()
	}
}

func (w *Workspace) signal() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.changed <- struct{}{}:
	default:
	}
}

func inputFrom(st session.State) view.Input {
	in := view.Input{
		Authenticated: st.Status == session.StatusAuthenticated,
		Role:          st.Role,
		DemoActive:    st.Status == session.StatusDemoActive,
	}
	if st.Identity != nil {
		in.IdentityID = st.Identity.ID
	}
	return in
}

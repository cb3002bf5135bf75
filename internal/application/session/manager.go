package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

const defaultSideWriteTimeout = 10 * time.Second

// Option configura un Manager.
type Option func(*Manager)

// WithClock reemplaza el reloj (tests).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithSideWriteTimeout límite de las escrituras best-effort (bitácora, leads).
func WithSideWriteTimeout(d time.Duration) Option {
	return func(m *Manager) { m.sideTimeout = d }
}

// Manager fuente única de verdad de quién actúa y con qué rol en una sesión.
// Las operaciones de una misma sesión se ejecutan de a una.
// Los observadores registrados con Watch no deben invocar operaciones del Manager.
type Manager struct {
	provider    IdentityProvider
	store       repository.DocumentStore
	log         zerolog.Logger
	now         func() time.Time
	sideTimeout time.Duration

	opMu  sync.Mutex // serializa operaciones
	pubMu sync.Mutex // serializa publicaciones a observadores

	mu        sync.Mutex
	state     State
	busy      bool // hay una operación de identidad en curso; ella resuelve el estado
	started   bool
	closed    bool
	watchers  []watcher
	nextWatch uint64
	stopFeed  func()

	bg sync.WaitGroup
}

type watcher struct {
	id uint64
	fn func(State)
}

// NewManager construye el manager. Llamar Start antes de usarlo.
func NewManager(provider IdentityProvider, store repository.DocumentStore, log zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		provider:    provider,
		store:       store,
		log:         log.With().Str("component", "session").Logger(),
		now:         time.Now,
		sideTimeout: defaultSideWriteTimeout,
		state:       State{Status: StatusUnauthenticated},
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start se suscribe una única vez a los cambios de identidad del proveedor
// y resuelve el estado inicial si ya hay una identidad activa.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started || m.closed {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	stop := m.provider.OnIdentityChanged(m.onIdentityChanged)
	m.mu.Lock()
	m.stopFeed = stop
	m.mu.Unlock()

	if id := m.provider.Current(); id != nil {
		m.opMu.Lock()
		m.reconcile(ctx, id)
		m.opMu.Unlock()
	}
}

// Close cancela la suscripción al proveedor y espera las escrituras pendientes.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	stop := m.stopFeed
	m.stopFeed = nil
	m.watchers = nil
	m.mu.Unlock()

	if stop != nil {
		stop()
	}
	m.bg.Wait()
}

// State copia del estado actual.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// IsCurrent indica si gen sigue siendo la generación vigente.
func (m *Manager) IsCurrent(gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Generation == gen
}

// Principal quién actúa ahora, ligado a la generación vigente: deja de ser
// válido (Principal.Valid) en cuanto cambia quién actúa.
func (m *Manager) Principal() (entity.Principal, bool) {
	st := m.State()
	p, ok := st.Principal()
	if !ok {
		return p, false
	}
	gen := st.Generation
	p.Current = func() bool { return m.IsCurrent(gen) }
	return p, true
}

// Watch registra fn; recibe cada estado publicado, en orden.
func (m *Manager) Watch(fn func(State)) (cancel func()) {
	m.mu.Lock()
	m.nextWatch++
	id := m.nextWatch
	m.watchers = append(m.watchers, watcher{id: id, fn: fn})
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, w := range m.watchers {
			if w.id == id {
				m.watchers = append(m.watchers[:i], m.watchers[i+1:]...)
				return
			}
		}
	}
}

// Register crea identidad y perfil con el rol elegido. La identidad queda activa sin confirmación.
func (m *Manager) Register(ctx context.Context, email, password string, role entity.Role) error {
	defer m.begin()()
	m.publish(State{Status: StatusAuthenticating})

	email = entity.NormalizeEmail(email)
	if err := validateCredentials(email, password); err != nil {
		return m.fail(ctx, err)
	}
	if !role.Selectable() {
		return m.fail(ctx, fmt.Errorf("%w: rol %q no permitido en el registro", domain.ErrValidation, role))
	}

	identity, err := m.provider.SignUp(ctx, email, password)
	if err != nil {
		return m.fail(ctx, classify(err, "registro"))
	}

	profile := entity.NewProfile(identity, role, m.now())
	if err := m.store.Write(ctx, repository.CollectionUsers, identity.ID, profile.Fields()); err != nil {
		return m.fail(ctx, fmt.Errorf("%w: crear perfil: %v", domain.ErrWriteFailed, err))
	}

	m.log.Info().Str("identity_id", identity.ID).Str("role", role.String()).Msg("registro completado")
	m.publish(State{Status: StatusAuthenticated, Identity: identity, Role: role})
	return nil
}

// Login autentica, valida el rol declarado contra el perfil y registra el acceso en segundo plano.
// Un admin puede declarar cualquier rol, incluso ninguno.
func (m *Manager) Login(ctx context.Context, email, password string, claimed entity.Role) error {
	defer m.begin()()
	m.publish(State{Status: StatusAuthenticating})

	email = entity.NormalizeEmail(email)
	if email == "" || password == "" {
		return m.fail(ctx, fmt.Errorf("%w: email y contraseña son requeridos", domain.ErrValidation))
	}

	identity, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		return m.fail(ctx, classify(err, "login"))
	}

	doc, err := m.store.Read(ctx, repository.CollectionUsers, identity.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return m.fail(ctx, domain.ErrProfileNotFound)
		}
		return m.fail(ctx, fmt.Errorf("leer perfil: %w", err))
	}
	profile := entity.ProfileFromFields(doc.ID, doc.Fields)
	if !profile.Role.IsAdmin() && (profile.Role != claimed || !claimed.Selectable()) {
		m.log.Info().Str("identity_id", identity.ID).Str("stored", profile.Role.String()).
			Str("claimed", claimed.String()).Msg("rol declarado no coincide")
		return m.fail(ctx, domain.ErrRoleMismatch)
	}

	now := m.now()
	m.recordActivity(ctx, identity, entity.ActionLogin, now)
	m.background(ctx, func(ctx context.Context) error {
		return m.store.Write(ctx, repository.CollectionUsers, identity.ID, map[string]any{entity.FieldLastLogin: now})
	}, "actualizar lastLogin")

	m.log.Info().Str("identity_id", identity.ID).Str("role", profile.Role.String()).Msg("login completado")
	m.publish(State{Status: StatusAuthenticated, Identity: identity, Role: profile.Role})
	return nil
}

// Logout registra la salida (best-effort, en segundo plano), desactiva la identidad y limpia el rol. Nunca falla.
func (m *Manager) Logout(ctx context.Context) {
	defer m.begin()()
	cur := m.State()

	if cur.Status == StatusDemoActive {
		m.publish(State{Status: StatusUnauthenticated})
		return
	}
	if cur.Identity != nil {
		m.recordActivity(ctx, cur.Identity, entity.ActionLogout, m.now())
	}
	if m.provider.Current() != nil {
		if err := m.provider.SignOut(ctx); err != nil {
			m.log.Warn().Err(err).Msg("sign out del proveedor falló")
		}
	}
	m.publish(State{Status: StatusUnauthenticated})
}

// ResetPassword inicia el restablecimiento fuera de banda. Nunca devuelve error.
func (m *Manager) ResetPassword(ctx context.Context, email string) ResetResult {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	email = entity.NormalizeEmail(email)
	if err := entity.ValidateEmail(email); err != nil {
		return ResetResult{Error: domain.UserMessage(fmt.Errorf("%w: %v", domain.ErrValidation, err))}
	}
	if err := m.provider.SendPasswordReset(ctx, email); err != nil {
		m.log.Info().Err(err).Msg("restablecimiento de contraseña rechazado")
		return ResetResult{Error: resetMessage(err)}
	}
	return ResetResult{Success: true}
}

// ConfirmPasswordReset completa el restablecimiento con el token recibido. Nunca devuelve error.
func (m *Manager) ConfirmPasswordReset(ctx context.Context, token, newPassword string) ResetResult {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	if token == "" {
		return ResetResult{Error: domain.UserMessage(fmt.Errorf("%w: token requerido", domain.ErrValidation))}
	}
	if err := entity.ValidatePassword(newPassword); err != nil {
		return ResetResult{Error: domain.UserMessage(fmt.Errorf("%w: %v", domain.ErrValidation, err))}
	}
	if err := m.provider.ConfirmPasswordReset(ctx, token, newPassword); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrUnauthorized) {
			return ResetResult{Error: "El enlace de restablecimiento no es válido o ya expiró."}
		}
		return ResetResult{Error: domain.UserMessage(err)}
	}
	return ResetResult{Success: true}
}

// StartDemo entra en modo demo sin tocar el proveedor de identidad.
// El lead se escribe en segundo plano; su fallo solo se registra en el log.
func (m *Manager) StartDemo(ctx context.Context, phone string, role entity.Role) error {
	defer m.begin()()

	cur := m.State()
	if cur.Status != StatusUnauthenticated {
		return fmt.Errorf("%w: cierre la sesión actual antes de iniciar la demo", domain.ErrConflict)
	}
	if err := entity.ValidatePhone(phone); err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrValidation, err)
		m.publish(State{Status: StatusUnauthenticated, LastErr: err})
		return err
	}
	if !role.Selectable() {
		err := fmt.Errorf("%w: rol %q no disponible en la demo", domain.ErrValidation, role)
		m.publish(State{Status: StatusUnauthenticated, LastErr: err})
		return err
	}

	now := m.now()
	demo := &entity.DemoSession{PhoneNumber: phone, ChosenRole: role, StartedAt: now}
	identity := &entity.Identity{ID: "demo-" + uuid.NewString(), CredentialState: entity.CredentialDemo}
	m.publish(State{Status: StatusDemoActive, Identity: identity, Role: role, Demo: demo})

	lead := &entity.DemoLead{PhoneNumber: phone, Role: role, Timestamp: now}
	m.background(ctx, func(ctx context.Context) error {
		_, err := m.store.Append(ctx, repository.CollectionDemoLeads, lead.Fields())
		return err
	}, "registrar demo lead")
	return nil
}

// EndDemo vuelve a Unauthenticated. Fuera de modo demo no hace nada.
func (m *Manager) EndDemo(_ context.Context) {
	defer m.begin()()
	if m.State().Status == StatusDemoActive {
		m.publish(State{Status: StatusUnauthenticated})
	}
}

// begin toma el turno de la sesión y marca la operación en curso.
func (m *Manager) begin() (end func()) {
	m.opMu.Lock()
	m.mu.Lock()
	m.busy = true
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.busy = false
		m.mu.Unlock()
		m.opMu.Unlock()
	}
}

// fail deja la sesión en Unauthenticated con el error y desactiva la identidad si quedó activa.
func (m *Manager) fail(ctx context.Context, err error) error {
	if m.provider.Current() != nil {
		if serr := m.provider.SignOut(ctx); serr != nil {
			m.log.Warn().Err(serr).Msg("sign out tras fallo de autenticación")
		}
	}
	m.publish(State{Status: StatusUnauthenticated, LastErr: err})
	return err
}

// onIdentityChanged cambios de identidad notificados por el proveedor.
func (m *Manager) onIdentityChanged(id *entity.Identity) {
	m.mu.Lock()
	if m.busy || m.closed {
		// la operación en curso publica el estado final
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if m.opMu.TryLock() {
		defer m.opMu.Unlock()
		m.reconcile(context.Background(), id)
		return
	}
	// Otra goroutine tiene el turno: reconciliar con la identidad vigente al liberarlo.
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.bg.Add(1)
	m.mu.Unlock()
	go func() {
		defer m.bg.Done()
		m.opMu.Lock()
		defer m.opMu.Unlock()
		m.reconcile(context.Background(), m.provider.Current())
	}()
}

// reconcile resuelve el rol con una lectura puntual y republica. Requiere opMu.
func (m *Manager) reconcile(ctx context.Context, id *entity.Identity) {
	cur := m.State()
	if id == nil {
		if cur.Status == StatusAuthenticated {
			m.publish(State{Status: StatusUnauthenticated})
		}
		return
	}
	if cur.Status == StatusDemoActive {
		return
	}
	role := entity.RoleUnassigned
	doc, err := m.store.Read(ctx, repository.CollectionUsers, id.ID)
	switch {
	case err == nil:
		role = entity.ProfileFromFields(doc.ID, doc.Fields).Role
	case errors.Is(err, domain.ErrNotFound):
		m.log.Warn().Str("identity_id", id.ID).Msg("identidad sin perfil")
	default:
		m.log.Warn().Err(err).Str("identity_id", id.ID).Msg("no se pudo resolver el rol")
	}
	m.publish(State{Status: StatusAuthenticated, Identity: id, Role: role})
}

// publish asigna generación, guarda el estado y notifica a los observadores en orden.
func (m *Manager) publish(next State) {
	m.pubMu.Lock()
	defer m.pubMu.Unlock()

	m.mu.Lock()
	next.Generation = m.state.Generation
	if next.scopeKey() != m.state.scopeKey() {
		next.Generation++
	}
	m.state = next
	watchers := append([]watcher(nil), m.watchers...)
	m.mu.Unlock()

	for _, w := range watchers {
		w.fn(next)
	}
}

func (m *Manager) recordActivity(ctx context.Context, id *entity.Identity, action entity.Action, at time.Time) {
	entry := &entity.ActivityLogEntry{UserID: id.ID, UserEmail: id.Email, Action: action, Timestamp: at}
	m.background(ctx, func(ctx context.Context) error {
		_, err := m.store.Append(ctx, repository.CollectionActivityLogs, entry.Fields())
		return err
	}, "registrar actividad "+string(action))
}

// background lanza una escritura best-effort sin bloquear la operación. Close la espera.
// Con el manager ya cerrado la escritura se hace en línea.
func (m *Manager) background(ctx context.Context, fn func(context.Context) error, what string) {
	ctx = context.WithoutCancel(ctx)
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		m.sideWrite(ctx, fn, what)
		return
	}
	m.bg.Add(1)
	m.mu.Unlock()
	go func() {
		defer m.bg.Done()
		m.sideWrite(ctx, fn, what)
	}()
}

// sideWrite escritura best-effort: el error solo se registra.
func (m *Manager) sideWrite(ctx context.Context, fn func(context.Context) error, what string) {
	ctx, cancel := context.WithTimeout(ctx, m.sideTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		m.log.Warn().Err(err).Msg(what)
	}
}

func validateCredentials(email, password string) error {
	if err := entity.ValidateEmail(email); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := entity.ValidatePassword(password); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return nil
}

// classify conserva los errores de dominio y envuelve el resto.
func classify(err error, op string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrDuplicateIdentity),
		errors.Is(err, domain.ErrValidation):
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func resetMessage(err error) string {
	if errors.Is(err, domain.ErrNotFound) {
		return "No existe una cuenta registrada con ese email."
	}
	return domain.UserMessage(err)
}

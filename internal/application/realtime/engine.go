package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

// ErrClosed el engine ya fue cerrado.
var ErrClosed = errors.New("realtime: engine cerrado")

const defaultQueueSize = 64

// Snapshot entrega a un consumidor: el conjunto completo de documentos de su consulta
// o, si Err != nil, el error terminal de la suscripción (envuelve domain.ErrSync).
type Snapshot struct {
	Scope      string
	Collection string
	Docs       []repository.Document
	ReadAt     time.Time
	// Seq crece con cada entrega de la misma fuente; nunca retrocede para un handle.
	Seq uint64
	Err error

	handle *Handle
}

// Unsubscribe desadjunta el handle que recibió el snapshot. Desde su propio callback
// no espera a la entrega en curso; fuera de él equivale a Handle.Unsubscribe.
func (s Snapshot) Unsubscribe() {
	h := s.handle
	if h == nil {
		return
	}
	if s.Seq != 0 && h.inFlight.Load() == s.Seq {
		if h.active.Swap(false) {
			h.engine.detach(h)
		}
		return
	}
	h.Unsubscribe()
}

// Callback recibe snapshots en la goroutine del despachador, una entrega a la vez.
// Para desadjuntarse a sí mismo usa Snapshot.Unsubscribe: Handle.Unsubscribe sobre su
// propio handle espera a la entrega en curso y bloquearía. No llama Subscribe, Switch ni Close.
type Callback func(Snapshot)

// Request suscripción lógica: consulta más el ámbito (dueño de los datos) y el consumidor.
type Request struct {
	Consumer string
	Scope    string
	Query    repository.Query
}

// OwnedBy documentos de collection cuyo ownerId es ownerID, con ámbito ownerID.
func OwnedBy(consumer, collection, ownerID string) Request {
	return Request{
		Consumer: consumer,
		Scope:    ownerID,
		Query: repository.Query{
			Collection: collection,
			Filter:     repository.Eq(entity.FieldOwnerID, ownerID),
			Order:      &repository.Order{Field: entity.FieldCreatedAt, Desc: true},
		},
	}
}

// Doc un único documento por ID, con ámbito id.
func Doc(consumer, collection, id string) Request {
	return Request{
		Consumer: consumer,
		Scope:    id,
		Query:    repository.Query{Collection: collection, Filter: repository.Eq(repository.FieldID, id)},
	}
}

func (r Request) feedKey() string   { return r.Scope + "|" + r.Query.Key() }
func (r Request) handleKey() string { return r.Consumer + "|" + r.feedKey() }

// Engine traduce suscripciones lógicas a suscripciones del almacén.
// Una sola suscripción al almacén por (colección, filtro, ámbito), compartida por los consumidores.
// Todos los callbacks corren en una única goroutine despachadora.
type Engine struct {
	store repository.DocumentStore
	log   zerolog.Logger
	queue chan func()

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	pumps  sync.WaitGroup

	attachMu sync.Mutex // serializa altas; nunca se toma desde un callback

	mu      sync.Mutex
	closed  bool
	feeds   map[string]*feed
	handles map[string]*Handle
}

type feed struct {
	key     string
	req     Request
	cancel  context.CancelFunc
	ctx     context.Context
	seq     uint64
	last    *Snapshot
	handles map[*Handle]struct{}
}

// Handle suscripción de un consumidor. Mantenerla mantiene viva la entrega.
type Handle struct {
	engine *Engine
	key    string
	req    Request
	cb     Callback
	feed   *feed

	mu       sync.Mutex // tomado durante cada entrega
	active   atomic.Bool
	inFlight atomic.Uint64 // Seq de la entrega en curso; 0 fuera del callback
	lastSeq  uint64        // solo lo usa el despachador
}

// Scope ámbito de la suscripción.
func (h *Handle) Scope() string { return h.req.Scope }

// Collection colección suscrita.
func (h *Handle) Collection() string { return h.req.Query.Collection }

// Active indica si el handle sigue suscrito.
func (h *Handle) Active() bool { return h != nil && h.active.Load() }

// NewEngine arranca el despachador.
func NewEngine(store repository.DocumentStore, log zerolog.Logger) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		store:   store,
		log:     log.With().Str("component", "realtime").Logger(),
		queue:   make(chan func(), defaultQueueSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		feeds:   make(map[string]*feed),
		handles: make(map[string]*Handle),
	}
	go e.dispatch()
	return e
}

// Subscribe adjunta cb a la consulta de req. cb recibe al menos un snapshot con el
// conjunto actual y otro por cada cambio remoto. Un mismo consumidor no puede tener
// dos suscripciones con la misma clave (domain.ErrConflict).
func (e *Engine) Subscribe(ctx context.Context, req Request, cb Callback) (*Handle, error) {
	if req.Consumer == "" || req.Query.Collection == "" || cb == nil {
		return nil, fmt.Errorf("%w: consumidor, colección y callback son requeridos", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.attachMu.Lock()
	defer e.attachMu.Unlock()

	h := &Handle{engine: e, key: req.handleKey(), req: req, cb: cb}
	fk := req.feedKey()

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	if _, dup := e.handles[h.key]; dup {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: %s ya está suscrito a %s", domain.ErrConflict, req.Consumer, fk)
	}
	if f, ok := e.feeds[fk]; ok {
		e.attachLocked(h, f)
		last := f.last
		e.mu.Unlock()
		if last != nil {
			// el recién llegado recibe el último estado conocido
			e.enqueue(f.ctx, func() { e.deliver(h, *last) })
		}
		return h, nil
	}
	e.mu.Unlock()

	fctx, cancel := context.WithCancel(e.ctx)
	ch, err := e.store.Subscribe(fctx, req.Query)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: suscribir %s: %v", domain.ErrSync, fk, err)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		cancel()
		return nil, ErrClosed
	}
	f := &feed{key: fk, req: req, ctx: fctx, cancel: cancel, handles: make(map[*Handle]struct{})}
	e.feeds[fk] = f
	e.attachLocked(h, f)
	e.mu.Unlock()

	e.log.Debug().Str("feed", fk).Msg("suscripción abierta")
	e.pumps.Add(1)
	go e.pump(f, ch)
	return h, nil
}

// Unsubscribe ver Handle.Unsubscribe.
func (e *Engine) Unsubscribe(h *Handle) { h.Unsubscribe() }

// Switch desadjunta old (si existe) y luego adjunta req. Usado al cambiar de ámbito:
// ningún snapshot del ámbito anterior se entrega después de que Switch retorna.
func (e *Engine) Switch(ctx context.Context, old *Handle, req Request, cb Callback) (*Handle, error) {
	old.Unsubscribe()
	return e.Subscribe(ctx, req, cb)
}

// Unsubscribe desadjunta el handle. Idempotente y seguro con handles nil o de un engine cerrado.
// Al retornar no hay entrega en curso ni se inicia ninguna nueva para este handle.
// Cuando el último consumidor se va, se libera la suscripción del almacén.
// No debe llamarse desde el callback del propio handle (ver Snapshot.Unsubscribe).
func (h *Handle) Unsubscribe() {
	if h == nil || !h.active.Swap(false) {
		return
	}
	// esperar la entrega en curso
	h.mu.Lock()
	h.mu.Unlock()
	h.engine.detach(h)
}

// detach quita h de su fuente y libera la fuente si quedó sin consumidores.
func (e *Engine) detach(h *Handle) {
	e.mu.Lock()
	if e.handles[h.key] == h {
		delete(e.handles, h.key)
	}
	f := h.feed
	delete(f.handles, h)
	release := len(f.handles) == 0
	if release && e.feeds[f.key] == f {
		delete(e.feeds, f.key)
	}
	e.mu.Unlock()

	if release {
		f.cancel()
		e.log.Debug().Str("feed", f.key).Msg("suscripción liberada")
	}
}

// ActiveFeeds número de suscripciones vivas contra el almacén.
func (e *Engine) ActiveFeeds() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.feeds)
}

// Close libera todas las suscripciones y detiene el despachador.
// No debe llamarse desde un callback.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	for _, h := range e.handles {
		h.active.Store(false)
	}
	for _, f := range e.feeds {
		f.cancel()
	}
	e.feeds = map[string]*feed{}
	e.handles = map[string]*Handle{}
	e.mu.Unlock()

	e.cancel()
	e.pumps.Wait()
	<-e.done
}

func (e *Engine) attachLocked(h *Handle, f *feed) {
	h.feed = f
	h.active.Store(true)
	f.handles[h] = struct{}{}
	e.handles[h.key] = h
}

// pump lee el canal del almacén y encola las entregas en orden de llegada.
func (e *Engine) pump(f *feed, ch <-chan repository.StoreEvent) {
	defer e.pumps.Done()
	for {
		var ev repository.StoreEvent
		select {
		case <-f.ctx.Done():
			return
		case got, ok := <-ch:
			if !ok {
				if f.ctx.Err() != nil {
					return
				}
				got = repository.StoreEvent{Err: errors.New("canal cerrado por el almacén")}
			}
			ev = got
		}

		terminal := ev.Err != nil || ev.Snapshot == nil
		e.mu.Lock()
		f.seq++
		snap := Snapshot{Scope: f.req.Scope, Collection: f.req.Query.Collection, Seq: f.seq}
		if terminal {
			cause := ev.Err
			if cause == nil {
				cause = errors.New("evento vacío")
			}
			snap.Err = fmt.Errorf("%w: %s: %v", domain.ErrSync, f.key, cause)
			// sin reintento: la próxima suscripción abre una fuente nueva
			if e.feeds[f.key] == f {
				delete(e.feeds, f.key)
			}
		} else {
			snap.Docs = ev.Snapshot.Docs
			snap.ReadAt = ev.Snapshot.ReadAt
			f.last = &snap
		}
		targets := make([]*Handle, 0, len(f.handles))
		for h := range f.handles {
			targets = append(targets, h)
		}
		e.mu.Unlock()

		if terminal {
			e.log.Warn().Err(snap.Err).Msg("suscripción terminada por error")
		}
		e.enqueue(f.ctx, func() {
			for _, h := range targets {
				e.deliver(h, snap)
			}
		})
		if terminal {
			f.cancel()
			return
		}
	}
}

func (e *Engine) enqueue(ctx context.Context, fn func()) {
	select {
	case e.queue <- fn:
	case <-ctx.Done():
	case <-e.ctx.Done():
	}
}

func (e *Engine) dispatch() {
	defer close(e.done)
	for {
		select {
		case <-e.ctx.Done():
			return
		case fn := <-e.queue:
			fn()
		}
	}
}

// deliver corre en el despachador.
func (e *Engine) deliver(h *Handle, snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.active.Load() || snap.Seq <= h.lastSeq {
		return
	}
	h.lastSeq = snap.Seq
	snap.handle = h
	h.inFlight.Store(snap.Seq)
	defer h.inFlight.Store(0)
	h.cb(snap)
}

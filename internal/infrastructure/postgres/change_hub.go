package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/amlak-api/internal/domain"
)

// changeChannel canal de NOTIFY que publica el trigger de documents.
const changeChannel = "document_changes"

const listenRetry = 2 * time.Second

// changeHub reparte las notificaciones de colección entre las suscripciones vivas.
type changeHub struct {
	mu   sync.Mutex
	subs map[string]map[*pgSubscriber]struct{}
	down error // no nil mientras la escucha está caída
}

type pgSubscriber struct {
	dirty  chan struct{} // capacidad 1: notificaciones seguidas se fusionan
	failed chan error    // capacidad 1
}

func newChangeHub() *changeHub {
	return &changeHub{subs: make(map[string]map[*pgSubscriber]struct{})}
}

func (h *changeHub) add(collection string) *pgSubscriber {
	sub := &pgSubscriber{dirty: make(chan struct{}, 1), failed: make(chan error, 1)}
	sub.dirty <- struct{}{}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.down != nil {
		sub.failed <- h.down
	}
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[*pgSubscriber]struct{})
	}
	h.subs[collection][sub] = struct{}{}
	return sub
}

func (h *changeHub) remove(collection string, sub *pgSubscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[collection], sub)
	if len(h.subs[collection]) == 0 {
		delete(h.subs, collection)
	}
}

func (h *changeHub) notify(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs[collection] {
		select {
		case sub.dirty <- struct{}{}:
		default:
		}
	}
}

// fail termina todas las suscripciones: sin LISTEN no se puede garantizar que vean los cambios.
func (h *changeHub) fail(cause error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	err := fmt.Errorf("%w: escucha de cambios perdida: %v", domain.ErrSync, cause)
	h.down = err
	for _, subs := range h.subs {
		for sub := range subs {
			select {
			case sub.failed <- err:
			default:
			}
		}
	}
}

func (h *changeHub) up() {
	h.mu.Lock()
	h.down = nil
	h.mu.Unlock()
}

func (h *changeHub) count(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection])
}

// Listen mantiene una conexión dedicada con LISTEN document_changes hasta que ctx termina.
// Si la conexión cae, las suscripciones vivas reciben un error terminal y se reintenta.
func (r *DocumentRepo) Listen(ctx context.Context) {
	for {
		err := r.listenOnce(ctx)
		if ctx.Err() != nil {
			return
		}
		r.log.Warn().Err(err).Dur("retry", listenRetry).Msg("escucha de cambios interrumpida")
		r.hub.fail(err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(listenRetry):
		}
	}
}

func (r *DocumentRepo) listenOnce(ctx context.Context) error {
	pooled, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("adquirir conexión: %w", err)
	}
	// la conexión queda fuera del pool: LISTEN es estado de sesión
	conn := pooled.Hijack()
	defer conn.Close(context.WithoutCancel(ctx))

	if _, err := conn.Exec(ctx, "LISTEN "+changeChannel); err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	r.hub.up()
	r.log.Info().Str("channel", changeChannel).Msg("escuchando cambios de documentos")
	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		r.hub.notify(n.Payload)
	}
}

// Subscribers número de suscripciones vivas en la colección.
func (r *DocumentRepo) Subscribers(collection string) int { return r.hub.count(collection) }

package memstore

import (
	"context"

	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

// subscriber una suscripción viva. dirty tiene capacidad 1: varias escrituras
// seguidas se fusionan en un solo snapshot, siempre calculado con el estado más reciente.
type subscriber struct {
	query repository.Query
	dirty chan struct{}
}

// Subscribe entrega el snapshot actual y uno nuevo por cada escritura en la colección.
func (s *Store) Subscribe(ctx context.Context, q repository.Query) (<-chan repository.StoreEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sub := &subscriber{query: q, dirty: make(chan struct{}, 1)}
	sub.dirty <- struct{}{}

	s.mu.Lock()
	s.subscribers[q.Collection] = append(s.subscribers[q.Collection], sub)
	s.mu.Unlock()

	out := make(chan repository.StoreEvent)
	go func() {
		defer close(out)
		defer s.removeSubscriber(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.dirty:
			}
			s.mu.RLock()
			snap := s.snapshotLocked(sub.query)
			s.mu.RUnlock()
			select {
			case out <- repository.StoreEvent{Snapshot: snap}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// notifyLocked marca como pendientes las suscripciones de la colección. Requiere s.mu.
func (s *Store) notifyLocked(collection string) {
	for _, sub := range s.subscribers[collection] {
		select {
		case sub.dirty <- struct{}{}:
		default:
		}
	}
}

func (s *Store) removeSubscriber(sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.subscribers[sub.query.Collection]
	for i, existing := range subs {
		if existing == sub {
			s.subscribers[sub.query.Collection] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(s.subscribers[sub.query.Collection]) == 0 {
		delete(s.subscribers, sub.query.Collection)
	}
}

// SubscriberCount número de suscripciones vivas en la colección.
func (s *Store) SubscriberCount(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers[collection])
}

// Package memstore implementa el almacén remoto en memoria del proceso: documentos,
// suscripciones push y credenciales. Se usa con STORE_DRIVER=memory y en los tests.
package memstore

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
	"github.com/jhoicas/amlak-api/internal/infrastructure/credential"
)

var _ repository.RemoteStore = (*Store)(nil)

// Option configura el Store.
type Option func(*Store)

// WithBcryptCost fija el costo bcrypt (los tests usan bcrypt.MinCost).
func WithBcryptCost(cost int) Option { return func(s *Store) { s.bcryptCost = cost } }

// WithResetTokens reemplaza el repositorio de tokens de restablecimiento.
func WithResetTokens(r repository.ResetTokenRepository) Option {
	return func(s *Store) { s.resetTokens = r }
}

// WithNotifier reemplaza el notificador de restablecimiento.
func WithNotifier(n credential.Notifier) Option { return func(s *Store) { s.notifier = n } }

// WithClock reemplaza el reloj.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

// Store almacén en memoria. Seguro para uso concurrente.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	subscribers map[string][]*subscriber // por colección
	identities  map[string]*identityRecord
	byID        map[string]*identityRecord

	bcryptCost  int
	resetTokens repository.ResetTokenRepository
	notifier    credential.Notifier
	resetTTL    time.Duration
	now         func() time.Time
	log         zerolog.Logger
}

// New construye un Store vacío.
func New(log zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		collections: make(map[string]map[string]map[string]any),
		subscribers: make(map[string][]*subscriber),
		identities:  make(map[string]*identityRecord),
		byID:        make(map[string]*identityRecord),
		resetTTL:    time.Hour,
		now:         time.Now,
		log:         log.With().Str("component", "memstore").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resetTokens == nil {
		s.resetTokens = NewResetTokens(s.now)
	}
	if s.notifier == nil {
		s.notifier = credential.NewLogNotifier(s.log)
	}
	return s
}

// Read lectura puntual.
func (s *Store) Read(ctx context.Context, collection, id string) (*repository.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.collections[collection][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &repository.Document{ID: id, Fields: maps.Clone(fields)}, nil
}

// Write upsert con fusión de campos.
func (s *Store) Write(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("memstore write %s: id vacío: %w", collection, domain.ErrInvalidInput)
	}
	s.mu.Lock()
	docs := s.collection(collection)
	current, ok := docs[id]
	if !ok {
		current = make(map[string]any, len(fields))
		docs[id] = current
	}
	maps.Copy(current, fields)
	s.notifyLocked(collection)
	s.mu.Unlock()
	return nil
}

// Append crea un documento con ID automático.
func (s *Store) Append(ctx context.Context, collection string, fields map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := uuid.New().String()
	s.mu.Lock()
	s.collection(collection)[id] = maps.Clone(fields)
	s.notifyLocked(collection)
	s.mu.Unlock()
	return id, nil
}

// Query consulta puntual.
func (s *Store) Query(ctx context.Context, q repository.Query) (*repository.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(q), nil
}

func (s *Store) collection(name string) map[string]map[string]any {
	docs, ok := s.collections[name]
	if !ok {
		docs = make(map[string]map[string]any)
		s.collections[name] = docs
	}
	return docs
}

func (s *Store) snapshotLocked(q repository.Query) *repository.Snapshot {
	docs := make([]repository.Document, 0)
	for id, fields := range s.collections[q.Collection] {
		doc := repository.Document{ID: id, Fields: maps.Clone(fields)}
		if q.Filter.Match(doc) {
			docs = append(docs, doc)
		}
	}
	if q.Order == nil {
		// orden estable para snapshots sin orden explícito
		q.Order = &repository.Order{Field: repository.FieldID}
	}
	return &repository.Snapshot{
		Collection: q.Collection,
		Docs:       q.Apply(docs),
		ReadAt:     s.now(),
	}
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

var _ repository.DocumentStore = (*DocumentRepo)(nil)

// DocumentRepo almacén de documentos sobre la tabla documents (JSONB).
// Las suscripciones se alimentan con LISTEN document_changes; ver Listen.
type DocumentRepo struct {
	pool *pgxpool.Pool
	hub  *changeHub
	log  zerolog.Logger
	now  func() time.Time
}

// NewDocumentRepository construye el adaptador. Las suscripciones solo reciben
// cambios mientras Listen está corriendo.
func NewDocumentRepository(pool *pgxpool.Pool, log zerolog.Logger) *DocumentRepo {
	l := log.With().Str("component", "postgres.documents").Logger()
	return &DocumentRepo{pool: pool, hub: newChangeHub(), log: l, now: time.Now}
}

// Read obtiene un documento por colección e ID.
func (r *DocumentRepo) Read(ctx context.Context, collection, id string) (*repository.Document, error) {
	const query = `SELECT fields FROM documents WHERE collection = $1 AND id = $2`
	var fields map[string]any
	if err := r.pool.QueryRow(ctx, query, collection, id).Scan(&fields); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("documents.Read %s/%s: %w", collection, id, err)
	}
	return &repository.Document{ID: id, Fields: fields}, nil
}

// Write upsert: los campos nuevos se fusionan sobre los existentes (operador ||).
func (r *DocumentRepo) Write(ctx context.Context, collection, id string, fields map[string]any) error {
	if id == "" {
		return fmt.Errorf("documents.Write %s: id vacío: %w", collection, domain.ErrInvalidInput)
	}
	const query = `
		INSERT INTO documents (collection, id, fields)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id)
		DO UPDATE SET fields = documents.fields || EXCLUDED.fields, updated_at = now()`
	if _, err := r.pool.Exec(ctx, query, collection, id, fields); err != nil {
		return fmt.Errorf("documents.Write %s/%s: %w", collection, id, err)
	}
	return nil
}

// Append inserta un documento con ID generado.
func (r *DocumentRepo) Append(ctx context.Context, collection string, fields map[string]any) (string, error) {
	id := uuid.New().String()
	const query = `INSERT INTO documents (collection, id, fields) VALUES ($1, $2, $3)`
	if _, err := r.pool.Exec(ctx, query, collection, id, fields); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("documents.Append %s: %w", collection, domain.ErrConflict)
		}
		return "", fmt.Errorf("documents.Append %s: %w", collection, err)
	}
	return id, nil
}

// Query filtra en SQL; el orden y el límite se aplican con Query.Apply para que
// coincidan con el almacén en memoria.
func (r *DocumentRepo) Query(ctx context.Context, q repository.Query) (*repository.Snapshot, error) {
	sql, args := buildSelect(q)
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("documents.Query %s: %w", q.Collection, err)
	}
	defer rows.Close()

	docs := make([]repository.Document, 0)
	for rows.Next() {
		var d repository.Document
		if err := rows.Scan(&d.ID, &d.Fields); err != nil {
			return nil, fmt.Errorf("documents.Query %s scan: %w", q.Collection, err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("documents.Query %s: %w", q.Collection, err)
	}
	if q.Order == nil {
		q.Order = &repository.Order{Field: repository.FieldID}
	}
	return &repository.Snapshot{Collection: q.Collection, Docs: q.Apply(docs), ReadAt: r.now()}, nil
}

// Subscribe entrega el snapshot actual y uno nuevo por cada notificación de la colección.
// Si se pierde la conexión de LISTEN, el canal recibe un evento con Err y se cierra.
func (r *DocumentRepo) Subscribe(ctx context.Context, q repository.Query) (<-chan repository.StoreEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sub := r.hub.add(q.Collection)

	out := make(chan repository.StoreEvent)
	go func() {
		defer close(out)
		defer r.hub.remove(q.Collection, sub)
		send := func(ev repository.StoreEvent) bool {
			select {
			case out <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-sub.failed:
				send(repository.StoreEvent{Err: err})
				return
			case <-sub.dirty:
			}
			snap, err := r.Query(ctx, q)
			if err != nil {
				if ctx.Err() == nil {
					send(repository.StoreEvent{Err: err})
				}
				return
			}
			if !send(repository.StoreEvent{Snapshot: snap}) {
				return
			}
		}
	}()
	return out, nil
}

// buildSelect traduce el filtro de igualdad a SQL con parámetros posicionales.
func buildSelect(q repository.Query) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT id, fields FROM documents WHERE collection = $1`)
	args := []any{q.Collection}
	for _, c := range q.Filter {
		if c.Field == repository.FieldID {
			args = append(args, c.Value)
			fmt.Fprintf(&b, ` AND id = $%d`, len(args))
			continue
		}
		args = append(args, c.Field, c.Value)
		fmt.Fprintf(&b, ` AND fields->>$%d = $%d`, len(args)-1, len(args))
	}
	return b.String(), args
}

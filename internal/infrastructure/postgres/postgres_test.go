package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

// ─── buildSelect ─────────────────────────────────────────────────────────────

func TestBuildSelect_FiltrosParametrizados(t *testing.T) {
	sql, args := buildSelect(repository.Query{
		Collection: repository.CollectionProperties,
		Filter:     repository.Filter{{Field: entity.FieldOwnerID, Value: "u1"}, {Field: repository.FieldID, Value: "p9"}},
	})
	assert.Equal(t, `SELECT id, fields FROM documents WHERE collection = $1 AND fields->>$2 = $3 AND id = $4`, sql)
	assert.Equal(t, []any{"properties", "ownerId", "u1", "p9"}, args)
}

func TestBuildSelect_SinFiltro(t *testing.T) {
	sql, args := buildSelect(repository.Query{Collection: repository.CollectionUsers})
	assert.Equal(t, `SELECT id, fields FROM documents WHERE collection = $1`, sql)
	assert.Equal(t, []any{"users"}, args)
}

// ─── changeHub ───────────────────────────────────────────────────────────────

func drained(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestChangeHub_NotificaSoloLaColeccion(t *testing.T) {
	h := newChangeHub()
	users := h.add(repository.CollectionUsers)
	props := h.add(repository.CollectionProperties)
	require.True(t, drained(users.dirty), "snapshot inicial pendiente")
	require.True(t, drained(props.dirty))

	h.notify(repository.CollectionProperties)
	h.notify(repository.CollectionProperties)
	assert.False(t, drained(users.dirty))
	assert.True(t, drained(props.dirty), "las notificaciones se fusionan")
	assert.False(t, drained(props.dirty))

	h.remove(repository.CollectionProperties, props)
	assert.Equal(t, 0, h.count(repository.CollectionProperties))
	assert.Equal(t, 1, h.count(repository.CollectionUsers))
}

func TestChangeHub_CaidaTerminaSuscripciones(t *testing.T) {
	h := newChangeHub()
	sub := h.add(repository.CollectionUsers)

	h.fail(errors.New("conexión reiniciada"))
	select {
	case err := <-sub.failed:
		assert.ErrorIs(t, err, domain.ErrSync)
	case <-time.After(time.Second):
		t.Fatal("sin error terminal")
	}

	// mientras la escucha está caída, las altas nacen fallidas
	late := h.add(repository.CollectionUsers)
	assert.Len(t, late.failed, 1)

	h.up()
	fresh := h.add(repository.CollectionUsers)
	assert.Empty(t, fresh.failed)
}

// ─── utils ───────────────────────────────────────────────────────────────────

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("otro")))
}

func TestScopeArg(t *testing.T) {
	assert.Nil(t, scopeArg(""))
	assert.Equal(t, "u1", scopeArg("u1"))
}

func TestMigraciones_Embebidas(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "0001_documents.sql", entries[0].Name())
}

package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
	"github.com/jhoicas/amlak-api/internal/infrastructure/memstore"
)

func TestSeedAdmin_CreaIdentidadYPerfilAdmin(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New(zerolog.Nop(), memstore.WithBcryptCost(bcrypt.MinCost))
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	id, err := seedAdmin(ctx, mem, " Root@Amlak.ae ", "pw123456", now)
	require.NoError(t, err)

	identity, err := mem.Authenticate(ctx, "root@amlak.ae", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, id, identity.ID)

	doc, err := mem.Read(ctx, repository.CollectionUsers, id)
	require.NoError(t, err)
	profile := entity.ProfileFromFields(doc.ID, doc.Fields)
	assert.Equal(t, entity.RoleAdmin, profile.Role)
	assert.Equal(t, "root@amlak.ae", profile.Email)
	assert.True(t, now.Equal(profile.CreatedAt))
}

func TestSeedAdmin_Errores(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New(zerolog.Nop(), memstore.WithBcryptCost(bcrypt.MinCost))
	_, err := seedAdmin(ctx, mem, "root@amlak.ae", "pw123456", time.Now())
	require.NoError(t, err)

	_, err = seedAdmin(ctx, mem, "root@amlak.ae", "pw123456", time.Now())
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)

	_, err = seedAdmin(ctx, mem, "no-es-email", "pw123456", time.Now())
	assert.Error(t, err)

	_, err = seedAdmin(ctx, mem, "otro@amlak.ae", "123", time.Now())
	assert.Error(t, err)
}

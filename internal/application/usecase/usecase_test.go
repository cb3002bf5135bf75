package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/application/session"
	"github.com/jhoicas/amlak-api/internal/application/usecase"
	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
	"github.com/jhoicas/amlak-api/internal/infrastructure/memstore"
)

var (
	owner  = entity.Principal{ID: "u1", Role: entity.RoleLandlord}
	other  = entity.Principal{ID: "u2", Role: entity.RoleTenant}
	admin  = entity.Principal{ID: "root", Role: entity.RoleAdmin}
	demoer = entity.Principal{ID: "demo-1", Role: entity.RoleBuyer, Demo: true}
)

func seedProfile(t *testing.T, s *memstore.Store, id string, role entity.Role, created time.Time) {
	t.Helper()
	p := entity.NewProfile(&entity.Identity{ID: id, Email: id + "@x.com"}, role, created)
	require.NoError(t, s.Write(context.Background(), repository.CollectionUsers, id, p.Fields()))
}

// ─── Perfil ──────────────────────────────────────────────────────────────────

func TestUpdateProfile_SoloCamposPersonales(t *testing.T) {
	s := memstore.New(zerolog.Nop())
	seedProfile(t, s, "u1", entity.RoleLandlord, time.Now())
	uc := usecase.NewUserUseCase(s)
	ctx := context.Background()

	got, err := uc.UpdateProfile(ctx, owner, "u1", dto.UpdateProfileRequest{
		FullName: " Ana Pérez ", PhoneNumber: "0501234567", Job: "arquitecta", Location: "Riad",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", got.FullName)
	assert.Equal(t, "landlord", got.Role, "el rol no cambia")

	doc, err := s.Read(ctx, repository.CollectionUsers, "u1")
	require.NoError(t, err)
	assert.Equal(t, "arquitecta", doc.Fields[entity.FieldJob])
	assert.Equal(t, "landlord", doc.Fields[entity.FieldRole])
}

func TestUpdateProfile_Permisos(t *testing.T) {
	s := memstore.New(zerolog.Nop())
	seedProfile(t, s, "u1", entity.RoleLandlord, time.Now())
	uc := usecase.NewUserUseCase(s)
	ctx := context.Background()

	_, err := uc.UpdateProfile(ctx, other, "u1", dto.UpdateProfileRequest{FullName: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = uc.UpdateProfile(ctx, demoer, "demo-1", dto.UpdateProfileRequest{FullName: "x"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, err := uc.UpdateProfile(ctx, admin, "u1", dto.UpdateProfileRequest{FullName: "Desde admin"})
	require.NoError(t, err)
	assert.Equal(t, "Desde admin", got.FullName)

	_, err = uc.UpdateProfile(ctx, owner, "u1", dto.UpdateProfileRequest{PhoneNumber: "abc"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = uc.GetProfile(ctx, admin, "nadie")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestListUsers_SoloAdminPaginado(t *testing.T) {
	s := memstore.New(zerolog.Nop())
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedProfile(t, s, "a", entity.RoleTenant, base)
	seedProfile(t, s, "b", entity.RoleBuyer, base.Add(time.Hour))
	seedProfile(t, s, "c", entity.RoleSeller, base.Add(2*time.Hour))
	uc := usecase.NewUserUseCase(s)
	ctx := context.Background()

	_, err := uc.ListUsers(ctx, owner, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	res, err := uc.ListUsers(ctx, admin, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "c", res.Items[0].ID)

	res, err = uc.ListUsers(ctx, admin, dto.PageRequest{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "a", res.Items[0].ID)
}

// ─── Inmuebles ───────────────────────────────────────────────────────────────

func TestProperty_CreateYList(t *testing.T) {
	s := memstore.New(zerolog.Nop())
	uc := usecase.NewPropertyUseCase(s)
	ctx := context.Background()

	_, err := uc.Create(ctx, owner, "u1", dto.CreatePropertyRequest{
		PropertyType: "Villa", Address: "Calle 1", AreaSqm: decimal.RequireFromString("120.5"),
	})
	require.NoError(t, err)
	_, err = uc.Create(ctx, admin, "u1", dto.CreatePropertyRequest{
		PropertyType: "land", Address: "Lote 7", AreaSqm: decimal.NewFromInt(900),
	})
	require.NoError(t, err)

	list, err := uc.List(ctx, owner, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	byType := map[string]dto.PropertyResponse{}
	for _, p := range list {
		byType[p.PropertyType] = p
	}
	require.Contains(t, byType, "villa", "el tipo se normaliza")
	assert.True(t, byType["villa"].AreaSqm.Equal(decimal.RequireFromString("120.5")))
	assert.Equal(t, "u1", byType["land"].OwnerID)
}

func TestProperty_Errores(t *testing.T) {
	s := memstore.New(zerolog.Nop())
	uc := usecase.NewPropertyUseCase(s)
	ctx := context.Background()
	valid := dto.CreatePropertyRequest{PropertyType: "store", Address: "Local 3", AreaSqm: decimal.NewFromInt(40)}

	_, err := uc.Create(ctx, other, "u1", valid)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = uc.Create(ctx, demoer, "demo-1", valid)
	assert.ErrorIs(t, err, domain.ErrForbidden, "la demo es de solo lectura")

	bad := valid
	bad.AreaSqm = decimal.Zero
	_, err = uc.Create(ctx, owner, "u1", bad)
	assert.ErrorIs(t, err, domain.ErrValidation)
	bad = valid
	bad.PropertyType = "castle"
	_, err = uc.Create(ctx, owner, "u1", bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.List(ctx, other, "u1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ─── Sesión vigente ──────────────────────────────────────────────────────────

func TestEscrituras_PrincipalDeUnaSesionCerrada(t *testing.T) {
	s := memstore.New(zerolog.Nop(), memstore.WithBcryptCost(bcrypt.MinCost))
	m := session.NewManager(session.NewProvider(s), s, zerolog.Nop())
	m.Start(context.Background())
	t.Cleanup(m.Close)
	ctx := context.Background()

	require.NoError(t, m.Register(ctx, "l@x.com", "pw123456", entity.RoleLandlord))
	actor, ok := m.Principal()
	require.True(t, ok)
	require.True(t, actor.Valid())
	id := actor.ID

	// la sesión cambia mientras la petición está en curso
	m.Logout(ctx)
	assert.False(t, actor.Valid())

	_, err := usecase.NewPropertyUseCase(s).Create(ctx, actor, id, dto.CreatePropertyRequest{
		PropertyType: "villa", Address: "Calle 1", AreaSqm: decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	snap, err := s.Query(ctx, repository.Query{Collection: repository.CollectionProperties})
	require.NoError(t, err)
	assert.Empty(t, snap.Docs)

	_, err = usecase.NewUserUseCase(s).UpdateProfile(ctx, actor, id, dto.UpdateProfileRequest{FullName: "tarde"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	doc, err := s.Read(ctx, repository.CollectionUsers, id)
	require.NoError(t, err)
	assert.NotEqual(t, "tarde", doc.Fields[entity.FieldFullName])
}

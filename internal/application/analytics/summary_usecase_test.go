package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/amlak-api/internal/application/analytics"
	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
	"github.com/jhoicas/amlak-api/internal/infrastructure/memstore"
)

// failingRepo AnalyticsRepository que falla en los leads de demo.
type failingRepo struct {
	repository.AnalyticsRepository
}

func (failingRepo) DemoLeadsByRole(context.Context, time.Time) (map[entity.Role]int, error) {
	return nil, assert.AnError
}

func seed(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New(zerolog.Nop())
	ctx := context.Background()
	now := time.Now()
	add := func(collection string, fields map[string]any) {
		_, err := s.Append(ctx, collection, fields)
		require.NoError(t, err)
	}
	for _, u := range []struct {
		id   string
		role entity.Role
	}{{"l1", entity.RoleLandlord}, {"t1", entity.RoleTenant}, {"t2", entity.RoleTenant}} {
		p := entity.NewProfile(&entity.Identity{ID: u.id, Email: u.id + "@x.com"}, u.role, now)
		require.NoError(t, s.Write(ctx, repository.CollectionUsers, u.id, p.Fields()))
	}
	add(repository.CollectionProperties, (&entity.Property{OwnerID: "l1", PropertyType: entity.PropertyVilla, Address: "a", AreaSqm: decimal.RequireFromString("100.125"), CreatedAt: now}).Fields())
	add(repository.CollectionProperties, (&entity.Property{OwnerID: "l1", PropertyType: entity.PropertyVilla, Address: "b", AreaSqm: decimal.NewFromInt(50), CreatedAt: now}).Fields())
	add(repository.CollectionProperties, (&entity.Property{OwnerID: "t1", PropertyType: entity.PropertyLand, Address: "c", AreaSqm: decimal.NewFromInt(300), CreatedAt: now}).Fields())

	add(repository.CollectionActivityLogs, (&entity.ActivityLogEntry{UserID: "l1", Action: entity.ActionLogin, Timestamp: now}).Fields())
	add(repository.CollectionActivityLogs, (&entity.ActivityLogEntry{UserID: "l1", Action: entity.ActionLogout, Timestamp: now}).Fields())
	add(repository.CollectionActivityLogs, (&entity.ActivityLogEntry{UserID: "t1", Action: entity.ActionLogin, Timestamp: now}).Fields())
	// fuera de la ventana
	add(repository.CollectionActivityLogs, (&entity.ActivityLogEntry{UserID: "l1", Action: entity.ActionLogin, Timestamp: now.Add(-60 * 24 * time.Hour)}).Fields())

	add(repository.CollectionDemoLeads, (&entity.DemoLead{PhoneNumber: "0501234567", Role: entity.RoleBuyer, Timestamp: now}).Fields())
	return s
}

func TestGetSummary_AdminVeElAgregadoGlobal(t *testing.T) {
	uc := analytics.NewSummaryUseCase(seed(t))

	got, err := uc.GetSummary(context.Background(), entity.Principal{ID: "root", Role: entity.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, analytics.ScopeGlobal, got.Scope)
	assert.Equal(t, 2, got.UsersByRole["tenant"])
	assert.Equal(t, 1, got.UsersByRole["landlord"])
	assert.Equal(t, 1, got.DemoLeadsByRole["buyer"])
	assert.Equal(t, 3, got.TotalProperties)
	assert.Equal(t, "450.13", got.TotalAreaSqm.StringFixed(2))
	assert.Equal(t, 2, got.Logins)
	assert.Equal(t, 1, got.Logouts)
	assert.Equal(t, analytics.Window, got.GeneratedAt.Sub(got.Since))
}

func TestGetSummary_UsuarioSoloVeLoPropio(t *testing.T) {
	uc := analytics.NewSummaryUseCase(seed(t))

	got, err := uc.GetSummary(context.Background(), entity.Principal{ID: "l1", Role: entity.RoleLandlord})
	require.NoError(t, err)
	assert.Equal(t, analytics.ScopeOwn, got.Scope)
	assert.Nil(t, got.UsersByRole)
	assert.Nil(t, got.DemoLeadsByRole)
	require.Len(t, got.PropertiesByType, 1)
	assert.Equal(t, "villa", got.PropertiesByType[0].PropertyType)
	assert.Equal(t, 2, got.PropertiesByType[0].Count)
	assert.Equal(t, 1, got.Logins)
	assert.Equal(t, 1, got.Logouts)
}

func TestGetSummary_Errores(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	_, err := analytics.NewSummaryUseCase(s).GetSummary(ctx, entity.Principal{ID: "demo-1", Role: entity.RoleBuyer, Demo: true})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = analytics.NewSummaryUseCase(failingRepo{s}).GetSummary(ctx, entity.Principal{ID: "root", Role: entity.RoleAdmin})
	assert.ErrorIs(t, err, assert.AnError)

	// un usuario normal no consulta los leads
	_, err = analytics.NewSummaryUseCase(failingRepo{s}).GetSummary(ctx, entity.Principal{ID: "t1", Role: entity.RoleTenant})
	assert.NoError(t, err)
}

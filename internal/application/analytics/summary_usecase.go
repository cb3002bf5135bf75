// Package analytics contiene los casos de uso de analítica agregada:
// usuarios por rol, inmuebles por tipo y actividad de sesiones.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

// Window período de actividad que cubre el resumen.
const Window = 30 * 24 * time.Hour

const (
	ScopeGlobal = "global"
	ScopeOwn    = "own"
)

// SummaryUseCase genera el resumen de analítica.
//
// Fuente de datos: AnalyticsRepository (consultas read-only).
// Un admin ve el agregado global; el resto solo sus inmuebles y su actividad.
type SummaryUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewSummaryUseCase construye el caso de uso.
func NewSummaryUseCase(analyticsRepo repository.AnalyticsRepository) *SummaryUseCase {
	return &SummaryUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// GetSummary construye el AnalyticsSummaryDTO para el principal indicado.
//
// Consultas en paralelo:
//  1. PropertyStats(dueño)        → PropertiesByType, totales
//  2. ActivitySince(usuario, 30d) → Logins, Logouts
//  3. CountUsersByRole            → solo global
//  4. DemoLeadsByRole(30d)        → solo global
func (uc *SummaryUseCase) GetSummary(ctx context.Context, actor entity.Principal) (*dto.AnalyticsSummaryDTO, error) {
	if actor.ID == "" || actor.Demo {
		return nil, domain.ErrForbidden
	}
	now := uc.now().UTC()
	since := now.Add(-Window)

	global := actor.Role.IsAdmin()
	scopeID := actor.ID
	if global {
		scopeID = ""
	}

	type statsResult struct {
		stats []repository.PropertyTypeStat
		err   error
	}
	type activityResult struct {
		counts repository.ActivityCounts
		err    error
	}
	type byRoleResult struct {
		counts map[entity.Role]int
		err    error
	}

	statsCh := make(chan statsResult, 1)
	activityCh := make(chan activityResult, 1)
	usersCh := make(chan byRoleResult, 1)
	leadsCh := make(chan byRoleResult, 1)

	go func() {
		stats, err := uc.analyticsRepo.PropertyStats(ctx, scopeID)
		statsCh <- statsResult{stats, err}
	}()
	go func() {
		counts, err := uc.analyticsRepo.ActivitySince(ctx, scopeID, since)
		activityCh <- activityResult{counts, err}
	}()
	if global {
		go func() {
			counts, err := uc.analyticsRepo.CountUsersByRole(ctx)
			usersCh <- byRoleResult{counts, err}
		}()
		go func() {
			counts, err := uc.analyticsRepo.DemoLeadsByRole(ctx, since)
			leadsCh <- byRoleResult{counts, err}
		}()
	} else {
		usersCh <- byRoleResult{}
		leadsCh <- byRoleResult{}
	}

	stats := <-statsCh
	activity := <-activityCh
	users := <-usersCh
	leads := <-leadsCh

	if stats.err != nil {
		return nil, fmt.Errorf("analytics: inmuebles por tipo: %w", stats.err)
	}
	if activity.err != nil {
		return nil, fmt.Errorf("analytics: actividad: %w", activity.err)
	}
	if users.err != nil {
		return nil, fmt.Errorf("analytics: usuarios por rol: %w", users.err)
	}
	if leads.err != nil {
		return nil, fmt.Errorf("analytics: leads de demo: %w", leads.err)
	}

	out := &dto.AnalyticsSummaryDTO{
		Scope:            ScopeOwn,
		PropertiesByType: make([]dto.PropertyTypeStatDTO, 0, len(stats.stats)),
		TotalAreaSqm:     decimal.Zero,
		Logins:           activity.counts.Logins,
		Logouts:          activity.counts.Logouts,
		Since:            since,
		GeneratedAt:      now,
	}
	for _, s := range stats.stats {
		out.PropertiesByType = append(out.PropertiesByType, dto.PropertyTypeStatDTO{
			PropertyType: string(s.PropertyType),
			Count:        s.Count,
			TotalAreaSqm: s.TotalArea.Round(2),
		})
		out.TotalProperties += s.Count
		out.TotalAreaSqm = out.TotalAreaSqm.Add(s.TotalArea)
	}
	out.TotalAreaSqm = out.TotalAreaSqm.Round(2)

	if global {
		out.Scope = ScopeGlobal
		out.UsersByRole = roleMap(users.counts)
		out.DemoLeadsByRole = roleMap(leads.counts)
	}
	return out, nil
}

func roleMap(in map[entity.Role]int) map[string]int {
	out := make(map[string]int, len(in))
	for r, n := range in {
		out[string(r)] = n
	}
	return out
}

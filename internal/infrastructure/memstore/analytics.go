package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*Store)(nil)

// CountUsersByRole implementa repository.AnalyticsRepository.
func (s *Store) CountUsersByRole(ctx context.Context) (map[entity.Role]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[entity.Role]int)
	for id, f := range s.collections[repository.CollectionUsers] {
		out[entity.ProfileFromFields(id, f).Role]++
	}
	return out, nil
}

// PropertyStats implementa repository.AnalyticsRepository.
func (s *Store) PropertyStats(ctx context.Context, ownerID string) ([]repository.PropertyTypeStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	byType := make(map[entity.PropertyType]*repository.PropertyTypeStat)
	for id, f := range s.collections[repository.CollectionProperties] {
		p := entity.PropertyFromFields(id, f)
		if ownerID != "" && p.OwnerID != ownerID {
			continue
		}
		st, ok := byType[p.PropertyType]
		if !ok {
			st = &repository.PropertyTypeStat{PropertyType: p.PropertyType, TotalArea: decimal.Zero}
			byType[p.PropertyType] = st
		}
		st.Count++
		st.TotalArea = st.TotalArea.Add(p.AreaSqm)
	}
	out := make([]repository.PropertyTypeStat, 0, len(byType))
	for _, st := range byType {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PropertyType < out[j].PropertyType })
	return out, nil
}

// ActivitySince implementa repository.AnalyticsRepository.
func (s *Store) ActivitySince(ctx context.Context, userID string, since time.Time) (repository.ActivityCounts, error) {
	var out repository.ActivityCounts
	if err := ctx.Err(); err != nil {
		return out, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, f := range s.collections[repository.CollectionActivityLogs] {
		e := entity.ActivityLogFromFields(id, f)
		if (userID != "" && e.UserID != userID) || e.Timestamp.Before(since) {
			continue
		}
		switch e.Action {
		case entity.ActionLogin:
			out.Logins++
		case entity.ActionLogout:
			out.Logouts++
		}
	}
	return out, nil
}

// DemoLeadsByRole implementa repository.AnalyticsRepository.
func (s *Store) DemoLeadsByRole(ctx context.Context, since time.Time) (map[entity.Role]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[entity.Role]int)
	for id, f := range s.collections[repository.CollectionDemoLeads] {
		l := entity.DemoLeadFromFields(id, f)
		if l.Timestamp.Before(since) {
			continue
		}
		out[l.Role]++
	}
	return out, nil
}

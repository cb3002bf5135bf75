package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de solo lectura sobre documents para la analítica agregada.
type AnalyticsRepo struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepo {
	return &AnalyticsRepo{pool: pool}
}

// CountUsersByRole agrupa los perfiles por rol. Un rol ausente cuenta como "unassigned".
func (r *AnalyticsRepo) CountUsersByRole(ctx context.Context) (map[entity.Role]int, error) {
	const query = `
	SELECT COALESCE(NULLIF(fields->>'role', ''), 'unassigned') AS role,
	       COUNT(*)                                            AS total
	FROM documents
	WHERE collection = 'users'
	GROUP BY 1`
	return r.countByRole(ctx, "CountUsersByRole", query)
}

// PropertyStats agrupa los inmuebles por tipo con su área total.
// ownerID vacío = todos los dueños.
func (r *AnalyticsRepo) PropertyStats(ctx context.Context, ownerID string) ([]repository.PropertyTypeStat, error) {
	const query = `
	SELECT fields->>'propertyType'                                   AS property_type,
	       COUNT(*)                                                  AS total,
	       COALESCE(SUM(NULLIF(fields->>'areaSqm', '')::NUMERIC), 0) AS total_area
	FROM documents
	WHERE collection = 'properties'
	  AND ($1::TEXT IS NULL OR fields->>'ownerId' = $1)
	GROUP BY 1
	ORDER BY 1`

	rows, err := r.pool.Query(ctx, query, scopeArg(ownerID))
	if err != nil {
		return nil, fmt.Errorf("analytics.PropertyStats: %w", err)
	}
	defer rows.Close()

	results := make([]repository.PropertyTypeStat, 0)
	for rows.Next() {
		var (
			row   repository.PropertyTypeStat
			ptype string
		)
		if err := rows.Scan(&ptype, &row.Count, &row.TotalArea); err != nil {
			return nil, fmt.Errorf("analytics.PropertyStats scan: %w", err)
		}
		row.PropertyType = entity.PropertyType(ptype)
		results = append(results, row)
	}
	return results, rows.Err()
}

// ActivitySince cuenta logins y logouts desde since. userID vacío = todos.
func (r *AnalyticsRepo) ActivitySince(ctx context.Context, userID string, since time.Time) (repository.ActivityCounts, error) {
	const query = `
	SELECT COUNT(*) FILTER (WHERE fields->>'action' = 'login')  AS logins,
	       COUNT(*) FILTER (WHERE fields->>'action' = 'logout') AS logouts
	FROM documents
	WHERE collection = 'activity_logs'
	  AND ($1::TEXT IS NULL OR fields->>'userId' = $1)
	  AND (fields->>'timestamp')::TIMESTAMPTZ >= $2`

	var out repository.ActivityCounts
	if err := r.pool.QueryRow(ctx, query, scopeArg(userID), since).Scan(&out.Logins, &out.Logouts); err != nil {
		return out, fmt.Errorf("analytics.ActivitySince: %w", err)
	}
	return out, nil
}

// DemoLeadsByRole agrupa los leads de demo desde since por el rol elegido.
func (r *AnalyticsRepo) DemoLeadsByRole(ctx context.Context, since time.Time) (map[entity.Role]int, error) {
	const query = `
	SELECT COALESCE(NULLIF(fields->>'role', ''), 'unassigned') AS role,
	       COUNT(*)                                            AS total
	FROM documents
	WHERE collection = 'demo_leads'
	  AND (fields->>'timestamp')::TIMESTAMPTZ >= $1
	GROUP BY 1`
	return r.countByRole(ctx, "DemoLeadsByRole", query, since)
}

func (r *AnalyticsRepo) countByRole(ctx context.Context, op, query string, args ...any) (map[entity.Role]int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("analytics.%s: %w", op, err)
	}
	defer rows.Close()

	out := make(map[entity.Role]int)
	for rows.Next() {
		var (
			role  string
			total int
		)
		if err := rows.Scan(&role, &total); err != nil {
			return nil, fmt.Errorf("analytics.%s scan: %w", op, err)
		}
		parsed, _ := entity.ParseRole(role)
		out[parsed] += total
	}
	return out, rows.Err()
}

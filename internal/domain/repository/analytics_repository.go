package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/amlak-api/internal/domain/entity"
)

// PropertyTypeStat resultado crudo de inmuebles agrupados por tipo.
// Lo produce el almacén; el use case lo convierte en DTO.
type PropertyTypeStat struct {
	PropertyType entity.PropertyType
	Count        int
	TotalArea    decimal.Decimal
}

// ActivityCounts accesos y salidas registrados en un período.
type ActivityCounts struct {
	Logins  int
	Logouts int
}

// AnalyticsRepository consultas de lectura para la analítica agregada.
// Las implementaciones son read-only (no modifican datos).
// Un ownerID/userID vacío significa "todos".
type AnalyticsRepository interface {
	// CountUsersByRole perfiles agrupados por rol.
	CountUsersByRole(ctx context.Context) (map[entity.Role]int, error)

	// PropertyStats inmuebles por tipo con el área total, del dueño indicado o de todos.
	PropertyStats(ctx context.Context, ownerID string) ([]PropertyTypeStat, error)

	// ActivitySince logins/logouts desde since, del usuario indicado o de todos.
	ActivitySince(ctx context.Context, userID string, since time.Time) (ActivityCounts, error)

	// DemoLeadsByRole leads de demo desde since, agrupados por rol elegido.
	DemoLeadsByRole(ctx context.Context, since time.Time) (map[entity.Role]int, error)
}

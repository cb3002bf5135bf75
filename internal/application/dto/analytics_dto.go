package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AnalyticsSummaryDTO respuesta de GET /api/analytics/summary.
// Scope "global" para admin (todos los usuarios) u "own" para el resto.
type AnalyticsSummaryDTO struct {
	Scope string `json:"scope"`

	// Solo global.
	UsersByRole     map[string]int `json:"users_by_role,omitempty"`
	DemoLeadsByRole map[string]int `json:"demo_leads_by_role,omitempty"`

	PropertiesByType []PropertyTypeStatDTO `json:"properties_by_type"`
	TotalProperties  int                   `json:"total_properties"`
	TotalAreaSqm     decimal.Decimal       `json:"total_area_sqm"`

	// Actividad en la ventana [Since, GeneratedAt].
	Logins  int `json:"logins"`
	Logouts int `json:"logouts"`

	Since       time.Time `json:"since"`
	GeneratedAt time.Time `json:"generated_at"`
}

// PropertyTypeStatDTO inmuebles por tipo.
type PropertyTypeStatDTO struct {
	PropertyType string          `json:"property_type"`
	Count        int             `json:"count"`
	TotalAreaSqm decimal.Decimal `json:"total_area_sqm"`
}

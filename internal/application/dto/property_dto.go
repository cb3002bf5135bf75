package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePropertyRequest alta de un inmueble.
type CreatePropertyRequest struct {
	PropertyType string          `json:"property_type" validate:"required,oneof=apartment villa store land"`
	Address      string          `json:"address" validate:"required,max=300"`
	AreaSqm      decimal.Decimal `json:"area_sqm" validate:"required"`
	Description  string          `json:"description" validate:"max=2000"`
}

// PropertyResponse inmueble.
type PropertyResponse struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"owner_id"`
	PropertyType string          `json:"property_type"`
	Address      string          `json:"address"`
	AreaSqm      decimal.Decimal `json:"area_sqm"`
	Description  string          `json:"description"`
	CreatedAt    time.Time       `json:"created_at"`
}

package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PropertyType tipo de inmueble.
type PropertyType string

const (
	PropertyApartment PropertyType = "apartment"
	PropertyVilla     PropertyType = "villa"
	PropertyStore     PropertyType = "store"
	PropertyLand      PropertyType = "land"
)

// PropertyTypes todos los tipos válidos, en orden de presentación.
var PropertyTypes = []PropertyType{PropertyApartment, PropertyVilla, PropertyStore, PropertyLand}

// Valid indica si el tipo es uno de los admitidos.
func (t PropertyType) Valid() bool {
	for _, v := range PropertyTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Campos del documento properties/{id}.
const (
	FieldOwnerID      = "ownerId"
	FieldPropertyType = "propertyType"
	FieldAddress      = "address"
	FieldAreaSqm      = "areaSqm"
	FieldDescription  = "description"
)

// Property inmueble registrado por un dueño. Un dueño tiene muchos inmuebles.
type Property struct {
	ID           string
	OwnerID      string
	PropertyType PropertyType
	Address      string
	AreaSqm      decimal.Decimal // metros cuadrados, > 0
	Description  string
	CreatedAt    time.Time
}

// Validate aplica las invariantes del inmueble.
func (p *Property) Validate() error {
	if p.OwnerID == "" {
		return fmt.Errorf("owner_id requerido")
	}
	if !p.PropertyType.Valid() {
		return fmt.Errorf("tipo de inmueble inválido: %q", p.PropertyType)
	}
	if strings.TrimSpace(p.Address) == "" {
		return fmt.Errorf("dirección requerida")
	}
	if !p.AreaSqm.IsPositive() {
		return fmt.Errorf("el área debe ser mayor que 0")
	}
	return nil
}

// Fields serializa el inmueble. El área viaja como string para no perder precisión.
func (p *Property) Fields() map[string]any {
	return map[string]any{
		FieldOwnerID:      p.OwnerID,
		FieldPropertyType: string(p.PropertyType),
		FieldAddress:      p.Address,
		FieldAreaSqm:      p.AreaSqm.String(),
		FieldDescription:  p.Description,
		FieldCreatedAt:    p.CreatedAt,
	}
}

// PropertyFromFields reconstruye un Property desde un documento properties/{id}.
func PropertyFromFields(id string, f map[string]any) *Property {
	return &Property{
		ID:           id,
		OwnerID:      str(f, FieldOwnerID),
		PropertyType: PropertyType(str(f, FieldPropertyType)),
		Address:      str(f, FieldAddress),
		AreaSqm:      decimalField(f, FieldAreaSqm),
		Description:  str(f, FieldDescription),
		CreatedAt:    timeField(f, FieldCreatedAt),
	}
}

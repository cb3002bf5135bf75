package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

// PropertyUseCase alta y listado de inmuebles. Las sesiones demo son de solo lectura.
type PropertyUseCase struct {
	store repository.DocumentStore
	now   func() time.Time
}

// NewPropertyUseCase construye el caso de uso.
func NewPropertyUseCase(store repository.DocumentStore) *PropertyUseCase {
	return &PropertyUseCase{store: store, now: time.Now}
}

// Create registra un inmueble de ownerID. Solo el dueño o un admin.
func (uc *PropertyUseCase) Create(ctx context.Context, actor entity.Principal, ownerID string, in dto.CreatePropertyRequest) (*dto.PropertyResponse, error) {
	if !actor.CanWrite(ownerID) {
		return nil, domain.ErrForbidden
	}
	property := &entity.Property{
		OwnerID:      ownerID,
		PropertyType: entity.PropertyType(strings.ToLower(strings.TrimSpace(in.PropertyType))),
		Address:      strings.TrimSpace(in.Address),
		AreaSqm:      in.AreaSqm,
		Description:  strings.TrimSpace(in.Description),
		CreatedAt:    uc.now(),
	}
	if err := property.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if !actor.Valid() {
		return nil, errStaleActor
	}
	id, err := uc.store.Append(ctx, repository.CollectionProperties, property.Fields())
	if err != nil {
		return nil, fmt.Errorf("%w: inmueble: %v", domain.ErrWriteFailed, err)
	}
	property.ID = id
	return ToPropertyResponse(property), nil
}

// List inmuebles de ownerID, más recientes primero.
func (uc *PropertyUseCase) List(ctx context.Context, actor entity.Principal, ownerID string) ([]dto.PropertyResponse, error) {
	if !actor.CanRead(ownerID) {
		return nil, domain.ErrForbidden
	}
	snap, err := uc.store.Query(ctx, repository.Query{
		Collection: repository.CollectionProperties,
		Filter:     repository.Eq(entity.FieldOwnerID, ownerID),
		Order:      &repository.Order{Field: entity.FieldCreatedAt, Desc: true},
	})
	if err != nil {
		return nil, fmt.Errorf("listar inmuebles: %w", err)
	}
	out := make([]dto.PropertyResponse, 0, len(snap.Docs))
	for _, d := range snap.Docs {
		out = append(out, *ToPropertyResponse(entity.PropertyFromFields(d.ID, d.Fields)))
	}
	return out, nil
}

// ToPropertyResponse convierte un inmueble a su DTO.
func ToPropertyResponse(p *entity.Property) *dto.PropertyResponse {
	return &dto.PropertyResponse{
		ID:           p.ID,
		OwnerID:      p.OwnerID,
		PropertyType: string(p.PropertyType),
		Address:      p.Address,
		AreaSqm:      p.AreaSqm,
		Description:  p.Description,
		CreatedAt:    p.CreatedAt,
	}
}

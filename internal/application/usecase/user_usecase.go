package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

// errStaleActor quien actúa cambió en la sesión (logout, fin de demo) antes de escribir.
var errStaleActor = fmt.Errorf("%w: la sesión cambió durante la operación", domain.ErrUnauthorized)

// UserUseCase aplica reglas de negocio para perfiles de usuario.
type UserUseCase struct {
	store repository.DocumentStore
}

// NewUserUseCase construye el caso de uso con el puerto de datos.
func NewUserUseCase(store repository.DocumentStore) *UserUseCase {
	return &UserUseCase{store: store}
}

// GetProfile perfil de ownerID. Solo el dueño o un admin; la demo no tiene perfil.
func (uc *UserUseCase) GetProfile(ctx context.Context, actor entity.Principal, ownerID string) (*dto.ProfileResponse, error) {
	if actor.Demo || !actor.CanRead(ownerID) {
		return nil, domain.ErrForbidden
	}
	profile, err := uc.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(profile), nil
}

// UpdateProfile actualiza solo los campos personales (nombre, teléfono, cargo, ubicación).
func (uc *UserUseCase) UpdateProfile(ctx context.Context, actor entity.Principal, ownerID string, in dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	if !actor.CanWrite(ownerID) {
		return nil, domain.ErrForbidden
	}
	in.FullName = strings.TrimSpace(in.FullName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Job = strings.TrimSpace(in.Job)
	in.Location = strings.TrimSpace(in.Location)
	if in.PhoneNumber != "" {
		if err := entity.ValidatePhone(in.PhoneNumber); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
	}
	if len(in.FullName) > 200 || len(in.Job) > 100 || len(in.Location) > 200 {
		return nil, fmt.Errorf("%w: campo demasiado largo", domain.ErrValidation)
	}

	profile, err := uc.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	fields := entity.PersonalFields(in.FullName, in.PhoneNumber, in.Job, in.Location)
	if !actor.Valid() {
		return nil, errStaleActor
	}
	if err := uc.store.Write(ctx, repository.CollectionUsers, ownerID, fields); err != nil {
		return nil, fmt.Errorf("%w: perfil %s: %v", domain.ErrWriteFailed, ownerID, err)
	}
	profile.FullName, profile.PhoneNumber, profile.Job, profile.Location = in.FullName, in.PhoneNumber, in.Job, in.Location
	return toProfileResponse(profile), nil
}

// ListUsers todos los perfiles, más recientes primero. Solo admin.
func (uc *UserUseCase) ListUsers(ctx context.Context, actor entity.Principal, page dto.PageRequest) (*dto.UserListResponse, error) {
	if actor.Demo || !actor.Role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	page.DefaultPage()
	snap, err := uc.store.Query(ctx, repository.Query{
		Collection: repository.CollectionUsers,
		Order:      &repository.Order{Field: entity.FieldCreatedAt, Desc: true},
	})
	if err != nil {
		return nil, fmt.Errorf("listar usuarios: %w", err)
	}
	total := len(snap.Docs)
	docs := snap.Docs
	if page.Offset >= len(docs) {
		docs = nil
	} else {
		docs = docs[page.Offset:]
	}
	if len(docs) > page.Limit {
		docs = docs[:page.Limit]
	}
	items := make([]dto.ProfileResponse, 0, len(docs))
	for _, d := range docs {
		items = append(items, *toProfileResponse(entity.ProfileFromFields(d.ID, d.Fields)))
	}
	return &dto.UserListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

func (uc *UserUseCase) load(ctx context.Context, ownerID string) (*entity.Profile, error) {
	doc, err := uc.store.Read(ctx, repository.CollectionUsers, ownerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("leer perfil %s: %w", ownerID, err)
	}
	return entity.ProfileFromFields(doc.ID, doc.Fields), nil
}

// ToProfileResponse convierte un perfil a su DTO.
func ToProfileResponse(p *entity.Profile) *dto.ProfileResponse { return toProfileResponse(p) }

func toProfileResponse(p *entity.Profile) *dto.ProfileResponse {
	if p == nil {
		return nil
	}
	return &dto.ProfileResponse{
		ID:          p.OwnerID,
		Email:       p.Email,
		FullName:    p.FullName,
		PhoneNumber: p.PhoneNumber,
		Job:         p.Job,
		Location:    p.Location,
		Role:        string(p.Role),
		CreatedAt:   p.CreatedAt,
		LastLogin:   p.LastLogin,
	}
}

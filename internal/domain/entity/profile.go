package entity

import "time"

// Campos del documento users/{ownerId}.
const (
	FieldEmail       = "email"
	FieldRole        = "role"
	FieldFullName    = "fullName"
	FieldPhoneNumber = "phoneNumber"
	FieldJob         = "job"
	FieldLocation    = "location"
	FieldCreatedAt   = "createdAt"
	FieldLastLogin   = "lastLogin"
)

// Profile datos personales y rol de una Identity. El ID del documento es el ID de la identidad.
type Profile struct {
	OwnerID     string
	Email       string
	FullName    string
	PhoneNumber string
	Job         string
	Location    string
	Role        Role
	CreatedAt   time.Time
	LastLogin   *time.Time
}

// NewProfile perfil inicial de un registro: rol elegido y datos personales vacíos.
func NewProfile(identity *Identity, role Role, now time.Time) *Profile {
	return &Profile{
		OwnerID:   identity.ID,
		Email:     identity.Email,
		Role:      role,
		CreatedAt: now,
	}
}

// Fields serializa el perfil al formato de documento.
func (p *Profile) Fields() map[string]any {
	f := map[string]any{
		FieldEmail:       p.Email,
		FieldRole:        string(p.Role),
		FieldFullName:    p.FullName,
		FieldPhoneNumber: p.PhoneNumber,
		FieldJob:         p.Job,
		FieldLocation:    p.Location,
		FieldCreatedAt:   p.CreatedAt,
	}
	if p.LastLogin != nil {
		f[FieldLastLogin] = *p.LastLogin
	}
	return f
}

// ProfileFromFields reconstruye un Profile desde un documento users/{id}.
// Un rol desconocido se trata como RoleUnassigned.
func ProfileFromFields(id string, f map[string]any) *Profile {
	role, _ := ParseRole(str(f, FieldRole))
	p := &Profile{
		OwnerID:     id,
		Email:       str(f, FieldEmail),
		FullName:    str(f, FieldFullName),
		PhoneNumber: str(f, FieldPhoneNumber),
		Job:         str(f, FieldJob),
		Location:    str(f, FieldLocation),
		Role:        role,
		CreatedAt:   timeField(f, FieldCreatedAt),
	}
	if t := timeField(f, FieldLastLogin); !t.IsZero() {
		p.LastLogin = &t
	}
	return p
}

// PersonalFields solo los campos que el dueño puede editar.
func PersonalFields(fullName, phoneNumber, job, location string) map[string]any {
	return map[string]any{
		FieldFullName:    fullName,
		FieldPhoneNumber: phoneNumber,
		FieldJob:         job,
		FieldLocation:    location,
	}
}

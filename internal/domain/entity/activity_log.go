package entity

import "time"

// Action acción registrada en la bitácora de actividad.
type Action string

const (
	ActionLogin  Action = "login"
	ActionLogout Action = "logout"
)

// Campos de activity_logs y demo_leads.
const (
	FieldUserID    = "userId"
	FieldUserEmail = "userEmail"
	FieldAction    = "action"
	FieldTimestamp = "timestamp"
)

// ActivityLogEntry registro append-only: uno por login y uno por logout.
type ActivityLogEntry struct {
	ID        string
	UserID    string
	UserEmail string
	Action    Action
	Timestamp time.Time
}

// Fields serializa la entrada.
func (e *ActivityLogEntry) Fields() map[string]any {
	return map[string]any{
		FieldUserID:    e.UserID,
		FieldUserEmail: e.UserEmail,
		FieldAction:    string(e.Action),
		FieldTimestamp: e.Timestamp,
	}
}

// ActivityLogFromFields reconstruye una entrada de activity_logs.
func ActivityLogFromFields(id string, f map[string]any) *ActivityLogEntry {
	return &ActivityLogEntry{
		ID:        id,
		UserID:    str(f, FieldUserID),
		UserEmail: str(f, FieldUserEmail),
		Action:    Action(str(f, FieldAction)),
		Timestamp: timeField(f, FieldTimestamp),
	}
}

// DemoLead registro de contacto generado al iniciar una demo. Se escribe una sola vez.
type DemoLead struct {
	ID          string
	PhoneNumber string
	Role        Role
	Timestamp   time.Time
}

// Fields serializa el lead.
func (l *DemoLead) Fields() map[string]any {
	return map[string]any{
		FieldPhoneNumber: l.PhoneNumber,
		FieldRole:        string(l.Role),
		FieldTimestamp:   l.Timestamp,
	}
}

// DemoLeadFromFields reconstruye un lead de demo_leads.
func DemoLeadFromFields(id string, f map[string]any) *DemoLead {
	role, _ := ParseRole(str(f, FieldRole))
	return &DemoLead{
		ID:          id,
		PhoneNumber: str(f, FieldPhoneNumber),
		Role:        role,
		Timestamp:   timeField(f, FieldTimestamp),
	}
}

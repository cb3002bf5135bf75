package dto

// WorkspaceEventDTO evento del stream GET /api/stream: el estado completo visible tras cada cambio.
type WorkspaceEventDTO struct {
	Version    uint64             `json:"version"`
	State      StateResponse      `json:"state"`
	Profile    *ProfileResponse   `json:"profile,omitempty"`
	Properties []PropertyResponse `json:"properties,omitempty"`
	Users      []ProfileResponse  `json:"users,omitempty"`
	SyncError  string             `json:"sync_error,omitempty"`
}

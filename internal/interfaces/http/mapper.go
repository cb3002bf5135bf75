package http

import (
	"github.com/jhoicas/amlak-api/internal/application/dto"
	"github.com/jhoicas/amlak-api/internal/application/session"
	"github.com/jhoicas/amlak-api/internal/application/usecase"
	"github.com/jhoicas/amlak-api/internal/application/view"
	"github.com/jhoicas/amlak-api/internal/application/workspace"
	"github.com/jhoicas/amlak-api/internal/domain"
)

func toStateResponse(st session.State, v view.View, layout *view.Layout) dto.StateResponse {
	out := dto.StateResponse{
		Status: st.Status.String(),
		Demo:   st.DemoActive(),
		View: dto.ViewDTO{
			Tag:           v.Tag.String(),
			Scope:         v.Scope,
			ReadOnly:      v.ReadOnly,
			Impersonating: v.Impersonating(),
		},
		LastError: domain.UserMessage(st.LastErr),
	}
	if st.Identity != nil {
		out.IdentityID = st.Identity.ID
		out.Email = st.Identity.Email
	}
	if st.Role != "" {
		out.Role = st.Role.String()
	}
	if layout != nil {
		l := &dto.LayoutDTO{Role: layout.Role.String(), Title: layout.Title, AdminEntry: layout.AdminEntry}
		for _, f := range layout.Features {
			l.Features = append(l.Features, dto.FeatureDTO{Key: f.Key, Title: f.Title, Description: f.Description})
		}
		out.Layout = l
	}
	return out
}

func toWorkspaceEvent(s workspace.Snapshot) dto.WorkspaceEventDTO {
	ev := dto.WorkspaceEventDTO{
		Version:   s.Version,
		State:     toStateResponse(s.Session, s.View, s.Layout),
		SyncError: domain.UserMessage(s.SyncErr),
	}
	if s.Profile != nil {
		ev.Profile = usecase.ToProfileResponse(s.Profile)
	}
	for _, p := range s.Properties {
		ev.Properties = append(ev.Properties, *usecase.ToPropertyResponse(p))
	}
	for _, u := range s.Users {
		ev.Users = append(ev.Users, *usecase.ToProfileResponse(u))
	}
	return ev
}

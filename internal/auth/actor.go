package auth

import (
	"github.com/google/uuid"

	"github.com/simmonsmd7/inkflow-sub002/pkg/enums"
)

// Actor identifies the authenticated staff member behind a request, as
// carried in the JWT. Services use it for role gating and audit
// attribution.
type Actor struct {
	UserID   uuid.UUID
	StudioID uuid.UUID
	Name     string
	Role     enums.MemberRole
}

// CanManageTemplates reports whether the actor may create, edit, or
// delete consent templates.
func (a Actor) CanManageTemplates() bool {
	return a.Role == enums.MemberRoleOwner
}

package application

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	RoleOrganizer    Role = "ORGANIZER"
	RoleEventManager Role = "EVENT_MANAGER"
	RoleFaculty      Role = "FACULTY"
)

// Grants is the capability set derived from a role once at the auth
// boundary. Handlers and services consume these flags instead of re-deriving
// role checks per endpoint.
type Grants struct {
	ManageEvents     bool
	ManageSessions   bool
	ViewAllDocuments bool
	RespondToInvites bool
}

// GrantsFor maps a role to its capability set.
func GrantsFor(role Role) Grants {
	switch role {
	case RoleOrganizer:
		return Grants{ManageEvents: true, ManageSessions: true, ViewAllDocuments: true}
	case RoleEventManager:
		return Grants{ManageSessions: true, ViewAllDocuments: true}
	case RoleFaculty:
		return Grants{RespondToInvites: true}
	default:
		return Grants{}
	}
}

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID string
	Email  string
	Role   Role
	Grants Grants
}

// NewPrincipal derives the principal, including its capability set, from an
// authenticated user.
func NewPrincipal(user User) Principal {
	return Principal{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Grants: GrantsFor(user.Role),
	}
}

// ActsFor reports whether the principal may act on documents owned by the
// given faculty id: organizer-tier callers always may, faculty callers only
// for their own identity, including the composite session-identity format.
func (p Principal) ActsFor(facultyID string) bool {
	if facultyID == "" {
		return false
	}
	if p.Grants.ViewAllDocuments {
		return true
	}
	if p.UserID == facultyID {
		return true
	}
	return BaseFacultyID(p.UserID) == facultyID
}

// BaseFacultyID normalizes a composite session identity of the form
// "faculty-evt_<event>-<suffix>" to its base faculty id
// "faculty-evt_<event>". Other identities are returned unchanged.
func BaseFacultyID(id string) string {
	parts := strings.Split(id, "-")
	if len(parts) >= 2 && parts[0] == "faculty" && strings.HasPrefix(parts[1], "evt_") {
		return parts[0] + "-" + parts[1]
	}
	return id
}

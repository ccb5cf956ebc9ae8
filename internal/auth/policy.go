package auth

import "github.com/docvault/docvault/internal/models"

// Actor is the authenticated caller as seen by the domain services. It is
// derived from the verified token, never from request input.
type Actor struct {
	ID   string
	Role models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// CanAccess reports whether the actor may touch a resource owned by ownerID.
// Admins see everything; everyone else only their own resources. A nil
// ownerID marks a system-created resource and is admin-only.
func CanAccess(actor Actor, ownerID *string) bool {
	if actor.IsAdmin() {
		return true
	}
	return ownerID != nil && actor.ID == *ownerID
}

// Package authz centralizes the mutation policy that was previously inlined
// in every controller: a resource may be mutated by its owner or by an
// administrator, never by anyone else.
package authz

import "github.com/agape-academy/academy-api/internal/models"

// CanMutate reports whether the requester may update, delete, or change the
// lifecycle of a resource owned by ownerID.
func CanMutate(role models.UserRole, requesterID, ownerID string) bool {
	if role.IsAdmin() {
		return true
	}
	return requesterID != "" && requesterID == ownerID
}

// CanView reports whether the requester may read a resource that is private
// to its owner (e.g. a support ticket).
func CanView(role models.UserRole, requesterID, ownerID string) bool {
	return CanMutate(role, requesterID, ownerID)
}

// CanDeactivate guards account deactivation: admins only, and never the
// requester's own account.
func CanDeactivate(role models.UserRole, requesterID, targetID string) (allowed, self bool) {
	if requesterID == targetID {
		return false, true
	}
	return role.IsAdmin(), false
}

package auth

// Actor is the member attempting a privileged ticket action.
type Actor struct {
	UserID  string
	RoleIDs []string
}

// HasRole reports whether the actor holds roleID.
func (a Actor) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, id := range a.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// CanCloseTicket allows support staff and the guild owner.
func CanCloseTicket(actor Actor, supportRoleID, ownerID string) bool {
	if actor.HasRole(supportRoleID) {
		return true
	}
	return ownerID != "" && actor.UserID == ownerID
}

package auth

import "github.com/lukepickard18/botz/internal/domain"

const (
	requesterOpenAllow = domain.PermissionViewChannel | domain.PermissionSendMessages | domain.PermissionReadMessageHistory
	supportAllow       = domain.PermissionViewChannel | domain.PermissionSendMessages | domain.PermissionManageMessages | domain.PermissionReadMessageHistory
)

// OverwritesFor computes the permission overwrites of a ticket channel in the given phase.
// Only the requester overwrite differs between phases.
func OverwritesFor(phase domain.Phase, requesterID, supportRoleID, everyoneRoleID string) []domain.Overwrite {
	return []domain.Overwrite{
		RequesterOverwrite(phase, requesterID),
		{
			PrincipalID: supportRoleID,
			Type:        domain.PrincipalRole,
			Allow:       supportAllow,
		},
		{
			PrincipalID: everyoneRoleID,
			Type:        domain.PrincipalRole,
			Deny:        domain.PermissionViewChannel,
		},
	}
}

// RequesterOverwrite returns the requester's overwrite for phase.
// A closed ticket stays readable by its requester but no longer accepts replies.
func RequesterOverwrite(phase domain.Phase, requesterID string) domain.Overwrite {
	ow := domain.Overwrite{
		PrincipalID: requesterID,
		Type:        domain.PrincipalMember,
		Allow:       requesterOpenAllow,
	}
	if phase == domain.PhaseClosed {
		ow.Allow = domain.PermissionViewChannel | domain.PermissionReadMessageHistory
		ow.Deny = domain.PermissionSendMessages
	}
	return ow
}

// ResolveRequester finds the ticket requester of an open channel. The id recorded in
// the topic wins when it still has a member overwrite on the channel; otherwise the
// requester is the only member overwrite carrying the open requester grant. Members
// added to the channel by staff are never picked by position.
func ResolveRequester(topicRequesterID string, overwrites []domain.Overwrite) (string, bool) {
	if topicRequesterID != "" {
		for _, ow := range overwrites {
			if ow.Type == domain.PrincipalMember && ow.PrincipalID == topicRequesterID {
				return topicRequesterID, true
			}
		}
	}
	return RequesterFromOverwrites(overwrites)
}

// RequesterFromOverwrites returns the single member overwrite matching the open
// requester grant. Zero or several matches report false.
func RequesterFromOverwrites(overwrites []domain.Overwrite) (string, bool) {
	found := ""
	for _, ow := range overwrites {
		if ow.Type != domain.PrincipalMember || ow.Allow != requesterOpenAllow || ow.Deny != 0 {
			continue
		}
		if found != "" && found != ow.PrincipalID {
			return "", false
		}
		found = ow.PrincipalID
	}
	return found, found != ""
}

package domain

// Permission is a bitset of channel capabilities. Values match the platform's bit positions.
type Permission int64

const (
	PermissionViewChannel        Permission = 1 << 10
	PermissionSendMessages       Permission = 1 << 11
	PermissionManageMessages     Permission = 1 << 13
	PermissionReadMessageHistory Permission = 1 << 16
)

// Has reports whether every bit in other is set.
func (p Permission) Has(other Permission) bool {
	return p&other == other
}

// PrincipalType distinguishes role overwrites from member overwrites.
type PrincipalType int

const (
	PrincipalRole PrincipalType = iota
	PrincipalMember
)

func (t PrincipalType) String() string {
	if t == PrincipalMember {
		return "member"
	}
	return "role"
}

// Overwrite is a per-channel allow/deny override for one principal.
type Overwrite struct {
	PrincipalID string
	Type        PrincipalType
	Allow       Permission
	Deny        Permission
}

// Phase is the lifecycle phase a ticket channel's permissions are derived for.
type Phase string

const (
	PhaseOpen   Phase = "open"
	PhaseClosed Phase = "closed"
)

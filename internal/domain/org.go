package domain

import "time"

// OrgRole enumerates positions in the sales organization.
type OrgRole string

const (
	OrgRoleAdmin      OrgRole = "ADMIN"
	OrgRoleManager    OrgRole = "MANAGER"
	OrgRoleTeamLeader OrgRole = "TEAM_LEADER"
	OrgRolePromoter   OrgRole = "PROMOTER"
	OrgRoleValidator  OrgRole = "VALIDATOR"
)

// OrgStatus represents lifecycle states for an org member.
type OrgStatus string

const (
	OrgStatusActive    OrgStatus = "ACTIVE"
	OrgStatusSuspended OrgStatus = "SUSPENDED"
)

// OrgUser models a member of the sales hierarchy. ParentID points at the
// team leader for a promoter and at the manager for a team leader; the
// underlying assignment data enforces no acyclicity, so traversals must.
type OrgUser struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         OrgRole
	ParentID     *string
	Status       OrgStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanSell reports whether the role participates in ticket sales.
func (u *OrgUser) CanSell() bool {
	switch u.Role {
	case OrgRolePromoter, OrgRoleTeamLeader, OrgRoleManager:
		return true
	}
	return false
}

// OrgChain is the ordered ancestor path [self, parent, grandparent] used for
// commission splitting and notification routing. Omitted tiers are nil.
type OrgChain []*OrgUser

// ByRole returns the first chain member holding the given role, or nil.
func (c OrgChain) ByRole(role OrgRole) *OrgUser {
	for _, member := range c {
		if member != nil && member.Role == role {
			return member
		}
	}
	return nil
}

// IDs returns the member IDs in chain order.
func (c OrgChain) IDs() []string {
	ids := make([]string, 0, len(c))
	for _, member := range c {
		if member != nil {
			ids = append(ids, member.ID)
		}
	}
	return ids
}

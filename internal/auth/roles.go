package auth

import "voisafe/backend/internal/models"

// Capability names one privileged action. Roles map onto capabilities in a
// single table below so the whole access matrix is auditable in one place,
// instead of being scattered across handlers as string comparisons.
type Capability string

const (
	CapFileComplaint  Capability = "complaint:file"
	CapTrackOwn       Capability = "complaint:track-own"
	CapListTenant     Capability = "complaint:list-tenant"
	CapViewDetail     Capability = "complaint:view-detail"
	CapUpdateStatus   Capability = "complaint:update-status"
	CapAddNote        Capability = "complaint:add-note"
	CapRevealIdentity Capability = "complaint:reveal-identity"
	CapChat           Capability = "chat:participate"
	CapManagePlatform Capability = "platform:manage"
)

// capabilities is the access matrix. Reveal is deliberately restricted to the
// full admin tier: committee admins can work complaints but can never learn
// who filed them.
var capabilities = map[Capability][]string{
	CapFileComplaint:  {models.RoleStudent},
	CapTrackOwn:       {models.RoleStudent},
	CapListTenant:     {models.RoleAdmin, models.RoleCommitteeAdmin},
	CapViewDetail:     {models.RoleAdmin, models.RoleCommitteeAdmin},
	CapUpdateStatus:   {models.RoleAdmin, models.RoleCommitteeAdmin},
	CapAddNote:        {models.RoleAdmin, models.RoleCommitteeAdmin},
	CapRevealIdentity: {models.RoleAdmin},
	CapChat:           {models.RoleStudent, models.RoleAdmin, models.RoleCommitteeAdmin},
	CapManagePlatform: {models.RoleSuperAdmin},
}

// Can reports whether a role holds a capability.
func Can(role string, cap Capability) bool {
	for _, r := range capabilities[cap] {
		if r == role {
			return true
		}
	}
	return false
}

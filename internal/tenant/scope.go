// Package tenant computes the organization scope attached to every
// admin-facing query. It is the only thing standing between one institution's
// admins and another institution's complaint data: there is no bypass.
package tenant

import (
	"fmt"

	"gorm.io/gorm"

	"voisafe/backend/internal/apperr"
	"voisafe/backend/internal/models"
)

// Scope identifies one tenant. OrgID is preferred; College is the legacy
// free-text institution name used only for records that predate organizations.
type Scope struct {
	OrgID   string
	College string
}

// ScopeFor derives the scoping filter for an authenticated actor. Fails
// closed: an actor with neither an organization nor a legacy college name gets
// apperr.ErrForbidden, never an unscoped all-tenant view.
func ScopeFor(user *models.User) (Scope, error) {
	if user == nil {
		return Scope{}, fmt.Errorf("tenant: nil actor: %w", apperr.ErrForbidden)
	}
	if user.OrgID != "" {
		return Scope{OrgID: user.OrgID}, nil
	}
	if user.College != "" {
		return Scope{College: user.College}, nil
	}
	return Scope{}, fmt.Errorf("tenant: no organization association for user %s: %w", user.ID, apperr.ErrForbidden)
}

// Apply attaches the tenant filter to a gorm query. Meant to be used with
// db.Scopes(scope.Apply).
func (s Scope) Apply(db *gorm.DB) *gorm.DB {
	if s.OrgID != "" {
		return db.Where("org_id = ?", s.OrgID)
	}
	return db.Where("college = ?", s.College)
}

// Matches reports whether a record carrying the given tenant columns belongs
// to this scope.
func (s Scope) Matches(orgID, college string) bool {
	if s.OrgID != "" {
		return s.OrgID == orgID
	}
	return s.College == college
}

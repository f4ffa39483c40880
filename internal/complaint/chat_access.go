package complaint

import (
	"context"
	"fmt"

	"voisafe/backend/internal/apperr"
	"voisafe/backend/internal/auth"
	"voisafe/backend/internal/models"
	"voisafe/backend/internal/tenant"
	"voisafe/backend/internal/tracking"
)

// AuthorizeChat gates chat-room access for a tracking ID: the complaint must
// exist, the actor's tenant must match it, and students must additionally own
// the tracking ID. The same decoupling invariant as everywhere else — a
// student is identified to the room by role only.
func (s *Service) AuthorizeChat(ctx context.Context, actor *models.User, trackingID string) error {
	if !auth.Can(actor.Role, auth.CapChat) {
		return fmt.Errorf("complaint: role %s cannot chat: %w", actor.Role, apperr.ErrForbidden)
	}
	if !tracking.IsValidFormat(trackingID) {
		return fmt.Errorf("complaint: malformed tracking id: %w", apperr.ErrValidation)
	}

	record, err := s.Storage.GetComplaintByTracking(ctx, trackingID)
	if err != nil {
		return err
	}

	scope, err := tenant.ScopeFor(actor)
	if err != nil {
		return err
	}
	if !scope.Matches(record.OrgID, record.College) {
		return fmt.Errorf("complaint: chat access outside tenant: %w", apperr.ErrForbidden)
	}

	if actor.Role == models.RoleStudent {
		owner, err := s.Storage.VerifyOwnership(ctx, trackingID, actor.ID)
		if err != nil {
			return err
		}
		if !owner {
			return fmt.Errorf("complaint: not your complaint: %w", apperr.ErrAccessDenied)
		}
	}
	return nil
}

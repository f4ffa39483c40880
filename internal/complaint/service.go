// Package complaint implements the complaint lifecycle engine: filing with
// identity decoupling, status transitions, admin notes and the controlled
// identity-reveal operation. It decides who may do what; persistence details
// live in the storage service.
package complaint

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"voisafe/backend/internal/apperr"
	"voisafe/backend/internal/auth"
	"voisafe/backend/internal/models"
	"voisafe/backend/internal/obs"
	"voisafe/backend/internal/storage"
	"voisafe/backend/internal/tenant"
	"voisafe/backend/internal/tracking"
)

// MinRevealReasonLength is the minimum justification length for an identity
// reveal. A nominal deterrent against casual misuse, not real authorization
// policy; deployments needing more plug in a RevealPolicy.
const MinRevealReasonLength = 10

// Validation bounds carried over from the intake rules.
const (
	minTitleLength       = 5
	maxTitleLength       = 200
	minDescriptionLength = 20
	maxDescriptionLength = 5000
)

// Notifier receives fire-and-forget alerts about noteworthy events. May be nil.
type Notifier interface {
	ComplaintFiled(complaint *models.Complaint)
	IdentityRevealed(trackingID, actorName string)
}

// RevealPolicy is an extension point consulted before any identity reveal, on
// top of the built-in role and reason checks. Deployments can require
// dual-admin approval or a case-ticket reference here without touching the
// reveal code path.
type RevealPolicy interface {
	Authorize(ctx context.Context, actor *models.User, complaint *models.Complaint, reason string) error
}

// Service handles the business logic for complaints.
type Service struct {
	Storage      storage.Storage
	Notifier     Notifier
	RevealPolicy RevealPolicy
}

// NewService creates a new complaint service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// FileRequest is the student intake payload.
type FileRequest struct {
	Title       string
	Description string
	Category    string
}

// FileComplaint files a complaint anonymously. The complaint row is written
// without any identity field; the encrypted filer↔trackingId link goes to the
// separate mapping store in the same transaction. The returned complaint
// carries the tracking ID — the filer's only future reference.
func (s *Service) FileComplaint(ctx context.Context, filer *models.User, req FileRequest) (*models.Complaint, error) {
	if !auth.Can(filer.Role, auth.CapFileComplaint) {
		return nil, fmt.Errorf("complaint: role %s cannot file: %w", filer.Role, apperr.ErrForbidden)
	}

	scope, err := tenant.ScopeFor(filer)
	if err != nil {
		return nil, err
	}
	org, err := s.operableOrg(ctx, filer)
	if err != nil {
		return nil, err
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := validateFileRequest(req); err != nil {
		return nil, err
	}
	if org != nil && !org.CategoryAllowed(req.Category) {
		return nil, fmt.Errorf("complaint: category %q is not accepted by %s: %w", req.Category, org.Slug, apperr.ErrValidation)
	}

	trackingID, err := tracking.GenerateUnique(ctx, s.Storage.TrackingIDExists)
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: generated tracking id %s for new complaint", trackingID)

	complaint := &models.Complaint{
		TrackingID:  trackingID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    models.PriorityMedium,
		Status:      models.StatusPending,
		OrgID:       scope.OrgID,
		College:     filer.College,
	}

	if err := s.Storage.CreateComplaintWithMapping(ctx, complaint, filer.ID, nil); err != nil {
		return nil, err
	}

	obs.ComplaintsFiled.Inc()
	log.Printf("INFO: complaint filed anonymously, tracking id %s", trackingID)
	if s.Notifier != nil {
		go s.Notifier.ComplaintFiled(complaint)
	}
	return complaint, nil
}

// VerifyOwnership reports whether filerID is the identity encrypted under
// trackingID. False — not an error — for unknown tracking IDs.
func (s *Service) VerifyOwnership(ctx context.Context, trackingID, filerID string) (bool, error) {
	return s.Storage.VerifyOwnership(ctx, trackingID, filerID)
}

// GetByTracking is the student self-check: loads the complaint behind a
// tracking ID after the ownership gate. There is no identity field to leak.
func (s *Service) GetByTracking(ctx context.Context, filer *models.User, trackingID string) (*models.Complaint, error) {
	if !tracking.IsValidFormat(trackingID) {
		return nil, fmt.Errorf("complaint: malformed tracking id: %w", apperr.ErrValidation)
	}

	complaint, err := s.Storage.GetComplaintByTracking(ctx, trackingID)
	if err != nil {
		return nil, err
	}

	owner, err := s.Storage.VerifyOwnership(ctx, trackingID, filer.ID)
	if err != nil {
		return nil, err
	}
	if !owner {
		return nil, fmt.Errorf("complaint: tracking id does not belong to caller: %w", apperr.ErrAccessDenied)
	}
	return complaint, nil
}

// ListMine returns every complaint the filer owns, newest first.
func (s *Service) ListMine(ctx context.Context, filer *models.User) ([]models.Complaint, error) {
	scope, err := tenant.ScopeFor(filer)
	if err != nil {
		return nil, err
	}
	trackingIDs, err := s.Storage.ListTrackingIDsForUser(ctx, scope, filer.ID)
	if err != nil {
		return nil, err
	}
	return s.Storage.ListComplaintsByTrackingIDs(ctx, trackingIDs)
}

// ListForTenant is the admin dashboard: tenant-scoped, filterable, without
// admin notes (detail view only).
func (s *Service) ListForTenant(ctx context.Context, actor *models.User, filter storage.ComplaintFilter) ([]models.Complaint, error) {
	if !auth.Can(actor.Role, auth.CapListTenant) {
		return nil, fmt.Errorf("complaint: role %s cannot list complaints: %w", actor.Role, apperr.ErrForbidden)
	}
	scope, err := tenant.ScopeFor(actor)
	if err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return s.Storage.ListComplaints(ctx, scope, filter)
}

// GetByID is the admin detail view, tenant-scoped.
func (s *Service) GetByID(ctx context.Context, actor *models.User, id uint) (*models.Complaint, error) {
	if !auth.Can(actor.Role, auth.CapViewDetail) {
		return nil, fmt.Errorf("complaint: role %s cannot view details: %w", actor.Role, apperr.ErrForbidden)
	}
	scope, err := tenant.ScopeFor(actor)
	if err != nil {
		return nil, err
	}
	return s.Storage.GetComplaintByID(ctx, id, scope)
}

// UpdateStatus applies a status transition and appends the audit entry. Any
// status may follow any other — including reopening a closed complaint; the
// system records transitions, it does not forbid them.
func (s *Service) UpdateStatus(ctx context.Context, actor *models.User, id uint, newStatus, comment string) (*models.Complaint, error) {
	if !auth.Can(actor.Role, auth.CapUpdateStatus) {
		return nil, fmt.Errorf("complaint: role %s cannot update status: %w", actor.Role, apperr.ErrForbidden)
	}
	if !models.ValidStatuses[newStatus] {
		return nil, fmt.Errorf("complaint: unknown status %q: %w", newStatus, apperr.ErrValidation)
	}
	if _, err := s.operableOrg(ctx, actor); err != nil {
		return nil, err
	}

	scope, err := tenant.ScopeFor(actor)
	if err != nil {
		return nil, err
	}
	complaint, err := s.Storage.GetComplaintByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	entry := models.StatusEntry{
		Status:    newStatus,
		ChangedBy: actor.ID,
		ChangedAt: time.Now(),
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.Storage.UpdateComplaintStatus(ctx, complaint, entry); err != nil {
		return nil, err
	}
	return complaint, nil
}

// AddAdminNote appends an admin-only note. The author is always an admin
// identity; admins are not anonymous.
func (s *Service) AddAdminNote(ctx context.Context, actor *models.User, id uint, note string) (*models.Complaint, error) {
	if !auth.Can(actor.Role, auth.CapAddNote) {
		return nil, fmt.Errorf("complaint: role %s cannot add notes: %w", actor.Role, apperr.ErrForbidden)
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, fmt.Errorf("complaint: note content is required: %w", apperr.ErrValidation)
	}

	scope, err := tenant.ScopeFor(actor)
	if err != nil {
		return nil, err
	}
	complaint, err := s.Storage.GetComplaintByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	record := models.AdminNote{Note: note, AddedBy: actor.ID, AddedAt: time.Now()}
	if err := s.Storage.AddAdminNote(ctx, complaint.ID, record); err != nil {
		return nil, err
	}
	complaint.AdminNotes = append(complaint.AdminNotes, record)
	return complaint, nil
}

// RevealResult is what an authorized reveal discloses.
type RevealResult struct {
	Student    *models.User `json:"student"`
	TrackingID string       `json:"trackingId"`
	RevealedAt time.Time    `json:"revealedAt"`
	Reason     string       `json:"reason"`
}

// RevealIdentity is the authorization-critical break-glass path. Order of
// checks matters: the role gate comes first (a committee admin fails with
// Forbidden no matter how good the reason), then the reason length, then the
// tenant-scoped load — only then does the mapping store decrypt, and it
// writes the access-log entry before the plaintext leaves it. Repeated
// reveals append more log entries; the revealed flag never flips back.
func (s *Service) RevealIdentity(ctx context.Context, actor *models.User, id uint, reason, ipAddress string) (*RevealResult, error) {
	if !auth.Can(actor.Role, auth.CapRevealIdentity) {
		return nil, fmt.Errorf("complaint: only full administrators can reveal identity: %w", apperr.ErrForbidden)
	}

	reason = strings.TrimSpace(reason)
	if len(reason) < MinRevealReasonLength {
		return nil, fmt.Errorf("complaint: reveal reason must be at least %d characters: %w", MinRevealReasonLength, apperr.ErrValidation)
	}

	scope, err := tenant.ScopeFor(actor)
	if err != nil {
		return nil, err
	}
	complaint, err := s.Storage.GetComplaintByID(ctx, id, scope)
	if err != nil {
		return nil, err
	}

	if s.RevealPolicy != nil {
		if err := s.RevealPolicy.Authorize(ctx, actor, complaint, reason); err != nil {
			return nil, err
		}
	}

	filerID, err := s.Storage.GetIdentityWithLogging(ctx, complaint.TrackingID, actor.ID, reason, ipAddress)
	if err != nil {
		return nil, err
	}

	student, err := s.Storage.GetUserByID(ctx, filerID)
	if err != nil {
		return nil, fmt.Errorf("complaint: mapped student %s: %w", filerID, err)
	}

	now := time.Now()
	if err := s.Storage.MarkIdentityRevealed(ctx, complaint.ID, actor.ID, now); err != nil {
		return nil, err
	}

	obs.IdentityReveals.Inc()
	log.Printf("WARNING: identity revealed for complaint %s by admin %s", complaint.TrackingID, actor.ID)
	if s.Notifier != nil {
		go s.Notifier.IdentityRevealed(complaint.TrackingID, actor.Name)
	}

	return &RevealResult{
		Student:    student,
		TrackingID: complaint.TrackingID,
		RevealedAt: now,
		Reason:     reason,
	}, nil
}

// operableOrg loads the caller's organization and blocks filing and admin
// actions for suspended or inactive tenants. Legacy college-only users have no
// org record to check; they get a nil org.
func (s *Service) operableOrg(ctx context.Context, user *models.User) (*models.Organization, error) {
	if user.OrgID == "" {
		return nil, nil
	}
	org, err := s.Storage.GetOrganizationByID(ctx, user.OrgID)
	if err != nil {
		return nil, err
	}
	if !org.CanOperate() {
		return nil, fmt.Errorf("complaint: organization %s is %s: %w", org.Slug, org.Status, apperr.ErrForbidden)
	}
	return org, nil
}

func validateFileRequest(req FileRequest) error {
	if req.Title == "" || req.Description == "" || req.Category == "" {
		return fmt.Errorf("complaint: title, description and category are required: %w", apperr.ErrValidation)
	}
	if len(req.Title) < minTitleLength || len(req.Title) > maxTitleLength {
		return fmt.Errorf("complaint: title must be %d-%d characters: %w", minTitleLength, maxTitleLength, apperr.ErrValidation)
	}
	if len(req.Description) < minDescriptionLength || len(req.Description) > maxDescriptionLength {
		return fmt.Errorf("complaint: description must be %d-%d characters: %w", minDescriptionLength, maxDescriptionLength, apperr.ErrValidation)
	}
	if !models.ValidCategories[req.Category] {
		return fmt.Errorf("complaint: unknown category %q: %w", req.Category, apperr.ErrValidation)
	}
	return nil
}

func validateFilter(filter storage.ComplaintFilter) error {
	if filter.Status != "" && !models.ValidStatuses[filter.Status] {
		return fmt.Errorf("complaint: unknown status filter %q: %w", filter.Status, apperr.ErrValidation)
	}
	if filter.Category != "" && !models.ValidCategories[filter.Category] {
		return fmt.Errorf("complaint: unknown category filter %q: %w", filter.Category, apperr.ErrValidation)
	}
	if filter.Priority != "" && !models.ValidPriorities[filter.Priority] {
		return fmt.Errorf("complaint: unknown priority filter %q: %w", filter.Priority, apperr.ErrValidation)
	}
	return nil
}

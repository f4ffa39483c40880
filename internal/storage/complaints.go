package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"voisafe/backend/internal/apperr"
	"voisafe/backend/internal/models"
	"voisafe/backend/internal/tenant"
)

// TrackingIDExists is the existence predicate handed to the generator's
// collision-check loop.
func (s *Service) TrackingIDExists(ctx context.Context, trackingID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Where("tracking_id = ?", trackingID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateComplaintWithMapping files a complaint and its identity mapping as one
// database transaction. The complaint row never carries the filer's identity;
// the mapping row carries it only encrypted. Running both inserts in a single
// transaction means a mapping failure rolls the complaint back too — an
// orphaned, untraceable complaint cannot be created here.
func (s *Service) CreateComplaintWithMapping(ctx context.Context, complaint *models.Complaint, filerID string, ttl *time.Duration) error {
	encrypted, err := s.Cipher.Encrypt(filerID)
	if err != nil {
		return fmt.Errorf("storage: encrypting filer id for %s: %w", complaint.TrackingID, err)
	}

	var expiresAt *time.Time
	if ttl != nil {
		t := time.Now().Add(*ttl)
		expiresAt = &t
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(complaint).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("storage: tracking id collision on insert: %w", apperr.ErrDuplicateKey)
			}
			return fmt.Errorf("storage: creating complaint %s: %w", complaint.TrackingID, err)
		}

		mapping := models.ComplaintTracking{
			TrackingID:      complaint.TrackingID,
			EncryptedUserID: encrypted,
			OrgID:           complaint.OrgID,
			College:         complaint.College,
			ExpiresAt:       expiresAt,
		}
		if err := tx.Create(&mapping).Error; err != nil {
			// Rolled back together with the complaint — but this is the
			// failure mode that would orphan a complaint, so shout.
			log.Printf("ERROR: identity mapping write failed for %s, rolling back filing: %v", complaint.TrackingID, err)
			return fmt.Errorf("storage: creating identity mapping for %s: %w", complaint.TrackingID, err)
		}
		return nil
	})
}

// GetComplaintByTracking loads a complaint with its status history. Used by
// the student self-service path, after the ownership gate.
func (s *Service) GetComplaintByTracking(ctx context.Context, trackingID string) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.WithContext(ctx).
		Preload("StatusHistory", orderByID).
		Preload("Attachments").
		Where("tracking_id = ?", trackingID).
		First(&complaint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("storage: complaint %s: %w", trackingID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// GetComplaintByID is the admin detail view: tenant-scoped, with notes and
// history preloaded. A complaint belonging to another tenant is
// indistinguishable from a missing one.
func (s *Service) GetComplaintByID(ctx context.Context, id uint, scope tenant.Scope) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.DB.WithContext(ctx).
		Scopes(scope.Apply).
		Preload("StatusHistory", orderByID).
		Preload("AdminNotes", orderByID).
		Preload("Attachments").
		First(&complaint, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("storage: complaint #%d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// ListComplaints is the admin dashboard query: tenant-scoped with optional
// status/category/priority filters. Admin notes are deliberately not loaded
// in list form to limit the exposure surface.
func (s *Service) ListComplaints(ctx context.Context, scope tenant.Scope, filter ComplaintFilter) ([]models.Complaint, error) {
	q := s.DB.WithContext(ctx).Scopes(scope.Apply)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}

	var complaints []models.Complaint
	if err := q.Order("created_at DESC").Find(&complaints).Error; err != nil {
		log.Printf("ERROR: Failed to list complaints: %v", err)
		return nil, err
	}
	return complaints, nil
}

// ListComplaintsByTrackingIDs loads the complaints behind a set of tracking
// IDs; used for the student's own-complaints view.
func (s *Service) ListComplaintsByTrackingIDs(ctx context.Context, trackingIDs []string) ([]models.Complaint, error) {
	if len(trackingIDs) == 0 {
		return nil, nil
	}
	var complaints []models.Complaint
	err := s.DB.WithContext(ctx).
		Where("tracking_id IN ?", trackingIDs).
		Order("created_at DESC").
		Find(&complaints).Error
	if err != nil {
		return nil, err
	}
	return complaints, nil
}

// UpdateComplaintStatus sets the new status and appends the audit entry in one
// transaction, so the history can never miss a transition.
func (s *Service) UpdateComplaintStatus(ctx context.Context, complaint *models.Complaint, entry models.StatusEntry) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Complaint{}).
			Where("id = ?", complaint.ID).
			Update("status", entry.Status).Error; err != nil {
			return fmt.Errorf("storage: updating status of #%d: %w", complaint.ID, err)
		}

		entry.ComplaintID = complaint.ID
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("storage: appending status history of #%d: %w", complaint.ID, err)
		}

		complaint.Status = entry.Status
		complaint.StatusHistory = append(complaint.StatusHistory, entry)
		return nil
	})
}

// AddAdminNote appends a note to the complaint's admin-only note list.
func (s *Service) AddAdminNote(ctx context.Context, complaintID uint, note models.AdminNote) error {
	note.ComplaintID = complaintID
	return s.DB.WithContext(ctx).Create(&note).Error
}

// MarkIdentityRevealed flips the irreversible reveal marker. The first reveal
// wins; repeated reveals keep the original actor and timestamp.
func (s *Service) MarkIdentityRevealed(ctx context.Context, complaintID uint, actorID string, at time.Time) error {
	return s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Where("id = ? AND identity_revealed = ?", complaintID, false).
		Updates(map[string]interface{}{
			"identity_revealed":    true,
			"identity_revealed_by": actorID,
			"identity_revealed_at": at,
		}).Error
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

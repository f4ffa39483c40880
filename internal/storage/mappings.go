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

// VerifyOwnership decrypts the mapping for trackingID and compares it to the
// caller's identity. A missing mapping is an ordinary "false", not an error —
// this is the sole gate for student self-service access. No access-log entry
// is written here: an ownership check is not an identity disclosure.
func (s *Service) VerifyOwnership(ctx context.Context, trackingID, userID string) (bool, error) {
	var mapping models.ComplaintTracking
	err := s.DB.WithContext(ctx).Where("tracking_id = ?", trackingID).First(&mapping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	decrypted, err := s.Cipher.Decrypt(mapping.EncryptedUserID)
	if err != nil {
		// Corrupt blob or rotated key: deny access and make noise.
		log.Printf("ERROR: ownership check could not decrypt mapping for %s: %v", trackingID, err)
		return false, nil
	}
	return decrypted == userID, nil
}

// GetIdentityWithLogging is the ONLY path that decrypts a mapping for
// disclosure. The access-log entry is committed before decryption is even
// attempted, so a failed reveal is still auditable; there is no
// decrypt-without-log code path in this package.
func (s *Service) GetIdentityWithLogging(ctx context.Context, trackingID, actorID, reason, ipAddress string) (string, error) {
	var mapping models.ComplaintTracking
	err := s.DB.WithContext(ctx).Where("tracking_id = ?", trackingID).First(&mapping).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("storage: identity mapping for %s: %w", trackingID, apperr.ErrNotFound)
	}
	if err != nil {
		return "", err
	}

	entry := models.IdentityAccessLog{
		TrackingID: trackingID,
		AccessedBy: actorID,
		AccessedAt: time.Now(),
		Reason:     reason,
		IPAddress:  ipAddress,
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		// If the audit write fails the identity must not leave the store.
		return "", fmt.Errorf("storage: appending access log for %s: %w", trackingID, err)
	}

	decrypted, err := s.Cipher.Decrypt(mapping.EncryptedUserID)
	if err != nil {
		log.Printf("ERROR: reveal decryption failed for %s (attempt logged): %v", trackingID, err)
		return "", fmt.Errorf("storage: decrypting identity for %s: %w", trackingID, err)
	}

	log.Printf("WARNING: identity mapping for %s decrypted by %s (reason: %q)", trackingID, actorID, reason)
	return decrypted, nil
}

// ListTrackingIDsForUser scans the tenant's mappings and returns the tracking
// IDs whose encrypted identity matches userID. Linear decrypt-and-compare is
// the price of never storing a queryable identity column.
func (s *Service) ListTrackingIDsForUser(ctx context.Context, scope tenant.Scope, userID string) ([]string, error) {
	var mappings []models.ComplaintTracking
	err := s.DB.WithContext(ctx).Scopes(scope.Apply).
		Select("tracking_id", "encrypted_user_id").
		Find(&mappings).Error
	if err != nil {
		return nil, err
	}

	var trackingIDs []string
	for _, m := range mappings {
		decrypted, err := s.Cipher.Decrypt(m.EncryptedUserID)
		if err != nil {
			log.Printf("ERROR: skipping undecryptable mapping %s: %v", m.TrackingID, err)
			continue
		}
		if decrypted == userID {
			trackingIDs = append(trackingIDs, m.TrackingID)
		}
	}
	return trackingIDs, nil
}

// PurgeExpiredMappings deletes mappings whose TTL has passed. The complaints
// they pointed at survive untouched — after the purge the identity link is
// gone for good. Access-log rows are removed with their mapping.
func (s *Service) PurgeExpiredMappings(ctx context.Context, now time.Time) (int64, error) {
	var expired []models.ComplaintTracking
	err := s.DB.WithContext(ctx).
		Select("tracking_id").
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Find(&expired).Error
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]string, len(expired))
	for i, m := range expired {
		ids[i] = m.TrackingID
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tracking_id IN ?", ids).Delete(&models.IdentityAccessLog{}).Error; err != nil {
			return err
		}
		return tx.Where("tracking_id IN ?", ids).Delete(&models.ComplaintTracking{}).Error
	})
	if err != nil {
		return 0, err
	}

	log.Printf("INFO: purged %d expired identity mappings", len(ids))
	return int64(len(ids)), nil
}

// FindUnmappedTrackingIDs detects complaints whose identity mapping is
// missing. With transactional filing this only matches legacy or deliberately
// severed records; the reconciliation sweep flags them for operator review
// rather than silently ignoring them.
func (s *Service) FindUnmappedTrackingIDs(ctx context.Context) ([]string, error) {
	var trackingIDs []string
	err := s.DB.WithContext(ctx).Model(&models.Complaint{}).
		Where("tracking_id NOT IN (?)",
			s.DB.Model(&models.ComplaintTracking{}).Select("tracking_id")).
		Pluck("tracking_id", &trackingIDs).Error
	if err != nil {
		return nil, err
	}
	return trackingIDs, nil
}

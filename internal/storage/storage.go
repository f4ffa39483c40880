// Package storage is the persistence service backing the complaint core:
// PostgreSQL (via GORM) for complaints, identity mappings, users and chat
// history; Redis for cross-instance chat fan-out. The complaint store and the
// mapping store are separate tables on purpose — the only link between a
// complaint and its filer is the encrypted mapping row.
package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"voisafe/backend/internal/crypto"
	"voisafe/backend/internal/models"
	"voisafe/backend/internal/tenant"
)

// ComplaintFilter narrows admin list queries.
type ComplaintFilter struct {
	Status   string
	Category string
	Priority string
}

// Storage is the persistence contract consumed by the lifecycle engine, the
// chat hub, the HTTP handlers and the maintenance jobs.
type Storage interface {
	// Users and organizations.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	GetOrganizationByID(ctx context.Context, id string) (*models.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error)
	FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error)
	CreateOrganization(ctx context.Context, org *models.Organization) error
	UpdateOrganization(ctx context.Context, org *models.Organization) error

	// Complaint store (no identity fields, ever).
	TrackingIDExists(ctx context.Context, trackingID string) (bool, error)
	CreateComplaintWithMapping(ctx context.Context, complaint *models.Complaint, filerID string, ttl *time.Duration) error
	GetComplaintByTracking(ctx context.Context, trackingID string) (*models.Complaint, error)
	GetComplaintByID(ctx context.Context, id uint, scope tenant.Scope) (*models.Complaint, error)
	ListComplaints(ctx context.Context, scope tenant.Scope, filter ComplaintFilter) ([]models.Complaint, error)
	ListComplaintsByTrackingIDs(ctx context.Context, trackingIDs []string) ([]models.Complaint, error)
	UpdateComplaintStatus(ctx context.Context, complaint *models.Complaint, entry models.StatusEntry) error
	AddAdminNote(ctx context.Context, complaintID uint, note models.AdminNote) error
	MarkIdentityRevealed(ctx context.Context, complaintID uint, actorID string, at time.Time) error

	// Identity mapping store.
	VerifyOwnership(ctx context.Context, trackingID, userID string) (bool, error)
	GetIdentityWithLogging(ctx context.Context, trackingID, actorID, reason, ipAddress string) (string, error)
	ListTrackingIDsForUser(ctx context.Context, scope tenant.Scope, userID string) ([]string, error)
	PurgeExpiredMappings(ctx context.Context, now time.Time) (int64, error)
	FindUnmappedTrackingIDs(ctx context.Context) ([]string, error)

	// Chat store and fan-out.
	SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error
	GetChatHistory(ctx context.Context, trackingID string, limit int) ([]models.ChatMessage, error)
	MarkMessagesRead(ctx context.Context, trackingID, readerRole string) error
	UnreadCount(ctx context.Context, trackingID, forRole string) (int64, error)
	PublishRoomEvent(ctx context.Context, broadcast models.RoomBroadcast) error
}

// Service implements Storage on PostgreSQL + Redis.
type Service struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Cipher *crypto.Cipher
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client, cipher *crypto.Cipher) *Service {
	return &Service{DB: db, Redis: rdb, Cipher: cipher}
}

package complaint_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"voisafe/backend/internal/models"
	"voisafe/backend/internal/storage"
	"voisafe/backend/internal/tenant"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockStorage) UpdateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockStorage) GetOrganizationByID(ctx context.Context, id string) (*models.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockStorage) GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockStorage) FindOrganizationByName(ctx context.Context, name string) (*models.Organization, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Organization), args.Error(1)
}

func (m *MockStorage) CreateOrganization(ctx context.Context, org *models.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockStorage) UpdateOrganization(ctx context.Context, org *models.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockStorage) TrackingIDExists(ctx context.Context, trackingID string) (bool, error) {
	args := m.Called(ctx, trackingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) CreateComplaintWithMapping(ctx context.Context, complaint *models.Complaint, filerID string, ttl *time.Duration) error {
	args := m.Called(ctx, complaint, filerID, ttl)
	return args.Error(0)
}

func (m *MockStorage) GetComplaintByTracking(ctx context.Context, trackingID string) (*models.Complaint, error) {
	args := m.Called(ctx, trackingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) GetComplaintByID(ctx context.Context, id uint, scope tenant.Scope) (*models.Complaint, error) {
	args := m.Called(ctx, id, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Complaint), args.Error(1)
}

func (m *MockStorage) ListComplaints(ctx context.Context, scope tenant.Scope, filter storage.ComplaintFilter) ([]models.Complaint, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) ListComplaintsByTrackingIDs(ctx context.Context, trackingIDs []string) ([]models.Complaint, error) {
	args := m.Called(ctx, trackingIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Complaint), args.Error(1)
}

func (m *MockStorage) UpdateComplaintStatus(ctx context.Context, complaint *models.Complaint, entry models.StatusEntry) error {
	args := m.Called(ctx, complaint, entry)
	return args.Error(0)
}

func (m *MockStorage) AddAdminNote(ctx context.Context, complaintID uint, note models.AdminNote) error {
	args := m.Called(ctx, complaintID, note)
	return args.Error(0)
}

func (m *MockStorage) MarkIdentityRevealed(ctx context.Context, complaintID uint, actorID string, at time.Time) error {
	args := m.Called(ctx, complaintID, actorID, at)
	return args.Error(0)
}

func (m *MockStorage) VerifyOwnership(ctx context.Context, trackingID, userID string) (bool, error) {
	args := m.Called(ctx, trackingID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetIdentityWithLogging(ctx context.Context, trackingID, actorID, reason, ipAddress string) (string, error) {
	args := m.Called(ctx, trackingID, actorID, reason, ipAddress)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) ListTrackingIDsForUser(ctx context.Context, scope tenant.Scope, userID string) ([]string, error) {
	args := m.Called(ctx, scope, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) PurgeExpiredMappings(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) FindUnmappedTrackingIDs(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockStorage) GetChatHistory(ctx context.Context, trackingID string, limit int) ([]models.ChatMessage, error) {
	args := m.Called(ctx, trackingID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

func (m *MockStorage) MarkMessagesRead(ctx context.Context, trackingID, readerRole string) error {
	args := m.Called(ctx, trackingID, readerRole)
	return args.Error(0)
}

func (m *MockStorage) UnreadCount(ctx context.Context, trackingID, forRole string) (int64, error) {
	args := m.Called(ctx, trackingID, forRole)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) PublishRoomEvent(ctx context.Context, broadcast models.RoomBroadcast) error {
	args := m.Called(ctx, broadcast)
	return args.Error(0)
}

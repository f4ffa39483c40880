package complaint_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"voisafe/backend/internal/apperr"
	"voisafe/backend/internal/complaint"
	"voisafe/backend/internal/models"
	"voisafe/backend/internal/storage"
	"voisafe/backend/internal/tenant"
	"voisafe/backend/internal/tracking"
)

func newStudent() *models.User {
	return &models.User{
		ID:      "student-1",
		Name:    "Test Student",
		Role:    models.RoleStudent,
		OrgID:   "org-1",
		College: "Test College",
	}
}

func newAdmin() *models.User {
	return &models.User{
		ID:      "admin-1",
		Name:    "Test Admin",
		Role:    models.RoleAdmin,
		OrgID:   "org-1",
		College: "Test College",
	}
}

func activeOrg() *models.Organization {
	return &models.Organization{ID: "org-1", Name: "Test College", Slug: "test-college", Status: models.OrgStatusActive}
}

func validFileRequest() complaint.FileRequest {
	return complaint.FileRequest{
		Title:       "Broken dorm heating",
		Description: "The heating in dorm block C has been broken for two weeks now.",
		Category:    models.CategoryInfrastructure,
	}
}

func TestFileComplaint_Anonymous(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)
	student := newStudent()

	storageMock.On("GetOrganizationByID", mock.Anything, "org-1").Return(activeOrg(), nil)
	storageMock.On("TrackingIDExists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
	storageMock.On("CreateComplaintWithMapping", mock.Anything, mock.AnythingOfType("*models.Complaint"), "student-1", mock.Anything).Return(nil)

	record, err := svc.FileComplaint(context.Background(), student, validFileRequest())
	require.NoError(t, err)

	assert.Len(t, record.TrackingID, tracking.Length)
	assert.True(t, tracking.IsValidFormat(record.TrackingID))
	assert.Equal(t, models.StatusPending, record.Status)
	assert.Equal(t, "org-1", record.OrgID)

	// The identity travels only as the mapping-store argument, never on the
	// complaint record itself.
	assert.NotContains(t, fmt.Sprintf("%+v", *record), "student-1")
	storageMock.AssertCalled(t, "CreateComplaintWithMapping", mock.Anything, mock.AnythingOfType("*models.Complaint"), "student-1", mock.Anything)
}

func TestFileComplaint_RetriesOnCollision(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)

	storageMock.On("GetOrganizationByID", mock.Anything, "org-1").Return(activeOrg(), nil)
	storageMock.On("TrackingIDExists", mock.Anything, mock.AnythingOfType("string")).Return(true, nil).Twice()
	storageMock.On("TrackingIDExists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Once()
	storageMock.On("CreateComplaintWithMapping", mock.Anything, mock.Anything, "student-1", mock.Anything).Return(nil)

	_, err := svc.FileComplaint(context.Background(), newStudent(), validFileRequest())
	require.NoError(t, err)
	storageMock.AssertNumberOfCalls(t, "TrackingIDExists", 3)
}

func TestFileComplaint_RoleGate(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)

	_, err := svc.FileComplaint(context.Background(), newAdmin(), validFileRequest())
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	storageMock.AssertNotCalled(t, "CreateComplaintWithMapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFileComplaint_Validation(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("GetOrganizationByID", mock.Anything, "org-1").Return(activeOrg(), nil)
	svc := complaint.NewService(storageMock)

	cases := map[string]complaint.FileRequest{
		"missing title":       {Description: validFileRequest().Description, Category: models.CategoryOther},
		"short title":         {Title: "Bad", Description: validFileRequest().Description, Category: models.CategoryOther},
		"short description":   {Title: "Valid title", Description: "too short", Category: models.CategoryOther},
		"unknown category":    {Title: "Valid title", Description: validFileRequest().Description, Category: "gossip"},
		"overlong title":      {Title: strings.Repeat("x", 201), Description: validFileRequest().Description, Category: models.CategoryOther},
		"overlong descr":      {Title: "Valid title", Description: strings.Repeat("x", 5001), Category: models.CategoryOther},
	}
	for name, req := range cases {
		_, err := svc.FileComplaint(context.Background(), newStudent(), req)
		assert.ErrorIs(t, err, apperr.ErrValidation, name)
	}
	storageMock.AssertNotCalled(t, "CreateComplaintWithMapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFileComplaint_SuspendedOrg(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)

	suspended := activeOrg()
	suspended.Status = models.OrgStatusSuspended
	storageMock.On("GetOrganizationByID", mock.Anything, "org-1").Return(suspended, nil)

	_, err := svc.FileComplaint(context.Background(), newStudent(), validFileRequest())
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestFileComplaint_RestrictedCategories(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)

	restricted := activeOrg()
	restricted.AllowedCategories = pq.StringArray{models.CategorySafety, models.CategoryOther}
	storageMock.On("GetOrganizationByID", mock.Anything, "org-1").Return(restricted, nil)
	storageMock.On("TrackingIDExists", mock.Anything, mock.AnythingOfType("string")).Return(false, nil)
	storageMock.On("CreateComplaintWithMapping", mock.Anything, mock.Anything, "student-1", mock.Anything).Return(nil)

	// Infrastructure is not on the tenant's list.
	_, err := svc.FileComplaint(context.Background(), newStudent(), validFileRequest())
	assert.ErrorIs(t, err, apperr.ErrValidation)
	storageMock.AssertNotCalled(t, "CreateComplaintWithMapping", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// A listed category goes through.
	req := validFileRequest()
	req.Category = models.CategorySafety
	_, err = svc.FileComplaint(context.Background(), newStudent(), req)
	require.NoError(t, err)
}

func TestGetByTracking_OwnershipGate(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)
	trackingID := "Abc123XYZ789"

	record := &models.Complaint{TrackingID: trackingID, Status: models.StatusPending}
	storageMock.On("GetComplaintByTracking", mock.Anything, trackingID).Return(record, nil)
	storageMock.On("VerifyOwnership", mock.Anything, trackingID, "student-1").Return(true, nil)

	got, err := svc.GetByTracking(context.Background(), newStudent(), trackingID)
	require.NoError(t, err)
	assert.Equal(t, trackingID, got.TrackingID)
}

func TestGetByTracking_NotOwner(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)
	trackingID := "Abc123XYZ789"

	storageMock.On("GetComplaintByTracking", mock.Anything, trackingID).Return(&models.Complaint{TrackingID: trackingID}, nil)
	storageMock.On("VerifyOwnership", mock.Anything, trackingID, "student-1").Return(false, nil)

	_, err := svc.GetByTracking(context.Background(), newStudent(), trackingID)
	assert.ErrorIs(t, err, apperr.ErrAccessDenied)
}

func TestGetByTracking_MalformedID(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)

	_, err := svc.GetByTracking(context.Background(), newStudent(), "not-valid!")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	storageMock.AssertNotCalled(t, "GetComplaintByTracking", mock.Anything, mock.Anything)
}

func TestListForTenant_Scoped(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)

	wantScope := tenant.Scope{OrgID: "org-1"}
	storageMock.On("ListComplaints", mock.Anything, wantScope, storage.ComplaintFilter{Status: models.StatusPending}).
		Return([]models.Complaint{{TrackingID: "Abc123XYZ789"}}, nil)

	got, err := svc.ListForTenant(context.Background(), newAdmin(), storage.ComplaintFilter{Status: models.StatusPending})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestListForTenant_NoTenantFailsClosed(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)

	orphan := newAdmin()
	orphan.OrgID = ""
	orphan.College = ""

	_, err := svc.ListForTenant(context.Background(), orphan, storage.ComplaintFilter{})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	storageMock.AssertNotCalled(t, "ListComplaints", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_FreeTransitions(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)
	admin := newAdmin()

	// Reopening a closed complaint is allowed: the history records it.
	closed := &models.Complaint{TrackingID: "Abc123XYZ789", Status: models.StatusClosed, OrgID: "org-1"}
	storageMock.On("GetOrganizationByID", mock.Anything, "org-1").Return(activeOrg(), nil)
	storageMock.On("GetComplaintByID", mock.Anything, uint(7), tenant.Scope{OrgID: "org-1"}).Return(closed, nil)
	storageMock.On("UpdateComplaintStatus", mock.Anything, closed, mock.MatchedBy(func(e models.StatusEntry) bool {
		return e.Status == models.StatusPending && e.ChangedBy == admin.ID
	})).Return(nil)

	_, err := svc.UpdateStatus(context.Background(), admin, 7, models.StatusPending, "reopening after new evidence")
	require.NoError(t, err)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)

	_, err := svc.UpdateStatus(context.Background(), newAdmin(), 7, "escalated-to-dean", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRevealIdentity_CommitteeAdminForbidden(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)

	committee := newAdmin()
	committee.Role = models.RoleCommitteeAdmin

	_, err := svc.RevealIdentity(context.Background(), committee, 7, "a perfectly good governance reason", "10.0.0.1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// The role gate fires before anything touches the mapping store.
	storageMock.AssertNotCalled(t, "GetIdentityWithLogging", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	storageMock.AssertNotCalled(t, "GetComplaintByID", mock.Anything, mock.Anything, mock.Anything)
}

func TestRevealIdentity_ShortReason(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)

	_, err := svc.RevealIdentity(context.Background(), newAdmin(), 7, "because", "10.0.0.1")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	storageMock.AssertNotCalled(t, "GetIdentityWithLogging", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRevealIdentity_OtherTenantLooksMissing(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)
	admin := newAdmin()

	// The scoped load answers NotFound for a complaint belonging to another
	// organization; the admin cannot even tell it exists.
	storageMock.On("GetComplaintByID", mock.Anything, uint(7), tenant.Scope{OrgID: "org-1"}).
		Return(nil, fmt.Errorf("storage: complaint 7: %w", apperr.ErrNotFound))

	_, err := svc.RevealIdentity(context.Background(), admin, 7, "investigating a safety threat", "10.0.0.1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	storageMock.AssertNotCalled(t, "GetIdentityWithLogging", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRevealIdentity_Succeeds(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)
	admin := newAdmin()
	trackingID := "Abc123XYZ789"

	record := &models.Complaint{TrackingID: trackingID, OrgID: "org-1"}
	record.ID = 7
	student := newStudent()

	storageMock.On("GetComplaintByID", mock.Anything, uint(7), tenant.Scope{OrgID: "org-1"}).Return(record, nil)
	storageMock.On("GetIdentityWithLogging", mock.Anything, trackingID, admin.ID, "investigating a safety threat", "10.0.0.1").
		Return("student-1", nil)
	storageMock.On("GetUserByID", mock.Anything, "student-1").Return(student, nil)
	storageMock.On("MarkIdentityRevealed", mock.Anything, uint(7), admin.ID, mock.AnythingOfType("time.Time")).Return(nil)

	result, err := svc.RevealIdentity(context.Background(), admin, 7, "investigating a safety threat", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "student-1", result.Student.ID)
	assert.Equal(t, trackingID, result.TrackingID)
	assert.Equal(t, "investigating a safety threat", result.Reason)

	storageMock.AssertCalled(t, "MarkIdentityRevealed", mock.Anything, uint(7), admin.ID, mock.AnythingOfType("time.Time"))
}

func TestAuthorizeChat_StudentMustOwn(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)
	trackingID := "Abc123XYZ789"

	record := &models.Complaint{TrackingID: trackingID, OrgID: "org-1"}
	storageMock.On("GetComplaintByTracking", mock.Anything, trackingID).Return(record, nil)
	storageMock.On("VerifyOwnership", mock.Anything, trackingID, "student-1").Return(false, nil)

	err := svc.AuthorizeChat(context.Background(), newStudent(), trackingID)
	assert.ErrorIs(t, err, apperr.ErrAccessDenied)
}

func TestAuthorizeChat_TenantMismatch(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)
	trackingID := "Abc123XYZ789"

	record := &models.Complaint{TrackingID: trackingID, OrgID: "org-2"}
	storageMock.On("GetComplaintByTracking", mock.Anything, trackingID).Return(record, nil)

	err := svc.AuthorizeChat(context.Background(), newAdmin(), trackingID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestAuthorizeChat_AdminOfTenant(t *testing.T) {
	storageMock := new(MockStorage)
	svc := complaint.NewService(storageMock)
	trackingID := "Abc123XYZ789"

	record := &models.Complaint{TrackingID: trackingID, OrgID: "org-1"}
	storageMock.On("GetComplaintByTracking", mock.Anything, trackingID).Return(record, nil)

	err := svc.AuthorizeChat(context.Background(), newAdmin(), trackingID)
	assert.NoError(t, err)
	// Admins are gated by tenant, not by ownership.
	storageMock.AssertNotCalled(t, "VerifyOwnership", mock.Anything, mock.Anything, mock.Anything)
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// Complaint statuses. The lifecycle is pending → under-review → in-progress →
// resolved → closed, but transitions are not restricted: any status may follow
// any other, and every change is recorded in the status history.
const (
	StatusPending     = "pending"
	StatusUnderReview = "under-review"
	StatusInProgress  = "in-progress"
	StatusResolved    = "resolved"
	StatusClosed      = "closed"
)

// Complaint categories (closed set).
const (
	CategoryHarassment         = "harassment"
	CategoryDiscrimination     = "discrimination"
	CategoryAcademicMisconduct = "academic-misconduct"
	CategoryInfrastructure     = "infrastructure"
	CategorySafety             = "safety"
	CategoryAdministration     = "administration"
	CategoryOther              = "other"
)

// Complaint priorities, admin-settable.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// ValidStatuses, ValidCategories and ValidPriorities are the closed enums
// accepted by the lifecycle engine.
var (
	ValidStatuses = map[string]bool{
		StatusPending: true, StatusUnderReview: true, StatusInProgress: true,
		StatusResolved: true, StatusClosed: true,
	}
	ValidCategories = map[string]bool{
		CategoryHarassment: true, CategoryDiscrimination: true,
		CategoryAcademicMisconduct: true, CategoryInfrastructure: true,
		CategorySafety: true, CategoryAdministration: true, CategoryOther: true,
	}
	ValidPriorities = map[string]bool{
		PriorityLow: true, PriorityMedium: true, PriorityHigh: true, PriorityUrgent: true,
	}
)

// Complaint зберігає зміст скарги. КРИТИЧНО: запис не містить жодного поля з
// ідентичністю студента — єдиним посиланням є TrackingID, який нічого не
// означає без окремого сховища відповідностей (ComplaintTracking).
type Complaint struct {
	gorm.Model

	// TrackingID is the student's only reference to their complaint.
	// Unique, immutable, never derived from user id or time.
	TrackingID string `gorm:"uniqueIndex;not null" json:"trackingId"`

	Title       string `gorm:"type:text;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	Category    string `gorm:"type:text;not null;index:idx_org_category" json:"category"`
	Priority    string `gorm:"type:text;not null;default:medium" json:"priority"`
	Status      string `gorm:"type:text;not null;default:pending;index:idx_org_status" json:"status"`

	// Tenant scope. OrgID is preferred; College is the legacy name.
	OrgID   string `gorm:"type:text;index:idx_org_status;index:idx_org_category" json:"orgId"`
	College string `gorm:"type:text;index" json:"college"`

	Attachments   []Attachment  `gorm:"foreignKey:ComplaintID" json:"attachments,omitempty"`
	AdminNotes    []AdminNote   `gorm:"foreignKey:ComplaintID" json:"adminNotes,omitempty"`
	StatusHistory []StatusEntry `gorm:"foreignKey:ComplaintID" json:"statusHistory,omitempty"`

	// Identity revelation marker. Once true it stays true; repeated reveals
	// add access-log entries but never flip it back.
	IdentityRevealed   bool       `gorm:"default:false" json:"identityRevealed"`
	IdentityRevealedBy string     `gorm:"type:text" json:"identityRevealedBy,omitempty"`
	IdentityRevealedAt *time.Time `json:"identityRevealedAt,omitempty"`
}

// IsActive reports whether the complaint is still open.
func (c *Complaint) IsActive() bool {
	return c.Status != StatusResolved && c.Status != StatusClosed
}

// Attachment holds file metadata only; the file itself lives elsewhere.
type Attachment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ComplaintID uint      `gorm:"not null;index" json:"-"`
	Filename    string    `gorm:"type:text" json:"filename"`
	URL         string    `gorm:"type:text" json:"url"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// AdminNote is visible to admins only. The author is always an admin identity;
// admins are not anonymous.
type AdminNote struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ComplaintID uint      `gorm:"not null;index" json:"-"`
	Note        string    `gorm:"type:text;not null" json:"note"`
	AddedBy     string    `gorm:"type:text;not null" json:"addedBy"`
	AddedAt     time.Time `json:"addedAt"`
}

// StatusEntry is one row of the append-only status audit trail. Never pruned.
type StatusEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ComplaintID uint      `gorm:"not null;index" json:"-"`
	Status      string    `gorm:"type:text;not null" json:"status"`
	ChangedBy   string    `gorm:"type:text;not null" json:"changedBy"`
	ChangedAt   time.Time `json:"changedAt"`
	Comment     string    `gorm:"type:text" json:"comment,omitempty"`
}

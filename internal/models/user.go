package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles known to the platform. Students file complaints anonymously; admins
// manage them for their own organization; committee admins are a limited tier
// that can never reveal identities; the super admin operates the platform.
const (
	RoleStudent        = "student"
	RoleAdmin          = "admin"
	RoleCommitteeAdmin = "committee-admin"
	RoleSuperAdmin     = "super-admin"
)

// User представляє обліковий запис у системі. Студенти подають скарги
// анонімно — їхній ID ніколи не потрапляє у запис скарги.
type User struct {
	ID           string `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"type:text;not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"type:text;not null" json:"-"`
	Role         string `gorm:"type:text;not null;default:student;index:idx_org_role" json:"role"`

	// OrgID links the user to their Organization (tenant). College is the
	// legacy free-text institution name kept for records that predate
	// organizations; tenant scoping prefers OrgID.
	OrgID   string `gorm:"type:text;index:idx_org_role" json:"orgId"`
	College string `gorm:"type:text" json:"college"`

	// Student-specific fields, empty for admins.
	StudentID  string `gorm:"type:text" json:"studentId,omitempty"`
	Department string `gorm:"type:text" json:"department,omitempty"`
	Year       int    `json:"year,omitempty"`

	IsActive   bool `gorm:"default:true" json:"isActive"`
	IsVerified bool `gorm:"default:false" json:"isVerified"`

	LastLogin *time.Time `json:"lastLogin,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate — це хук GORM, який генерує UUID, якщо ID ще не встановлено.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// IsAdminTier reports whether the user holds any administrative role.
func (u *User) IsAdminTier() bool {
	return u.Role == RoleAdmin || u.Role == RoleCommitteeAdmin || u.Role == RoleSuperAdmin
}

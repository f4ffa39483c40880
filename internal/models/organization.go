package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // Необхідний для pq.StringArray
	"gorm.io/gorm"
)

// Organization statuses. Only active organizations may file or manage
// complaints; suspended and inactive tenants are locked out entirely.
const (
	OrgStatusActive    = "active"
	OrgStatusInactive  = "inactive"
	OrgStatusSuspended = "suspended"
)

// Organization is the root tenant entity: one college/institution.
// The slug identifies the tenant in URLs (e.g. harvard.voisafe.example).
type Organization struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"type:text;not null" json:"name"`
	Slug string `gorm:"uniqueIndex;not null" json:"slug"`

	// Domain is the optional custom domain; unique when present.
	Domain string `gorm:"type:text" json:"domain,omitempty"`

	ContactEmail string `gorm:"type:text" json:"contactEmail,omitempty"`
	Address      string `gorm:"type:text" json:"address,omitempty"`

	Status     string `gorm:"type:text;not null;default:active" json:"status"`
	IsVerified bool   `gorm:"default:false" json:"isVerified"`

	// Settings.
	AllowPublicRegistration bool           `gorm:"default:true" json:"allowPublicRegistration"`
	AllowedCategories       pq.StringArray `gorm:"type:text[]" json:"allowedCategories,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate генерує UUID для організації, якщо ID ще не встановлено.
func (o *Organization) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return
}

// CanOperate reports whether members of this tenant may file or manage
// complaints right now.
func (o *Organization) CanOperate() bool {
	return o.Status == OrgStatusActive
}

// CategoryAllowed reports whether the tenant accepts complaints in the given
// category. An empty list means the organization never restricted the set, so
// every category is open.
func (o *Organization) CategoryAllowed(category string) bool {
	if len(o.AllowedCategories) == 0 {
		return true
	}
	for _, allowed := range o.AllowedCategories {
		if allowed == category {
			return true
		}
	}
	return false
}

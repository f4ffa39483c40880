package models

import "time"

// ComplaintTracking — шар розв'язки ідентичності. Це ЄДИНЕ місце, де існує
// зв'язок trackingId ↔ студент, і ідентифікатор студента зберігається тут
// лише у зашифрованому вигляді (AES-256, свіжий IV на запис). Компрометація
// цієї таблиці без ключа процесу не розкриває жодної особи.
type ComplaintTracking struct {
	ID uint `gorm:"primaryKey" json:"-"`

	// TrackingID links to the Complaint row; unique and immutable.
	TrackingID string `gorm:"uniqueIndex;not null" json:"trackingId"`

	// EncryptedUserID is the iv:cipherhex blob produced by the cipher service.
	EncryptedUserID string `gorm:"type:text;not null" json:"-"`

	// Tenant scope.
	OrgID   string `gorm:"type:text;index" json:"orgId"`
	College string `gorm:"type:text;index" json:"college"`

	// ExpiresAt, when set, makes the mapping eligible for the purge sweep.
	// Purging severs the identity link permanently; the complaint survives.
	ExpiresAt *time.Time `gorm:"index" json:"expiresAt,omitempty"`

	AccessLog []IdentityAccessLog `gorm:"foreignKey:TrackingID;references:TrackingID" json:"accessLog,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// IdentityAccessLog is the append-only audit trail of identity disclosures.
// An entry is written for every reveal attempt, before the decrypted identity
// leaves the mapping store — including attempts that subsequently fail.
type IdentityAccessLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TrackingID string    `gorm:"not null;index" json:"trackingId"`
	AccessedBy string    `gorm:"type:text;not null" json:"accessedBy"`
	AccessedAt time.Time `json:"accessedAt"`
	Reason     string    `gorm:"type:text" json:"reason"`
	IPAddress  string    `gorm:"type:text" json:"ipAddress"`
}

package models

import "time"

// Sender roles and message types for the anonymous complaint chat.
const (
	SenderSystem = "system"

	MessageTypeText   = "text"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// MaxChatMessageLength is the message cap in characters (runes, not bytes),
// enforced before persistence.
const MaxChatMessageLength = 2000

// ChatMessage represents a saved chat message in the PostgreSQL database.
// Для повідомлень студента жодне поле не містить його ідентичності: відправник
// визначається лише роллю. Для адмінів AdminID зберігається — адміни не анонімні.
type ChatMessage struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// TrackingID is the room key: messages belong to a complaint, never to a user.
	TrackingID string `gorm:"not null;index:idx_tracking_created" json:"trackingId"`

	// SenderRole is student/admin/committee-admin/system.
	SenderRole string `gorm:"type:text;not null;index:idx_unread" json:"senderRole"`

	// AdminID is set only for admin-authored messages.
	AdminID string `gorm:"type:text" json:"adminId,omitempty"`

	Message     string `gorm:"type:text;not null" json:"message"`
	MessageType string `gorm:"type:text;not null;default:text" json:"messageType"`

	IsRead bool       `gorm:"default:false;index:idx_unread" json:"isRead"`
	ReadAt *time.Time `json:"readAt,omitempty"`

	// Tenant scope.
	OrgID   string `gorm:"type:text;index" json:"orgId"`
	College string `gorm:"type:text" json:"college"`

	CreatedAt time.Time `gorm:"index:idx_tracking_created" json:"createdAt"`
}

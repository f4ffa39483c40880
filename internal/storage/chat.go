package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"voisafe/backend/internal/apperr"
	"voisafe/backend/internal/models"
)

// roomChannel is the Redis pub/sub channel prefix for chat rooms.
const roomChannel = "chat:room:"

// SaveChatMessage validates and persists one chat message. The 2000-character
// cap is enforced here, before anything touches the database. Student
// messages must never carry an identity: AdminID is stripped for them no
// matter what the caller filled in.
func (s *Service) SaveChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if len(msg.Message) == 0 {
		return fmt.Errorf("storage: empty chat message: %w", apperr.ErrValidation)
	}
	if utf8.RuneCountInString(msg.Message) > models.MaxChatMessageLength {
		return fmt.Errorf("storage: chat message exceeds %d characters: %w", models.MaxChatMessageLength, apperr.ErrValidation)
	}
	if msg.SenderRole == models.RoleStudent {
		msg.AdminID = ""
	}
	if msg.MessageType == "" {
		msg.MessageType = models.MessageTypeText
	}
	return s.DB.WithContext(ctx).Create(msg).Error
}

// GetChatHistory отримує історію повідомлень для кімнати, найстаріші першими.
func (s *Service) GetChatHistory(ctx context.Context, trackingID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var history []models.ChatMessage
	err := s.DB.WithContext(ctx).
		Where("tracking_id = ?", trackingID).
		Order("created_at ASC").
		Limit(limit).
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}

// MarkMessagesRead marks everything sent by the opposite side as read.
func (s *Service) MarkMessagesRead(ctx context.Context, trackingID, readerRole string) error {
	now := time.Now()
	return s.DB.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("tracking_id = ? AND is_read = ?", trackingID, false).
		Where("sender_role IN ?", oppositeRoles(readerRole)).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

// UnreadCount counts unread messages from the opposite side.
func (s *Service) UnreadCount(ctx context.Context, trackingID, forRole string) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.ChatMessage{}).
		Where("tracking_id = ? AND is_read = ?", trackingID, false).
		Where("sender_role IN ?", oppositeRoles(forRole)).
		Count(&count).Error
	return count, err
}

// PublishRoomEvent публікує подію кімнати в Redis Pub/Sub, щоб кожен
// екземпляр сервера міг розіслати її своїм локальним клієнтам.
func (s *Service) PublishRoomEvent(ctx context.Context, broadcast models.RoomBroadcast) error {
	payload, err := json.Marshal(broadcast)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, roomChannel+broadcast.Room, payload).Err()
}

// SubscribeRooms subscribes to every room channel (pattern subscription) and
// decodes the broadcasts; the channel closes when ctx is cancelled.
func (s *Service) SubscribeRooms(ctx context.Context) <-chan models.RoomBroadcast {
	pubsub := s.Redis.PSubscribe(ctx, roomChannel+"*")
	out := make(chan models.RoomBroadcast)
	go func() {
		defer pubsub.Close()
		defer close(out)
		for msg := range pubsub.Channel() {
			var broadcast models.RoomBroadcast
			if err := json.Unmarshal([]byte(msg.Payload), &broadcast); err != nil {
				log.Printf("ERROR: undecodable room broadcast on %s: %v", msg.Channel, err)
				continue
			}
			out <- broadcast
		}
	}()
	return out
}

// oppositeRoles returns the sender roles considered "the other side" of the
// conversation for a reader role.
func oppositeRoles(role string) []string {
	if role == models.RoleStudent {
		return []string{models.RoleAdmin, models.RoleCommitteeAdmin, models.SenderSystem}
	}
	return []string{models.RoleStudent}
}

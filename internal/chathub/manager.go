// Package chathub runs the real-time side of the anonymous complaint chat.
// Rooms are keyed by tracking ID, participants by role — a student in a room
// is never identified by anything but "student". Cross-instance delivery goes
// through Redis pub/sub; the hub fans broadcasts out to its local clients.
package chathub

import (
	"context"
	"log"
	"time"
	"unicode/utf8"

	"voisafe/backend/internal/apperr"
	"voisafe/backend/internal/complaint"
	"voisafe/backend/internal/models"
	"voisafe/backend/internal/obs"
	"voisafe/backend/internal/storage"
)

// RoomSubscriber delivers room broadcasts published by any server instance.
type RoomSubscriber interface {
	SubscribeRooms(ctx context.Context) <-chan models.RoomBroadcast
}

// ManagerService is the hub goroutine: it owns the client registry and room
// state, and serializes all access to them through its channels.
type ManagerService struct {
	Clients map[string]Client // keyed by session id

	RegisterCh   chan Client
	UnregisterCh chan Client
	IncomingCh   chan Inbound

	Storage    storage.Storage
	Complaints *complaint.Service
	Subscriber RoomSubscriber
}

// NewManagerService wires the hub to storage and the lifecycle engine.
func NewManagerService(s storage.Storage, svc *complaint.Service, sub RoomSubscriber) *ManagerService {
	return &ManagerService{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		IncomingCh:   make(chan Inbound, 64),
		Storage:      s,
		Complaints:   svc,
		Subscriber:   sub,
	}
}

// Run is the hub's main loop. All client registry mutations happen here.
func (m *ManagerService) Run(ctx context.Context) {
	log.Println("Chat hub started.")
	broadcasts := m.Subscriber.SubscribeRooms(ctx)

	for {
		select {
		case client := <-m.RegisterCh:
			m.Clients[client.SessionID()] = client
			log.Printf("INFO: chat client registered (session %s, role %s)", client.SessionID(), client.Actor().Role)

		case client := <-m.UnregisterCh:
			m.dropClient(client)

		case in := <-m.IncomingCh:
			// A dropped client's send channel is already closed; events it
			// queued before the drop must not be answered.
			if _, ok := m.Clients[in.Client.SessionID()]; !ok {
				continue
			}
			m.handleEvent(ctx, in)

		case b, ok := <-broadcasts:
			if !ok {
				log.Println("WARNING: room broadcast subscription closed")
				return
			}
			m.fanOut(b)

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent dispatches one inbound client event.
func (m *ManagerService) handleEvent(ctx context.Context, in Inbound) {
	switch in.Event.Event {
	case models.EventJoinChat:
		m.handleJoin(ctx, in)
	case models.EventSendMessage:
		m.handleSend(ctx, in)
	case models.EventTyping:
		m.handleTyping(ctx, in)
	case models.EventLeaveChat:
		m.handleLeave(ctx, in)
	default:
		m.sendError(in.Client, "Unknown event")
	}
}

func (m *ManagerService) handleJoin(ctx context.Context, in Inbound) {
	trackingID := in.Event.TrackingID
	if trackingID == "" {
		m.sendError(in.Client, "Tracking ID is required")
		return
	}

	actor := in.Client.Actor()
	if err := m.Complaints.AuthorizeChat(ctx, actor, trackingID); err != nil {
		log.Printf("INFO: chat join refused for session %s: %v", in.Client.SessionID(), err)
		m.sendError(in.Client, joinRefusalMessage(err))
		return
	}

	room := RoomName(trackingID)
	in.Client.SetRoom(room)

	history, err := m.Storage.GetChatHistory(ctx, trackingID, 100)
	if err != nil {
		m.sendError(in.Client, "Failed to load chat history")
		return
	}
	if err := m.Storage.MarkMessagesRead(ctx, trackingID, actor.Role); err != nil {
		log.Printf("ERROR: marking messages read for %s: %v", trackingID, err)
	}
	unread, err := m.Storage.UnreadCount(ctx, trackingID, actor.Role)
	if err != nil {
		log.Printf("ERROR: counting unread for %s: %v", trackingID, err)
	}

	m.send(in.Client, models.ChatEvent{
		Event:       models.EventChatHistory,
		TrackingID:  trackingID,
		Messages:    history,
		UnreadCount: unread,
	})

	now := time.Now()
	m.publish(ctx, models.RoomBroadcast{
		Room:           room,
		ExcludeSession: in.Client.SessionID(),
		Event: models.ChatEvent{
			Event:      models.EventUserJoined,
			TrackingID: trackingID,
			SenderRole: actor.Role,
			CreatedAt:  &now,
		},
	})
}

func (m *ManagerService) handleSend(ctx context.Context, in Inbound) {
	trackingID := in.Event.TrackingID
	actor := in.Client.Actor()

	if trackingID == "" || in.Event.Message == "" {
		m.sendError(in.Client, "Tracking ID and message are required")
		return
	}
	// Length gate before anything is persisted. Counted in characters, not
	// bytes — Cyrillic text is 2 bytes per letter in UTF-8.
	if utf8.RuneCountInString(in.Event.Message) > models.MaxChatMessageLength {
		m.sendError(in.Client, "Message too long (max 2000 characters)")
		return
	}

	// A client that skipped join_chat gets re-checked here; room membership
	// implies the authorization already happened.
	if in.Client.Room() != RoomName(trackingID) {
		if err := m.Complaints.AuthorizeChat(ctx, actor, trackingID); err != nil {
			m.sendError(in.Client, joinRefusalMessage(err))
			return
		}
	}

	record, err := m.Complaints.Storage.GetComplaintByTracking(ctx, trackingID)
	if err != nil {
		m.sendError(in.Client, "Complaint not found")
		return
	}

	msg := models.ChatMessage{
		TrackingID:  trackingID,
		SenderRole:  actor.Role,
		Message:     in.Event.Message,
		MessageType: models.MessageTypeText,
		OrgID:       record.OrgID,
		College:     record.College,
	}
	if actor.Role != models.RoleStudent {
		msg.AdminID = actor.ID
	}
	if err := m.Storage.SaveChatMessage(ctx, &msg); err != nil {
		m.sendError(in.Client, "Failed to save message")
		return
	}
	obs.ChatMessages.Inc()

	out := models.ChatEvent{
		Event:      models.EventMessageReceived,
		TrackingID: trackingID,
		MessageID:  msg.ID,
		Message:    msg.Message,
		SenderRole: msg.SenderRole,
		CreatedAt:  &msg.CreatedAt,
	}
	// Admins are not anonymous; students are identified by role only.
	if actor.Role != models.RoleStudent {
		out.SenderName = actor.Name
	}

	// Everyone in the room, sender included.
	m.publish(ctx, models.RoomBroadcast{Room: RoomName(trackingID), Event: out})
}

func (m *ManagerService) handleTyping(ctx context.Context, in Inbound) {
	if in.Event.TrackingID == "" {
		return
	}
	room := RoomName(in.Event.TrackingID)
	if in.Client.Room() != room {
		return
	}
	m.publish(ctx, models.RoomBroadcast{
		Room:           room,
		ExcludeSession: in.Client.SessionID(),
		Event: models.ChatEvent{
			Event:      models.EventUserTyping,
			TrackingID: in.Event.TrackingID,
			SenderRole: in.Client.Actor().Role,
			IsTyping:   in.Event.IsTyping,
		},
	})
}

func (m *ManagerService) handleLeave(ctx context.Context, in Inbound) {
	room := in.Client.Room()
	if room == "" {
		return
	}
	in.Client.SetRoom("")

	now := time.Now()
	m.publish(ctx, models.RoomBroadcast{
		Room:           room,
		ExcludeSession: in.Client.SessionID(),
		Event: models.ChatEvent{
			Event:      models.EventUserLeft,
			TrackingID: TrackingIDFromRoom(room),
			SenderRole: in.Client.Actor().Role,
			CreatedAt:  &now,
		},
	})
}

// fanOut delivers a broadcast to every local client in the room.
func (m *ManagerService) fanOut(b models.RoomBroadcast) {
	for _, client := range m.Clients {
		if client.Room() != b.Room {
			continue
		}
		if b.ExcludeSession != "" && client.SessionID() == b.ExcludeSession {
			continue
		}
		select {
		case client.SendChannel() <- b.Event:
		default:
			// Slow consumer: drop the connection rather than block the hub.
			m.dropClient(client)
		}
	}
}

// publish hands an event to Redis; it comes back through fanOut on every
// instance, including this one.
func (m *ManagerService) publish(ctx context.Context, b models.RoomBroadcast) {
	if err := m.Storage.PublishRoomEvent(ctx, b); err != nil {
		log.Printf("ERROR: publishing room event to %s: %v", b.Room, err)
	}
}

func (m *ManagerService) dropClient(client Client) {
	if _, ok := m.Clients[client.SessionID()]; !ok {
		return
	}
	delete(m.Clients, client.SessionID())
	client.Close()
	log.Printf("INFO: chat client unregistered (session %s)", client.SessionID())
}

func (m *ManagerService) send(client Client, event models.ChatEvent) {
	// Only registered clients have an open send channel.
	if _, ok := m.Clients[client.SessionID()]; !ok {
		return
	}
	select {
	case client.SendChannel() <- event:
	default:
		m.dropClient(client)
	}
}

func (m *ManagerService) sendError(client Client, message string) {
	m.send(client, models.ChatEvent{Event: models.EventError, Message: message})
}

// joinRefusalMessage maps internal errors to the safe client-facing text.
func joinRefusalMessage(err error) string {
	switch {
	case apperr.IsNotFound(err):
		return "Complaint not found"
	case apperr.IsValidation(err):
		return "Invalid tracking ID"
	default:
		return "Access denied"
	}
}

package chathub

import "voisafe/backend/internal/models"

// RoomPrefix keys chat rooms by complaint: "complaint_" + trackingID.
const RoomPrefix = "complaint_"

// RoomName returns the room key for a tracking ID.
func RoomName(trackingID string) string { return RoomPrefix + trackingID }

// TrackingIDFromRoom reverses RoomName; empty string if room is not a
// complaint room.
func TrackingIDFromRoom(room string) string {
	if len(room) <= len(RoomPrefix) || room[:len(RoomPrefix)] != RoomPrefix {
		return ""
	}
	return room[len(RoomPrefix):]
}

// Client is the interface for one active connection. It abstracts the
// underlying transport so the hub can manage connection types uniformly.
type Client interface {
	// SessionID returns the unique identifier of this connection (not of the
	// user — one user may hold several connections).
	SessionID() string
	// Actor returns the authenticated user behind the connection.
	Actor() *models.User
	// Room returns the complaint room the client is currently in, or "".
	Room() string
	// SetRoom assigns the client to a room. Called only from the hub goroutine.
	SetRoom(room string)

	// SendChannel returns the channel the hub writes outbound events to.
	SendChannel() chan<- models.ChatEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and channels.
	Close()
}

// Inbound pairs an incoming event with the connection it arrived on.
type Inbound struct {
	Client Client
	Event  models.ChatEvent
}

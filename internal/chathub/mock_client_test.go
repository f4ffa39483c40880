package chathub_test

import (
	"voisafe/backend/internal/models"
)

type MockClient struct {
	sessionID   string
	actor       *models.User
	room        string
	RecvChannel chan models.ChatEvent
	closed      bool
}

func newMockClient(sessionID string, actor *models.User) *MockClient {
	return newMockClientBuffered(sessionID, actor, 10)
}

// newMockClientBuffered lets a test pick the receive buffer size; capacity 0
// makes the client an instantly-slow consumer.
func newMockClientBuffered(sessionID string, actor *models.User, capacity int) *MockClient {
	return &MockClient{
		sessionID:   sessionID,
		actor:       actor,
		RecvChannel: make(chan models.ChatEvent, capacity),
	}
}

func (c *MockClient) SessionID() string   { return c.sessionID }
func (c *MockClient) Actor() *models.User { return c.actor }
func (c *MockClient) Room() string        { return c.room }
func (c *MockClient) SetRoom(room string) { c.room = room }

func (c *MockClient) SendChannel() chan<- models.ChatEvent { return c.RecvChannel }

func (c *MockClient) Run() {
	// Not needed for testing
}

// Close closes the receive channel, like the websocket client does.
func (c *MockClient) Close() {
	c.closed = true
	close(c.RecvChannel)
}

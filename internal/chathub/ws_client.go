package chathub

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"voisafe/backend/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Message cap is 2000 characters, up to 4 bytes each in UTF-8; leave
	// headroom for the JSON envelope.
	maxFrameSize = 16384
)

// WebSocketClient реалізує інтерфейс chathub.Client поверх gorilla/websocket.
type WebSocketClient struct {
	session string
	actor   *models.User
	room    string

	Conn *websocket.Conn
	Hub  *ManagerService
	Send chan models.ChatEvent
}

// NewWebSocketClient builds a client for an authenticated connection.
func NewWebSocketClient(hub *ManagerService, actor *models.User, conn *websocket.Conn) *WebSocketClient {
	return &WebSocketClient{
		session: uuid.New().String(),
		actor:   actor,
		Conn:    conn,
		Hub:     hub,
		Send:    make(chan models.ChatEvent, 256),
	}
}

func (c *WebSocketClient) SessionID() string                    { return c.session }
func (c *WebSocketClient) Actor() *models.User                  { return c.actor }
func (c *WebSocketClient) Room() string                         { return c.room }
func (c *WebSocketClient) SetRoom(room string)                  { c.room = room }
func (c *WebSocketClient) SendChannel() chan<- models.ChatEvent { return c.Send }

// Run запускає 'pumps' для WebSocket.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close закриває Send канал (що зупинить writePump).
func (c *WebSocketClient) Close() {
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxFrameSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var event models.ChatEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("Error decoding JSON from session %s: %v", c.session, err)
			continue
		}

		// Never trust identity fields from the wire.
		event.SenderRole = ""
		event.SenderName = ""

		c.Hub.IncomingCh <- Inbound{Client: c, Event: event}
	}
}

// writePump читає події з каналу Send і записує їх у WebSocket.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("Error encoding JSON for session %s: %v", c.session, err)
				continue
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(data)

			// Drain whatever queued up meanwhile.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				next := <-c.Send
				extra, _ := json.Marshal(next)
				w.Write(extra)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

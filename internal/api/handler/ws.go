package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"voisafe/backend/internal/auth"
	"voisafe/backend/internal/chathub"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Дозволяє з'єднання з будь-якого домену. У продакшені налаштувати!
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket оновлює HTTP-з'єднання до WebSocket і реєструє клієнта в
// чат-хабі. Автентифікація вже відбулась у middleware; тут тільки транспорт.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	actor := auth.Actor(c)
	if actor == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false, "message": "Authentication required",
		})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ERROR: websocket upgrade failed: %v", err)
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, actor, conn)
	h.Hub.RegisterCh <- client
	client.Run()
}

// Package notify delivers operational alerts to the platform operators over
// the Telegram Bot API. Alerts are fire-and-forget: a delivery failure is
// logged, never propagated into the request path.
package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"voisafe/backend/internal/models"
)

// TelegramNotifier реалізує інтерфейс complaint.Notifier поверх Telegram.
type TelegramNotifier struct {
	BotAPI *tgbotapi.BotAPI
	ChatID int64
}

// NewTelegramNotifier authorizes the bot and binds it to the admin chat.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("notify: telegram auth: %w", err)
	}
	bot.Debug = false
	log.Printf("✅ Authorized on account %s", bot.Self.UserName)

	return &TelegramNotifier{BotAPI: bot, ChatID: chatID}, nil
}

// ComplaintFiled alerts the admin chat about a new filing. Only the tracking
// ID and the public fields go out — there is no filer identity to leak here.
func (n *TelegramNotifier) ComplaintFiled(complaint *models.Complaint) {
	text := fmt.Sprintf("📣 *Нова скарга*\nTracking ID: `%s`\nКатегорія: %s\nПріоритет: %s",
		complaint.TrackingID, complaint.Category, complaint.Priority)
	n.send(text)
}

// IdentityRevealed alerts the admin chat that the break-glass path was used.
func (n *TelegramNotifier) IdentityRevealed(trackingID, actorName string) {
	text := fmt.Sprintf("⚠️ *Розкрито особу скаржника*\nTracking ID: `%s`\nАдміністратор: %s",
		trackingID, actorName)
	n.send(text)
}

func (n *TelegramNotifier) send(text string) {
	msg := tgbotapi.NewMessage(n.ChatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := n.BotAPI.Send(msg); err != nil {
		log.Printf("ERROR: Failed to send Telegram message...: %v", err)
	}
}

// Package notify delivers audit outcomes over Telegram. It is the only
// Notifier implementation; the workflow itself stays transport-agnostic.
package notify

import (
	"context"
	"fmt"
	"log"

	"credit-telegram-bot/internal/models"

	tele "gopkg.in/telebot.v3"
)

// Telegram sends a DM to the ticket owner and a confirmation to the
// admin chat. Delivery failures are logged and swallowed: the decision
// is already committed and money must not depend on messaging.
type Telegram struct {
	bot         *tele.Bot
	adminChatID int64
}

// New creates the notifier.
func New(bot *tele.Bot, adminChatID int64) *Telegram {
	return &Telegram{bot: bot, adminChatID: adminChatID}
}

// TicketApproved tells the user their credit arrived and confirms in
// the admin chat.
func (n *Telegram) TicketApproved(_ context.Context, user *models.User, t *models.Ticket) {
	amount := int64(0)
	if t.AuditedAmount != nil {
		amount = *t.AuditedAmount
	}

	userMsg := fmt.Sprintf("✅ Verified! <b>%s</b> credits have been added to your balance.", models.FormatMinor(amount))
	if _, err := n.bot.Send(&tele.User{ID: user.TelegramID}, userMsg, tele.ModeHTML); err != nil {
		log.Printf("notify: failed to DM user %d about ticket #%d: %v", user.TelegramID, t.ID, err)
	}

	adminMsg := fmt.Sprintf("✅ Approved #%d, credited %s", t.ID, models.FormatMinor(amount))
	if _, err := n.bot.Send(&tele.Chat{ID: n.adminChatID}, adminMsg); err != nil {
		log.Printf("notify: failed to confirm ticket #%d in admin chat: %v", t.ID, err)
	}
}

// TicketRejected confirms the rejection in the admin chat and tells the
// user.
func (n *Telegram) TicketRejected(_ context.Context, user *models.User, t *models.Ticket) {
	userMsg := fmt.Sprintf("❌ Your topup ticket <b>#%d</b> was rejected. Contact support if you believe this is a mistake.", t.ID)
	if _, err := n.bot.Send(&tele.User{ID: user.TelegramID}, userMsg, tele.ModeHTML); err != nil {
		log.Printf("notify: failed to DM user %d about ticket #%d: %v", user.TelegramID, t.ID, err)
	}

	adminMsg := fmt.Sprintf("❌ Rejected #%d", t.ID)
	if _, err := n.bot.Send(&tele.Chat{ID: n.adminChatID}, adminMsg); err != nil {
		log.Printf("notify: failed to confirm ticket #%d in admin chat: %v", t.ID, err)
	}
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"credit-telegram-bot/internal/models"
	"credit-telegram-bot/internal/service"

	tele "gopkg.in/telebot.v3"
)

// RegisterAdmin registers the audit handlers. The approve/reject
// callbacks are registered globally because the audit gate inside the
// workflow is what actually decides who may press them; anyone else
// gets a silent callback ack and no money moves.
func (h *Handler) RegisterAdmin(b *tele.Bot) {
	b.Handle(&tele.Btn{Unique: "approve"}, h.HandleApproveCallback)
	b.Handle(&tele.Btn{Unique: "reject"}, h.HandleRejectCallback)

	adminGroup := b.Group()
	adminGroup.Use(h.AdminChatMiddleware())

	adminGroup.Handle("/pending", h.HandlePending)
	adminGroup.Handle("/approve", h.HandleApproveCommand)
	adminGroup.Handle("/reject", h.HandleRejectCommand)
	adminGroup.Handle("/adjust", h.HandleAdjust)
}

// AdminChatMiddleware limits a handler to the configured admin chat.
func (h *Handler) AdminChatMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Chat() == nil || c.Chat().ID != h.adminChatID {
				return c.Send("❌ This command is only available in the admin chat.")
			}
			return next(c)
		}
	}
}

func (h *Handler) actor(c tele.Context) service.Actor {
	return service.Actor{
		TelegramID: c.Sender().ID,
		ChatID:     c.Chat().ID,
		Username:   c.Sender().Username,
	}
}

// reviewKeyboard builds the approve/reject buttons for a ticket. The
// approve button carries the declared amount so the usual case is one
// tap; a different amount goes through /approve <id> <amount>.
func reviewKeyboard(t *models.Ticket) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	btnApprove := menu.Data("✅ Approve (declared)", "approve", fmt.Sprintf("%d:%d", t.ID, t.DeclaredAmount))
	btnReject := menu.Data("❌ Reject", "reject", strconv.FormatInt(t.ID, 10))
	menu.Inline(menu.Row(btnApprove, btnReject))
	return menu
}

// ================= CALLBACKS =================

// HandleApproveCallback approves a ticket at its declared amount.
func (h *Handler) HandleApproveCallback(c tele.Context) error {
	parts := strings.Split(c.Callback().Data, ":")
	if len(parts) != 2 {
		return c.Respond(&tele.CallbackResponse{Text: "⚠️ Malformed callback"})
	}
	ticketID, err1 := strconv.ParseInt(parts[0], 10, 64)
	amount, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		return c.Respond(&tele.CallbackResponse{Text: "⚠️ Malformed callback"})
	}

	return h.decideFromCallback(c, ticketID, service.DecisionApprove, &amount)
}

// HandleRejectCallback rejects a ticket.
func (h *Handler) HandleRejectCallback(c tele.Context) error {
	ticketID, err := strconv.ParseInt(strings.TrimSpace(c.Callback().Data), 10, 64)
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "⚠️ Malformed callback"})
	}

	return h.decideFromCallback(c, ticketID, service.DecisionReject, nil)
}

func (h *Handler) decideFromCallback(c tele.Context, ticketID int64, decision service.Decision, override *int64) error {
	ctx := context.Background()

	_, err := h.svc.DecideTicket(ctx, h.actor(c), ticketID, decision, override)
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		// Pressed outside the admin chat: ack and do nothing
		return c.Respond(&tele.CallbackResponse{})
	case errors.Is(err, service.ErrAlreadyDecided):
		return c.Respond(&tele.CallbackResponse{Text: "Ticket already handled"})
	case err != nil:
		log.Printf("Error deciding ticket #%d: %v", ticketID, err)
		return c.Respond(&tele.CallbackResponse{Text: "⚠️ Failed, try again"})
	}

	// Drop the stale buttons from the review message
	if _, editErr := c.Bot().EditReplyMarkup(c.Message(), nil); editErr != nil {
		log.Printf("Failed to clear keyboard for ticket #%d: %v", ticketID, editErr)
	}

	if decision == service.DecisionApprove {
		return c.Respond(&tele.CallbackResponse{Text: "✅ Approved"})
	}
	return c.Respond(&tele.CallbackResponse{Text: "❌ Rejected"})
}

// ================= ADMIN COMMANDS =================

// HandlePending lists open tickets with review keyboards.
func (h *Handler) HandlePending(c tele.Context) error {
	ctx := context.Background()

	tickets, err := h.svc.PendingTickets(ctx, 15)
	if err != nil {
		log.Printf("Error listing pending tickets: %v", err)
		return c.Send("⚠️ Could not load the pending queue.")
	}

	if len(tickets) == 0 {
		return c.Send("✅ No pending topup tickets.")
	}

	for i := range tickets {
		t := &tickets[i]
		proof := "—"
		if t.ProofRef != nil {
			proof = "✅ uploaded"
		}
		text := fmt.Sprintf(`💳 Topup ticket #%d
User: %d
Declared amount: %s
Proof: %s
Created: %s`,
			t.ID, t.UserID, models.FormatMinor(t.DeclaredAmount), proof,
			t.CreatedAt.Format("2006-01-02 15:04"))

		if err := c.Send(text, reviewKeyboard(t)); err != nil {
			return err
		}
	}

	return nil
}

// HandleApproveCommand approves a ticket, optionally at an amount other
// than the declared one: /approve <ticket_id> [amount].
func (h *Handler) HandleApproveCommand(c tele.Context) error {
	ctx := context.Background()

	args := strings.Fields(c.Message().Payload)
	if len(args) < 1 || len(args) > 2 {
		return c.Send("Usage: <code>/approve ticket_id [amount]</code>", tele.ModeHTML)
	}

	ticketID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Send("Usage: <code>/approve ticket_id [amount]</code>", tele.ModeHTML)
	}

	var override *int64
	if len(args) == 2 {
		amount, err := models.ParseMinor(args[1])
		if err != nil || amount <= 0 {
			return c.Send("⚠️ Amount must be a positive number like <code>150.00</code>", tele.ModeHTML)
		}
		override = &amount
	}

	t, err := h.svc.DecideTicket(ctx, h.actor(c), ticketID, service.DecisionApprove, override)
	switch {
	case errors.Is(err, service.ErrAlreadyDecided):
		return c.Send(fmt.Sprintf("Ticket #%d is already decided (or does not exist).", ticketID))
	case errors.Is(err, service.ErrInvalidAmount):
		return c.Send("⚠️ Amount must be positive.")
	case err != nil:
		log.Printf("Error approving ticket #%d: %v", ticketID, err)
		return c.Send("⚠️ Failed, try again.")
	}

	return c.Send(fmt.Sprintf("✅ Approved #%d, credited %s", t.ID, models.FormatMinor(*t.AuditedAmount)))
}

// HandleRejectCommand rejects a ticket: /reject <ticket_id>.
func (h *Handler) HandleRejectCommand(c tele.Context) error {
	ctx := context.Background()

	ticketID, err := strconv.ParseInt(strings.TrimSpace(c.Message().Payload), 10, 64)
	if err != nil {
		return c.Send("Usage: <code>/reject ticket_id</code>", tele.ModeHTML)
	}

	_, err = h.svc.DecideTicket(ctx, h.actor(c), ticketID, service.DecisionReject, nil)
	switch {
	case errors.Is(err, service.ErrAlreadyDecided):
		return c.Send(fmt.Sprintf("Ticket #%d is already decided (or does not exist).", ticketID))
	case err != nil:
		log.Printf("Error rejecting ticket #%d: %v", ticketID, err)
		return c.Send("⚠️ Failed, try again.")
	}

	return c.Send(fmt.Sprintf("❌ Rejected #%d", ticketID))
}

// HandleAdjust appends a manual signed ledger correction:
// /adjust <tg_user_id> <amount> [note]. Negative amounts debit.
func (h *Handler) HandleAdjust(c tele.Context) error {
	ctx := context.Background()

	args := strings.Fields(c.Message().Payload)
	if len(args) < 2 {
		return c.Send("Usage: <code>/adjust tg_user_id amount [note]</code>", tele.ModeHTML)
	}

	targetID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Send("Usage: <code>/adjust tg_user_id amount [note]</code>", tele.ModeHTML)
	}

	amount, err := models.ParseMinor(args[1])
	if err != nil {
		return c.Send("⚠️ Amount must be a number like <code>50.00</code> or <code>-50.00</code>", tele.ModeHTML)
	}

	note := strings.Join(args[2:], " ")

	entry, err := h.svc.Adjust(ctx, h.actor(c), targetID, amount, note)
	switch {
	case errors.Is(err, service.ErrInvalidAmount):
		return c.Send("⚠️ Amount must not be zero.")
	case errors.Is(err, service.ErrNotFound):
		return c.Send(fmt.Sprintf("User %d is not registered with the bot.", targetID))
	case err != nil:
		log.Printf("Error adjusting balance for user %d: %v", targetID, err)
		return c.Send("⚠️ Failed, try again.")
	}

	return c.Send(fmt.Sprintf("📒 Adjustment #%d recorded: %s for user %d",
		entry.ID, models.FormatMinor(entry.Amount), targetID))
}

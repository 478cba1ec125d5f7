package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"credit-telegram-bot/internal/models"
	"credit-telegram-bot/internal/service"

	tele "gopkg.in/telebot.v3"
)

// Handler wires bot updates to the topup workflow.
type Handler struct {
	svc         *service.Service
	adminChatID int64
}

// New creates a new handler.
func New(svc *service.Service, adminChatID int64) *Handler {
	return &Handler{
		svc:         svc,
		adminChatID: adminChatID,
	}
}

// Register registers the user-facing handlers.
func (h *Handler) Register(b *tele.Bot) {
	b.Handle("/start", h.HandleStart)
	b.Handle("/help", h.HandleHelp)
	b.Handle("/id", h.HandleID)
	b.Handle("/balance", h.HandleBalance)
	b.Handle("/me", h.HandleMe)
	b.Handle("/topup", h.HandleTopup)

	// Payment proof arrives as a screenshot or a file
	b.Handle(tele.OnPhoto, h.HandleProof)
	b.Handle(tele.OnDocument, h.HandleProof)

	b.Handle(tele.OnText, h.HandleUnknown)
}

// upsertSender registers or refreshes the sender before any command is
// served. Every inbound message goes through here first.
func (h *Handler) upsertSender(ctx context.Context, c tele.Context) (*models.User, error) {
	from := c.Sender()
	fullName := strings.TrimSpace(strings.TrimSpace(from.FirstName) + " " + strings.TrimSpace(from.LastName))
	return h.svc.GetOrCreateUser(ctx, from.ID, from.Username, fullName)
}

func isPrivate(c tele.Context) bool {
	return c.Chat() != nil && c.Chat().Type == tele.ChatPrivate
}

// ================= COMMANDS =================

// HandleStart greets the user and registers them.
func (h *Handler) HandleStart(c tele.Context) error {
	ctx := context.Background()
	if _, err := h.upsertSender(ctx, c); err != nil {
		log.Printf("Error upserting user %d: %v", c.Sender().ID, err)
		return c.Send("⚠️ Something went wrong, please try /start again.")
	}

	return c.Send(`Hi! I'm the topup and credit assistant 🤖
Commands:
• <b>/topup amount</b> (e.g. <code>/topup 100.00</code>), then send the transfer screenshot
• <b>/balance</b> — your current credits
• <b>/me</b> — your profile and last 5 ledger entries
• <b>/help</b> — this help

You'll get a DM with the credited amount once the auditor approves.`, tele.ModeHTML)
}

// HandleHelp shows the available commands.
func (h *Handler) HandleHelp(c tele.Context) error {
	ctx := context.Background()
	if _, err := h.upsertSender(ctx, c); err != nil {
		log.Printf("Error upserting user %d: %v", c.Sender().ID, err)
	}

	return c.Send(`Available commands:
• <b>/topup amount</b> (e.g. <code>/topup 100.00</code>), then send the transfer screenshot
• <b>/balance</b> — your current credits
• <b>/me</b> — your profile + last 5 ledger entries
Note: amounts are shown in major units and stored internally in cents.`, tele.ModeHTML)
}

// HandleID echoes the chat id. Handy for configuring admin_chat_id.
func (h *Handler) HandleID(c tele.Context) error {
	return c.Send(fmt.Sprintf("chat_id: <code>%d</code>", c.Chat().ID), tele.ModeHTML)
}

// HandleBalance shows the sum of the user's ledger.
func (h *Handler) HandleBalance(c tele.Context) error {
	ctx := context.Background()
	user, err := h.upsertSender(ctx, c)
	if err != nil {
		log.Printf("Error upserting user %d: %v", c.Sender().ID, err)
		return c.Send("⚠️ Something went wrong, please try again.")
	}

	balance, err := h.svc.Balance(ctx, user.ID)
	if err != nil {
		log.Printf("Error reading balance for user %d: %v", user.ID, err)
		return c.Send("⚠️ Could not read your balance, please try again.")
	}

	return c.Send(fmt.Sprintf("Your current credits: <b>%s</b>", models.FormatMinor(balance)), tele.ModeHTML)
}

// HandleMe shows the profile and the last 5 ledger entries.
func (h *Handler) HandleMe(c tele.Context) error {
	ctx := context.Background()
	user, err := h.upsertSender(ctx, c)
	if err != nil {
		log.Printf("Error upserting user %d: %v", c.Sender().ID, err)
		return c.Send("⚠️ Something went wrong, please try again.")
	}

	balance, err := h.svc.Balance(ctx, user.ID)
	if err != nil {
		log.Printf("Error reading balance for user %d: %v", user.ID, err)
		return c.Send("⚠️ Could not read your balance, please try again.")
	}

	entries, err := h.svc.RecentEntries(ctx, user.ID, 5)
	if err != nil {
		log.Printf("Error reading ledger for user %d: %v", user.ID, err)
		return c.Send("⚠️ Could not read your history, please try again.")
	}

	ledgerText := "(no entries)"
	if len(entries) > 0 {
		var lines []string
		for _, e := range entries {
			sign := "+"
			if e.Amount < 0 {
				sign = "–"
			}
			amt := models.FormatMinor(abs64(e.Amount))
			ref := ""
			if e.RefType != nil && e.RefID != nil {
				ref = fmt.Sprintf(" (%s #%d)", *e.RefType, *e.RefID)
			}
			note := ""
			if e.Note != nil {
				note = ", " + *e.Note
			}
			lines = append(lines, fmt.Sprintf("%s | %s%s | %s%s%s",
				e.CreatedAt.Format("2006-01-02 15:04"), e.Type, ref, sign, amt, note))
		}
		ledgerText = strings.Join(lines, "\n")
	}

	username := "(none)"
	if user.Username != "" {
		username = "@" + user.Username
	}
	name := user.FullName
	if name == "" {
		name = "(none)"
	}

	return c.Send(fmt.Sprintf(`👤 <b>My profile</b>
ID: <code>%d</code>
Username: %s
Name: %s
Registered: %s
Current credits: <b>%s</b>

📒 <b>Last 5 ledger entries</b>
%s`,
		user.TelegramID, username, name,
		user.CreatedAt.Format("2006-01-02 15:04"),
		models.FormatMinor(balance), ledgerText), tele.ModeHTML)
}

// HandleTopup creates a PENDING topup ticket for the declared amount.
// Private chats only: payment details don't belong in groups.
func (h *Handler) HandleTopup(c tele.Context) error {
	ctx := context.Background()

	if !isPrivate(c) {
		return c.Send("For privacy, please send <code>/topup amount</code> and the screenshot in a <b>private chat</b>.", tele.ModeHTML)
	}

	user, err := h.upsertSender(ctx, c)
	if err != nil {
		log.Printf("Error upserting user %d: %v", c.Sender().ID, err)
		return c.Send("⚠️ Something went wrong, please try /start again.")
	}

	amount, parseErr := models.ParseMinor(c.Message().Payload)
	if parseErr != nil || amount <= 0 {
		return c.Send("Usage: <code>/topup 100.00</code>\nThen send the transfer screenshot to open a ticket.", tele.ModeHTML)
	}

	ticket, err := h.svc.CreateTicket(ctx, user.ID, amount)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			return c.Send("Usage: <code>/topup 100.00</code>", tele.ModeHTML)
		}
		log.Printf("Error creating ticket for user %d: %v", user.ID, err)
		return c.Send("⚠️ Could not create the ticket, please try again.")
	}

	return c.Send(fmt.Sprintf("Topup ticket <b>#%d</b> created (declared %s)\nNow send the transfer screenshot~",
		ticket.ID, models.FormatMinor(ticket.DeclaredAmount)), tele.ModeHTML)
}

// HandleProof attaches an uploaded screenshot or file to the user's
// active PENDING ticket and forwards it to the admin chat for review.
func (h *Handler) HandleProof(c tele.Context) error {
	ctx := context.Background()

	if !isPrivate(c) {
		// Ignore media in the admin chat and other groups
		if c.Chat() != nil && c.Chat().ID == h.adminChatID {
			return nil
		}
		return c.Send("For privacy, please upload the transfer screenshot in a <b>private chat</b>.", tele.ModeHTML)
	}

	user, err := h.upsertSender(ctx, c)
	if err != nil {
		log.Printf("Error upserting user %d: %v", c.Sender().ID, err)
		return c.Send("⚠️ Something went wrong, please try /start again.")
	}

	msg := c.Message()
	var fileID string
	switch {
	case msg.Photo != nil:
		fileID = msg.Photo.FileID
	case msg.Document != nil:
		fileID = msg.Document.FileID
	default:
		return nil
	}

	ticket, err := h.svc.AttachProof(ctx, user.ID, fileID)
	if err != nil {
		if errors.Is(err, service.ErrNoActiveTicket) {
			return c.Send("No pending topup ticket found, please send <code>/topup amount</code> first.", tele.ModeHTML)
		}
		log.Printf("Error attaching proof for user %d: %v", user.ID, err)
		return c.Send("⚠️ Could not attach the screenshot, please try again.")
	}

	if err := h.sendReviewRequest(c, user, ticket, msg); err != nil {
		log.Printf("Error forwarding ticket #%d to admin chat: %v", ticket.ID, err)
		return c.Send("⚠️ Could not submit the ticket for review, please resend the screenshot.")
	}

	return c.Send(fmt.Sprintf("Screenshot received ✅ Ticket <b>#%d</b> submitted for review, hang tight~", ticket.ID), tele.ModeHTML)
}

// sendReviewRequest forwards the proof media to the admin chat with the
// approve/reject keyboard attached.
func (h *Handler) sendReviewRequest(c tele.Context, user *models.User, ticket *models.Ticket, msg *tele.Message) error {
	from := fmt.Sprintf("%d", user.TelegramID)
	if user.Username != "" {
		from = "@" + user.Username
	}

	caption := fmt.Sprintf(`💳 Topup ticket #%d
From: %s
Declared amount: %s
Proof: ✅ uploaded`, ticket.ID, from, models.FormatMinor(ticket.DeclaredAmount))

	menu := reviewKeyboard(ticket)
	adminChat := &tele.Chat{ID: h.adminChatID}

	if msg.Photo != nil {
		photo := *msg.Photo
		photo.Caption = caption
		_, err := c.Bot().Send(adminChat, &photo, menu)
		return err
	}

	doc := *msg.Document
	doc.Caption = caption
	_, err := c.Bot().Send(adminChat, &doc, menu)
	return err
}

// HandleUnknown nudges the user towards the known commands.
func (h *Handler) HandleUnknown(c tele.Context) error {
	if !isPrivate(c) {
		return nil
	}

	ctx := context.Background()
	if _, err := h.upsertSender(ctx, c); err != nil {
		log.Printf("Error upserting user %d: %v", c.Sender().ID, err)
	}

	return c.Send("I don't know that command~ Try: <b>/topup</b>, <b>/balance</b>, <b>/me</b>", tele.ModeHTML)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

package models

import "time"

// User is an account created on first contact with the bot.
// TelegramID is the external identity and never changes; Username and
// FullName are refreshed on every inbound message.
type User struct {
	ID         int64     `db:"id"`
	TelegramID int64     `db:"telegram_id"`
	Username   string    `db:"username"`
	FullName   string    `db:"full_name"`
	CreatedAt  time.Time `db:"created_at"`
}

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryTopup      EntryType = "TOPUP"
	EntryAdjustment EntryType = "ADJUSTMENT"
)

// RefTicket marks a ledger entry as originating from a topup ticket.
const RefTicket = "TICKET"

// LedgerEntry is one immutable row of the credit ledger. Amounts are
// signed integers in minor currency units; a user's balance is always
// the sum of their entries, never a stored column.
type LedgerEntry struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Amount    int64     `db:"amount"`
	Type      EntryType `db:"type"`
	RefType   *string   `db:"ref_type"`
	RefID     *int64    `db:"ref_id"`
	Note      *string   `db:"note"`
	CreatedBy int64     `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
}

// TicketStatus is the topup ticket state. APPROVED and REJECTED are
// terminal; nothing transitions out of them.
type TicketStatus string

const (
	TicketPending  TicketStatus = "PENDING"
	TicketApproved TicketStatus = "APPROVED"
	TicketRejected TicketStatus = "REJECTED"
)

// Ticket is a user's request to add credit. DeclaredAmount is what the
// user claims to have paid; AuditedAmount is what the auditor actually
// credited, set only on approval and allowed to differ.
type Ticket struct {
	ID             int64        `db:"id"`
	UserID         int64        `db:"user_id"`
	DeclaredAmount int64        `db:"declared_amount"`
	ProofRef       *string      `db:"proof_ref"`
	Status         TicketStatus `db:"status"`
	AuditedAmount  *int64       `db:"audited_amount"`
	AuditedBy      *int64       `db:"audited_by"`
	AuditedAt      *time.Time   `db:"audited_at"`
	CreatedAt      time.Time    `db:"created_at"`
}

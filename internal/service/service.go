package service

import (
	"context"
	"errors"
	"fmt"

	"credit-telegram-bot/internal/models"

	"github.com/jackc/pgx/v5"
)

// Store is the durable state behind the workflow. Implemented by
// database.DB; tests plug in an in-memory fake. Methods report
// pgx.ErrNoRows when a lookup or conditional update matches nothing.
type Store interface {
	UpsertUser(ctx context.Context, telegramID int64, username, fullName string) (*models.User, error)
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	AppendLedger(ctx context.Context, userID, amount int64, entryType models.EntryType, refType *string, refID *int64, note *string, createdBy int64) (*models.LedgerEntry, error)
	Balance(ctx context.Context, userID int64) (int64, error)
	RecentLedger(ctx context.Context, userID int64, limit int) ([]models.LedgerEntry, error)

	CreateTicket(ctx context.Context, userID, declaredAmount int64) (*models.Ticket, error)
	GetTicketByID(ctx context.Context, id int64) (*models.Ticket, error)
	AttachProof(ctx context.Context, userID int64, proofRef string) (*models.Ticket, error)
	PendingTickets(ctx context.Context, limit int) ([]models.Ticket, error)
	ApproveTicket(ctx context.Context, ticketID, auditedAmount, auditedBy int64) (*models.Ticket, error)
	RejectTicket(ctx context.Context, ticketID, auditedBy int64) (*models.Ticket, error)
}

// Notifier tells the user about audit outcomes. Delivery mechanics are
// the implementation's business; failures there must never undo or
// block a committed decision.
type Notifier interface {
	TicketApproved(ctx context.Context, user *models.User, ticket *models.Ticket)
	TicketRejected(ctx context.Context, user *models.User, ticket *models.Ticket)
}

// Decision is an auditor's verdict on a ticket.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// Service is the topup workflow: tickets, the audit gate in front of
// them, and the ledger entries an approval produces.
type Service struct {
	store    Store
	gate     AuditGate
	notifier Notifier
}

// New creates the service.
func New(store Store, gate AuditGate, notifier Notifier) *Service {
	return &Service{
		store:    store,
		gate:     gate,
		notifier: notifier,
	}
}

// GetOrCreateUser registers the user on first contact and refreshes the
// display fields on every later one.
func (s *Service) GetOrCreateUser(ctx context.Context, telegramID int64, username, fullName string) (*models.User, error) {
	return s.store.UpsertUser(ctx, telegramID, username, fullName)
}

// Balance returns the sum of the user's ledger entries.
func (s *Service) Balance(ctx context.Context, userID int64) (int64, error) {
	return s.store.Balance(ctx, userID)
}

// RecentEntries returns the user's latest ledger entries, newest first.
func (s *Service) RecentEntries(ctx context.Context, userID int64, limit int) ([]models.LedgerEntry, error) {
	return s.store.RecentLedger(ctx, userID, limit)
}

// CreateTicket opens a new PENDING topup ticket for the declared
// amount. It does not supersede earlier PENDING tickets.
func (s *Service) CreateTicket(ctx context.Context, userID, declaredAmount int64) (*models.Ticket, error) {
	if declaredAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	return s.store.CreateTicket(ctx, userID, declaredAmount)
}

// AttachProof records the payment evidence reference on the user's
// active PENDING ticket (the newest one). Re-attaching overwrites.
func (s *Service) AttachProof(ctx context.Context, userID int64, proofRef string) (*models.Ticket, error) {
	t, err := s.store.AttachProof(ctx, userID, proofRef)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoActiveTicket
	}
	return t, err
}

// PendingTickets lists open tickets for the review queue.
func (s *Service) PendingTickets(ctx context.Context, limit int) ([]models.Ticket, error) {
	return s.store.PendingTickets(ctx, limit)
}

// DecideTicket is the only conditional write in the system. The actor
// must pass the audit gate; the PENDING check and the status change are
// a single atomic update in the store, and on approval the TOPUP ledger
// entry commits in the same transaction. A ticket that is already in a
// terminal state (or was decided concurrently) yields ErrAlreadyDecided
// and no ledger effect.
//
// override sets audited_amount; nil means "approve the declared
// amount". Rejection ignores it.
func (s *Service) DecideTicket(ctx context.Context, actor Actor, ticketID int64, decision Decision, override *int64) (*models.Ticket, error) {
	if !s.gate.Authorize(actor) {
		return nil, ErrUnauthorized
	}

	switch decision {
	case DecisionApprove:
		amount, err := s.approvalAmount(ctx, ticketID, override)
		if err != nil {
			return nil, err
		}

		t, err := s.store.ApproveTicket(ctx, ticketID, amount, actor.TelegramID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyDecided
		}
		if err != nil {
			return nil, fmt.Errorf("approve ticket %d: %w", ticketID, err)
		}

		// The ticket owner must resolve: users are never deleted. A miss
		// here is a consistency fault and is propagated as such.
		user, err := s.store.GetUserByID(ctx, t.UserID)
		if err != nil {
			return nil, fmt.Errorf("ticket %d approved but owner %d is unresolvable: %w", t.ID, t.UserID, err)
		}

		s.notifier.TicketApproved(ctx, user, t)
		return t, nil

	case DecisionReject:
		t, err := s.store.RejectTicket(ctx, ticketID, actor.TelegramID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyDecided
		}
		if err != nil {
			return nil, fmt.Errorf("reject ticket %d: %w", ticketID, err)
		}

		user, err := s.store.GetUserByID(ctx, t.UserID)
		if err != nil {
			return nil, fmt.Errorf("ticket %d rejected but owner %d is unresolvable: %w", t.ID, t.UserID, err)
		}

		s.notifier.TicketRejected(ctx, user, t)
		return t, nil

	default:
		return nil, fmt.Errorf("unknown decision %q", decision)
	}
}

func (s *Service) approvalAmount(ctx context.Context, ticketID int64, override *int64) (int64, error) {
	if override != nil {
		if *override <= 0 {
			return 0, ErrInvalidAmount
		}
		return *override, nil
	}

	// Declared amount is immutable after creation, so reading it outside
	// the conditional update is safe.
	t, err := s.store.GetTicketByID(ctx, ticketID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAlreadyDecided
	}
	if err != nil {
		return 0, err
	}
	if t.DeclaredAmount <= 0 {
		return 0, ErrInvalidAmount
	}
	return t.DeclaredAmount, nil
}

// Adjust appends a manual signed ledger correction for the given user.
// Gated like a decision: only the audit principal may move money.
func (s *Service) Adjust(ctx context.Context, actor Actor, targetTelegramID, amount int64, note string) (*models.LedgerEntry, error) {
	if !s.gate.Authorize(actor) {
		return nil, ErrUnauthorized
	}
	if amount == 0 {
		return nil, ErrInvalidAmount
	}

	user, err := s.store.GetUserByTelegramID(ctx, targetTelegramID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var notePtr *string
	if note != "" {
		notePtr = &note
	}
	return s.store.AppendLedger(ctx, user.ID, amount, models.EntryAdjustment, nil, nil, notePtr, actor.TelegramID)
}

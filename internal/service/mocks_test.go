package service

import (
	"context"
	"sync"
	"time"

	"credit-telegram-bot/internal/database"
	"credit-telegram-bot/internal/models"

	"github.com/jackc/pgx/v5"
)

// fakeStore is an in-memory Store. Its ApproveTicket/RejectTicket hold
// the mutex across the status check and the mutation, mirroring the
// single conditional UPDATE the real store issues.
type fakeStore struct {
	mu           sync.Mutex
	nextUserID   int64
	nextTicketID int64
	nextEntryID  int64
	users        map[int64]*models.User // keyed by internal id
	byTelegramID map[int64]int64
	tickets      map[int64]*models.Ticket
	ledger       []models.LedgerEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:        make(map[int64]*models.User),
		byTelegramID: make(map[int64]int64),
		tickets:      make(map[int64]*models.Ticket),
	}
}

func (s *fakeStore) UpsertUser(_ context.Context, telegramID int64, username, fullName string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byTelegramID[telegramID]; ok {
		u := s.users[id]
		u.Username = username
		u.FullName = fullName
		cp := *u
		return &cp, nil
	}

	s.nextUserID++
	u := &models.User{
		ID:         s.nextUserID,
		TelegramID: telegramID,
		Username:   username,
		FullName:   fullName,
		CreatedAt:  time.Now(),
	}
	s.users[u.ID] = u
	s.byTelegramID[telegramID] = u.ID
	cp := *u
	return &cp, nil
}

func (s *fakeStore) GetUserByTelegramID(_ context.Context, telegramID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byTelegramID[telegramID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *fakeStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) AppendLedger(_ context.Context, userID, amount int64, entryType models.EntryType, refType *string, refID *int64, note *string, createdBy int64) (*models.LedgerEntry, error) {
	if amount == 0 {
		return nil, database.ErrZeroAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(userID, amount, entryType, refType, refID, note, createdBy), nil
}

func (s *fakeStore) appendLocked(userID, amount int64, entryType models.EntryType, refType *string, refID *int64, note *string, createdBy int64) *models.LedgerEntry {
	s.nextEntryID++
	e := models.LedgerEntry{
		ID:        s.nextEntryID,
		UserID:    userID,
		Amount:    amount,
		Type:      entryType,
		RefType:   refType,
		RefID:     refID,
		Note:      note,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
	s.ledger = append(s.ledger, e)
	cp := e
	return &cp
}

func (s *fakeStore) Balance(_ context.Context, userID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var sum int64
	for _, e := range s.ledger {
		if e.UserID == userID {
			sum += e.Amount
		}
	}
	return sum, nil
}

func (s *fakeStore) RecentLedger(_ context.Context, userID int64, limit int) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.LedgerEntry
	for i := len(s.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		if s.ledger[i].UserID == userID {
			out = append(out, s.ledger[i])
		}
	}
	return out, nil
}

func (s *fakeStore) CreateTicket(_ context.Context, userID, declaredAmount int64) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTicketID++
	t := &models.Ticket{
		ID:             s.nextTicketID,
		UserID:         userID,
		DeclaredAmount: declaredAmount,
		Status:         models.TicketPending,
		CreatedAt:      time.Now(),
	}
	s.tickets[t.ID] = t
	cp := *t
	return &cp, nil
}

func (s *fakeStore) GetTicketByID(_ context.Context, id int64) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (s *fakeStore) AttachProof(_ context.Context, userID int64, proofRef string) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Highest-id PENDING ticket for the user, as the real query does
	var target *models.Ticket
	for _, t := range s.tickets {
		if t.UserID == userID && t.Status == models.TicketPending {
			if target == nil || t.ID > target.ID {
				target = t
			}
		}
	}
	if target == nil {
		return nil, pgx.ErrNoRows
	}

	ref := proofRef
	target.ProofRef = &ref
	cp := *target
	return &cp, nil
}

func (s *fakeStore) PendingTickets(_ context.Context, limit int) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Ticket
	for id := int64(1); id <= s.nextTicketID && len(out) < limit; id++ {
		if t, ok := s.tickets[id]; ok && t.Status == models.TicketPending {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeStore) ApproveTicket(_ context.Context, ticketID, auditedAmount, auditedBy int64) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok || t.Status != models.TicketPending {
		return nil, pgx.ErrNoRows
	}

	now := time.Now()
	t.Status = models.TicketApproved
	t.AuditedAmount = &auditedAmount
	t.AuditedBy = &auditedBy
	t.AuditedAt = &now

	refType := models.RefTicket
	refID := t.ID
	s.appendLocked(t.UserID, auditedAmount, models.EntryTopup, &refType, &refID, nil, auditedBy)

	cp := *t
	return &cp, nil
}

func (s *fakeStore) RejectTicket(_ context.Context, ticketID, auditedBy int64) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[ticketID]
	if !ok || t.Status != models.TicketPending {
		return nil, pgx.ErrNoRows
	}

	now := time.Now()
	t.Status = models.TicketRejected
	t.AuditedBy = &auditedBy
	t.AuditedAt = &now

	cp := *t
	return &cp, nil
}

func (s *fakeStore) ledgerEntries(userID int64) []models.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.LedgerEntry
	for _, e := range s.ledger {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

// recordingNotifier captures outcome notifications.
type recordingNotifier struct {
	mu       sync.Mutex
	approved []int64
	rejected []int64
}

func (n *recordingNotifier) TicketApproved(_ context.Context, _ *models.User, t *models.Ticket) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.approved = append(n.approved, t.ID)
}

func (n *recordingNotifier) TicketRejected(_ context.Context, _ *models.User, t *models.Ticket) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rejected = append(n.rejected, t.ID)
}

func (n *recordingNotifier) approvedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.approved)
}

func (n *recordingNotifier) rejectedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.rejected)
}

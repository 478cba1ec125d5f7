package database

import (
	"context"
	"fmt"

	"credit-telegram-bot/internal/models"
)

const ticketColumns = `id, user_id, declared_amount, proof_ref, status, audited_amount, audited_by, audited_at, created_at`

func scanTicket(row interface{ Scan(...any) error }) (*models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(
		&t.ID, &t.UserID, &t.DeclaredAmount, &t.ProofRef, &t.Status,
		&t.AuditedAmount, &t.AuditedBy, &t.AuditedAt, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTicket opens a new PENDING topup ticket. Existing PENDING
// tickets for the same user are left untouched; the newest one is the
// target for proof attachment.
func (db *DB) CreateTicket(ctx context.Context, userID, declaredAmount int64) (*models.Ticket, error) {
	return scanTicket(db.Pool.QueryRow(ctx, `
		INSERT INTO topup_tickets (user_id, declared_amount)
		VALUES ($1, $2)
		RETURNING `+ticketColumns+`
	`, userID, declaredAmount))
}

// GetTicketByID returns pgx.ErrNoRows for unknown tickets.
func (db *DB) GetTicketByID(ctx context.Context, id int64) (*models.Ticket, error) {
	return scanTicket(db.Pool.QueryRow(ctx, `
		SELECT `+ticketColumns+` FROM topup_tickets WHERE id = $1
	`, id))
}

// AttachProof sets the proof reference on the user's active PENDING
// ticket (the one with the highest id). Re-attaching overwrites the
// previous reference. pgx.ErrNoRows when the user has no PENDING ticket.
func (db *DB) AttachProof(ctx context.Context, userID int64, proofRef string) (*models.Ticket, error) {
	return scanTicket(db.Pool.QueryRow(ctx, `
		UPDATE topup_tickets SET proof_ref = $1
		WHERE id = (
			SELECT id FROM topup_tickets
			WHERE user_id = $2 AND status = 'PENDING'
			ORDER BY id DESC LIMIT 1
		)
		RETURNING `+ticketColumns+`
	`, proofRef, userID))
}

// PendingTickets lists open tickets, oldest first, for the admin review
// queue.
func (db *DB) PendingTickets(ctx context.Context, limit int) ([]models.Ticket, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+ticketColumns+` FROM topup_tickets
		WHERE status = 'PENDING'
		ORDER BY id ASC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}

	return tickets, rows.Err()
}

// ApproveTicket moves a PENDING ticket to APPROVED and appends the
// matching TOPUP ledger entry in one transaction. The UPDATE carries
// status = 'PENDING' in its WHERE clause, so two concurrent approvals
// cannot both succeed: the loser matches zero rows and gets
// pgx.ErrNoRows, and no ledger row is written for it.
func (db *DB) ApproveTicket(ctx context.Context, ticketID, auditedAmount, auditedBy int64) (*models.Ticket, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := scanTicket(tx.QueryRow(ctx, `
		UPDATE topup_tickets
		SET status = 'APPROVED', audited_amount = $1, audited_by = $2, audited_at = CURRENT_TIMESTAMP
		WHERE id = $3 AND status = 'PENDING'
		RETURNING `+ticketColumns+`
	`, auditedAmount, auditedBy, ticketID))
	if err != nil {
		return nil, err
	}

	note := fmt.Sprintf("topup ticket #%d", t.ID)
	_, err = tx.Exec(ctx, `
		INSERT INTO credit_ledger (user_id, amount, type, ref_type, ref_id, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.UserID, auditedAmount, string(models.EntryTopup), models.RefTicket, t.ID, note, auditedBy)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return t, nil
}

// RejectTicket moves a PENDING ticket to REJECTED. Same conditional
// update as ApproveTicket; never touches the ledger.
func (db *DB) RejectTicket(ctx context.Context, ticketID, auditedBy int64) (*models.Ticket, error) {
	return scanTicket(db.Pool.QueryRow(ctx, `
		UPDATE topup_tickets
		SET status = 'REJECTED', audited_by = $1, audited_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND status = 'PENDING'
		RETURNING `+ticketColumns+`
	`, auditedBy, ticketID))
}

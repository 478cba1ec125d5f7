package database

import (
	"context"
	"errors"

	"credit-telegram-bot/internal/models"
)

// ErrZeroAmount is returned by AppendLedger for a zero amount: a
// no-op row has no place in an append-only ledger.
var ErrZeroAmount = errors.New("ledger amount must not be zero")

// AppendLedger inserts one immutable ledger row. Rows are never updated
// or deleted. The amount may be positive or negative but never zero;
// authorization is the caller's job.
func (db *DB) AppendLedger(ctx context.Context, userID, amount int64, entryType models.EntryType, refType *string, refID *int64, note *string, createdBy int64) (*models.LedgerEntry, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}
	var e models.LedgerEntry
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO credit_ledger (user_id, amount, type, ref_type, ref_id, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, amount, type, ref_type, ref_id, note, created_by, created_at
	`, userID, amount, string(entryType), refType, refID, note, createdBy).Scan(
		&e.ID, &e.UserID, &e.Amount, &e.Type, &e.RefType, &e.RefID, &e.Note, &e.CreatedBy, &e.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &e, nil
}

// Balance sums the user's ledger. Always recomputed from history so it
// cannot drift; 0 for a user with no entries.
func (db *DB) Balance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := db.Pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM credit_ledger WHERE user_id = $1
	`, userID).Scan(&balance)
	return balance, err
}

// RecentLedger returns the user's most recent entries, newest first.
func (db *DB) RecentLedger(ctx context.Context, userID int64, limit int) ([]models.LedgerEntry, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, amount, type, ref_type, ref_id, note, created_by, created_at
		FROM credit_ledger WHERE user_id = $1
		ORDER BY id DESC LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Type, &e.RefType, &e.RefID, &e.Note, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

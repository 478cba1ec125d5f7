package service

import "errors"

// The error taxonomy reported to the transport layer. None of these are
// retried internally; every operation either fully commits or leaves
// nothing behind, so the edge may retry on storage failures.
var (
	// ErrInvalidAmount - amount is zero, negative where a credit is
	// required, or not parseable into minor units.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNoActiveTicket - proof submitted while the user has no PENDING
	// ticket.
	ErrNoActiveTicket = errors.New("no active topup ticket")

	// ErrAlreadyDecided - the conditional PENDING check matched zero
	// rows: the ticket was decided concurrently or never existed.
	ErrAlreadyDecided = errors.New("ticket already decided")

	// ErrUnauthorized - the audit gate refused the actor.
	ErrUnauthorized = errors.New("actor is not authorized to audit")

	// ErrNotFound - referenced user does not exist.
	ErrNotFound = errors.New("not found")
)

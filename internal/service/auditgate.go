package service

// Actor identifies the caller of an audited operation: who pressed the
// button and in which chat.
type Actor struct {
	TelegramID int64
	ChatID     int64
	Username   string
}

// AuditGate decides who may transition a ticket out of PENDING. It is a
// pure predicate; the deny branch is an expected outcome, not a fault.
type AuditGate interface {
	Authorize(actor Actor) bool
}

// SingleAuditorGate allows exactly one configured chat (a group or a
// personal chat) to audit tickets. Kept as a separate policy so more
// elaborate gates can replace it without touching the workflow.
type SingleAuditorGate struct {
	adminChatID int64
}

// NewSingleAuditorGate builds the gate from the injected admin chat id.
func NewSingleAuditorGate(adminChatID int64) *SingleAuditorGate {
	return &SingleAuditorGate{adminChatID: adminChatID}
}

// Authorize reports whether the actor operates from the admin chat.
func (g *SingleAuditorGate) Authorize(actor Actor) bool {
	return actor.ChatID == g.adminChatID
}

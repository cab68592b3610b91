package models

import "time"

// Ledger reasons. The one-shot reasons are keyed by (user, reason, reference)
// and may be awarded at most once per reference.
const (
	ReasonCreated        = "created"
	ReasonVoteReceived   = "vote_received"
	ReasonApproved       = "approved"
	ReasonApplied        = "applied"
	ReasonROIImprovement = "roi_improvement"
	ReasonLogin          = "login"
	ReasonPurchase       = "purchase"
)

// LedgerEntry is an immutable, signed point transaction.
type LedgerEntry struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"user_id"`
	Amount      int       `json:"amount"`
	Reason      string    `json:"reason"`
	ReferenceID string    `json:"reference_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

package redis

import (
	"context"
	"log"
	"time"

	"github.com/tradeboard/suggestion-service/internal/models"
)

// LedgerStore is the underlying append-only ledger.
type LedgerStore interface {
	Award(userID string, amount int, reason, referenceID string) (*models.LedgerEntry, error)
}

// CachedLedger wraps the ledger and drops the cached balance projection
// whenever an entry lands. The cache is only ever a stale copy of
// SUM(amount); dropping it forces the next balance read through the store.
type CachedLedger struct {
	store  LedgerStore
	client *Client
}

// NewCachedLedger wraps store; client may be nil, in which case awards pass
// through untouched.
func NewCachedLedger(store LedgerStore, client *Client) *CachedLedger {
	return &CachedLedger{store: store, client: client}
}

// Award appends through the underlying ledger and invalidates the user's
// cached balance on success.
func (l *CachedLedger) Award(userID string, amount int, reason, referenceID string) (*models.LedgerEntry, error) {
	entry, err := l.store.Award(userID, amount, reason, referenceID)
	if err != nil {
		return nil, err
	}
	if l.client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := l.client.InvalidateBalance(ctx, userID); err != nil {
			log.Printf("Failed to invalidate balance cache for %s: %v", userID, err)
		}
	}
	return entry, nil
}

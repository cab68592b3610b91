package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tradeboard/suggestion-service/internal/models"
)

// oneShotReasons are awarded at most once per (user, reason, reference).
// The partial unique index on ledger_entries is the enforcement point; this
// map only decides which inserts go through the conflict-checking path.
var oneShotReasons = map[string]bool{
	models.ReasonCreated:        true,
	models.ReasonVoteReceived:   true,
	models.ReasonApproved:       true,
	models.ReasonApplied:        true,
	models.ReasonROIImprovement: true,
}

// Award appends a ledger entry. For one-shot reasons the insert is atomic
// against the uniqueness index: of N concurrent calls exactly one row is
// written and the rest get models.ErrAlreadyAwarded.
func (db *DB) Award(userID string, amount int, reason, referenceID string) (*models.LedgerEntry, error) {
	entry := &models.LedgerEntry{
		UserID:      userID,
		Amount:      amount,
		Reason:      reason,
		ReferenceID: referenceID,
	}

	if oneShotReasons[reason] && referenceID != "" {
		query := `
			INSERT INTO ledger_entries (user_id, amount, reason, reference_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT DO NOTHING
			RETURNING id, created_at
		`
		err := db.conn.QueryRow(query, userID, amount, reason, referenceID, time.Now()).
			Scan(&entry.ID, &entry.CreatedAt)
		if err == sql.ErrNoRows {
			return nil, models.ErrAlreadyAwarded
		}
		if err != nil {
			return nil, fmt.Errorf("failed to award %s points: %w", reason, err)
		}
		return entry, nil
	}

	query := `
		INSERT INTO ledger_entries (user_id, amount, reason, reference_id, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		RETURNING id, created_at
	`
	err := db.conn.QueryRow(query, userID, amount, reason, referenceID, time.Now()).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return entry, nil
}

// BalanceOf returns the sum of a user's ledger entries. The balance is never
// stored as its own counter.
func (db *DB) BalanceOf(userID string) (int, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries WHERE user_id = $1`
	var balance int
	if err := db.conn.QueryRow(query, userID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to get balance for %s: %w", userID, err)
	}
	return balance, nil
}

// HasAward reports whether an entry exists for (user, reason, reference).
func (db *DB) HasAward(userID, reason, referenceID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM ledger_entries
			WHERE user_id = $1 AND reason = $2 AND reference_id = $3
		)
	`
	var exists bool
	if err := db.conn.QueryRow(query, userID, reason, referenceID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check award: %w", err)
	}
	return exists, nil
}

// ListEntriesByUser returns a user's entries, newest first.
func (db *DB) ListEntriesByUser(userID string, limit int) ([]*models.LedgerEntry, error) {
	query := `
		SELECT id, user_id, amount, reason, COALESCE(reference_id, ''), created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Reason, &e.ReferenceID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

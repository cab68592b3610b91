package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/tradeboard/suggestion-service/internal/models"
)

// CreateSuggestion inserts a new suggestion with status pending.
func (db *DB) CreateSuggestion(s *models.Suggestion) error {
	query := `
		INSERT INTO suggestions (
			id, author_id, target_model_id, category, content,
			expected_effect, status, created_at, updated_at
		) VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`
	now := time.Now()
	s.Status = models.StatusPending
	err := db.conn.QueryRow(query,
		s.ID, s.AuthorID, s.TargetModelID, s.Category, s.Content,
		s.ExpectedEffect, s.Status, now, now,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create suggestion: %w", err)
	}
	s.UpdatedAt = s.CreatedAt
	return nil
}

const suggestionColumns = `
	s.id, s.author_id, COALESCE(s.target_model_id, ''), s.category, s.content,
	COALESCE(s.expected_effect, ''), s.status, COALESCE(s.reviewer_reply, ''),
	s.applied_at, s.created_at, s.updated_at,
	(SELECT COUNT(*) FROM suggestion_votes v WHERE v.suggestion_id = s.id) AS vote_count
`

func scanSuggestion(row interface{ Scan(...interface{}) error }) (*models.Suggestion, error) {
	var s models.Suggestion
	var appliedAt sql.NullTime
	err := row.Scan(
		&s.ID, &s.AuthorID, &s.TargetModelID, &s.Category, &s.Content,
		&s.ExpectedEffect, &s.Status, &s.ReviewerReply,
		&appliedAt, &s.CreatedAt, &s.UpdatedAt, &s.VoteCount,
	)
	if err != nil {
		return nil, err
	}
	if appliedAt.Valid {
		s.AppliedAt = &appliedAt.Time
	}
	return &s, nil
}

// GetSuggestion retrieves a suggestion by id, including its vote tally
// projection.
func (db *DB) GetSuggestion(id string) (*models.Suggestion, error) {
	query := `SELECT ` + suggestionColumns + ` FROM suggestions s WHERE s.id = $1`
	s, err := scanSuggestion(db.conn.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion %s: %w", id, err)
	}
	return s, nil
}

// ListSuggestions returns suggestions matching the filter, newest first.
func (db *DB) ListSuggestions(f models.SuggestionFilter) ([]*models.Suggestion, error) {
	query := `SELECT ` + suggestionColumns + ` FROM suggestions s WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if f.Status != "" {
		query += fmt.Sprintf(" AND s.status = $%d", argIdx)
		args = append(args, f.Status)
		argIdx++
	}
	if f.Category != "" {
		query += fmt.Sprintf(" AND s.category = $%d", argIdx)
		args = append(args, f.Category)
		argIdx++
	}
	if f.TargetModelID != "" {
		query += fmt.Sprintf(" AND s.target_model_id = $%d", argIdx)
		args = append(args, f.TargetModelID)
		argIdx++
	}
	if f.AuthorID != "" {
		query += fmt.Sprintf(" AND s.author_id = $%d", argIdx)
		args = append(args, f.AuthorID)
		argIdx++
	}

	query += " ORDER BY s.created_at DESC"

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, f.Limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []*models.Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}

	return suggestions, rows.Err()
}

// TransitionStatus moves a suggestion from one status to another in a single
// compare-and-swap update. The from status is checked at write time, so two
// admins racing on the same suggestion cannot both win.
func (db *DB) TransitionStatus(id, from, to string) error {
	query := `UPDATE suggestions SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	return db.casUpdate(id, query, id, from, to, time.Now())
}

// TransitionStatusWithReply is TransitionStatus plus a reviewer reply,
// used for rejections.
func (db *DB) TransitionStatusWithReply(id, from, to, reply string) error {
	query := `
		UPDATE suggestions SET status = $3, reviewer_reply = $4, updated_at = $5
		WHERE id = $1 AND status = $2
	`
	return db.casUpdate(id, query, id, from, to, reply, time.Now())
}

// MarkApplied transitions approved→applied and stamps applied_at atomically.
func (db *DB) MarkApplied(id string) error {
	query := `
		UPDATE suggestions SET status = $3, applied_at = $4, updated_at = $4
		WHERE id = $1 AND status = $2
	`
	return db.casUpdate(id, query, id, models.StatusApproved, models.StatusApplied, time.Now())
}

// RevertToPending is the admin escape hatch. It moves any non-pending
// suggestion back to pending; already-issued ledger entries are not clawed
// back (the uniqueness index keeps re-approval from paying twice).
func (db *DB) RevertToPending(id string) error {
	query := `
		UPDATE suggestions SET status = $2, updated_at = $3
		WHERE id = $1 AND status <> $2
	`
	return db.casUpdate(id, query, id, models.StatusPending, time.Now())
}

// casUpdate runs a conditional update and maps a zero row count to either
// NotFound or InvalidTransition depending on whether the row exists.
func (db *DB) casUpdate(id, query string, args ...interface{}) error {
	result, err := db.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update suggestion %s: %w", id, err)
	}
	affected, _ := result.RowsAffected()
	if affected > 0 {
		return nil
	}

	var exists bool
	err = db.conn.QueryRow(`SELECT EXISTS (SELECT 1 FROM suggestions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check suggestion %s: %w", id, err)
	}
	if !exists {
		return models.ErrNotFound
	}
	return models.ErrInvalidTransition
}

// RecordVote stores an accepted vote event. Returns false when the vote id
// was already seen, making vote intake replay-safe.
func (db *DB) RecordVote(voteID, suggestionID, voterID string) (bool, error) {
	query := `
		INSERT INTO suggestion_votes (vote_id, suggestion_id, voter_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (vote_id) DO NOTHING
	`
	result, err := db.conn.Exec(query, voteID, suggestionID, voterID, time.Now())
	if err != nil {
		return false, fmt.Errorf("failed to record vote %s: %w", voteID, err)
	}
	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

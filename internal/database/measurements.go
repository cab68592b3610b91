package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tradeboard/suggestion-service/internal/models"
)

// CreateMeasurement persists a freshly captured baseline. A suggestion has at
// most one measurement; a replayed capture returns the existing row instead
// of a duplicate.
func (db *DB) CreateMeasurement(m *models.PerformanceMeasurement) error {
	query := `
		INSERT INTO performance_measurements (
			id, suggestion_id, model_id, roi_before, win_rate_before,
			trades_before, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (suggestion_id) DO NOTHING
		RETURNING created_at
	`
	m.Status = models.MeasurementMeasuring
	err := db.conn.QueryRow(query,
		m.ID, m.SuggestionID, m.ModelID, m.ROIBefore, m.WinRateBefore,
		m.TradesBefore, m.Status, time.Now(),
	).Scan(&m.CreatedAt)
	if err == sql.ErrNoRows {
		existing, getErr := db.GetMeasurementBySuggestion(m.SuggestionID)
		if getErr != nil {
			return getErr
		}
		*m = *existing
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create measurement: %w", err)
	}
	m.UpdatedAt = m.CreatedAt
	return nil
}

const measurementColumns = `
	id, suggestion_id, model_id, roi_before, win_rate_before, trades_before,
	roi_after, win_rate_after, trades_after, improvement_pct, status,
	created_at, updated_at
`

func scanMeasurement(row interface{ Scan(...interface{}) error }) (*models.PerformanceMeasurement, error) {
	var m models.PerformanceMeasurement
	var tradesAfter sql.NullInt64
	err := row.Scan(
		&m.ID, &m.SuggestionID, &m.ModelID, &m.ROIBefore, &m.WinRateBefore,
		&m.TradesBefore, &m.ROIAfter, &m.WinRateAfter, &tradesAfter,
		&m.ImprovementPct, &m.Status, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if tradesAfter.Valid {
		n := int(tradesAfter.Int64)
		m.TradesAfter = &n
	}
	return &m, nil
}

// GetMeasurement retrieves a measurement by id.
func (db *DB) GetMeasurement(id string) (*models.PerformanceMeasurement, error) {
	query := `SELECT ` + measurementColumns + ` FROM performance_measurements WHERE id = $1`
	m, err := scanMeasurement(db.conn.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get measurement %s: %w", id, err)
	}
	return m, nil
}

// GetMeasurementBySuggestion retrieves the measurement linked to a suggestion.
func (db *DB) GetMeasurementBySuggestion(suggestionID string) (*models.PerformanceMeasurement, error) {
	query := `SELECT ` + measurementColumns + ` FROM performance_measurements WHERE suggestion_id = $1`
	m, err := scanMeasurement(db.conn.QueryRow(query, suggestionID))
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get measurement for suggestion %s: %w", suggestionID, err)
	}
	return m, nil
}

// MarkInsufficientData settles a measurement as insufficient_data without
// touching the outcome columns. Not terminal; a later measure call may still
// complete it. Completed rows are never overwritten.
func (db *DB) MarkInsufficientData(id string) error {
	query := `
		UPDATE performance_measurements SET status = $2, updated_at = $3
		WHERE id = $1 AND status <> $4
	`
	result, err := db.conn.Exec(query, id,
		models.MeasurementInsufficientData, time.Now(), models.MeasurementCompleted)
	if err != nil {
		return fmt.Errorf("failed to mark measurement %s insufficient: %w", id, err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return models.ErrAlreadyCompleted
	}
	return nil
}

// CompleteMeasurement writes the outcome and flips the status to completed in
// one compare-and-swap update. Exactly one of N concurrent callers succeeds;
// the rest observe models.ErrAlreadyCompleted.
func (db *DB) CompleteMeasurement(id string, roiAfter, winRateAfter decimal.Decimal, tradesAfter int, improvementPct decimal.Decimal) error {
	query := `
		UPDATE performance_measurements
		SET roi_after = $2, win_rate_after = $3, trades_after = $4,
		    improvement_pct = $5, status = $6, updated_at = $7
		WHERE id = $1 AND status <> $6
	`
	result, err := db.conn.Exec(query, id,
		roiAfter, winRateAfter, tradesAfter, improvementPct,
		models.MeasurementCompleted, time.Now())
	if err != nil {
		return fmt.Errorf("failed to complete measurement %s: %w", id, err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return models.ErrAlreadyCompleted
	}
	return nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Measurement statuses. "completed" is terminal and immutable;
// "insufficient_data" may still move to "completed" on a later check.
const (
	MeasurementMeasuring        = "measuring"
	MeasurementCompleted        = "completed"
	MeasurementInsufficientData = "insufficient_data"
)

// PerformanceMeasurement tracks ROI before/after a suggestion is applied
// against a target model. One per applied suggestion that names a model.
type PerformanceMeasurement struct {
	ID             string              `json:"id"`
	SuggestionID   string              `json:"suggestion_id"`
	ModelID        string              `json:"model_id"`
	ROIBefore      decimal.Decimal     `json:"roi_before"`
	WinRateBefore  decimal.Decimal     `json:"win_rate_before"`
	TradesBefore   int                 `json:"trades_before"`
	ROIAfter       decimal.NullDecimal `json:"roi_after,omitempty"`
	WinRateAfter   decimal.NullDecimal `json:"win_rate_after,omitempty"`
	TradesAfter    *int                `json:"trades_after,omitempty"`
	ImprovementPct decimal.NullDecimal `json:"improvement_pct,omitempty"`
	Status         string              `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

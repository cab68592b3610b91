package measure

import (
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tradeboard/suggestion-service/internal/metrics"
	"github.com/tradeboard/suggestion-service/internal/models"
)

// MeasurementStore is the persistence surface the engine drives.
type MeasurementStore interface {
	CreateMeasurement(m *models.PerformanceMeasurement) error
	GetMeasurement(id string) (*models.PerformanceMeasurement, error)
	GetMeasurementBySuggestion(suggestionID string) (*models.PerformanceMeasurement, error)
	MarkInsufficientData(id string) error
	CompleteMeasurement(id string, roiAfter, winRateAfter decimal.Decimal, tradesAfter int, improvementPct decimal.Decimal) error
}

// PortfolioReader reads point-in-time model snapshots owned by the trading
// subsystem. Total trades are monotonically non-decreasing per model.
type PortfolioReader interface {
	GetModelPortfolio(modelID string) (*models.ModelPortfolio, error)
}

// SuggestionReader resolves the author to pay on a completed measurement.
type SuggestionReader interface {
	GetSuggestion(id string) (*models.Suggestion, error)
}

// Rewarder pays out on improvement, exactly once per measurement.
type Rewarder interface {
	AwardIfImproved(m *models.PerformanceMeasurement, authorID string) (bool, int, error)
}

// Engine captures ROI baselines when suggestions are applied and evaluates
// them once enough new trades have accrued.
type Engine struct {
	store       MeasurementStore
	portfolios  PortfolioReader
	suggestions SuggestionReader
	rewarder    Rewarder
	window      int
}

// NewEngine creates a measurement engine with the given trade window.
func NewEngine(store MeasurementStore, portfolios PortfolioReader, suggestions SuggestionReader, rewarder Rewarder, window int) *Engine {
	return &Engine{
		store:       store,
		portfolios:  portfolios,
		suggestions: suggestions,
		rewarder:    rewarder,
		window:      window,
	}
}

func nullDecimal(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// Result is the outcome of one Measure call.
type Result struct {
	Measurement *models.PerformanceMeasurement `json:"measurement"`
	NewTrades   int                            `json:"new_trades"`
	Awarded     bool                           `json:"awarded"`
	Points      int                            `json:"points"`
}

// CaptureBaseline snapshots a model's current ROI and win rate for a newly
// applied suggestion. A missing snapshot is surfaced, not retried here.
func (e *Engine) CaptureBaseline(suggestionID, modelID string) (*models.PerformanceMeasurement, error) {
	portfolio, err := e.portfolios.GetModelPortfolio(modelID)
	if err != nil {
		if errors.Is(err, models.ErrPortfolioNotFound) {
			log.Printf("No portfolio snapshot for model %s; baseline for suggestion %s not captured", modelID, suggestionID)
		}
		return nil, err
	}

	m := &models.PerformanceMeasurement{
		ID:            uuid.New().String(),
		SuggestionID:  suggestionID,
		ModelID:       modelID,
		ROIBefore:     portfolio.ROI(),
		WinRateBefore: portfolio.WinRate(),
		TradesBefore:  portfolio.TotalTrades,
	}
	if err := e.store.CreateMeasurement(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Measure re-reads the snapshot and settles the measurement. Below the trade
// window it persists insufficient_data and leaves the outcome columns alone.
// At or above the window it completes the measurement and, only when this
// call won the completion, triggers the payout. A completed measurement is a
// no-op returning models.ErrAlreadyCompleted before any snapshot read.
func (e *Engine) Measure(measurementID string) (*Result, error) {
	m, err := e.store.GetMeasurement(measurementID)
	if err != nil {
		return nil, err
	}
	if m.Status == models.MeasurementCompleted {
		return nil, models.ErrAlreadyCompleted
	}

	portfolio, err := e.portfolios.GetModelPortfolio(m.ModelID)
	if err != nil {
		return nil, err
	}

	newTrades := portfolio.TotalTrades - m.TradesBefore
	if newTrades < e.window {
		if err := e.store.MarkInsufficientData(m.ID); err != nil {
			if errors.Is(err, models.ErrAlreadyCompleted) {
				return nil, models.ErrAlreadyCompleted
			}
			return nil, err
		}
		m.Status = models.MeasurementInsufficientData
		metrics.Measurements.WithLabelValues(models.MeasurementInsufficientData).Inc()
		return &Result{Measurement: m, NewTrades: newTrades}, nil
	}

	roiAfter := portfolio.ROI()
	winRateAfter := portfolio.WinRate()
	improvementPct := roiAfter.Sub(m.ROIBefore)

	err = e.store.CompleteMeasurement(m.ID, roiAfter, winRateAfter, portfolio.TotalTrades, improvementPct)
	if errors.Is(err, models.ErrAlreadyCompleted) {
		// A concurrent call won the completion and owns the payout.
		return nil, models.ErrAlreadyCompleted
	}
	if err != nil {
		return nil, err
	}

	m.ROIAfter = nullDecimal(roiAfter)
	m.WinRateAfter = nullDecimal(winRateAfter)
	m.TradesAfter = &portfolio.TotalTrades
	m.ImprovementPct = nullDecimal(improvementPct)
	m.Status = models.MeasurementCompleted
	metrics.Measurements.WithLabelValues(models.MeasurementCompleted).Inc()

	suggestion, err := e.suggestions.GetSuggestion(m.SuggestionID)
	if err != nil {
		return nil, fmt.Errorf("measurement %s completed but author lookup failed: %w", m.ID, err)
	}

	awarded, points, err := e.rewarder.AwardIfImproved(m, suggestion.AuthorID)
	if err != nil {
		return nil, err
	}

	return &Result{
		Measurement: m,
		NewTrades:   newTrades,
		Awarded:     awarded,
		Points:      points,
	}, nil
}

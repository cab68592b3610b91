package reward

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tradeboard/suggestion-service/internal/config"
	"github.com/tradeboard/suggestion-service/internal/metrics"
	"github.com/tradeboard/suggestion-service/internal/models"
)

// Ledger is the subset of the point store the calculator needs.
type Ledger interface {
	Award(userID string, amount int, reason, referenceID string) (*models.LedgerEntry, error)
}

// Calculator issues point awards through the ledger. Every award here is
// one-shot: the ledger's uniqueness constraint decides the winner, the
// calculator only translates the outcome.
type Calculator struct {
	ledger Ledger
	points config.RewardsConfig
}

// NewCalculator creates a Calculator with the configured point amounts.
func NewCalculator(ledger Ledger, points config.RewardsConfig) *Calculator {
	return &Calculator{ledger: ledger, points: points}
}

// award issues a one-shot award and maps the duplicate short-circuit to
// awarded=false rather than an error.
func (c *Calculator) award(userID string, amount int, reason, referenceID string) (bool, error) {
	_, err := c.ledger.Award(userID, amount, reason, referenceID)
	if errors.Is(err, models.ErrAlreadyAwarded) {
		metrics.DuplicateAwards.WithLabelValues(reason).Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to issue %s award: %w", reason, err)
	}
	metrics.Awards.WithLabelValues(reason).Inc()
	return true, nil
}

// AwardCreated grants the submission bonus for a new suggestion.
func (c *Calculator) AwardCreated(authorID, suggestionID string) (bool, error) {
	return c.award(authorID, c.points.CreatedPoints, models.ReasonCreated, suggestionID)
}

// AwardApproved grants the approval bonus, at most once per suggestion.
func (c *Calculator) AwardApproved(authorID, suggestionID string) (bool, error) {
	return c.award(authorID, c.points.ApprovedPoints, models.ReasonApproved, suggestionID)
}

// AwardApplied grants the apply bonus, at most once per suggestion.
func (c *Calculator) AwardApplied(authorID, suggestionID string) (bool, error) {
	return c.award(authorID, c.points.AppliedPoints, models.ReasonApplied, suggestionID)
}

// AwardVote grants the per-vote bonus to the suggestion author, keyed by
// vote id.
func (c *Calculator) AwardVote(authorID, voteID string) (bool, error) {
	return c.award(authorID, c.points.VotePoints, models.ReasonVoteReceived, voteID)
}

// AwardIfImproved converts a completed measurement into a bonus of
// round(improvement_pct * 100) points. Non-positive improvements are recorded
// on the measurement but never ledgered, and a reference that was already
// paid is never paid again.
func (c *Calculator) AwardIfImproved(m *models.PerformanceMeasurement, authorID string) (bool, int, error) {
	if m.Status != models.MeasurementCompleted || !m.ImprovementPct.Valid {
		return false, 0, fmt.Errorf("measurement %s: %w", m.ID, models.ErrInvalidState)
	}
	if m.ImprovementPct.Decimal.Sign() <= 0 {
		return false, 0, nil
	}

	points := int(m.ImprovementPct.Decimal.
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart())

	awarded, err := c.award(authorID, points, models.ReasonROIImprovement, m.ID)
	if err != nil {
		return false, 0, err
	}
	if !awarded {
		return false, 0, nil
	}
	return true, points, nil
}

package models

import "time"

// Suggestion statuses. Transitions between them are enforced by the
// database layer with compare-and-swap updates.
const (
	StatusPending   = "pending"
	StatusReviewing = "reviewing"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusApplied   = "applied"
	StatusTesting   = "testing"
)

// Suggestion categories.
const (
	CategoryMarketAnalysis     = "market_analysis"
	CategoryRiskManagement     = "risk_management"
	CategoryPsychologyPressure = "psychology_pressure"
	CategoryLearningFeedback   = "learning_feedback"
	CategorySignalIntegration  = "signal_integration"
	CategoryModelSpecific      = "model_specific"
)

// MinContentLength is the minimum suggestion body length after trimming.
const MinContentLength = 20

// Suggestion is a user-submitted proposal to change trading-decision logic.
type Suggestion struct {
	ID             string     `json:"id"`
	AuthorID       string     `json:"author_id"`
	TargetModelID  string     `json:"target_model_id,omitempty"`
	Category       string     `json:"category"`
	Content        string     `json:"content"`
	ExpectedEffect string     `json:"expected_effect,omitempty"`
	Status         string     `json:"status"`
	ReviewerReply  string     `json:"reviewer_reply,omitempty"`
	VoteCount      int        `json:"vote_count"`
	AppliedAt      *time.Time `json:"applied_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ValidCategory reports whether c is one of the known categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryMarketAnalysis, CategoryRiskManagement, CategoryPsychologyPressure,
		CategoryLearningFeedback, CategorySignalIntegration, CategoryModelSpecific:
		return true
	}
	return false
}

// SuggestionFilter narrows list queries. Zero values mean "any".
type SuggestionFilter struct {
	Status        string
	Category      string
	TargetModelID string
	AuthorID      string
	Limit         int
}

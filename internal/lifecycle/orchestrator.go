package lifecycle

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/tradeboard/suggestion-service/internal/auth"
	"github.com/tradeboard/suggestion-service/internal/measure"
	"github.com/tradeboard/suggestion-service/internal/metrics"
	"github.com/tradeboard/suggestion-service/internal/models"
)

// Admin actions accepted by Transition.
const (
	ActionReview  = "review"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionApply   = "apply"
	ActionRevert  = "revert"
)

// SuggestionStore is the persistence surface the orchestrator sequences.
type SuggestionStore interface {
	CreateSuggestion(s *models.Suggestion) error
	GetSuggestion(id string) (*models.Suggestion, error)
	TransitionStatus(id, from, to string) error
	TransitionStatusWithReply(id, from, to, reply string) error
	MarkApplied(id string) error
	RevertToPending(id string) error
}

// Awarder issues the fixed lifecycle bonuses.
type Awarder interface {
	AwardCreated(authorID, suggestionID string) (bool, error)
	AwardApproved(authorID, suggestionID string) (bool, error)
	AwardApplied(authorID, suggestionID string) (bool, error)
}

// MeasurementEngine captures baselines and evaluates measurements.
type MeasurementEngine interface {
	CaptureBaseline(suggestionID, modelID string) (*models.PerformanceMeasurement, error)
	Measure(measurementID string) (*measure.Result, error)
}

// MeasurementReader loads measurement state for the ordering guard.
type MeasurementReader interface {
	GetMeasurement(id string) (*models.PerformanceMeasurement, error)
}

// EventPublisher pushes lifecycle events for downstream dashboards. All
// publishing is best-effort and never fails the triggering operation.
type EventPublisher interface {
	PublishSuggestionCreated(ctx context.Context, s *models.Suggestion) error
	PublishSuggestionTransitioned(ctx context.Context, s *models.Suggestion, action string) error
}

// Orchestrator sequences admin actions over the suggestion state machine and
// triggers measurement and rewards at the right transitions. It holds no
// state of its own; every check runs against the persisted row.
type Orchestrator struct {
	store        SuggestionStore
	awarder      Awarder
	engine       MeasurementEngine
	measurements MeasurementReader
	admins       auth.AdminChecker
	publisher    EventPublisher
}

// NewOrchestrator wires the lifecycle coordinator. publisher may be nil.
func NewOrchestrator(store SuggestionStore, awarder Awarder, engine MeasurementEngine, measurements MeasurementReader, admins auth.AdminChecker, publisher EventPublisher) *Orchestrator {
	return &Orchestrator{
		store:        store,
		awarder:      awarder,
		engine:       engine,
		measurements: measurements,
		admins:       admins,
		publisher:    publisher,
	}
}

// Create validates and stores a new suggestion, grants the submission bonus
// and publishes the created event.
func (o *Orchestrator) Create(ctx context.Context, authorID, category, content, expectedEffect, targetModelID string) (*models.Suggestion, error) {
	if authorID == "" {
		return nil, &models.ValidationError{Field: "author_id", Msg: "required"}
	}
	if !models.ValidCategory(category) {
		return nil, &models.ValidationError{Field: "category", Msg: "unknown category " + category}
	}
	content = strings.TrimSpace(content)
	if len(content) < models.MinContentLength {
		return nil, &models.ValidationError{
			Field: "content",
			Msg:   fmt.Sprintf("must be at least %d characters", models.MinContentLength),
		}
	}

	s := &models.Suggestion{
		ID:             uuid.New().String(),
		AuthorID:       authorID,
		TargetModelID:  targetModelID,
		Category:       category,
		Content:        content,
		ExpectedEffect: expectedEffect,
	}
	if err := o.store.CreateSuggestion(s); err != nil {
		return nil, err
	}
	metrics.SuggestionsCreated.Inc()

	if _, err := o.awarder.AwardCreated(authorID, s.ID); err != nil {
		log.Printf("Created award for suggestion %s failed: %v", s.ID, err)
	}

	if o.publisher != nil {
		if err := o.publisher.PublishSuggestionCreated(ctx, s); err != nil {
			log.Printf("Failed to publish created event for suggestion %s: %v", s.ID, err)
		}
	}

	return s, nil
}

// Transition applies one admin action to a suggestion. The status check
// happens inside the store's compare-and-swap update, so a stale read can
// never win a race, and the award uniqueness index keeps oscillating
// suggestions from being paid twice.
func (o *Orchestrator) Transition(ctx context.Context, actorID, suggestionID, action, reason string) (*models.Suggestion, error) {
	if !o.admins.IsAdmin(actorID) {
		return nil, fmt.Errorf("user %s: %w", actorID, models.ErrForbidden)
	}

	var err error
	switch action {
	case ActionReview:
		err = o.store.TransitionStatus(suggestionID, models.StatusPending, models.StatusReviewing)
	case ActionApprove:
		err = o.store.TransitionStatus(suggestionID, models.StatusReviewing, models.StatusApproved)
	case ActionReject:
		if strings.TrimSpace(reason) == "" {
			return nil, &models.ValidationError{Field: "reason", Msg: "required to reject"}
		}
		err = o.store.TransitionStatusWithReply(suggestionID, models.StatusReviewing, models.StatusRejected, reason)
	case ActionApply:
		err = o.store.MarkApplied(suggestionID)
	case ActionRevert:
		err = o.store.RevertToPending(suggestionID)
	default:
		return nil, &models.ValidationError{Field: "action", Msg: "unknown action " + action}
	}
	if err != nil {
		return nil, err
	}
	metrics.Transitions.WithLabelValues(action).Inc()

	s, err := o.store.GetSuggestion(suggestionID)
	if err != nil {
		return nil, err
	}

	switch action {
	case ActionApprove:
		if _, err := o.awarder.AwardApproved(s.AuthorID, s.ID); err != nil {
			log.Printf("Approved award for suggestion %s failed: %v", s.ID, err)
		}
	case ActionApply:
		if _, err := o.awarder.AwardApplied(s.AuthorID, s.ID); err != nil {
			log.Printf("Applied award for suggestion %s failed: %v", s.ID, err)
		}
		if s.TargetModelID != "" {
			if _, err := o.engine.CaptureBaseline(s.ID, s.TargetModelID); err != nil {
				return nil, fmt.Errorf("suggestion %s applied but baseline capture failed: %w", s.ID, err)
			}
		}
	}

	if o.publisher != nil {
		if err := o.publisher.PublishSuggestionTransitioned(ctx, s, action); err != nil {
			log.Printf("Failed to publish %s event for suggestion %s: %v", action, s.ID, err)
		}
	}

	return s, nil
}

// ForceMeasure runs a measurement evaluation on demand. Only admins may
// trigger it, only for suggestions that are currently applied and whose
// measurement is still open.
func (o *Orchestrator) ForceMeasure(actorID, measurementID string) (*measure.Result, error) {
	if !o.admins.IsAdmin(actorID) {
		return nil, fmt.Errorf("user %s: %w", actorID, models.ErrForbidden)
	}

	m, err := o.measurements.GetMeasurement(measurementID)
	if err != nil {
		return nil, err
	}
	if m.Status == models.MeasurementCompleted {
		return nil, models.ErrAlreadyCompleted
	}

	s, err := o.store.GetSuggestion(m.SuggestionID)
	if err != nil {
		return nil, err
	}
	if s.Status != models.StatusApplied {
		return nil, fmt.Errorf("suggestion %s is %s, not applied: %w", s.ID, s.Status, models.ErrInvalidState)
	}

	return o.engine.Measure(measurementID)
}

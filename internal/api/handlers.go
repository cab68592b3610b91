package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/tradeboard/suggestion-service/internal/database"
	"github.com/tradeboard/suggestion-service/internal/lifecycle"
	"github.com/tradeboard/suggestion-service/internal/models"
	"github.com/tradeboard/suggestion-service/internal/redis"
)

const balanceCacheTTL = 30 * time.Second

// Handler holds dependencies for HTTP handlers
type Handler struct {
	db           *database.DB
	orchestrator *lifecycle.Orchestrator
	redis        *redis.Client
}

// NewHandler creates a new Handler. redisClient may be nil.
func NewHandler(db *database.DB, orchestrator *lifecycle.Orchestrator, redisClient *redis.Client) *Handler {
	return &Handler{
		db:           db,
		orchestrator: orchestrator,
		redis:        redisClient,
	}
}

// actorID extracts the calling user from the request. Identity verification
// belongs to the gateway in front of this service; the header is a claim the
// core treats as an explicit parameter.
func actorID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// CreateSuggestion handles POST /suggestions
func (h *Handler) CreateSuggestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category       string `json:"category"`
		Content        string `json:"content"`
		ExpectedEffect string `json:"expected_effect"`
		TargetModelID  string `json:"target_model_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	suggestion, err := h.orchestrator.Create(r.Context(),
		actorID(r), req.Category, req.Content, req.ExpectedEffect, req.TargetModelID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, suggestion)
}

// ListSuggestions handles GET /suggestions
func (h *Handler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	filter := models.SuggestionFilter{
		Status:        r.URL.Query().Get("status"),
		Category:      r.URL.Query().Get("category"),
		TargetModelID: r.URL.Query().Get("model"),
		AuthorID:      r.URL.Query().Get("author"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	suggestions, err := h.db.ListSuggestions(filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if suggestions == nil {
		suggestions = []*models.Suggestion{}
	}

	respondJSON(w, http.StatusOK, suggestions)
}

// GetSuggestion handles GET /suggestions/{id}
func (h *Handler) GetSuggestion(w http.ResponseWriter, r *http.Request) {
	suggestion, err := h.db.GetSuggestion(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, suggestion)
}

// TransitionSuggestion handles POST /suggestions/{id}/transition
func (h *Handler) TransitionSuggestion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	suggestion, err := h.orchestrator.Transition(r.Context(),
		actorID(r), mux.Vars(r)["id"], req.Action, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, suggestion)
}

// GetMeasurement handles GET /suggestions/{id}/measurement
func (h *Handler) GetMeasurement(w http.ResponseWriter, r *http.Request) {
	measurement, err := h.db.GetMeasurementBySuggestion(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, measurement)
}

// ForceMeasure handles POST /measurements/{id}/measure
func (h *Handler) ForceMeasure(w http.ResponseWriter, r *http.Request) {
	result, err := h.orchestrator.ForceMeasure(actorID(r), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListLedger handles GET /users/{id}/ledger
func (h *Handler) ListLedger(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.db.ListEntriesByUser(mux.Vars(r)["id"], limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*models.LedgerEntry{}
	}

	respondJSON(w, http.StatusOK, entries)
}

// GetBalance handles GET /users/{id}/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["id"]

	if h.redis != nil {
		if balance, err := h.redis.GetBalance(r.Context(), userID); err == nil {
			respondJSON(w, http.StatusOK, map[string]interface{}{
				"user_id": userID,
				"balance": balance,
				"cached":  true,
			})
			return
		}
	}

	balance, err := h.db.BalanceOf(userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if h.redis != nil {
		// Cache write failures never fail the read
		_ = h.redis.SetBalance(r.Context(), userID, balance, balanceCacheTTL)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"balance": balance,
	})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"services":  map[string]string{},
	}
	services := health["services"].(map[string]string)
	allHealthy := true

	// Check database
	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			services["postgres"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			services["postgres"] = "healthy"
		}
	} else {
		services["postgres"] = "not configured"
		allHealthy = false
	}

	// Check Redis
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			services["redis"] = "unhealthy: " + err.Error()
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "not configured"
	}

	if !allHealthy {
		health["status"] = "degraded"
	}

	respondJSON(w, http.StatusOK, health)
}

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrInvalidState),
		errors.Is(err, models.ErrAlreadyCompleted):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrPortfolioNotFound):
		// Collaborator data missing; the caller may retry later
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

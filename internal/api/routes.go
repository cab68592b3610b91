package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check and metrics
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Suggestion lifecycle routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/suggestions", handler.ListSuggestions).Methods("GET")
	api.HandleFunc("/suggestions", handler.CreateSuggestion).Methods("POST")
	api.HandleFunc("/suggestions/{id}", handler.GetSuggestion).Methods("GET")
	api.HandleFunc("/suggestions/{id}/transition", handler.TransitionSuggestion).Methods("POST")
	api.HandleFunc("/suggestions/{id}/measurement", handler.GetMeasurement).Methods("GET")

	// Measurement routes
	api.HandleFunc("/measurements/{id}/measure", handler.ForceMeasure).Methods("POST")

	// Ledger routes
	api.HandleFunc("/users/{id}/ledger", handler.ListLedger).Methods("GET")
	api.HandleFunc("/users/{id}/balance", handler.GetBalance).Methods("GET")

	return r
}

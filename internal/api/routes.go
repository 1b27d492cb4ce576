package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Quote routes; latest is registered before the date pattern
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/quotes", handler.GetQuotes).Methods("GET")
	api.HandleFunc("/quotes/latest", handler.GetLatestQuote).Methods("GET")
	api.HandleFunc("/quotes/{date}", handler.GetQuote).Methods("GET")

	return r
}

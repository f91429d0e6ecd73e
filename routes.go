package main

import (
	"net/http"

	"github.com/jwgv/QuickTone/middleware"

	"github.com/gorilla/mux"
)

// setupRoutes configures all HTTP routes for the API
func setupRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/v1").Subrouter()

	// Analysis endpoints
	api.HandleFunc("/sentiment", analyzeSentiment).Methods(http.MethodPost)
	api.HandleFunc("/sentiment/batch", analyzeBatchSentiment).Methods(http.MethodPost)

	// Model management endpoints
	api.HandleFunc("/models/warm", warmModels).Methods(http.MethodPost)
	api.HandleFunc("/models/status", getModelStatus).Methods(http.MethodGet)
	api.Handle("/models/clear",
		middleware.AdminOnly(conf.Auth.AdminAPIKey)(http.HandlerFunc(clearModels))).
		Methods(http.MethodDelete)

	// Health and stats endpoints
	router.HandleFunc("/health", getHealthStatus).Methods(http.MethodGet)
	router.HandleFunc("/stats", getStats).Methods(http.MethodGet)

	// Help endpoint
	router.HandleFunc("/", helpHandler).Methods(http.MethodGet)
}

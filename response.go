package main

import (
	"encoding/json"
	"net/http"
)

// APIResponse handles consistent header setting and JSON responses. It
// centralizes the X-Cache-Status and X-Backend headers so handlers stay
// small.
type APIResponse struct {
	w           http.ResponseWriter
	cacheStatus string
	backend     string
}

// Respond creates a response helper
func Respond(w http.ResponseWriter) *APIResponse {
	return &APIResponse{w: w}
}

// SetCacheStatus sets the X-Cache-Status header value
func (a *APIResponse) SetCacheStatus(status string) *APIResponse {
	a.cacheStatus = status
	return a
}

// SetBackend sets the X-Backend header value
func (a *APIResponse) SetBackend(backend string) *APIResponse {
	a.backend = backend
	return a
}

func (a *APIResponse) writeHeaders() {
	a.w.Header().Set("Content-Type", "application/json")
	if a.cacheStatus != "" {
		a.w.Header().Set("X-Cache-Status", a.cacheStatus)
	}
	if a.backend != "" {
		a.w.Header().Set("X-Backend", a.backend)
	}
}

// JSON writes headers and encodes data as JSON (200 OK)
func (a *APIResponse) JSON(data interface{}) error {
	a.writeHeaders()
	return json.NewEncoder(a.w).Encode(data)
}

// Error writes headers, sets the status code, and encodes an error response
func (a *APIResponse) Error(statusCode int, message string) error {
	a.writeHeaders()
	a.w.WriteHeader(statusCode)
	return json.NewEncoder(a.w).Encode(errorResponse{Error: message})
}

// Package handlers exposes the export/import job API over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"corpushub/internal/contextutil"
)

// JobRunner executes export and import jobs in the background.
type JobRunner interface {
	RunExport(ctx context.Context, jobID string) error
	RunImport(ctx context.Context, jobID, actorEmail string) error
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// backgroundContext returns a fresh context carrying the request's logger,
// for work that outlives the request.
func backgroundContext(ctx context.Context) context.Context {
	return contextutil.WithLogger(context.Background(), contextutil.LoggerFromContext(ctx))
}

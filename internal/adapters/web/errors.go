package web

import (
	"encoding/json"
	"net/http"
	"strings"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps a service-layer error onto an HTTP status: missing
// entities become 404, everything else 500. The carts and engines never
// produce validation errors for in-range edits (inputs clamp instead), so a
// 4xx here always means a bad reference.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "not found"), strings.Contains(msg, "expired"):
		writeError(w, r, msg, "NOT_FOUND", http.StatusNotFound)
	case strings.Contains(msg, "not available"), strings.Contains(msg, "is blocked"):
		writeError(w, r, msg, "DATE_UNAVAILABLE", http.StatusConflict)
	default:
		writeError(w, r, msg, "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

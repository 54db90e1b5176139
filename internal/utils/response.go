package utils

import (
	"encoding/json"
	"net/http"
	"time"

	"ms-scheduler/internal/apperrors"
)

type APIResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now(),
	}
}

// StatusFor maps an error to the HTTP status it is reported with.
func StatusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.BadRequest:
		return http.StatusBadRequest
	case apperrors.NotFound:
		return http.StatusNotFound
	case apperrors.Forbidden:
		return http.StatusForbidden
	case apperrors.Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError reports err with its mapped status. Internal errors are reported
// with a generic message.
func WriteError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	message := apperrors.MessageOf(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		message = "Server error"
	}
	WriteJSON(w, status, ErrorResponse(message, detail))
}

package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"rentaltoll-backend/internal/domain"
	"rentaltoll-backend/internal/logger"
	"rentaltoll-backend/internal/security"
)

var errUnauthorized = errors.New("unauthorized")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps service errors onto HTTP status codes. Unexpected errors
// are logged and reported with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrRentalArchived):
		status = http.StatusConflict
	case errors.Is(err, errUnauthorized),
		errors.Is(err, security.ErrInvalidToken),
		errors.Is(err, security.ErrExpiredToken):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func badRequest(w http.ResponseWriter, r *http.Request, msg string) {
	writeError(w, r, invalid(msg))
}

func invalid(msg string) error {
	return &inputError{msg: msg}
}

type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Unwrap() error { return domain.ErrInvalidInput }

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return invalid("malformed request body: " + err.Error())
	}
	return nil
}

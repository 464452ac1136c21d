package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/templui/goalcoach/internal/repository"
	"github.com/templui/goalcoach/internal/service"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		return fmt.Errorf("malformed JSON body: %w", service.ErrInvalidInput)
	}
	return nil
}

// writeError maps domain errors to status codes. Anything unrecognized is
// logged with attrs and answered with a generic 500.
func writeError(w http.ResponseWriter, err error, attrs ...any) {
	status, message := classify(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", append([]any{"error", err}, attrs...)...)
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrProposalAlreadyConfirmed):
		return http.StatusBadRequest, service.ErrProposalAlreadyConfirmed.Error()
	case errors.Is(err, service.ErrProposalNotFound):
		return http.StatusBadRequest, service.ErrProposalNotFound.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, service.ErrUnauthorized.Error()
	case errors.Is(err, service.ErrEmailAlreadyExists):
		return http.StatusConflict, service.ErrEmailAlreadyExists.Error()
	case errors.Is(err, repository.ErrGoalNotFound):
		return http.StatusNotFound, "goal not found"
	case errors.Is(err, repository.ErrMessageNotFound):
		return http.StatusNotFound, "message not found"
	case errors.Is(err, repository.ErrGoalDayNotFound):
		return http.StatusNotFound, "day not found"
	case errors.Is(err, repository.ErrProfileNotFound), errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "profile not found"
	}
	return http.StatusInternalServerError, "internal error"
}

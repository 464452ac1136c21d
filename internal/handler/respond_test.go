package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/templui/goalcoach/internal/llm"
	"github.com/templui/goalcoach/internal/repository"
	"github.com/templui/goalcoach/internal/service"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("title is required: %w", service.ErrInvalidInput), http.StatusBadRequest},
		{service.ErrProposalNotFound, http.StatusBadRequest},
		{service.ErrProposalAlreadyConfirmed, http.StatusBadRequest},
		{fmt.Errorf("invalid credentials: %w", service.ErrInvalidCredentials), http.StatusUnauthorized},
		{service.ErrEmailAlreadyExists, http.StatusConflict},
		{repository.ErrGoalNotFound, http.StatusNotFound},
		{repository.ErrMessageNotFound, http.StatusNotFound},
		{repository.ErrProfileNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: timeout", llm.ErrUpstream), http.StatusInternalServerError},
		{errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		status, _ := classify(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}

func TestClassifyUnauthorizedMessages(t *testing.T) {
	status, message := classify(fmt.Errorf("login: %w", service.ErrInvalidCredentials))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "invalid email or password", message)

	status, message = classify(fmt.Errorf("session expired: %w", service.ErrUnauthorized))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", message)
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: connection refused at 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestDecodeJSONRejectsMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{not json"))
	var v chatRequest

	err := decodeJSON(httptest.NewRecorder(), req, &v)

	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/templui/goalcoach/internal/model"
	"github.com/templui/goalcoach/internal/repository"
	"github.com/templui/goalcoach/internal/storage"
)

var ErrStorageDisabled = errors.New("export storage is not configured")

type GoalExport struct {
	Goal       *model.Goal      `json:"goal"`
	Days       []*model.GoalDay `json:"days"`
	Messages   []MessageView    `json:"messages"`
	ExportedAt time.Time        `json:"exportedAt"`
}

type ExportService struct {
	goals    repository.GoalRepository
	days     repository.GoalDayRepository
	messages *MessageService
	storage  storage.Storage
}

func NewExportService(
	goals repository.GoalRepository,
	days repository.GoalDayRepository,
	messages *MessageService,
	store storage.Storage,
) *ExportService {
	return &ExportService{
		goals:    goals,
		days:     days,
		messages: messages,
		storage:  store,
	}
}

func (s *ExportService) StorageEnabled() bool {
	return s.storage != nil
}

// Export collects a goal with all of its days and messages.
func (s *ExportService) Export(ctx context.Context, userID, goalID string) (*GoalExport, error) {
	goal, err := s.goals.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	days, err := s.days.Days(ctx, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load days: %w", err)
	}

	messages, err := s.messages.History(ctx, userID, goalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	return &GoalExport{
		Goal:       goal,
		Days:       days,
		Messages:   messages,
		ExportedAt: time.Now().UTC(),
	}, nil
}

// Archive stores the export as JSON and returns a temporary download URL.
func (s *ExportService) Archive(ctx context.Context, export *GoalExport) (string, error) {
	if s.storage == nil {
		return "", ErrStorageDisabled
	}

	body, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode export: %w", err)
	}

	key := path.Join("exports", export.Goal.UserID, export.Goal.ID, export.ExportedAt.Format("20060102T150405Z")+".json")

	err = s.storage.Save(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to store export: %w", err)
	}

	url, err := s.storage.PresignedURL(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to sign export url: %w", err)
	}

	return url, nil
}

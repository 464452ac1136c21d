package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/templui/goalcoach/internal/calendar"
	"github.com/templui/goalcoach/internal/intentupdate"
	"github.com/templui/goalcoach/internal/model"
	"github.com/templui/goalcoach/internal/repository"
)

// Message rewrites lost to a concurrent confirmation of another item in the
// same message are retried this many times.
const maxConfirmAttempts = 3

type ConfirmService struct {
	goals    repository.GoalRepository
	messages repository.MessageRepository
	days     repository.GoalDayRepository
	notes    *NotesService
}

func NewConfirmService(
	goals repository.GoalRepository,
	messages repository.MessageRepository,
	days repository.GoalDayRepository,
	notes *NotesService,
) *ConfirmService {
	return &ConfirmService{
		goals:    goals,
		messages: messages,
		days:     days,
		notes:    notes,
	}
}

// Confirm applies one pending item of an assistant message to its goal day
// and marks it confirmed in the stored message.
func (s *ConfirmService) Confirm(ctx context.Context, userID, goalID, messageID, itemID string) (*intentupdate.Item, error) {
	goalID = strings.TrimSpace(goalID)
	messageID = strings.TrimSpace(messageID)
	itemID = strings.TrimSpace(itemID)
	if goalID == "" || messageID == "" || itemID == "" {
		return nil, fmt.Errorf("goalId, messageId and itemId are required: %w", ErrInvalidInput)
	}

	goal, err := s.goals.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	message, err := s.messages.ByID(ctx, userID, goalID, messageID)
	if err != nil {
		return nil, err
	}

	updated, item := intentupdate.SetItemStatus(message.Content, itemID, intentupdate.StatusConfirmed)
	if item == nil {
		return nil, proposalLookupError(message.Content, itemID)
	}
	if !calendar.ValidDate(item.Date) {
		return nil, fmt.Errorf("proposal has invalid date %q: %w", item.Date, ErrProposalNotFound)
	}

	field := dayField(item.TargetField())
	if field == "" {
		return nil, fmt.Errorf("proposal targets unknown field %q: %w", item.Field, ErrProposalNotFound)
	}

	_, err = s.days.UpsertField(ctx, goalID, item.Date, field, item.Intent)
	if err != nil {
		return nil, fmt.Errorf("failed to apply update: %w", err)
	}

	if field == model.DayFieldAction && s.notes != nil {
		s.notes.Enrich(ctx, goal, item.Date)
	}

	previous := message.Content
	for attempt := 1; ; attempt++ {
		written, err := s.messages.UpdateContentIfUnchanged(ctx, messageID, previous, updated)
		if err != nil {
			return nil, fmt.Errorf("failed to update message: %w", err)
		}
		if written {
			break
		}
		if attempt == maxConfirmAttempts {
			return nil, fmt.Errorf("message kept changing during confirmation: %w", ErrProposalAlreadyConfirmed)
		}

		message, err = s.messages.ByID(ctx, userID, goalID, messageID)
		if err != nil {
			return nil, err
		}
		previous = message.Content

		var again *intentupdate.Item
		updated, again = intentupdate.SetItemStatus(previous, itemID, intentupdate.StatusConfirmed)
		if again == nil {
			return nil, proposalLookupError(previous, itemID)
		}
		slog.Debug("retrying message rewrite", "message_id", messageID, "item_id", itemID, "attempt", attempt)
	}

	return item, nil
}

func proposalLookupError(content, itemID string) error {
	found := intentupdate.FindItem(content, itemID)
	if found != nil && found.Status == intentupdate.StatusConfirmed {
		return ErrProposalAlreadyConfirmed
	}
	return ErrProposalNotFound
}

func dayField(field string) string {
	switch field {
	case intentupdate.FieldIntent:
		return model.DayFieldIntent
	case intentupdate.FieldAction:
		return model.DayFieldAction
	}
	return ""
}

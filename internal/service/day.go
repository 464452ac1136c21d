package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/templui/goalcoach/internal/calendar"
	"github.com/templui/goalcoach/internal/model"
	"github.com/templui/goalcoach/internal/validation"
)

type DayUpdate struct {
	Intent *string
	Action *string
}

// UpdateDay edits a day directly. Setting an action triggers notes
// enrichment the same way a confirmed action proposal does.
func (s *GoalService) UpdateDay(ctx context.Context, userID, goalID, date string, update DayUpdate) (*model.GoalDay, error) {
	if !calendar.ValidDate(date) {
		return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", ErrInvalidInput)
	}
	if update.Intent == nil && update.Action == nil {
		return nil, fmt.Errorf("intent or action is required: %w", ErrInvalidInput)
	}

	goal, err := s.repo.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	type change struct {
		field string
		text  string
	}
	var changes []change
	for _, c := range []struct {
		field string
		value *string
	}{
		{model.DayFieldIntent, update.Intent},
		{model.DayFieldAction, update.Action},
	} {
		if c.value == nil {
			continue
		}
		text := strings.TrimSpace(*c.value)
		err := validation.ValidateDayText(text)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", c.field, err, ErrInvalidInput)
		}
		changes = append(changes, change{field: c.field, text: text})
	}

	var day *model.GoalDay
	for _, c := range changes {
		day, err = s.dayRepo.UpsertField(ctx, goalID, date, c.field, c.text)
		if err != nil {
			return nil, fmt.Errorf("failed to update %s: %w", c.field, err)
		}
	}

	if update.Action != nil && day.ActionText() != "" && s.notes != nil {
		s.notes.Enrich(ctx, goal, date)
		return s.dayRepo.Day(ctx, goalID, date)
	}

	return day, nil
}

package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/templui/goalcoach/internal/llm"
	"github.com/templui/goalcoach/internal/model"
	"github.com/templui/goalcoach/internal/repository"
)

// NotesService writes a short generated reflection into a day's notes after
// its action is set. Enrichment never fails its caller.
type NotesService struct {
	provider llm.Provider
	days     repository.GoalDayRepository
	timeout  time.Duration
}

func NewNotesService(provider llm.Provider, days repository.GoalDayRepository, timeout time.Duration) *NotesService {
	return &NotesService{
		provider: provider,
		days:     days,
		timeout:  timeout,
	}
}

// Enrich reads the refreshed day and stores a note for it. Failures are
// logged and swallowed.
func (s *NotesService) Enrich(ctx context.Context, goal *model.Goal, date string) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	day, err := s.days.Day(ctx, goal.ID, date)
	if err != nil {
		slog.Warn("notes enrichment skipped", "error", err, "goal_id", goal.ID, "date", date)
		return
	}

	action := strings.TrimSpace(day.ActionText())
	if action == "" {
		return
	}

	var prompt string
	if intent := strings.TrimSpace(day.IntentText()); intent != "" {
		prompt = notesComparisonPrompt(goal, intent, action)
	} else {
		prompt = notesReflectionPrompt(goal, action)
	}

	note, err := s.provider.Complete(ctx, notesSystemPrompt, prompt)
	if err != nil {
		slog.Warn("notes enrichment failed", "error", err, "goal_id", goal.ID, "date", date)
		return
	}

	note = lo.Substring(strings.TrimSpace(note), 0, maxNotesLength)
	if note == "" {
		slog.Warn("notes enrichment returned empty note", "goal_id", goal.ID, "date", date)
		return
	}

	err = s.days.SetNotes(ctx, goal.ID, date, note)
	if err != nil {
		slog.Warn("failed to store notes", "error", err, "goal_id", goal.ID, "date", date)
	}
}

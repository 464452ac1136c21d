package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/templui/goalcoach/internal/calendar"
	"github.com/templui/goalcoach/internal/model"
	"github.com/templui/goalcoach/internal/repository"
	"github.com/templui/goalcoach/internal/validation"
)

type GoalService struct {
	repo     repository.GoalRepository
	dayRepo  repository.GoalDayRepository
	notes    *NotesService
	resolver *calendar.Resolver
}

func NewGoalService(
	repo repository.GoalRepository,
	dayRepo repository.GoalDayRepository,
	notes *NotesService,
	resolver *calendar.Resolver,
) *GoalService {
	return &GoalService{
		repo:     repo,
		dayRepo:  dayRepo,
		notes:    notes,
		resolver: resolver,
	}
}

// Create stores a goal and its day window for zone.
func (s *GoalService) Create(ctx context.Context, userID, title, description, zone string) (*model.Goal, error) {
	title = strings.TrimSpace(title)
	err := validation.ValidateGoalTitle(title)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err, ErrInvalidInput)
	}

	now := time.Now().UTC()
	goal := &model.Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.Create(ctx, goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	err = s.dayRepo.EnsureWindow(ctx, goal.ID, s.resolver.Window(zone))
	if err != nil {
		delErr := s.repo.Delete(ctx, userID, goal.ID)
		if delErr != nil {
			slog.Error("failed to delete goal during rollback", "error", delErr, "goal_id", goal.ID)
		}
		return nil, fmt.Errorf("failed to create goal days: %w", err)
	}

	return goal, nil
}

func (s *GoalService) ByID(ctx context.Context, userID, goalID string) (*model.Goal, error) {
	return s.repo.ByID(ctx, userID, goalID)
}

func (s *GoalService) Goals(ctx context.Context, userID, sortBy string) ([]*model.Goal, error) {
	return s.repo.Goals(ctx, userID, sortBy)
}

func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	return s.repo.Delete(ctx, userID, goalID)
}

// Window ensures the rolling window exists for zone and returns its days.
func (s *GoalService) Window(ctx context.Context, goalID, zone string) ([]*model.GoalDay, error) {
	dates := s.resolver.Window(zone)

	err := s.dayRepo.EnsureWindow(ctx, goalID, dates)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure day window: %w", err)
	}

	days, err := s.dayRepo.DaysBetween(ctx, goalID, dates[0], dates[len(dates)-1])
	if err != nil {
		return nil, fmt.Errorf("failed to load day window: %w", err)
	}

	return days, nil
}

// Days ensures the window for zone and returns every day of the goal.
func (s *GoalService) Days(ctx context.Context, userID, goalID, zone string) ([]*model.GoalDay, error) {
	_, err := s.repo.ByID(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	err = s.dayRepo.EnsureWindow(ctx, goalID, s.resolver.Window(zone))
	if err != nil {
		return nil, fmt.Errorf("failed to ensure day window: %w", err)
	}

	return s.dayRepo.Days(ctx, goalID)
}

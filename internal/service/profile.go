package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/templui/goalcoach/internal/calendar"
	"github.com/templui/goalcoach/internal/model"
	"github.com/templui/goalcoach/internal/repository"
	"github.com/templui/goalcoach/internal/validation"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	resolver    *calendar.Resolver
}

func NewProfileService(profileRepo repository.ProfileRepository, resolver *calendar.Resolver) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		resolver:    resolver,
	}
}

func (s *ProfileService) ByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	return s.profileRepo.ByUserID(ctx, userID)
}

// Update changes the fields that are set. The timezone must be a zone name
// from the time zone database.
func (s *ProfileService) Update(ctx context.Context, userID string, name, timezone *string) (*model.Profile, error) {
	profile, err := s.profileRepo.ByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		err := validation.ValidateName(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", err, ErrInvalidInput)
		}
		profile.Name = trimmed
	}

	if timezone != nil {
		zone := strings.TrimSpace(*timezone)
		err := validation.ValidateTimezone(s.resolver, zone)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", err, ErrInvalidInput)
		}
		profile.Timezone = zone
	}

	err = s.profileRepo.Update(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}

// Zone picks the zone for a request: a valid override first, then the
// stored preference, then the fallback zone.
func (s *ProfileService) Zone(ctx context.Context, userID, override string) (string, error) {
	override = strings.TrimSpace(override)
	if override != "" && s.resolver.Resolve(override) == override {
		return override, nil
	}

	profile, err := s.profileRepo.ByUserID(ctx, userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return calendar.FallbackZone, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load profile: %w", err)
	}

	return s.resolver.Resolve(profile.Timezone), nil
}

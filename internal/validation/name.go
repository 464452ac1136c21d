package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ValidateName validates profile name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	if utf8.RuneCountInString(trimmed) > 100 {
		return errors.New("name is too long (max 100 characters)")
	}

	return nil
}

func ValidateGoalTitle(title string) error {
	trimmed := strings.TrimSpace(title)

	if trimmed == "" {
		return errors.New("title is required")
	}

	if utf8.RuneCountInString(trimmed) > 200 {
		return errors.New("title is too long (max 200 characters)")
	}

	return nil
}

// ValidateDayText bounds intent and action text written to a goal day.
func ValidateDayText(text string) error {
	if utf8.RuneCountInString(text) > 500 {
		return errors.New("text is too long (max 500 characters)")
	}
	return nil
}

// ValidateChatMessage rejects empty and oversized chat messages.
func ValidateChatMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return errors.New("message is required")
	}
	if utf8.RuneCountInString(message) > 4000 {
		return errors.New("message is too long (max 4000 characters)")
	}
	return nil
}

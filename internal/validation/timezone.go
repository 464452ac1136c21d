package validation

import (
	"errors"

	"github.com/templui/goalcoach/internal/calendar"
)

// ValidateTimezone accepts only names the resolver can load.
func ValidateTimezone(resolver *calendar.Resolver, zone string) error {
	if zone == "" {
		return errors.New("timezone is required")
	}
	if resolver.Resolve(zone) != zone {
		return errors.New("unknown timezone")
	}
	return nil
}

// Package calendar resolves relative day references against a user's time
// zone. All dates are ISO calendar dates (YYYY-MM-DD) computed on the zoned
// wall clock, never from the server's local zone.
package calendar

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/patrickmn/go-cache"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	DateLayout  = "2006-01-02"
	HumanLayout = "Mon, Jan 2"

	FallbackZone = "UTC"

	Today     = "today"
	Tomorrow  = "tomorrow"
	Yesterday = "yesterday"

	// The rolling window covers one day back through five days ahead.
	WindowDaysBefore = 1
	WindowDaysAfter  = 5
)

var offsets = map[string]int{
	Yesterday: -1,
	Today:     0,
	Tomorrow:  1,
}

type Resolver struct {
	Now       func() time.Time
	locations *cache.Cache
}

func NewResolver() *Resolver {
	return &Resolver{
		Now:       time.Now,
		locations: cache.New(cache.NoExpiration, 0),
	}
}

// Resolve returns candidate when it names a zone in the time zone database,
// otherwise FallbackZone.
func (r *Resolver) Resolve(candidate string) string {
	candidate = strings.TrimSpace(candidate)
	if _, ok := r.load(candidate); ok {
		return candidate
	}
	return FallbackZone
}

// Location returns the loaded zone, falling back to UTC.
func (r *Resolver) Location(zone string) *time.Location {
	loc, ok := r.load(zone)
	if !ok {
		return time.UTC
	}
	return loc
}

func (r *Resolver) load(zone string) (*time.Location, bool) {
	// LoadLocation("") and LoadLocation("Local") succeed but mean the server
	// zone, which is exactly what must never leak into a user's dates.
	if zone == "" || zone == "Local" {
		return nil, false
	}
	if cached, found := r.locations.Get(zone); found {
		return cached.(*time.Location), true
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, false
	}
	r.locations.Set(zone, loc, cache.NoExpiration)
	return loc, true
}

// DateOffset returns the ISO date offset days away from today in zone.
func (r *Resolver) DateOffset(zone string, days int) string {
	return r.civil(zone, days).Format(DateLayout)
}

func (r *Resolver) civil(zone string, days int) time.Time {
	loc := r.Location(zone)
	y, m, d := r.Now().In(loc).Date()
	// Noon avoids DST transitions that skip midnight.
	return time.Date(y, m, d+days, 12, 0, 0, 0, loc)
}

func (r *Resolver) Today(zone string) string {
	return r.DateOffset(zone, 0)
}

func (r *Resolver) Tomorrow(zone string) string {
	return r.DateOffset(zone, 1)
}

func (r *Resolver) Yesterday(zone string) string {
	return r.DateOffset(zone, -1)
}

// HumanToday returns today in zone formatted like "Thu, Jan 2".
func (r *Resolver) HumanToday(zone string) string {
	return r.civil(zone, 0).Format(HumanLayout)
}

// Window returns the ISO dates of the rolling day window in ascending order.
func (r *Resolver) Window(zone string) []string {
	dates := make([]string, 0, WindowDaysBefore+WindowDaysAfter+1)
	for offset := -WindowDaysBefore; offset <= WindowDaysAfter; offset++ {
		dates = append(dates, r.DateOffset(zone, offset))
	}
	return dates
}

// Relative maps a keyword such as "today" to its ISO date and display label.
func (r *Resolver) Relative(zone, keyword string) (date, label string, ok bool) {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	offset, known := offsets[keyword]
	if !known {
		return "", "", false
	}
	return r.DateOffset(zone, offset), cases.Title(language.English).String(keyword), true
}

// Human formats an ISO date like "Thu, Jan 2". Unparsable input is returned
// unchanged.
func Human(isoDate string) string {
	t, err := time.Parse(DateLayout, isoDate)
	if err != nil {
		return isoDate
	}
	return t.Format(HumanLayout)
}

// ValidDate reports whether s is an ISO calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

package harmonize

import (
	"time"

	"github.com/anusha/bdaycal/internal/domain"
)

// Rules collects the tunables of the harmonization pipeline. They are passed
// explicitly into the Extractor and Generator so that tests can vary them
// without touching shared state.
type Rules struct {
	// SentinelYear is assigned when no plausible birth year can be found.
	SentinelYear int
	// MinYear is the lower bound of the plausible birth-year window.
	MinYear int
	// AlarmOffset is the notification trigger relative to start-of-day.
	AlarmOffset time.Duration
	// Now supplies the processing date for plausibility checks.
	Now func() time.Time
}

// DefaultRules returns the baseline rule set used in production.
func DefaultRules() Rules {
	return Rules{
		SentinelYear: domain.SentinelYear,
		MinYear:      1900,
		AlarmOffset:  9 * time.Hour,
		Now:          time.Now,
	}
}

func (r Rules) withDefaults() Rules {
	defaults := DefaultRules()
	if r.SentinelYear == 0 {
		r.SentinelYear = defaults.SentinelYear
	}
	if r.MinYear == 0 {
		r.MinYear = defaults.MinYear
	}
	if r.AlarmOffset == 0 {
		r.AlarmOffset = defaults.AlarmOffset
	}
	if r.Now == nil {
		r.Now = defaults.Now
	}
	return r
}

// plausible reports whether the year falls inside the accepted human-lifespan
// window relative to the processing date.
func (r Rules) plausible(year int) bool {
	return year >= r.MinYear && year <= r.Now().Year()
}

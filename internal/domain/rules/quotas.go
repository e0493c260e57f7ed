package rules

import "time"

const (
	DefaultFreeInteractions = 10
	DefaultGrantedDays      = 30
	MinProfileAge           = 18
	DefaultMaxProfileAge    = 99

	// UnlimitedInteractions is reported as the remaining count for active subscriptions.
	UnlimitedInteractions = -1
)

func GrantExpiry(now time.Time, days int) time.Time {
	if days <= 0 {
		days = DefaultGrantedDays
	}
	return now.UTC().AddDate(0, 0, days)
}

// ClampAge raises ages below the legal minimum instead of rejecting them.
func ClampAge(age int) int {
	if age < MinProfileAge {
		return MinProfileAge
	}
	return age
}

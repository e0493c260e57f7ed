package enums

import "strings"

type FilterMode string

const (
	FilterModeAll            FilterMode = "all"
	FilterModeSameCity       FilterMode = "same_city"
	FilterModeRecentlyJoined FilterMode = "recently_joined"
)

// ParseFilterMode accepts the snake_case names plus the camelCase spellings
// older clients send. Empty input means FilterModeAll.
func ParseFilterMode(raw string) (FilterMode, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all":
		return FilterModeAll, true
	case "same_city", "samecity":
		return FilterModeSameCity, true
	case "recently_joined", "recentlyjoined", "recent":
		return FilterModeRecentlyJoined, true
	default:
		return "", false
	}
}

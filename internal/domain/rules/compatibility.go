package rules

import (
	"sort"
	"strings"

	"github.com/ivankudzin/paquera/internal/domain/model"
)

const (
	BaseCompatibilityScore = 50
	MutualHobbyBonus       = 10
	SameCityBonus          = 15
	GenderMatchBonus       = 20
	// MaxCompatibilityScore stays below 100 so no pair is ever shown as a certain match.
	MaxCompatibilityScore = 99
)

var openPreferences = map[string]struct{}{
	"any":      {},
	"other":    {},
	"everyone": {},
	"all":      {},
}

// CompatibilityScore scores candidate from viewer's perspective. The result
// is always within [BaseCompatibilityScore, MaxCompatibilityScore].
func CompatibilityScore(viewer, candidate model.Profile) (int, []string) {
	mutual := MutualHobbies(viewer.Hobbies, candidate.Hobbies)

	score := BaseCompatibilityScore + MutualHobbyBonus*len(mutual)
	if SameCity(viewer.City, candidate.City) {
		score += SameCityBonus
	}
	if GenderPreferencesCompatible(viewer, candidate) {
		score += GenderMatchBonus
	}
	if score > MaxCompatibilityScore {
		score = MaxCompatibilityScore
	}

	return score, mutual
}

// MutualHobbies returns the sorted intersection of two tag sets, computed
// from the viewer's tags.
func MutualHobbies(viewer, candidate []string) []string {
	if len(viewer) == 0 || len(candidate) == 0 {
		return []string{}
	}

	theirs := make(map[string]struct{}, len(candidate))
	for _, tag := range candidate {
		theirs[normalizeTag(tag)] = struct{}{}
	}

	seen := make(map[string]struct{}, len(viewer))
	out := make([]string, 0, len(viewer))
	for _, tag := range viewer {
		key := normalizeTag(tag)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := theirs[key]; ok {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

func SameCity(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

func GenderPreferencesCompatible(a, b model.Profile) bool {
	return accepts(a.LookingFor, b.Gender) && accepts(b.LookingFor, a.Gender)
}

func accepts(lookingFor, gender string) bool {
	lookingFor = normalizeTag(lookingFor)
	if _, ok := openPreferences[lookingFor]; ok {
		return true
	}
	gender = normalizeTag(gender)
	return lookingFor != "" && lookingFor == gender
}

func normalizeTag(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

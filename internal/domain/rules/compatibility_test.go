package rules

import (
	"testing"

	"github.com/ivankudzin/paquera/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompatibilityScoreScenario(t *testing.T) {
	viewer := model.Profile{
		Gender:     "female",
		LookingFor: "male",
		City:       "Centro",
		Hobbies:    []string{"music", "sports"},
	}
	candidate := model.Profile{
		Gender:     "male",
		LookingFor: "female",
		City:       "Centro",
		Hobbies:    []string{"music", "travel"},
	}

	score, mutual := CompatibilityScore(viewer, candidate)
	assert.Equal(t, 95, score)
	assert.Equal(t, []string{"music"}, mutual)
}

func TestCompatibilityScoreBounds(t *testing.T) {
	tests := []struct {
		name      string
		viewer    model.Profile
		candidate model.Profile
		want      int
	}{
		{
			name:      "nothing in common",
			viewer:    model.Profile{Gender: "male", LookingFor: "female", City: "Centro"},
			candidate: model.Profile{Gender: "male", LookingFor: "male", City: "Lapa"},
			want:      BaseCompatibilityScore,
		},
		{
			name: "clamped at maximum",
			viewer: model.Profile{
				Gender: "female", LookingFor: "any", City: "Centro",
				Hobbies: []string{"a", "b", "c", "d", "e"},
			},
			candidate: model.Profile{
				Gender: "male", LookingFor: "female", City: "centro",
				Hobbies: []string{"e", "d", "c", "b", "a"},
			},
			want: MaxCompatibilityScore,
		},
		{
			name:      "one sided preference gets no gender bonus",
			viewer:    model.Profile{Gender: "female", LookingFor: "male", City: "Centro"},
			candidate: model.Profile{Gender: "male", LookingFor: "male", City: "Centro"},
			want:      BaseCompatibilityScore + SameCityBonus,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			score, _ := CompatibilityScore(tc.viewer, tc.candidate)
			assert.Equal(t, tc.want, score)
			assert.GreaterOrEqual(t, score, BaseCompatibilityScore)
			assert.LessOrEqual(t, score, MaxCompatibilityScore)
		})
	}
}

func TestCompatibilityScoreIsReproducible(t *testing.T) {
	viewer := model.Profile{Gender: "male", LookingFor: "other", City: "Lapa", Hobbies: []string{"chess", "Surf"}}
	candidate := model.Profile{Gender: "female", LookingFor: "everyone", City: "Lapa", Hobbies: []string{"surf"}}

	first, firstMutual := CompatibilityScore(viewer, candidate)
	for i := 0; i < 5; i++ {
		score, mutual := CompatibilityScore(viewer, candidate)
		require.Equal(t, first, score)
		require.Equal(t, firstMutual, mutual)
	}
	assert.Equal(t, 95, first)
}

func TestMutualHobbiesIgnoresDuplicatesAndCase(t *testing.T) {
	got := MutualHobbies([]string{"Music", "music", " travel "}, []string{"TRAVEL", "music"})
	assert.Equal(t, []string{"music", "travel"}, got)
	assert.Empty(t, MutualHobbies(nil, []string{"music"}))
}

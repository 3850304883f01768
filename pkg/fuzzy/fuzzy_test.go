package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, LevenshteinDistance("picnic", "picnic"))
	assert.Equal(t, 1, LevenshteinDistance("picnic", "picnik"))
	assert.Equal(t, 3, LevenshteinDistance("", "abc"))
	// Case differences vanish under normalization
	assert.Equal(t, 0, LevenshteinDistance("Picnic", "picnic"))
}

func TestMatchMoment(t *testing.T) {
	assert.True(t, MatchMoment("picnik", "Summer Picnic", "", ""))
	assert.True(t, MatchMoment("grad", "Graduation Day", "", ""))
	assert.True(t, MatchMoment("cake", "Birthday", "order the cake early", ""))
	assert.True(t, MatchMoment("flights", "Trip", "", "remember to book flights"))
	assert.False(t, MatchMoment("dentist", "Summer Picnic", "at the lake", ""))
}

func TestScoreMomentPrefersTitleMatches(t *testing.T) {
	titleHit := ScoreMoment("picnic", "Summer Picnic", "", "")
	descHit := ScoreMoment("picnic", "Day Out", "a picnic at the lake", "")

	assert.Greater(t, titleHit, descHit)
	assert.Greater(t, descHit, 0.0)
}

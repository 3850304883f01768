package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLabel(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		target time.Time
		want   string
	}{
		{
			name:   "passed event",
			target: now.Add(-time.Hour),
			want:   "Event passed!",
		},
		{
			name:   "exactly now counts as passed",
			target: now,
			want:   "Event passed!",
		},
		{
			name:   "single day is singular",
			target: now.Add(36 * time.Hour),
			want:   "1 day left",
		},
		{
			name:   "several days",
			target: now.AddDate(0, 0, 5),
			want:   "5 days left",
		},
		{
			name:   "31 days stays in days",
			target: now.AddDate(0, 0, 31),
			want:   "31 days left",
		},
		{
			name:   "32 days rolls into months",
			target: now.AddDate(0, 0, 32),
			want:   "1 month, 2 days left",
		},
		{
			name:   "two months plural",
			target: now.AddDate(0, 0, 65),
			want:   "2 months, 5 days left",
		},
		{
			name:   "exact month boundary",
			target: now.AddDate(0, 0, 60),
			want:   "2 months, 0 days left",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Label(tt.target, now))
		})
	}
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 5, DaysUntil(now.AddDate(0, 0, 5), now))
	assert.Equal(t, 0, DaysUntil(now, now))
	// Past dates clamp to zero instead of going negative
	assert.Equal(t, 0, DaysUntil(now.AddDate(0, 0, -10), now))
	// Partial days floor down
	assert.Equal(t, 1, DaysUntil(now.Add(47*time.Hour), now))
}

func TestUntil(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	parts := Until(now.AddDate(0, 0, 40), now)
	assert.Equal(t, 40, parts.Days)
	assert.Equal(t, 1, parts.Months)
	assert.Equal(t, 10, parts.RemainingDays)
}

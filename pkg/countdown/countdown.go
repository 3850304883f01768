package countdown

import (
	"fmt"
	"time"
)

// PassedLabel is returned once the target date is now or already behind us.
const PassedLabel = "Event passed!"

// dayMillis is one day in milliseconds. All arithmetic here is plain epoch
// subtraction; there is no timezone or DST correction beyond what the parsed
// time carries.
const dayMillis = 24 * 60 * 60 * 1000

// Parts is the structured decomposition of the time remaining until a date.
// Months are a 30-day approximation, not calendar months.
type Parts struct {
	Days          int `json:"days"`
	Months        int `json:"months"`
	RemainingDays int `json:"remainingDays"`
}

// DaysUntil returns the whole days between now and target, floored and
// clamped to zero so it never goes negative.
func DaysUntil(target, now time.Time) int {
	diff := target.UnixMilli() - now.UnixMilli()
	if diff <= 0 {
		return 0
	}
	return int(diff / dayMillis)
}

// Until decomposes the remaining time into days plus an approximate
// months/days split (months = days/30, remainder = days%30).
func Until(target, now time.Time) Parts {
	days := DaysUntil(target, now)
	return Parts{
		Days:          days,
		Months:        days / 30,
		RemainingDays: days % 30,
	}
}

// Label renders the remaining time as a human-readable countdown string.
// Past or exactly-now targets collapse to PassedLabel. Beyond 31 days the
// label switches to the months/days form.
func Label(target, now time.Time) string {
	diff := target.UnixMilli() - now.UnixMilli()
	if diff <= 0 {
		return PassedLabel
	}

	days := int(diff / dayMillis)
	if days > 31 {
		months := days / 30
		remaining := days % 30
		return fmt.Sprintf("%d %s, %d %s left", months, pluralize(months, "month"), remaining, pluralize(remaining, "day"))
	}
	return fmt.Sprintf("%d %s left", days, pluralize(days, "day"))
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

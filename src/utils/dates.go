package utils

import "time"

// -----------------------------------------------------------------------------

// StartOfDay drops the clock part of t in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// -----------------------------------------------------------------------------

// DaysBack returns from, from-1d, ..., from-(n-1)d as calendar dates.
// AddDate handles month and year boundaries.
func DaysBack(from time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	start := StartOfDay(from)
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, -i)
	}
	return dates
}

// -----------------------------------------------------------------------------

// PreviousDay is the fallback date for day d.
func PreviousDay(d time.Time) time.Time {
	return StartOfDay(d).AddDate(0, 0, -1)
}

// -----------------------------------------------------------------------------

func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}

// -----------------------------------------------------------------------------

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// -----------------------------------------------------------------------------

// ClampDays bounds a requested day count to [1, max]. The second result
// reports whether the request exceeded max.
func ClampDays(days, max int) (int, bool) {
	if max <= 0 || max > MaxDays {
		max = MaxDays
	}
	switch {
	case days > max:
		return max, true
	case days < 1:
		return 1, false
	default:
		return days, false
	}
}

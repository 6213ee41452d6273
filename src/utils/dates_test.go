package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBackCrossesMonthAndYear(t *testing.T) {
	from := time.Date(2024, time.January, 2, 17, 45, 0, 0, time.UTC)

	dates := DaysBack(from, 4)
	require.Len(t, dates, 4)

	got := make([]string, len(dates))
	for i, d := range dates {
		got[i] = FormatDate(d)
	}
	assert.Equal(t, []string{"02.01.2024", "01.01.2024", "31.12.2023", "30.12.2023"}, got)
}

func TestDaysBackLeapYear(t *testing.T) {
	dates := DaysBack(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), 2)
	assert.Equal(t, "29.02.2024", FormatDate(dates[1]))
}

func TestDaysBackEmpty(t *testing.T) {
	assert.Nil(t, DaysBack(time.Now(), 0))
}

func TestPreviousDay(t *testing.T) {
	d := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "30.04.2024", FormatDate(PreviousDay(d)))
}

func TestParseDateRoundTrip(t *testing.T) {
	d, err := ParseDate("05.11.2023")
	require.NoError(t, err)
	assert.Equal(t, "05.11.2023", FormatDate(d))

	_, err = ParseDate("2023-11-05")
	assert.Error(t, err)
}

func TestClampDays(t *testing.T) {
	cases := []struct {
		in, want  int
		truncated bool
	}{
		{in: 1, want: 1},
		{in: 10, want: 10},
		{in: 11, want: 10, truncated: true},
		{in: 15, want: 10, truncated: true},
		{in: 0, want: 1},
		{in: -3, want: 1},
	}
	for _, c := range cases {
		got, truncated := ClampDays(c.in, MaxDays)
		assert.Equal(t, c.want, got, "days=%d", c.in)
		assert.Equal(t, c.truncated, truncated, "days=%d", c.in)
	}

	got, truncated := ClampDays(5, 3)
	assert.Equal(t, 3, got)
	assert.True(t, truncated)
}

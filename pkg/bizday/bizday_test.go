package bizday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAdjust_Properties(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		in := start.AddDate(0, 0, i)
		out := FriSat.Adjust(in)

		require.False(t, out.Before(in), "moved backward: %s -> %s", in, out)
		require.Equal(t, out, FriSat.Adjust(out), "not idempotent for %s", in)
		require.NotEqual(t, time.Friday, out.Weekday())
		require.NotEqual(t, time.Saturday, out.Weekday())
	}
}

func TestAdjust_FridayRollsToSunday(t *testing.T) {
	fri := time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Friday, fri.Weekday())
	require.Equal(t, fri.AddDate(0, 0, 2), FriSat.Adjust(fri))
}

func TestAddDays_NinetyDayButtonLandingOnFriday(t *testing.T) {
	// 2025-07-19 + 90 days = 2025-10-17 (Friday)
	start := time.Date(2025, 7, 19, 0, 0, 0, 0, time.UTC)
	raw := start.AddDate(0, 0, 90)
	require.Equal(t, time.Friday, raw.Weekday())

	got := FriSat.AddDays(start, 90)
	require.Equal(t, raw.AddDate(0, 0, 2), got)
	require.Equal(t, time.Sunday, got.Weekday())
}

func TestAddMonths_ClampsMonthEnd(t *testing.T) {
	jan31 := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	got := addMonthsClamped(jan31, 1)
	require.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), got)

	got = addMonthsClamped(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), 1)
	require.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	got = addMonthsClamped(time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC), 3)
	require.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), got)
}

func TestSatSun(t *testing.T) {
	sat := time.Date(2025, 10, 18, 0, 0, 0, 0, time.UTC)
	require.Equal(t, time.Monday, SatSun.Adjust(sat).Weekday())
	require.True(t, SatSun.IsBusinessDay(time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC)))
}

func TestParseWeekendRule(t *testing.T) {
	r, err := ParseWeekendRule("")
	require.NoError(t, err)
	require.Equal(t, "fri_sat", r.String())

	_, err = ParseWeekendRule("sun_mon")
	require.Error(t, err)
}

package civiltime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amsterdam(t *testing.T) *Converter {
	t.Helper()
	c, err := New("Europe/Amsterdam")
	require.NoError(t, err)
	return c
}

func TestToInstantUsesOffsetOfConvertedDate(t *testing.T) {
	c := amsterdam(t)

	summer, err := c.ToInstant("2025-09-28", "22-30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 28, 20, 30, 0, 0, time.UTC), summer)

	winter, err := c.ToInstant("2025-01-15", "12-00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 11, 0, 0, 0, time.UTC), winter)
}

func TestToCivil(t *testing.T) {
	c := amsterdam(t)

	date, slot := c.ToCivil(time.Date(2025, 9, 28, 22, 59, 59, 0, time.UTC))
	assert.Equal(t, "2025-09-29", date)
	assert.Equal(t, "00-59", slot)
}

func TestRoundTripAcrossTransitions(t *testing.T) {
	c := amsterdam(t)

	ranges := [][2]time.Time{
		{time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC), time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)},
		{time.Date(2025, 10, 24, 0, 0, 0, 0, time.UTC), time.Date(2025, 10, 29, 0, 0, 0, 0, time.UTC)},
	}
	for _, r := range ranges {
		for wall := r[0]; wall.Before(r[1]); wall = wall.Add(15 * time.Minute) {
			date := wall.Format(DateLayout)
			slot := wall.Format(SlotLayout)
			if date == "2025-03-30" && wall.Hour() == 2 {
				// skipped hour
				continue
			}
			instant, err := c.ToInstant(date, slot)
			require.NoError(t, err)

			gotDate, gotSlot := c.ToCivil(instant)
			assert.Equal(t, date, gotDate)
			assert.Equal(t, slot, gotSlot)
		}
	}
}

func TestSkippedHourShiftsForward(t *testing.T) {
	c := amsterdam(t)

	instant, err := c.ToInstant("2025-03-30", "02-30")
	require.NoError(t, err)

	date, slot := c.ToCivil(instant)
	assert.Equal(t, "2025-03-30", date)
	assert.Equal(t, "03-30", slot)
}

func TestKeyOrderMatchesChronologicalOrder(t *testing.T) {
	c := amsterdam(t)

	start := time.Date(2024, 10, 20, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	var prevKey string
	var prevInstant time.Time
	for wall := start; wall.Before(end); wall = wall.Add(45 * time.Minute) {
		date := wall.Format(DateLayout)
		slot := wall.Format(SlotLayout)
		if date == "2025-03-30" && wall.Hour() == 2 {
			continue
		}
		instant, err := c.ToInstant(date, slot)
		require.NoError(t, err)

		key := date + "/" + slot
		if prevKey != "" {
			require.Less(t, prevKey, key)
			require.True(t, instant.After(prevInstant), "%s should be after %s", key, prevKey)
		}
		prevKey, prevInstant = key, instant
	}
}

func TestNormalizeSlot(t *testing.T) {
	cases := map[string]string{
		"9:05":  "09-05",
		"09:05": "09-05",
		"23:59": "23-59",
		"00-00": "00-00",
	}
	for in, want := range cases {
		got, err := NormalizeSlot(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, bad := range []string{"", "9", "24:00", "12:60", "12:5", "123:00", "ab:cd"} {
		_, err := NormalizeSlot(bad)
		assert.ErrorIs(t, err, ErrInvalidTime, bad)
	}
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2025-09-28")
	require.NoError(t, err)

	for _, bad := range []string{"2025-9-28", "2025-13-01", "2025-02-30", "28-09-2025", ""} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestSlotLabel(t *testing.T) {
	assert.Equal(t, "22:45", SlotLabel("22-45"))
	assert.True(t, ValidSlot("22-45"))
	assert.False(t, ValidSlot("2-45"))
	assert.False(t, ValidSlot("22-45.json"))
}

func TestNewRejectsUnknownZone(t *testing.T) {
	_, err := New("Mars/Olympus_Mons")
	assert.Error(t, err)
}

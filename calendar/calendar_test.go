package calendar_test

import (
	"encoding/json"
	"smartcalendar/calendar"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate(t *testing.T) {
	t.Run("parse and format", func(t *testing.T) {
		d, err := calendar.ParseDate("2024-01-02")
		require.NoError(t, err)
		assert.Equal(t, calendar.Date{Year: 2024, Month: time.January, Day: 2}, d)
		assert.Equal(t, "2024-01-02", d.String())
	})

	t.Run("parse invalid", func(t *testing.T) {
		_, err := calendar.ParseDate("02/01/2024")
		require.Error(t, err)
	})

	t.Run("json round trip", func(t *testing.T) {
		b, err := json.Marshal(calendar.Date{Year: 2024, Month: time.March, Day: 9})
		require.NoError(t, err)
		assert.Equal(t, `"2024-03-09"`, string(b))

		var d calendar.Date
		require.NoError(t, json.Unmarshal([]byte(`null`), &d))
		assert.True(t, d.IsZero())
	})

	t.Run("scan", func(t *testing.T) {
		var d calendar.Date
		require.NoError(t, d.Scan(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)))
		assert.Equal(t, "2024-05-06", d.String())

		require.NoError(t, d.Scan([]byte("2024-05-07T00:00:00Z")))
		assert.Equal(t, "2024-05-07", d.String())

		require.NoError(t, d.Scan(nil))
		assert.True(t, d.IsZero())

		v, err := d.Value()
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("arithmetic", func(t *testing.T) {
		d := calendar.Date{Year: 2024, Month: time.February, Day: 28}
		assert.Equal(t, "2024-02-29", d.AddDays(1).String())
		assert.True(t, d.Before(d.AddDays(1)))
		assert.True(t, d.AddDays(1).After(d))
	})
}

func TestClock(t *testing.T) {
	c, err := calendar.ParseClock("10:30")
	require.NoError(t, err)
	assert.Equal(t, calendar.NewClock(10, 30), c)
	assert.Equal(t, "10:30", c.String())

	c, err = calendar.ParseClock("23:59:59")
	require.NoError(t, err)
	assert.Equal(t, calendar.NewClock(23, 59), c)

	_, err = calendar.ParseClock("25:00")
	require.Error(t, err)

	var scanned calendar.Clock
	require.NoError(t, scanned.Scan(time.Date(0, 1, 1, 8, 15, 0, 0, time.UTC)))
	assert.Equal(t, calendar.NewClock(8, 15), scanned)
	require.NoError(t, scanned.Scan([]byte("09:45:00")))
	assert.Equal(t, calendar.NewClock(9, 45), scanned)

	v, err := calendar.NewClock(9, 5).Value()
	require.NoError(t, err)
	assert.Equal(t, "09:05:00", v)
}

func TestRecurrence(t *testing.T) {
	assert.Equal(t, calendar.RecurrenceNone, calendar.Recurrence("").Normalize())
	assert.Equal(t, calendar.RecurrenceWeekly, calendar.Recurrence("weekly").Normalize())
	assert.NoError(t, calendar.Recurrence("monthly").Validate())
	assert.Error(t, calendar.Recurrence("HOURLY").Validate())
	assert.False(t, calendar.RecurrenceNone.Repeats())
	assert.True(t, calendar.RecurrenceYearly.Repeats())
}

package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_DateTime(t *testing.T) {
	manila, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	tests := []struct {
		name  string
		date  string
		clock string
		want  time.Time
	}{
		{"plain", "2026-03-03", "10:00", time.Date(2026, 3, 3, 10, 0, 0, 0, manila)},
		{"seconds", "2026-03-03", "14:30:00", time.Date(2026, 3, 3, 14, 30, 0, 0, manila)},
		{"timestamp date", "2026-03-03T00:00:00Z", "09:15:00", time.Date(2026, 3, 3, 9, 15, 0, 0, manila)},
		{"twelve hour", "2026-03-03", "2:45 PM", time.Date(2026, 3, 3, 14, 45, 0, 0, manila)},
		{"postgres time", "2026-03-03 00:00:00", "0000-01-01T08:05:00Z", time.Date(2026, 3, 3, 8, 5, 0, 0, manila)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Context{BookingDate: tt.date, BookingTime: tt.clock}
			got, err := c.DateTime(manila)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestContext_DateTimeInvalid(t *testing.T) {
	_, err := (&Context{BookingDate: "next tuesday", BookingTime: "10:00"}).DateTime(time.UTC)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = (&Context{BookingDate: "2026-03-03", BookingTime: "noon"}).DateTime(time.UTC)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestContext_Formatting(t *testing.T) {
	c := &Context{BookingDate: "2026-03-03", BookingTime: "14:30:00"}
	assert.Equal(t, "March 3, 2026", c.FormattedDate())
	assert.Equal(t, "2:30 PM", c.FormattedTime())

	raw := &Context{BookingDate: "TBD", BookingTime: "afternoon"}
	assert.Equal(t, "TBD", raw.FormattedDate())
	assert.Equal(t, "afternoon", raw.FormattedTime())
}

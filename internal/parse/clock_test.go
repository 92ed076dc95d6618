package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClock(t *testing.T) {
	testCases := []struct {
		name      string
		raw       string
		expected  int
		expectErr bool
	}{
		{name: "Padded", raw: "09:00", expected: 540},
		{name: "Unpadded hour", raw: "9:30", expected: 570},
		{name: "No separator", raw: "1715", expected: 1035},
		{name: "Dot separator", raw: "16.45", expected: 1005},
		{name: "Midnight", raw: "00:00", expected: 0},
		{name: "End of day", raw: "24:00", expected: MinutesPerDay},
		{name: "Surrounding spaces", raw: "  08:05 ", expected: 485},
		{name: "Past end of day", raw: "24:30", expectErr: true},
		{name: "Bad minutes", raw: "10:75", expectErr: true},
		{name: "Hour too large", raw: "25:00", expectErr: true},
		{name: "Garbage", raw: "noon", expectErr: true},
		{name: "Empty", raw: "", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Clock(tc.raw)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "09:05", FormatClock(545))
	assert.Equal(t, "24:00", FormatClock(MinutesPerDay))
}

func TestDate(t *testing.T) {
	loc, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	d, err := Date("2026-10-20", loc)
	require.NoError(t, err)
	assert.True(t, time.Date(2026, 10, 20, 0, 0, 0, 0, loc).Equal(d))
	assert.Equal(t, loc, d.Location())

	_, err = Date("20/10/2026", loc)
	assert.Error(t, err)

	d, err = Date("2026-01-02", nil)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
}

func TestSlot(t *testing.T) {
	start, end, err := Slot("16:00-17:00")
	require.NoError(t, err)
	assert.Equal(t, 960, start)
	assert.Equal(t, 1020, end)

	start, end, err = Slot("9:00 to 10:30")
	require.NoError(t, err)
	assert.Equal(t, 540, start)
	assert.Equal(t, 630, end)

	_, _, err = Slot("16:00")
	assert.Error(t, err)

	_, _, err = Slot("16:00-26:00")
	assert.Error(t, err)
}

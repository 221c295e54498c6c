package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNights(t *testing.T) {
	in := time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC)
	out := time.Date(2026, 2, 3, 11, 0, 0, 0, time.UTC)
	// Check-in/out hours never change the night count.
	assert.Equal(t, 2, Nights(in, out))

	assert.Equal(t, 0, Nights(out, in))
	assert.Equal(t, 0, Nights(in, in))
}

func TestOverlapHalfOpen(t *testing.T) {
	a1 := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	a2 := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	b2 := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	assert.True(t, Overlap(a1, a2, a1.AddDate(0, 0, 1), b2))
	// Abutting intervals share only the boundary instant.
	assert.False(t, Overlap(a1, a2, a2, b2))
	assert.False(t, Overlap(a2, b2, a1, a2))
}

func TestParseLocal(t *testing.T) {
	loc := time.FixedZone("IST", 2*60*60)

	got, err := ParseLocal("2026-03-10", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 12, 0, 0, 0, loc), got)

	got, err = ParseLocal("2026-03-10 15:30", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 15, 30, 0, 0, loc), got)

	got, err = ParseLocal("2026-03-10T15:30", loc)
	require.NoError(t, err)
	assert.Equal(t, 15, got.Hour())

	got, err = ParseLocal("10/03/2026", loc)
	require.NoError(t, err)
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 10, got.Day())

	_, err = ParseLocal("", loc)
	assert.Error(t, err)
	_, err = ParseLocal("not a date", loc)
	assert.Error(t, err)
}

func TestBusinessLocationFallback(t *testing.T) {
	loc := BusinessLocation("No/Such_Zone")
	_, offset := time.Now().In(loc).Zone()
	assert.Equal(t, 2*60*60, offset)
}

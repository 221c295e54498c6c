package hold

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zimmerbot/internal/models"
)

// The in-memory fallback implements the same contract as the lock
// store path, so it is what the unit tests exercise.

func newTestManager(now *time.Time) *Manager {
	return NewWithClient(nil, 15*time.Minute, func() time.Time { return *now })
}

func strPtr(s string) *string { return &s }

func TestCreateHoldConflict(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newTestManager(&now)
	ctx := context.Background()

	first, err := m.Create(ctx, "ZB01", "2026-03-10", "2026-03-12", strPtr("דנה"), nil)
	require.NoError(t, err)
	assert.Equal(t, models.HoldStatusActive, first.Status)
	assert.Equal(t, now.Add(15*time.Minute), first.ExpiresAt)

	_, err = m.Create(ctx, "ZB01", "2026-03-10", "2026-03-12", nil, nil)
	var held *ErrAlreadyHeld
	require.ErrorAs(t, err, &held)
	assert.Equal(t, "ZB01", held.CabinID)
	assert.Equal(t, first.ExpiresAt, held.ExpiresAt)
}

func TestCreateHoldDistinctKeys(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newTestManager(&now)
	ctx := context.Background()

	_, err := m.Create(ctx, "ZB01", "2026-03-10", "2026-03-12", nil, nil)
	require.NoError(t, err)

	// Different dates and a different cabin do not collide.
	_, err = m.Create(ctx, "ZB01", "2026-03-12", "2026-03-14", nil, nil)
	assert.NoError(t, err)
	_, err = m.Create(ctx, "ZB02", "2026-03-10", "2026-03-12", nil, nil)
	assert.NoError(t, err)
}

func TestReleaseAllowsNewHold(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newTestManager(&now)
	ctx := context.Background()

	h, err := m.Create(ctx, "ZB01", "2026-03-10", "2026-03-12", nil, nil)
	require.NoError(t, err)

	released, err := m.Release(ctx, h.ID)
	require.NoError(t, err)
	assert.True(t, released)

	_, err = m.Create(ctx, "ZB01", "2026-03-10", "2026-03-12", nil, nil)
	assert.NoError(t, err)
}

func TestReleaseUnknownHold(t *testing.T) {
	now := time.Now()
	m := newTestManager(&now)

	released, err := m.Release(context.Background(), "no-such-hold")
	require.NoError(t, err)
	assert.False(t, released)
}

func TestExpiredHoldIsInvisible(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newTestManager(&now)
	ctx := context.Background()

	h, err := m.Create(ctx, "ZB01", "2026-03-10", "2026-03-12", nil, nil)
	require.NoError(t, err)

	now = now.Add(15*time.Minute + time.Second)

	got, err := m.Get(ctx, h.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	exists, err := m.Exists(ctx, "ZB01", "2026-03-10", "2026-03-12")
	require.NoError(t, err)
	assert.False(t, exists)

	// The key is free again.
	_, err = m.Create(ctx, "ZB01", "2026-03-10", "2026-03-12", nil, nil)
	assert.NoError(t, err)
}

func TestGetAndExists(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newTestManager(&now)
	ctx := context.Background()

	h, err := m.Create(ctx, "ZB03", "2026-04-01", "2026-04-03", strPtr("יוסי"), strPtr("cust-1"))
	require.NoError(t, err)

	got, err := m.Get(ctx, h.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "ZB03", got.CabinID)
	assert.Equal(t, "יוסי", *got.CustomerName)

	exists, err := m.Exists(ctx, "ZB03", "2026-04-01", "2026-04-03")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestReleaseByDates(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newTestManager(&now)
	ctx := context.Background()

	h, err := m.Create(ctx, "ZB01", "2026-03-10", "2026-03-12", nil, nil)
	require.NoError(t, err)

	released, err := m.ReleaseByDates(ctx, "ZB01", "2026-03-10", "2026-03-12")
	require.NoError(t, err)
	assert.True(t, released)

	got, err := m.Get(ctx, h.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConvertReleasesHold(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newTestManager(&now)
	ctx := context.Background()

	h, err := m.Create(ctx, "ZB01", "2026-03-10", "2026-03-12", nil, nil)
	require.NoError(t, err)

	ok, err := m.Convert(ctx, h.ID, "booking-1")
	require.NoError(t, err)
	assert.True(t, ok)

	exists, err := m.Exists(ctx, "ZB01", "2026-03-10", "2026-03-12")
	require.NoError(t, err)
	assert.False(t, exists)

	ok, err = m.Convert(ctx, h.ID, "booking-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListActiveSkipsExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := newTestManager(&now)
	ctx := context.Background()

	_, err := m.Create(ctx, "ZB01", "2026-03-10", "2026-03-12", nil, nil)
	require.NoError(t, err)

	now = now.Add(10 * time.Minute)
	fresh, err := m.Create(ctx, "ZB02", "2026-03-10", "2026-03-12", nil, nil)
	require.NoError(t, err)

	// First hold is past its TTL, the second is not.
	now = now.Add(6 * time.Minute)
	holds, err := m.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, holds, 1)
	assert.Equal(t, fresh.ID, holds[0].ID)
}

func TestDegradedHoldCarriesWarning(t *testing.T) {
	now := time.Now()
	m := newTestManager(&now)

	h, err := m.Create(context.Background(), "ZB01", "2026-03-10", "2026-03-12", nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, h.Warning)
}

package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func load(t *testing.T, m *Machine) {
	t.Helper()
	require.NoError(t, m.BeginLoad())
	require.NoError(t, m.CompleteLoad())
}

func TestShowUnloaded(t *testing.T) {
	m := New(false, nil)
	err := m.Show()
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.Equal(t, Unloaded, m.State())
}

func TestLoadShowDismiss(t *testing.T) {
	m := New(false, nil)
	var seen []State
	m.OnTransition(func(_, to State) { seen = append(seen, to) })

	load(t, m)
	assert.True(t, m.IsLoaded())
	require.NoError(t, m.Show())
	assert.True(t, m.IsShowing())
	assert.ErrorIs(t, m.Show(), ErrAlreadyShowing)

	assert.True(t, m.Dismiss())
	assert.False(t, m.Dismiss(), "second dismiss is a no-op")
	assert.Equal(t, Dismissed, m.State())
	assert.ErrorIs(t, m.Show(), ErrDismissed)

	assert.Equal(t, []State{Loading, Loaded, Showing, Dismissed}, seen)
}

func TestReloadRules(t *testing.T) {
	m := New(false, nil)
	require.NoError(t, m.BeginLoad())
	assert.ErrorIs(t, m.BeginLoad(), ErrLoadInProgress)
	require.NoError(t, m.CompleteLoad())

	require.NoError(t, m.Show())
	assert.ErrorIs(t, m.BeginLoad(), ErrAlreadyShowing)
	m.Dismiss()

	load(t, m)
	assert.Equal(t, Loaded, m.State())
	require.NoError(t, m.Show(), "a reloaded ad can be shown again")
}

func TestFailLoadReturnsToUnloaded(t *testing.T) {
	m := New(false, nil)
	require.NoError(t, m.BeginLoad())
	m.FailLoad()
	assert.Equal(t, Unloaded, m.State())
	assert.ErrorIs(t, m.CompleteLoad(), ErrInvalidTransition)
}

func TestAppOpenExpiry(t *testing.T) {
	clock := newClock()
	m := New(true, clock.Now)

	assert.False(t, m.IsExpired(), "not expired before load")
	load(t, m)
	assert.False(t, m.IsExpired())

	clock.Advance(TTL - time.Second)
	assert.False(t, m.IsExpired())
	assert.True(t, m.IsLoaded())

	clock.Advance(time.Second)
	assert.True(t, m.IsExpired())
	assert.Equal(t, Expired, m.State())
	assert.False(t, m.IsLoaded())
	assert.ErrorIs(t, m.Show(), ErrExpired)
	assert.ErrorIs(t, m.CheckClick(), ErrExpired)

	load(t, m)
	assert.False(t, m.IsExpired(), "reload resets the TTL")
	require.NoError(t, m.Show())
}

func TestShowChecksExpiryLazily(t *testing.T) {
	clock := newClock()
	m := New(true, clock.Now)
	load(t, m)
	clock.Advance(5 * time.Hour)
	// no query in between: Show itself must observe the elapsed TTL
	assert.ErrorIs(t, m.Show(), ErrExpired)
}

func TestDismissedAppOpenExpires(t *testing.T) {
	clock := newClock()
	m := New(true, clock.Now)
	load(t, m)
	require.NoError(t, m.Show())
	m.Dismiss()
	clock.Advance(TTL)
	assert.Equal(t, Expired, m.State())
}

func TestNonExpiringSurfaceNeverExpires(t *testing.T) {
	clock := newClock()
	m := New(false, clock.Now)
	load(t, m)
	clock.Advance(100 * time.Hour)
	assert.False(t, m.IsExpired())
	require.NoError(t, m.Show())
}

func TestDestroyIdempotent(t *testing.T) {
	m := New(false, nil)
	load(t, m)
	require.NoError(t, m.Show())

	assert.True(t, m.Destroy(), "destroying a showing ad reports it")
	assert.Equal(t, Destroyed, m.State())
	assert.False(t, m.Destroy())
	assert.Equal(t, Destroyed, m.State())

	assert.ErrorIs(t, m.Show(), ErrDestroyed)
	assert.ErrorIs(t, m.BeginLoad(), ErrDestroyed)
	assert.ErrorIs(t, m.CheckClick(), ErrDestroyed)
	assert.False(t, m.IsExpired())
}

func TestDestroyFromShowingPassesThroughDismissed(t *testing.T) {
	m := New(false, nil)
	load(t, m)
	require.NoError(t, m.Show())
	var seen []State
	m.OnTransition(func(_, to State) { seen = append(seen, to) })
	m.Destroy()
	assert.Equal(t, []State{Dismissed, Destroyed}, seen)
}

func TestCheckClick(t *testing.T) {
	m := New(false, nil)
	assert.True(t, errors.Is(m.CheckClick(), ErrNotLoaded))
	load(t, m)
	assert.NoError(t, m.CheckClick())
	require.NoError(t, m.Show())
	assert.NoError(t, m.CheckClick())
	m.Dismiss()
	assert.ErrorIs(t, m.CheckClick(), ErrNotLoaded)
	assert.Equal(t, Dismissed, m.State(), "rejected clicks do not change state")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "showing", Showing.String())
	assert.Equal(t, "unknown", State(42).String())
}

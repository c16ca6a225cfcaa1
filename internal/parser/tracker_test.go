package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerInitAndChips(t *testing.T) {
	t.Parallel()

	tr := NewPlayerTracker()
	require.NoError(t, tr.InitPlayer("alice", 100))
	require.Error(t, tr.InitPlayer("alice", 50), "double init must fail")
	require.Error(t, tr.InitPlayer("bob", -1), "negative starting chips must fail")

	chips, ok := tr.Chips("alice")
	require.True(t, ok)
	assert.Equal(t, 100.0, chips)

	_, ok = tr.Chips("nobody")
	assert.False(t, ok)
	assert.Error(t, tr.TrackChips("nobody", 10))
}

func TestTrackerClampsAtZero(t *testing.T) {
	t.Parallel()

	tr := NewPlayerTracker()
	require.NoError(t, tr.InitPlayer("alice", 10))
	require.NoError(t, tr.TrackChips("alice", -5))

	chips, _ := tr.Chips("alice")
	assert.Equal(t, 0.0, chips, "balance never goes negative")
	assert.Equal(t, 5.0, tr.Underflows()["alice"], "pre-clamp deficit is preserved")

	// Worst deficit wins
	require.NoError(t, tr.TrackChips("alice", -2))
	assert.Equal(t, 5.0, tr.Underflows()["alice"])
}

func TestTrackerAllIn(t *testing.T) {
	t.Parallel()

	tr := NewPlayerTracker()
	require.NoError(t, tr.InitPlayer("alice", 100))
	require.NoError(t, tr.InitPlayer("bob", 50))

	require.NoError(t, tr.MarkAllIn("bob", 50))
	require.NoError(t, tr.MarkAllIn("alice", 100))
	assert.Error(t, tr.MarkAllIn("bob", 50), "a player may only go all-in once")

	entries := tr.AllInPlayers()
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].Name, "insertion order is preserved")
	assert.Equal(t, 50.0, entries[0].Amount)
}

func TestTrackerActiveSet(t *testing.T) {
	t.Parallel()

	tr := NewPlayerTracker()
	require.NoError(t, tr.InitPlayer("alice", 100))
	require.NoError(t, tr.InitPlayer("bob", 100))
	require.NoError(t, tr.RemoveActive("bob"))

	active := tr.ActivePlayers()
	assert.True(t, active["alice"])
	assert.False(t, active["bob"])
}

func TestTrackerReset(t *testing.T) {
	t.Parallel()

	tr := NewPlayerTracker()
	require.NoError(t, tr.InitPlayer("alice", 100))
	require.NoError(t, tr.MarkAllIn("alice", 100))
	tr.Reset()

	assert.Empty(t, tr.AllInPlayers())
	assert.Empty(t, tr.ActivePlayers())
	require.NoError(t, tr.InitPlayer("alice", 200), "reset allows re-init")
}

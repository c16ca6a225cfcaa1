package phh_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handreplay/internal/hand"
	"github.com/lox/handreplay/internal/phh"
)

func TestFormatAction(t *testing.T) {
	cards := func(s string) []hand.Card {
		parsed, err := hand.ParseCards(s)
		require.NoError(t, err)
		return parsed
	}

	tests := []struct {
		name      string
		action    hand.Action
		seatIndex int
		want      string
		shouldUse bool
	}{
		{"fold", hand.Action{Type: hand.Fold}, 0, "p1 f", true},
		{"check", hand.Action{Type: hand.Check}, 1, "p2 cc", true},
		{"call", hand.Action{Type: hand.Call, Amount: 50}, 3, "p4 cc", true},
		{"raise", hand.Action{Type: hand.Raise, Amount: 120}, 0, "p1 cbr 120", true},
		{"bet with cents", hand.Action{Type: hand.Bet, Amount: 2.50}, 1, "p2 cbr 2.5", true},
		{"zero raise", hand.Action{Type: hand.Raise}, 2, "", false},
		{"show", hand.Action{Type: hand.Show, Cards: cards("As Ad")}, 0, "p1 sm AsAd", true},
		{"board deal", hand.Action{Type: hand.Deal, Cards: cards("7c 8d 2s")}, 0, "d db 7c8d2s", true},
		{"hole deal", hand.Action{Type: hand.Deal, Player: "alice", Cards: cards("Ah Kh")}, 0, "d dh p1 AhKh", true},
		{"timeout", hand.Action{Type: hand.Timeout}, 0, "", false},
	}

	for _, tt := range tests {
		got, ok := phh.FormatAction(tt.action, tt.seatIndex, true)
		assert.Equal(t, tt.shouldUse, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestFromHand(t *testing.T) {
	h := &hand.PokerHand{
		ID:     "249876543210",
		Stakes: "Hold'em No Limit ($0.50/$1.00)",
		Date:   time.Date(2024, time.March, 15, 21, 14, 7, 0, time.UTC),
		Table:  hand.TableInfo{Name: "Halley II", MaxSeats: 6, ButtonSeat: 1},
		Players: []hand.Player{
			{Seat: 1, Name: "alice", StartingChips: 102.50},
			{Seat: 2, Name: "bob", StartingChips: 95},
		},
		Actions: []hand.Action{
			{Index: 0, Street: hand.Preflop, Type: hand.SmallBlind, Player: "alice", Amount: 0.50},
			{Index: 1, Street: hand.Preflop, Type: hand.BigBlind, Player: "bob", Amount: 1},
			{Index: 2, Street: hand.Preflop, Type: hand.Raise, Player: "alice", Amount: 3},
			{Index: 3, Street: hand.Preflop, Type: hand.Fold, Player: "bob"},
			{Index: 4, Street: hand.Preflop, Type: hand.Uncalled, Player: "alice", Amount: 2},
			{Index: 5, Street: hand.Preflop, Type: hand.Collected, Player: "alice", Amount: 2},
		},
	}

	hh := phh.FromHand(h)
	assert.Equal(t, "NT", hh.Variant)
	assert.Equal(t, []float64{0.5, 1}, hh.BlindsOrStraddles)
	assert.Equal(t, 1.0, hh.MinBet)
	assert.Equal(t, []float64{102.5, 95}, hh.StartingStacks)
	assert.Equal(t, []float64{2, 0}, hh.Winnings)
	assert.Equal(t, []string{"alice", "bob"}, hh.Players)
	// Blinds, uncalled returns and collections never appear as actions
	assert.Equal(t, []string{"p1 cbr 3", "p2 f"}, hh.Actions)
	assert.Equal(t, 2024, hh.Year)
	assert.Equal(t, "21:14:07", hh.Time)
}

func TestEncodeHandHistory(t *testing.T) {
	hh := &phh.HandHistory{
		Variant:           "NT",
		Table:             "Halley II",
		SeatCount:         2,
		Seats:             []int{1, 2},
		Antes:             []float64{0, 0},
		BlindsOrStraddles: []float64{1, 2},
		MinBet:            2,
		StartingStacks:    []float64{200, 200},
		Actions:           []string{"p1 cbr 6", "p2 f"},
		Players:           []string{"alice", "bob"},
		HandID:            "42",
	}

	var buf bytes.Buffer
	require.NoError(t, phh.Encode(&buf, hh))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "variant = \"NT\"\n"))
	assert.Contains(t, out, "actions = [\"p1 cbr 6\", \"p2 f\"]")
	assert.Contains(t, out, "hand = \"42\"")
}

func TestEncodeNilHand(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, phh.Encode(&buf, nil))
}

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handreplay/internal/hand"
)

func TestParseActionLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		line   string
		want   hand.Action
		wantOK bool
	}{
		{
			name:   "small blind",
			line:   "alice: posts small blind $0.50",
			want:   hand.Action{Type: hand.SmallBlind, Player: "alice", Amount: 0.50},
			wantOK: true,
		},
		{
			name:   "big blind",
			line:   "bob: posts big blind $1.00",
			want:   hand.Action{Type: hand.BigBlind, Player: "bob", Amount: 1},
			wantOK: true,
		},
		{
			name:   "combined blinds",
			line:   "cara: posts small & big blinds $1.50",
			want:   hand.Action{Type: hand.PostBlind, Player: "cara", Amount: 1.50},
			wantOK: true,
		},
		{
			name:   "ante",
			line:   "dave: posts the ante $0.25",
			want:   hand.Action{Type: hand.Ante, Player: "dave", Amount: 0.25},
			wantOK: true,
		},
		{
			name:   "fold",
			line:   "alice: folds",
			want:   hand.Action{Type: hand.Fold, Player: "alice"},
			wantOK: true,
		},
		{
			name:   "check",
			line:   "bob: checks",
			want:   hand.Action{Type: hand.Check, Player: "bob"},
			wantOK: true,
		},
		{
			name:   "call without currency symbol",
			line:   "bob: calls 250",
			want:   hand.Action{Type: hand.Call, Player: "bob", Amount: 250},
			wantOK: true,
		},
		{
			name:   "bet",
			line:   "alice: bets $4.00",
			want:   hand.Action{Type: hand.Bet, Player: "alice", Amount: 4},
			wantOK: true,
		},
		{
			name: "raise captures the round total",
			line: "bob: raises $40.00 to $60.00",
			// 60, not the 40 increment
			want:   hand.Action{Type: hand.Raise, Player: "bob", Amount: 60},
			wantOK: true,
		},
		{
			name:   "all-in suffix",
			line:   "anna: raises $39.00 to $45.00 and is all-in",
			want:   hand.Action{Type: hand.Raise, Player: "anna", Amount: 45, AllIn: true},
			wantOK: true,
		},
		{
			name:   "call all-in",
			line:   "ben: calls $12.75 and is all-in",
			want:   hand.Action{Type: hand.Call, Player: "ben", Amount: 12.75, AllIn: true},
			wantOK: true,
		},
		{
			name:   "muck",
			line:   "cara: mucks hand",
			want:   hand.Action{Type: hand.Muck, Player: "cara"},
			wantOK: true,
		},
		{
			name:   "uncalled bet return",
			line:   "Uncalled bet ($10.00) returned to alice",
			want:   hand.Action{Type: hand.Uncalled, Player: "alice", Amount: 10},
			wantOK: true,
		},
		{
			name:   "collected from pot",
			line:   "alice collected $13.30 from pot",
			want:   hand.Action{Type: hand.Collected, Player: "alice", Amount: 13.30},
			wantOK: true,
		},
		{
			name:   "collected from main pot",
			line:   "anna collected $135.00 from main pot",
			want:   hand.Action{Type: hand.Collected, Player: "anna", Amount: 135},
			wantOK: true,
		},
		{
			name:   "collected from numbered side pot",
			line:   "ben collected $60.00 from side pot #2",
			want:   hand.Action{Type: hand.Collected, Player: "ben", Amount: 60, Level: 2},
			wantOK: true,
		},
		{
			name:   "timeout",
			line:   "dave has timed out",
			want:   hand.Action{Type: hand.Timeout, Player: "dave", Reason: "has timed out"},
			wantOK: true,
		},
		{
			name:   "disconnect",
			line:   "dave is disconnected",
			want:   hand.Action{Type: hand.Timeout, Player: "dave", Reason: "is disconnected"},
			wantOK: true,
		},
		{
			name:   "not an action line",
			line:   "Table 'Orion' 6-max Seat #3 is the button",
			wantOK: false,
		},
		{
			name:   "chatter is not an action",
			line:   `bob said, "nice hand"`,
			wantOK: false,
		},
	}

	ap := NewActionParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok, err := ap.ParseLine(tt.line, hand.Preflop)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				tt.want.Street = hand.Preflop
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParseShowLine(t *testing.T) {
	t.Parallel()

	ap := NewActionParser()
	a, ok, err := ap.ParseLine("anna: shows [As Ad] (a pair of Aces)", hand.Showdown)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, hand.Show, a.Type)
	assert.Equal(t, "anna", a.Player)
	assert.Equal(t, "a pair of Aces", a.Reason)
	require.Len(t, a.Cards, 2)
	assert.Equal(t, "As", a.Cards[0].String())
}

func TestParseBadAmounts(t *testing.T) {
	t.Parallel()

	ap := NewActionParser()

	_, ok, err := ap.ParseLine("alice: bets -$5.00", hand.Flop)
	assert.True(t, ok)
	assert.Error(t, err)

	_, ok, err = ap.ParseLine("alice: bets $1.2.3", hand.Flop)
	assert.True(t, ok)
	assert.Error(t, err)
}

func TestCollectedActionsExtraction(t *testing.T) {
	t.Parallel()

	lines := []string{
		"anna: raises $39.00 to $45.00 and is all-in",
		"anna collected $135.00 from main pot",
		"some chatter",
		"ben collected $60.00 from side pot",
		"Seat 1: anna showed [As Ad] and won ($135.00) with a pair of Aces",
	}

	collected := NewActionParser().CollectedActions(lines)
	require.Len(t, collected, 2)
	assert.Equal(t, "anna", collected[0].Player)
	assert.Equal(t, 0, collected[0].Level)
	assert.Equal(t, "ben", collected[1].Player)
	assert.Equal(t, 1, collected[1].Level)
}

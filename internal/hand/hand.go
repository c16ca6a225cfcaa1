// Package hand defines the structured record produced by parsing a poker
// hand-history: players, actions, board cards and pot distribution. All types
// here are plain data with no behavior beyond formatting, safe to serialize.
package hand

import "time"

// Street identifies a betting round within a hand
type Street string

const (
	Preflop  Street = "preflop"
	Flop     Street = "flop"
	Turn     Street = "turn"
	River    Street = "river"
	Showdown Street = "showdown"
)

// Order returns the sequence position of a street for ordering comparisons
func (s Street) Order() int {
	switch s {
	case Preflop:
		return 0
	case Flop:
		return 1
	case Turn:
		return 2
	case River:
		return 3
	case Showdown:
		return 4
	default:
		return -1
	}
}

// ActionType is the closed set of recognized action kinds
type ActionType string

const (
	SmallBlind ActionType = "small_blind"
	BigBlind   ActionType = "big_blind"
	PostBlind  ActionType = "post" // combined or dead blind posts
	Ante       ActionType = "ante"
	Bet        ActionType = "bet"
	Raise      ActionType = "raise"
	Call       ActionType = "call"
	Check      ActionType = "check"
	Fold       ActionType = "fold"
	Deal       ActionType = "deal"
	Show       ActionType = "show"
	Muck       ActionType = "muck"
	Collected  ActionType = "collected"
	Uncalled   ActionType = "uncalled"
	Timeout    ActionType = "timeout"
)

// IsWager reports whether the action moves chips from the player into the pot.
func (t ActionType) IsWager() bool {
	switch t {
	case SmallBlind, BigBlind, PostBlind, Ante, Bet, Raise, Call:
		return true
	default:
		return false
	}
}

// Action is a single ordered event in the hand replay. Index is stable once
// assigned and strictly increases across the whole action sequence.
type Action struct {
	Index  int        `json:"index"`
	Street Street     `json:"street"`
	Type   ActionType `json:"type"`
	Player string     `json:"player,omitempty"` // empty for board-dealing actions
	Amount float64    `json:"amount,omitempty"`
	Cards  []Card     `json:"cards,omitempty"`
	AllIn  bool       `json:"allIn,omitempty"`
	Reason string     `json:"reason,omitempty"` // free text, e.g. "disconnected"

	// Level attributes collected actions to a pot tier: 0 for the main pot,
	// 1..N for side pots. Only meaningful for Collected actions.
	Level int `json:"level,omitempty"`
}

// TableInfo holds the table metadata parsed from the header lines
type TableInfo struct {
	Name       string `json:"name"`
	MaxSeats   int    `json:"maxSeats"`
	ButtonSeat int    `json:"buttonSeat"`
}

// Player is a seated player. StartingChips is the stack at hand start and is
// immutable; the live balance during replay is tracked separately.
type Player struct {
	Seat          int     `json:"seat"`
	Name          string  `json:"name"`
	StartingChips float64 `json:"startingChips"`
	HoleCards     []Card  `json:"holeCards,omitempty"` // known only for the hero or at showdown
	IsHero        bool    `json:"isHero,omitempty"`
	Position      string  `json:"position,omitempty"` // assigned by the caller, not the parser
}

// Pot is the main pot or one side pot. SidePotLevel is 0 for the main pot and
// 1..N for side pots ordered by all-in size ascending.
type Pot struct {
	Amount          float64  `json:"amount"`
	IsSide          bool     `json:"isSide"`
	SidePotLevel    int      `json:"sidePotLevel"`
	EligiblePlayers []string `json:"eligiblePlayers"`
}

// PokerHand is the root aggregate for a single parsed hand. It is created
// exactly once per successful parse and never mutated afterwards.
type PokerHand struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournamentId,omitempty"`
	Stakes       string    `json:"stakes"`
	Date         time.Time `json:"date"`
	Table        TableInfo `json:"table"`
	Players      []Player  `json:"players"` // seat order
	Actions      []Action  `json:"actions"`
	Board        []Card    `json:"board"` // 0, 3, 4 or 5 cards
	Pots         []Pot     `json:"pots"`
	TotalPot     float64   `json:"totalPot"`
	Rake         float64   `json:"rake,omitempty"`

	// Warnings carries advisory validation findings (e.g. pot-math mismatch
	// under the advisory policy). A hand with warnings still parsed.
	Warnings []string `json:"warnings,omitempty"`
}

// PlayerByName returns the seated player with the given name, or nil.
func (h *PokerHand) PlayerByName(name string) *Player {
	for i := range h.Players {
		if h.Players[i].Name == name {
			return &h.Players[i]
		}
	}
	return nil
}

// StreetReached returns the furthest street for which actions or board cards
// exist in the hand.
func (h *PokerHand) StreetReached() Street {
	reached := Preflop
	for _, a := range h.Actions {
		if a.Street.Order() > reached.Order() {
			reached = a.Street
		}
	}
	return reached
}

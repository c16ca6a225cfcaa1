package parser

import "fmt"

// AllInEntry records a player going all-in, with the total amount they had
// contributed at that point. Entries keep insertion order.
type AllInEntry struct {
	Name   string
	Amount float64
}

// PlayerTracker is the single source of truth during replay for how many
// chips a player has and whether they are still contesting the pot. One
// instance is owned by one parse invocation; it is never shared.
type PlayerTracker interface {
	// InitPlayer registers a seated player once. A second call for the same
	// name is an error.
	InitPlayer(name string, startingChips float64) error

	// TrackChips overwrites a player's running balance, clamped at zero.
	// The clamp preserves the legacy accounting behavior; the pre-clamp
	// deficit is recorded so strict mode can surface the underflow.
	TrackChips(name string, newBalance float64) error

	// MarkAllIn records the total contribution at which a player went
	// all-in. A player may only go all-in once per hand.
	MarkAllIn(name string, amount float64) error

	// RemoveActive removes a player from the active set permanently for
	// this hand (called on fold).
	RemoveActive(name string) error

	// Chips returns the current tracked balance for a player.
	Chips(name string) (float64, bool)

	// AllInPlayers returns every all-in in insertion order.
	AllInPlayers() []AllInEntry

	// ActivePlayers returns the set of players who never folded.
	ActivePlayers() map[string]bool

	// Underflows returns, per player, the worst amount by which a tracked
	// balance would have gone negative before clamping. Empty when chip
	// accounting balanced.
	Underflows() map[string]float64

	// Reset clears all state so the tracker can be reused for another hand.
	Reset()
}

type chipTracker struct {
	chips      map[string]float64
	active     map[string]bool
	allIns     []AllInEntry
	allInSeen  map[string]bool
	underflows map[string]float64
}

// NewPlayerTracker returns an empty tracker for a single parse invocation.
func NewPlayerTracker() PlayerTracker {
	t := &chipTracker{}
	t.Reset()
	return t
}

func (t *chipTracker) InitPlayer(name string, startingChips float64) error {
	if _, exists := t.chips[name]; exists {
		return fmt.Errorf("player %q already initialized", name)
	}
	if startingChips < 0 {
		return fmt.Errorf("player %q has negative starting chips %v", name, startingChips)
	}
	t.chips[name] = startingChips
	t.active[name] = true
	return nil
}

func (t *chipTracker) TrackChips(name string, newBalance float64) error {
	if _, exists := t.chips[name]; !exists {
		return fmt.Errorf("unknown player %q", name)
	}
	if newBalance < 0 {
		// Clamp rather than reject: hand histories round amounts and the
		// replay ledger subtracts raise totals wholesale. Record the
		// deficit so strict mode can still detect it.
		if -newBalance > t.underflows[name] {
			t.underflows[name] = -newBalance
		}
		newBalance = 0
	}
	t.chips[name] = newBalance
	return nil
}

func (t *chipTracker) MarkAllIn(name string, amount float64) error {
	if _, exists := t.chips[name]; !exists {
		return fmt.Errorf("unknown player %q", name)
	}
	if t.allInSeen[name] {
		return fmt.Errorf("player %q is already all-in", name)
	}
	t.allInSeen[name] = true
	t.allIns = append(t.allIns, AllInEntry{Name: name, Amount: amount})
	return nil
}

func (t *chipTracker) RemoveActive(name string) error {
	if _, exists := t.chips[name]; !exists {
		return fmt.Errorf("unknown player %q", name)
	}
	delete(t.active, name)
	return nil
}

func (t *chipTracker) Chips(name string) (float64, bool) {
	chips, ok := t.chips[name]
	return chips, ok
}

func (t *chipTracker) AllInPlayers() []AllInEntry {
	out := make([]AllInEntry, len(t.allIns))
	copy(out, t.allIns)
	return out
}

func (t *chipTracker) ActivePlayers() map[string]bool {
	out := make(map[string]bool, len(t.active))
	for name := range t.active {
		out[name] = true
	}
	return out
}

func (t *chipTracker) Underflows() map[string]float64 {
	out := make(map[string]float64, len(t.underflows))
	for name, amount := range t.underflows {
		out[name] = amount
	}
	return out
}

func (t *chipTracker) Reset() {
	t.chips = make(map[string]float64)
	t.active = make(map[string]bool)
	t.allIns = nil
	t.allInSeen = make(map[string]bool)
	t.underflows = make(map[string]float64)
}

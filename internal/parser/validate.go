package parser

import (
	"fmt"
	"math"

	"github.com/lox/handreplay/internal/hand"
)

// Validator cross-checks an assembled hand before it is returned. Structural
// findings are fatal; numeric findings are handed back to the assembler,
// which applies the configured mismatch policy.
type Validator interface {
	// ValidateStructure checks the hand skeleton: header, table, at least
	// one seated player, unique seats and names, and resolvable action
	// player references.
	ValidateStructure(h *hand.PokerHand) error

	// ValidateTotals checks the declared total pot against the computed
	// pots plus rake, and the rake bounds.
	ValidateTotals(h *hand.PokerHand) error
}

type handValidator struct{}

// NewValidator returns the default hand validator.
func NewValidator() Validator {
	return handValidator{}
}

func (handValidator) ValidateStructure(h *hand.PokerHand) error {
	if h.ID == "" {
		return fmt.Errorf("hand has no id")
	}
	if h.Table.Name == "" || h.Table.MaxSeats <= 0 {
		return fmt.Errorf("hand has no table info")
	}
	if len(h.Players) == 0 {
		return fmt.Errorf("hand has no seated players")
	}

	seats := make(map[int]string, len(h.Players))
	names := make(map[string]bool, len(h.Players))
	for _, p := range h.Players {
		if other, dup := seats[p.Seat]; dup {
			return fmt.Errorf("duplicate seat %d (%s and %s)", p.Seat, other, p.Name)
		}
		seats[p.Seat] = p.Name
		if names[p.Name] {
			return fmt.Errorf("duplicate player name %q", p.Name)
		}
		names[p.Name] = true
		if p.Seat < 1 || p.Seat > h.Table.MaxSeats {
			return fmt.Errorf("seat %d out of range for %d-max table", p.Seat, h.Table.MaxSeats)
		}
	}

	for _, a := range h.Actions {
		if a.Player == "" {
			continue // board deals have no player reference
		}
		if !names[a.Player] {
			return fmt.Errorf("action %d references unknown player %q", a.Index, a.Player)
		}
	}
	return nil
}

func (handValidator) ValidateTotals(h *hand.PokerHand) error {
	if h.Rake < 0 {
		return fmt.Errorf("negative rake %.2f", h.Rake)
	}
	if h.TotalPot > 0 && h.Rake > h.TotalPot {
		return fmt.Errorf("rake %.2f exceeds total pot %.2f", h.Rake, h.TotalPot)
	}

	if h.TotalPot <= 0 {
		return nil // no declared total to check against
	}

	sum := 0.0
	for _, p := range h.Pots {
		sum += p.Amount
	}
	if math.Abs(sum+h.Rake-h.TotalPot) > epsilon {
		return fmt.Errorf("pot totals mismatch: pots %.2f + rake %.2f != declared %.2f",
			sum, h.Rake, h.TotalPot)
	}
	return nil
}

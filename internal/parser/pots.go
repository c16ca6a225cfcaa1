package parser

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/handreplay/internal/hand"
)

// epsilon is the floating tolerance for chip-accounting comparisons.
const epsilon = 1e-6

// PotCalculator turns the accumulated contribution and all-in data for a hand
// into the main pot and its side pots.
type PotCalculator interface {
	// Calculate builds one pot per distinct all-in tier plus a remainder pot
	// for chips wagered beyond the largest all-in. Contributions include
	// folded players (their chips stay in the pot) but folded players are
	// never eligible for any pot.
	Calculate(contributions map[string]float64, allIns []AllInEntry, active map[string]bool) []hand.Pot

	// EnhancePots reconciles the computed pots against the literal
	// "collected ... from pot" lines of the hand. Rake is deducted from the
	// main pot first. When the declared and computed totals agree, per-tier
	// amounts and winner eligibility follow the declared lines; a genuine
	// amount disagreement is left for validation.
	EnhancePots(pots []hand.Pot, collected []hand.Action, rake float64) []hand.Pot

	// ValidatePotMath checks that the pots sum to the expected distributable
	// total within the floating tolerance.
	ValidatePotMath(pots []hand.Pot, expected float64) error
}

type potCalculator struct{}

// NewPotCalculator returns the default pot calculator.
func NewPotCalculator() PotCalculator {
	return potCalculator{}
}

func (potCalculator) Calculate(contributions map[string]float64, allIns []AllInEntry, active map[string]bool) []hand.Pot {
	total := 0.0
	for _, amount := range contributions {
		total += amount
	}

	allInAmount := make(map[string]float64, len(allIns))
	for _, entry := range allIns {
		allInAmount[entry.Name] = entry.Amount
	}

	// Each distinct all-in amount defines a pot tier boundary, ascending.
	var tiers []float64
	seen := make(map[float64]bool)
	for _, entry := range allIns {
		if !seen[entry.Amount] {
			seen[entry.Amount] = true
			tiers = append(tiers, entry.Amount)
		}
	}
	sort.Float64s(tiers)

	if len(tiers) == 0 {
		if total <= 0 && len(active) == 0 {
			return nil
		}
		return []hand.Pot{{
			Amount:          total,
			EligiblePlayers: sortedNames(active),
		}}
	}

	var pots []hand.Pot
	prev := 0.0
	for _, boundary := range tiers {
		pot := hand.Pot{
			IsSide:       len(pots) > 0,
			SidePotLevel: len(pots),
		}
		for _, contributed := range contributions {
			slice := math.Min(contributed, boundary) - prev
			if slice > 0 {
				pot.Amount += slice
			}
		}
		// Eligible: all-in players whose all-in covers this boundary, plus
		// still-active players who are not all-in. Folded players are
		// excluded regardless of what they contributed.
		for name := range active {
			if amount, isAllIn := allInAmount[name]; isAllIn && amount < boundary {
				continue
			}
			pot.EligiblePlayers = append(pot.EligiblePlayers, name)
		}
		sort.Strings(pot.EligiblePlayers)

		if pot.Amount > 0 && len(pot.EligiblePlayers) > 0 {
			pots = append(pots, pot)
		}
		prev = boundary
	}

	// Remainder pot for chips wagered beyond the largest all-in, contested
	// only by active players who still have chips behind.
	remainder := hand.Pot{
		IsSide:       len(pots) > 0,
		SidePotLevel: len(pots),
	}
	for _, contributed := range contributions {
		if contributed > prev {
			remainder.Amount += contributed - prev
		}
	}
	for name := range active {
		if _, isAllIn := allInAmount[name]; !isAllIn {
			remainder.EligiblePlayers = append(remainder.EligiblePlayers, name)
		}
	}
	sort.Strings(remainder.EligiblePlayers)

	if remainder.Amount > 0 && len(remainder.EligiblePlayers) > 0 {
		pots = append(pots, remainder)
	}

	return pots
}

func (potCalculator) EnhancePots(pots []hand.Pot, collected []hand.Action, rake float64) []hand.Pot {
	if len(pots) == 0 {
		return pots
	}

	out := make([]hand.Pot, len(pots))
	copy(out, pots)
	for i := range out {
		out[i].EligiblePlayers = append([]string(nil), pots[i].EligiblePlayers...)
	}

	// The house rakes from the main pot before distribution.
	if rake > 0 {
		out[0].Amount = math.Max(0, out[0].Amount-rake)
	}

	if len(collected) == 0 {
		return out
	}

	declared := 0.0
	declaredByLevel := make(map[int]float64)
	winnersByLevel := make(map[int][]string)
	for _, a := range collected {
		declared += a.Amount
		declaredByLevel[a.Level] += a.Amount
		winnersByLevel[a.Level] = append(winnersByLevel[a.Level], a.Player)
	}

	computed := 0.0
	for _, p := range out {
		computed += p.Amount
	}

	// Only when the totals agree do we trust the per-tier declared split;
	// an amount disagreement is surfaced by the validator, never silently
	// auto-corrected here.
	if math.Abs(declared-computed) > epsilon {
		return out
	}

	// A partial split is ambiguous: plain "collected from pot" lines all
	// land on level 0, so overwriting the main pot while side pots keep
	// their computed amounts would double-count. Require a declared amount
	// for every tier before applying any.
	splitCoversAllTiers := true
	for _, p := range out {
		if _, ok := declaredByLevel[p.SidePotLevel]; !ok {
			splitCoversAllTiers = false
			break
		}
	}

	for i := range out {
		level := out[i].SidePotLevel
		if amount, ok := declaredByLevel[level]; ok && splitCoversAllTiers {
			out[i].Amount = amount
		}
		for _, winner := range winnersByLevel[level] {
			if !containsName(out[i].EligiblePlayers, winner) {
				out[i].EligiblePlayers = append(out[i].EligiblePlayers, winner)
				sort.Strings(out[i].EligiblePlayers)
			}
		}
	}
	return out
}

func (potCalculator) ValidatePotMath(pots []hand.Pot, expected float64) error {
	sum := 0.0
	for _, p := range pots {
		sum += p.Amount
	}
	if math.Abs(sum-expected) > epsilon {
		return fmt.Errorf("pot math mismatch: pots sum to %.2f, expected %.2f", sum, expected)
	}
	return nil
}

func sortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

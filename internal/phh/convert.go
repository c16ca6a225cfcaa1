package phh

import (
	"fmt"
	"strings"

	"github.com/lox/handreplay/internal/hand"
)

// FromHand maps a parsed hand into the PHH representation. Players are
// numbered p1..pN in seat order; blind and ante posts are captured in the
// dedicated arrays rather than the action list, matching the PHH convention.
func FromHand(h *hand.PokerHand) *HandHistory {
	hh := &HandHistory{
		Variant:           "NT",
		Table:             h.Table.Name,
		SeatCount:         h.Table.MaxSeats,
		HandID:            h.ID,
		Antes:             make([]float64, len(h.Players)),
		BlindsOrStraddles: make([]float64, len(h.Players)),
		StartingStacks:    make([]float64, len(h.Players)),
		Winnings:          make([]float64, len(h.Players)),
		Timestamp:         h.Date,
	}
	if !h.Date.IsZero() {
		hh.Time = h.Date.Format("15:04:05")
		hh.Year = h.Date.Year()
		hh.Month = int(h.Date.Month())
		hh.Day = h.Date.Day()
	}

	index := make(map[string]int, len(h.Players))
	for i, p := range h.Players {
		index[p.Name] = i
		hh.Seats = append(hh.Seats, p.Seat)
		hh.Players = append(hh.Players, p.Name)
		hh.StartingStacks[i] = p.StartingChips
	}

	for _, a := range h.Actions {
		i, seated := index[a.Player]
		switch a.Type {
		case hand.SmallBlind, hand.BigBlind, hand.PostBlind:
			if seated {
				hh.BlindsOrStraddles[i] += a.Amount
			}
			if a.Type == hand.BigBlind && a.Amount > hh.MinBet {
				hh.MinBet = a.Amount
			}
		case hand.Ante:
			if seated {
				hh.Antes[i] += a.Amount
			}
		case hand.Collected:
			if seated {
				hh.Winnings[i] += a.Amount
			}
		default:
			if line, ok := FormatAction(a, i, seated); ok {
				hh.Actions = append(hh.Actions, line)
			}
		}
	}

	return hh
}

// FormatAction converts one parsed action into PHH action notation. The
// boolean is false for actions that have no PHH representation (timeouts,
// uncalled-bet returns and the posts captured elsewhere).
func FormatAction(a hand.Action, seatIndex int, seated bool) (string, bool) {
	player := fmt.Sprintf("p%d", seatIndex+1)
	switch a.Type {
	case hand.Deal:
		if a.Player == "" {
			return "d db " + joinCards(a.Cards), true
		}
		if !seated {
			return "", false
		}
		return fmt.Sprintf("d dh %s %s", player, joinCards(a.Cards)), true
	case hand.Fold:
		return player + " f", true
	case hand.Check, hand.Call:
		return player + " cc", true
	case hand.Bet, hand.Raise:
		if a.Amount <= 0 {
			return "", false
		}
		return fmt.Sprintf("%s cbr %s", player, formatAmount(a.Amount)), true
	case hand.Show, hand.Muck:
		if len(a.Cards) == 0 {
			return "", false
		}
		return fmt.Sprintf("%s sm %s", player, joinCards(a.Cards)), true
	default:
		return "", false
	}
}

func joinCards(cards []hand.Card) string {
	tokens := make([]string, len(cards))
	for i, c := range cards {
		tokens[i] = c.String()
	}
	return strings.Join(tokens, "")
}

// formatAmount renders a chip amount without trailing zeros, so whole-chip
// games encode as integers.
func formatAmount(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

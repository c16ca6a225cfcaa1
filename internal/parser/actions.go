package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lox/handreplay/internal/hand"
)

// ActionParser recognizes a single hand-history line as one of the closed set
// of action kinds. Implementations must be stateless: applying the action to
// the player ledger is the caller's job.
type ActionParser interface {
	// ParseLine attempts to build an action from one line of the given
	// street. The boolean is false when the line is not an action line at
	// all, which callers use to detect street boundaries. A recognized line
	// with a malformed amount is a hard error.
	ParseLine(line string, street hand.Street) (hand.Action, bool, error)

	// CollectedActions extracts every "collected ... from pot" statement
	// anywhere in the hand, independent of street order. Used for pot
	// attribution after structural pots are computed.
	CollectedActions(lines []string) []hand.Action
}

const allInSuffix = " and is all-in"

// Line grammar, tried in fixed priority order. Keywords are case sensitive.
var (
	reSmallBlind = regexp.MustCompile(`^(.+): posts small blind (-?\$?[\d.]+)$`)
	reBigBlind   = regexp.MustCompile(`^(.+): posts big blind (-?\$?[\d.]+)$`)
	reBothBlinds = regexp.MustCompile(`^(.+): posts small & big blinds (-?\$?[\d.]+)$`)
	reDeadBlind  = regexp.MustCompile(`^(.+): posts (?:the )?dead(?: blind)? (-?\$?[\d.]+)$`)
	reAnte       = regexp.MustCompile(`^(.+): posts the ante (-?\$?[\d.]+)$`)
	reFold       = regexp.MustCompile(`^(.+): folds$`)
	reCheck      = regexp.MustCompile(`^(.+): checks$`)
	reCall       = regexp.MustCompile(`^(.+): calls (-?\$?[\d.]+)$`)
	reBet        = regexp.MustCompile(`^(.+): bets (-?\$?[\d.]+)$`)
	reRaise      = regexp.MustCompile(`^(.+): raises (-?\$?[\d.]+) to (-?\$?[\d.]+)$`)
	reShow       = regexp.MustCompile(`^(.+): shows \[([^\]]+)\](?: \((.+)\))?$`)
	reMuck       = regexp.MustCompile(`^(.+): mucks hand$`)
	reUncalled   = regexp.MustCompile(`^Uncalled bet \((-?\$?[\d.]+)\) returned to (.+)$`)
	reCollected  = regexp.MustCompile(`^(.+?) collected (-?\$?[\d.]+) from (?:the )?(main pot|side pot(?: #(\d+))?|pot)$`)
	reTimeout    = regexp.MustCompile(`^(.+?) (has timed out(?: while (?:being )?disconnected)?|is disconnected|is sitting out)$`)
)

// actionParser is the default ActionParser for the PokerStars-style dialect.
type actionParser struct{}

// NewActionParser returns the default action line parser.
func NewActionParser() ActionParser {
	return actionParser{}
}

func (actionParser) ParseLine(line string, street hand.Street) (hand.Action, bool, error) {
	allIn := false
	if strings.HasSuffix(line, allInSuffix) {
		allIn = true
		line = strings.TrimSuffix(line, allInSuffix)
	}

	build := func(typ hand.ActionType, player, rawAmount string) (hand.Action, bool, error) {
		a := hand.Action{Street: street, Type: typ, Player: player, AllIn: allIn}
		if rawAmount != "" {
			amount, err := parseAmount(rawAmount)
			if err != nil {
				return hand.Action{}, true, err
			}
			a.Amount = amount
		}
		return a, true, nil
	}

	switch {
	case reSmallBlind.MatchString(line):
		m := reSmallBlind.FindStringSubmatch(line)
		return build(hand.SmallBlind, m[1], m[2])
	case reBigBlind.MatchString(line):
		m := reBigBlind.FindStringSubmatch(line)
		return build(hand.BigBlind, m[1], m[2])
	case reBothBlinds.MatchString(line):
		m := reBothBlinds.FindStringSubmatch(line)
		return build(hand.PostBlind, m[1], m[2])
	case reDeadBlind.MatchString(line):
		m := reDeadBlind.FindStringSubmatch(line)
		return build(hand.PostBlind, m[1], m[2])
	case reAnte.MatchString(line):
		m := reAnte.FindStringSubmatch(line)
		return build(hand.Ante, m[1], m[2])
	case reFold.MatchString(line):
		m := reFold.FindStringSubmatch(line)
		return build(hand.Fold, m[1], "")
	case reCheck.MatchString(line):
		m := reCheck.FindStringSubmatch(line)
		return build(hand.Check, m[1], "")
	case reCall.MatchString(line):
		m := reCall.FindStringSubmatch(line)
		return build(hand.Call, m[1], m[2])
	case reBet.MatchString(line):
		m := reBet.FindStringSubmatch(line)
		return build(hand.Bet, m[1], m[2])
	case reRaise.MatchString(line):
		// The raise amount is the total the player has put in for the
		// betting round (the "to" capture), never the increment.
		m := reRaise.FindStringSubmatch(line)
		return build(hand.Raise, m[1], m[3])
	case reShow.MatchString(line):
		m := reShow.FindStringSubmatch(line)
		cards, err := hand.ParseCards(m[2])
		if err != nil {
			return hand.Action{}, true, fmt.Errorf("shown cards: %w", err)
		}
		a := hand.Action{Street: street, Type: hand.Show, Player: m[1], Cards: cards, Reason: m[3]}
		return a, true, nil
	case reMuck.MatchString(line):
		m := reMuck.FindStringSubmatch(line)
		return build(hand.Muck, m[1], "")
	case reUncalled.MatchString(line):
		m := reUncalled.FindStringSubmatch(line)
		a, ok, err := build(hand.Uncalled, m[2], m[1])
		return a, ok, err
	case reCollected.MatchString(line):
		m := reCollected.FindStringSubmatch(line)
		a, ok, err := build(hand.Collected, m[1], m[2])
		if err != nil {
			return a, ok, err
		}
		a.Level = collectedLevel(m[3], m[4])
		return a, ok, nil
	case reTimeout.MatchString(line):
		m := reTimeout.FindStringSubmatch(line)
		a := hand.Action{Street: street, Type: hand.Timeout, Player: m[1], Reason: m[2]}
		return a, true, nil
	}

	return hand.Action{}, false, nil
}

func (p actionParser) CollectedActions(lines []string) []hand.Action {
	var collected []hand.Action
	for _, line := range lines {
		line = strings.TrimSuffix(line, allInSuffix)
		if !reCollected.MatchString(line) {
			continue
		}
		a, _, err := p.ParseLine(line, hand.Showdown)
		if err != nil {
			continue
		}
		collected = append(collected, a)
	}
	return collected
}

// collectedLevel maps the pot phrasing of a collected line to a tier level:
// 0 for "pot" or "main pot", 1..N for side pots.
func collectedLevel(potPhrase, sideNumber string) int {
	if !strings.HasPrefix(potPhrase, "side pot") {
		return 0
	}
	if sideNumber == "" {
		return 1
	}
	n, err := strconv.Atoi(sideNumber)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// parseAmount parses a chip amount with an optional currency prefix.
// Negative or non-numeric amounts are a hard error.
func parseAmount(raw string) (float64, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(raw, "-"), "$")
	negative := strings.HasPrefix(raw, "-")
	amount, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chip amount %q", raw)
	}
	if negative {
		return 0, fmt.Errorf("negative chip amount %q", raw)
	}
	return amount, nil
}

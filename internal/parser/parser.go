// Package parser turns a raw poker hand-history text into a structured
// hand.PokerHand, or a typed ParseError. The parser is a strictly sequential
// state machine over trimmed lines:
//
//	Header -> Table -> Players -> Blinds/Ante -> HoleCards? -> Preflop ->
//	Flop? -> Turn? -> River? -> Showdown? -> Summary -> Done
//
// All mutable state is allocated per Parse call; a Parser built with default
// services may be used from one goroutine at a time, and the package-level
// Parse function is safe for concurrent callers.
package parser

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/lox/handreplay/internal/hand"
)

// Section markers in the hand-history text.
const (
	markerPrefix    = "*** "
	markerHoleCards = "*** HOLE CARDS ***"
	markerFlop      = "*** FLOP ***"
	markerTurn      = "*** TURN ***"
	markerRiver     = "*** RIVER ***"
	markerShowdown  = "*** SHOW DOWN ***"
	markerSummary   = "*** SUMMARY ***"
)

var (
	reHeader      = regexp.MustCompile(`^.*?Hand #(\d+):\s*(?:Tournament #(\d+), )?(.+?) - (\d{4}/\d{2}/\d{2} \d{1,2}:\d{2}:\d{2})(?: [A-Z]{2,4})?$`)
	reTable       = regexp.MustCompile(`^Table '(.+?)' (\d+)-max(?: \(.+\))? Seat #(\d+) is the button$`)
	reSeat        = regexp.MustCompile(`^Seat (\d+): (.+?) \((-?\$?[\d.]+) in chips\)(?: .+)?$`)
	reDealt       = regexp.MustCompile(`^Dealt to (.+?) \[([^\]]+)\]$`)
	reBrackets    = regexp.MustCompile(`\[([^\]]+)\]`)
	reTotalPot    = regexp.MustCompile(`^Total pot (-?\$?[\d.]+)`)
	reRakePart    = regexp.MustCompile(`Rake (-?\$?[\d.]+)`)
	reBoardLine   = regexp.MustCompile(`^Board \[([^\]]+)\]$`)
	reSummarySeat = regexp.MustCompile(`^Seat (\d+): (.+?) (?:\([^)]*\) )?(showed|mucked) \[([^\]]+)\]`)

	dateLayout = "2006/01/02 15:04:05"
)

// Parser assembles hands from hand-history text. The zero-value services are
// the defaults for the PokerStars-style dialect; each can be replaced via
// options to support other dialects without touching the control flow here.
type Parser struct {
	actions     ActionParser
	tracker     PlayerTracker
	pots        PotCalculator
	validator   Validator
	strictChips bool
	potPolicy   PotMismatchPolicy
}

// NewParser creates a parser with the default services, adjusted by opts.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		actions:   NewActionParser(),
		tracker:   NewPlayerTracker(),
		pots:      NewPotCalculator(),
		validator: NewValidator(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse is a convenience wrapper that allocates a fresh default Parser per
// call, making it safe to invoke from any number of goroutines.
func Parse(text string) (*hand.PokerHand, *ParseError) {
	return NewParser().Parse(text)
}

// parseState bundles all per-invocation mutable state so concurrent or
// repeated calls cannot interfere with each other.
type parseState struct {
	cursor        *lineCursor
	hand          *hand.PokerHand
	contributions map[string]float64
	streetBets    map[string]float64
	nextIndex     int
}

// Parse converts raw hand-history text into a PokerHand. Exactly one of the
// two results is non-nil. Calling Parse twice with the same input yields
// structurally identical results.
func (p *Parser) Parse(text string) (result *hand.PokerHand, perr *ParseError) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Message: "empty hand history"}
	}

	// Expected failures all travel through ParseError; anything else that
	// escapes a parsing step is normalized here so callers only ever see
	// one error shape.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			perr = &ParseError{Message: "unknown parsing error"}
		}
	}()

	p.tracker.Reset()
	st := &parseState{
		cursor:        newLineCursor(text),
		hand:          &hand.PokerHand{},
		contributions: make(map[string]float64),
		streetBets:    make(map[string]float64),
	}

	steps := []func(*parseState) *ParseError{
		p.parseHeader,
		p.parseTable,
		p.parsePlayers,
		p.parseBlinds,
		p.parseHoleCards,
		p.parsePreflop,
		p.parseBoardStreets,
		p.parseShowdown,
		p.parseSummary,
	}
	for _, step := range steps {
		if perr := step(st); perr != nil {
			return nil, perr
		}
	}

	return p.finish(st)
}

// fail anchors a parse error at the cursor's current position.
func (st *parseState) fail(format string, args ...any) *ParseError {
	context, _ := st.cursor.Current()
	return errorf(st.cursor.Line(), context, format, args...)
}

// appendAction assigns the next global index and records the action.
func (st *parseState) appendAction(a hand.Action) {
	a.Index = st.nextIndex
	st.nextIndex++
	st.hand.Actions = append(st.hand.Actions, a)
}

// skipBlank advances the cursor past blank lines.
func (st *parseState) skipBlank() {
	for st.cursor.HasMore() {
		line, _ := st.cursor.Current()
		if line != "" {
			return
		}
		st.cursor.Advance()
	}
}

func (p *Parser) parseHeader(st *parseState) *ParseError {
	st.skipBlank()
	line, err := st.cursor.Current()
	if err != nil {
		return st.fail("missing hand header")
	}
	m := reHeader.FindStringSubmatch(line)
	if m == nil {
		return st.fail("missing or malformed hand header")
	}
	st.hand.ID = m[1]
	st.hand.TournamentID = m[2]
	st.hand.Stakes = m[3]
	date, derr := time.Parse(dateLayout, m[4])
	if derr != nil {
		return st.fail("invalid hand date %q", m[4])
	}
	st.hand.Date = date
	st.cursor.Advance()
	return nil
}

func (p *Parser) parseTable(st *parseState) *ParseError {
	st.skipBlank()
	line, err := st.cursor.Current()
	if err != nil {
		return st.fail("missing table line")
	}
	m := reTable.FindStringSubmatch(line)
	if m == nil {
		return st.fail("missing or malformed table line")
	}
	maxSeats, _ := strconv.Atoi(m[2])
	button, _ := strconv.Atoi(m[3])
	st.hand.Table = hand.TableInfo{Name: m[1], MaxSeats: maxSeats, ButtonSeat: button}
	st.cursor.Advance()
	return nil
}

func (p *Parser) parsePlayers(st *parseState) *ParseError {
	for st.cursor.HasMore() {
		line, _ := st.cursor.Current()
		m := reSeat.FindStringSubmatch(line)
		if m == nil {
			break
		}
		seat, _ := strconv.Atoi(m[1])
		chips, aerr := parseAmount(m[3])
		if aerr != nil {
			return st.fail("seat %d: %v", seat, aerr)
		}
		if err := p.tracker.InitPlayer(m[2], chips); err != nil {
			return st.fail("%v", err)
		}
		st.hand.Players = append(st.hand.Players, hand.Player{
			Seat:          seat,
			Name:          m[2],
			StartingChips: chips,
		})
		st.cursor.Advance()
	}
	if len(st.hand.Players) == 0 {
		return st.fail("no seated players")
	}
	return nil
}

// parseBlinds consumes the blind and ante posting lines preceding the hole
// cards marker. Lines that are neither posts nor markers (table chatter) are
// skipped.
func (p *Parser) parseBlinds(st *parseState) *ParseError {
	for st.cursor.HasMore() {
		line, _ := st.cursor.Current()
		if strings.HasPrefix(line, markerPrefix) {
			return nil
		}
		action, ok, err := p.actions.ParseLine(line, hand.Preflop)
		if err != nil {
			return st.fail("%v", err)
		}
		if ok {
			switch action.Type {
			case hand.SmallBlind, hand.BigBlind, hand.PostBlind, hand.Ante:
				if perr := p.applyAction(st, action); perr != nil {
					return perr
				}
			default:
				// Preflop action has started without a hole cards
				// marker; leave the line for the street parser.
				return nil
			}
		}
		st.cursor.Advance()
	}
	return nil
}

func (p *Parser) parseHoleCards(st *parseState) *ParseError {
	if !atMarker(st, markerHoleCards) {
		return nil
	}
	st.cursor.Advance()
	for st.cursor.HasMore() {
		line, _ := st.cursor.Current()
		m := reDealt.FindStringSubmatch(line)
		if m == nil {
			return nil
		}
		cards, cerr := hand.ParseCards(m[2])
		if cerr != nil {
			return st.fail("dealt cards: %v", cerr)
		}
		if pl := st.hand.PlayerByName(m[1]); pl != nil {
			pl.HoleCards = cards
			pl.IsHero = true
		}
		st.appendAction(hand.Action{
			Street: hand.Preflop,
			Type:   hand.Deal,
			Player: m[1],
			Cards:  cards,
		})
		st.cursor.Advance()
	}
	return nil
}

func (p *Parser) parsePreflop(st *parseState) *ParseError {
	return p.parseStreetActions(st, hand.Preflop)
}

func (p *Parser) parseBoardStreets(st *parseState) *ParseError {
	streets := []struct {
		marker string
		street hand.Street
	}{
		{markerFlop, hand.Flop},
		{markerTurn, hand.Turn},
		{markerRiver, hand.River},
	}
	for _, s := range streets {
		if !atMarker(st, s.marker) {
			continue
		}
		line, _ := st.cursor.Current()
		if perr := p.dealBoard(st, s.street, line); perr != nil {
			return perr
		}
		st.cursor.Advance()
		st.streetBets = make(map[string]float64)
		if perr := p.parseStreetActions(st, s.street); perr != nil {
			return perr
		}
	}
	return nil
}

// dealBoard extracts the newly dealt community cards from a street marker
// line. Turn and river lines repeat the prior board in a first bracket group;
// the new cards are always the last group.
func (p *Parser) dealBoard(st *parseState, street hand.Street, line string) *ParseError {
	groups := reBrackets.FindAllStringSubmatch(line, -1)
	if len(groups) == 0 {
		return st.fail("street marker without board cards")
	}
	cards, err := hand.ParseCards(groups[len(groups)-1][1])
	if err != nil {
		return st.fail("board cards: %v", err)
	}
	st.hand.Board = append(st.hand.Board, cards...)
	st.appendAction(hand.Action{Street: street, Type: hand.Deal, Cards: cards})
	return nil
}

func (p *Parser) parseShowdown(st *parseState) *ParseError {
	if !atMarker(st, markerShowdown) {
		return nil
	}
	st.cursor.Advance()
	return p.parseStreetActions(st, hand.Showdown)
}

// parseStreetActions consumes action lines until the next section marker.
// Unrecognized lines are skipped; a recognized line with a bad amount fails
// the parse.
func (p *Parser) parseStreetActions(st *parseState, street hand.Street) *ParseError {
	for st.cursor.HasMore() {
		line, _ := st.cursor.Current()
		if strings.HasPrefix(line, markerPrefix) {
			return nil
		}
		action, ok, err := p.actions.ParseLine(line, street)
		if err != nil {
			return st.fail("%v", err)
		}
		if ok {
			if perr := p.applyAction(st, action); perr != nil {
				return perr
			}
		}
		st.cursor.Advance()
	}
	return nil
}

// applyAction records the action and updates the chip ledger. Raise amounts
// are round totals, so the contribution delta subtracts what the player had
// already put in this round, while the replay ledger subtracts the full
// amount from the stack (the historical behavior the zero clamp exists for).
func (p *Parser) applyAction(st *parseState, a hand.Action) *ParseError {
	switch {
	case a.Type.IsWager():
		delta := a.Amount
		if a.Type == hand.Raise {
			delta = a.Amount - st.streetBets[a.Player]
		}
		if a.Type != hand.Ante {
			if a.Type == hand.Raise {
				st.streetBets[a.Player] = a.Amount
			} else {
				st.streetBets[a.Player] += a.Amount
			}
		}
		st.contributions[a.Player] += delta

		chips, known := p.tracker.Chips(a.Player)
		if !known {
			return st.fail("action by unseated player %q", a.Player)
		}
		if err := p.tracker.TrackChips(a.Player, chips-a.Amount); err != nil {
			return st.fail("%v", err)
		}
		if a.AllIn {
			if err := p.tracker.MarkAllIn(a.Player, st.contributions[a.Player]); err != nil {
				return st.fail("%v", err)
			}
		}

	case a.Type == hand.Fold:
		if err := p.tracker.RemoveActive(a.Player); err != nil {
			return st.fail("%v", err)
		}

	case a.Type == hand.Uncalled:
		st.contributions[a.Player] -= a.Amount
		st.streetBets[a.Player] -= a.Amount
		if chips, known := p.tracker.Chips(a.Player); known {
			if err := p.tracker.TrackChips(a.Player, chips+a.Amount); err != nil {
				return st.fail("%v", err)
			}
		}

	case a.Type == hand.Collected:
		if chips, known := p.tracker.Chips(a.Player); known {
			if err := p.tracker.TrackChips(a.Player, chips+a.Amount); err != nil {
				return st.fail("%v", err)
			}
		}

	case a.Type == hand.Show:
		if pl := st.hand.PlayerByName(a.Player); pl != nil && len(pl.HoleCards) == 0 {
			pl.HoleCards = a.Cards
		}
	}

	st.appendAction(a)
	return nil
}

func (p *Parser) parseSummary(st *parseState) *ParseError {
	if !atMarker(st, markerSummary) {
		return nil
	}
	st.cursor.Advance()
	for st.cursor.HasMore() {
		line, _ := st.cursor.Current()
		switch {
		case reTotalPot.MatchString(line):
			m := reTotalPot.FindStringSubmatch(line)
			total, err := parseAmount(m[1])
			if err != nil {
				return st.fail("total pot: %v", err)
			}
			st.hand.TotalPot = total
			if rm := reRakePart.FindStringSubmatch(line); rm != nil {
				rake, rerr := parseAmount(rm[1])
				if rerr != nil {
					return st.fail("rake: %v", rerr)
				}
				st.hand.Rake = rake
			}

		case reBoardLine.MatchString(line):
			if len(st.hand.Board) == 0 {
				m := reBoardLine.FindStringSubmatch(line)
				cards, err := hand.ParseCards(m[1])
				if err != nil {
					return st.fail("summary board: %v", err)
				}
				st.hand.Board = cards
			}

		case reSummarySeat.MatchString(line):
			m := reSummarySeat.FindStringSubmatch(line)
			seat, _ := strconv.Atoi(m[1])
			cards, err := hand.ParseCards(m[4])
			if err != nil {
				return st.fail("summary cards: %v", err)
			}
			for i := range st.hand.Players {
				if st.hand.Players[i].Seat == seat && len(st.hand.Players[i].HoleCards) == 0 {
					st.hand.Players[i].HoleCards = cards
				}
			}
		}
		st.cursor.Advance()
	}
	return nil
}

// finish computes pots from the accumulated ledgers, runs validation and
// seals the hand.
func (p *Parser) finish(st *parseState) (*hand.PokerHand, *ParseError) {
	if p.strictChips {
		underflows := p.tracker.Underflows()
		if len(underflows) > 0 {
			names := make([]string, 0, len(underflows))
			for name := range underflows {
				names = append(names, name)
			}
			sort.Strings(names)
			return nil, &ParseError{
				Message: "chip balance underflow for " + names[0] +
					" (" + strconv.FormatFloat(underflows[names[0]], 'f', -1, 64) + " below zero)",
			}
		}
	}

	totalContributed := 0.0
	for _, amount := range st.contributions {
		totalContributed += amount
	}

	pots := p.pots.Calculate(st.contributions, p.tracker.AllInPlayers(), p.tracker.ActivePlayers())
	collected := p.actions.CollectedActions(st.cursor.All())
	pots = p.pots.EnhancePots(pots, collected, st.hand.Rake)
	st.hand.Pots = pots

	if st.hand.TotalPot == 0 {
		st.hand.TotalPot = totalContributed
	}

	if err := p.validator.ValidateStructure(st.hand); err != nil {
		return nil, &ParseError{Message: err.Error()}
	}

	var mismatches []string
	if err := p.pots.ValidatePotMath(pots, totalContributed-st.hand.Rake); err != nil {
		mismatches = append(mismatches, err.Error())
	}
	if err := p.validator.ValidateTotals(st.hand); err != nil {
		mismatches = append(mismatches, err.Error())
	}
	if len(mismatches) > 0 {
		if p.potPolicy == PotMismatchFatal {
			return nil, &ParseError{Message: mismatches[0]}
		}
		st.hand.Warnings = append(st.hand.Warnings, mismatches...)
	}

	return st.hand, nil
}

func atMarker(st *parseState, marker string) bool {
	st.skipBlank()
	line, err := st.cursor.Current()
	if err != nil {
		return false
	}
	return strings.HasPrefix(line, marker)
}

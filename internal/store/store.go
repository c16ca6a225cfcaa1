// Package store persists parsed hands in a local SQLite database so they can
// be replayed or analyzed after the original history files are gone.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lox/handreplay/internal/hand"
)

// ErrNotFound is returned when no hand with the requested id exists.
var ErrNotFound = errors.New("hand not found")

// Store is a SQLite-backed repository of parsed hands.
type Store struct {
	db *sql.DB

	// batch identifies all hands saved through this Store instance, so an
	// import run can be traced back later.
	batch string
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// WAL mode reduces write latency by avoiding full fsync on every commit.
	if _, err := db.Exec(`PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL; PRAGMA foreign_keys=ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}
	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, batch: uuid.NewString()}, nil
}

// Batch returns the import batch id for hands saved through this store.
func (s *Store) Batch() string {
	return s.batch
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveHand upserts a parsed hand keyed by its hand id. Saving the same hand
// twice overwrites the previous row, which makes imports idempotent.
func (s *Store) SaveHand(ctx context.Context, h *hand.PokerHand) error {
	if h == nil {
		return errors.New("nil hand")
	}

	actions, err := json.Marshal(h.Actions)
	if err != nil {
		return fmt.Errorf("marshal actions: %w", err)
	}
	pots, err := json.Marshal(h.Pots)
	if err != nil {
		return fmt.Errorf("marshal pots: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx, `INSERT INTO hands(
		hand_id, tournament_id, stakes, played_at, table_name, max_seats,
		button_seat, total_pot, rake, board, actions, pots, warnings,
		import_batch, imported_at
	) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(hand_id) DO UPDATE SET
		tournament_id=excluded.tournament_id,
		stakes=excluded.stakes,
		played_at=excluded.played_at,
		table_name=excluded.table_name,
		max_seats=excluded.max_seats,
		button_seat=excluded.button_seat,
		total_pot=excluded.total_pot,
		rake=excluded.rake,
		board=excluded.board,
		actions=excluded.actions,
		pots=excluded.pots,
		warnings=excluded.warnings,
		import_batch=excluded.import_batch,
		imported_at=excluded.imported_at`,
		h.ID,
		nullIfEmpty(h.TournamentID),
		h.Stakes,
		h.Date.UTC().Format(time.RFC3339Nano),
		h.Table.Name,
		h.Table.MaxSeats,
		h.Table.ButtonSeat,
		h.TotalPot,
		h.Rake,
		cardsToText(h.Board),
		string(actions),
		string(pots),
		nullIfEmpty(strings.Join(h.Warnings, "\n")),
		s.batch,
		now,
	); err != nil {
		return fmt.Errorf("upsert hand %s: %w", h.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM hand_players WHERE hand_id = ?`, h.ID); err != nil {
		return fmt.Errorf("clear players for %s: %w", h.ID, err)
	}
	for _, p := range h.Players {
		if _, err := tx.ExecContext(ctx, `INSERT INTO hand_players(
			hand_id, seat, name, starting_chips, hole_cards, is_hero
		) VALUES(?, ?, ?, ?, ?, ?)`,
			h.ID, p.Seat, p.Name, p.StartingChips,
			nullIfEmpty(cardsToText(p.HoleCards)), boolToInt(p.IsHero),
		); err != nil {
			return fmt.Errorf("insert player %s: %w", p.Name, err)
		}
	}

	return tx.Commit()
}

// GetHand loads a single hand by id, reconstructing the full aggregate.
func (s *Store) GetHand(ctx context.Context, id string) (*hand.PokerHand, error) {
	row := s.db.QueryRowContext(ctx, `SELECT
		hand_id, COALESCE(tournament_id, ''), stakes, played_at, table_name,
		max_seats, button_seat, total_pot, rake, board, actions, pots,
		COALESCE(warnings, '')
	FROM hands WHERE hand_id = ?`, id)

	var (
		h               hand.PokerHand
		playedAt        string
		board           string
		actions, pots   string
		warnings        string
	)
	err := row.Scan(&h.ID, &h.TournamentID, &h.Stakes, &playedAt, &h.Table.Name,
		&h.Table.MaxSeats, &h.Table.ButtonSeat, &h.TotalPot, &h.Rake,
		&board, &actions, &pots, &warnings)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load hand %s: %w", id, err)
	}

	if h.Date, err = time.Parse(time.RFC3339Nano, playedAt); err != nil {
		return nil, fmt.Errorf("hand %s played_at: %w", id, err)
	}
	if h.Board, err = hand.ParseCards(board); err != nil {
		return nil, fmt.Errorf("hand %s board: %w", id, err)
	}
	if err := json.Unmarshal([]byte(actions), &h.Actions); err != nil {
		return nil, fmt.Errorf("hand %s actions: %w", id, err)
	}
	if err := json.Unmarshal([]byte(pots), &h.Pots); err != nil {
		return nil, fmt.Errorf("hand %s pots: %w", id, err)
	}
	if warnings != "" {
		h.Warnings = strings.Split(warnings, "\n")
	}

	rows, err := s.db.QueryContext(ctx, `SELECT seat, name, starting_chips,
		COALESCE(hole_cards, ''), is_hero
	FROM hand_players WHERE hand_id = ? ORDER BY seat`, id)
	if err != nil {
		return nil, fmt.Errorf("load players for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p     hand.Player
			cards string
			hero  int
		)
		if err := rows.Scan(&p.Seat, &p.Name, &p.StartingChips, &cards, &hero); err != nil {
			return nil, err
		}
		if p.HoleCards, err = hand.ParseCards(cards); err != nil {
			return nil, fmt.Errorf("player %s cards: %w", p.Name, err)
		}
		p.IsHero = hero != 0
		h.Players = append(h.Players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &h, nil
}

// HandSummary is one row of a hand listing.
type HandSummary struct {
	ID       string
	Stakes   string
	Table    string
	PlayedAt time.Time
	TotalPot float64
	Players  int
}

// ListHands returns the most recently played hands, newest first.
func (s *Store) ListHands(ctx context.Context, limit int) ([]HandSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		h.hand_id, h.stakes, h.table_name, h.played_at, h.total_pot,
		(SELECT COUNT(*) FROM hand_players p WHERE p.hand_id = h.hand_id)
	FROM hands h ORDER BY h.played_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HandSummary
	for rows.Next() {
		var (
			sum      HandSummary
			playedAt string
		)
		if err := rows.Scan(&sum.ID, &sum.Stakes, &sum.Table, &playedAt, &sum.TotalPot, &sum.Players); err != nil {
			return nil, err
		}
		if sum.PlayedAt, err = time.Parse(time.RFC3339Nano, playedAt); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func cardsToText(cards []hand.Card) string {
	tokens := make([]string, len(cards))
	for i, c := range cards {
		tokens[i] = c.String()
	}
	return strings.Join(tokens, " ")
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

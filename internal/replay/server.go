// Package replay serves stored hands over WebSocket, one action at a time,
// so a client can step through a hand the way it played out.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/handreplay/internal/hand"
	"github.com/lox/handreplay/internal/store"
)

// HandSource is where the server loads hands from. *store.Store satisfies it.
type HandSource interface {
	GetHand(ctx context.Context, id string) (*hand.PokerHand, error)
	ListHands(ctx context.Context, limit int) ([]store.HandSummary, error)
}

// Server streams hand replays to WebSocket clients.
type Server struct {
	addr     string
	source   HandSource
	upgrader websocket.Upgrader
	logger   *log.Logger
	clock    quartz.Clock
	interval time.Duration

	mu          sync.RWMutex
	connections map[*websocket.Conn]bool

	httpServer *http.Server
}

// NewServer creates a replay server. interval is the delay between action
// frames; clock exists so tests can drive pacing synthetically.
func NewServer(addr string, source HandSource, interval time.Duration, logger *log.Logger, clock quartz.Clock) *Server {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Server{
		addr:   addr,
		source: source,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("replay"),
		clock:       clock,
		interval:    interval,
		connections: make(map[*websocket.Conn]bool),
	}
}

// Handler returns the HTTP handler so tests can mount it on httptest servers.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/replay", s.handleReplay)
	mux.HandleFunc("/hands", s.handleHands)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start serves until the listener fails or Stop is called. A shutdown via
// Stop returns nil, never http.ErrServerClosed.
func (s *Server) Start() error {
	srv := &http.Server{Addr: s.addr, Handler: s.Handler()}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("Starting replay server", "addr", s.addr)
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop shuts the HTTP server down and closes open replay connections.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Frame is one message of a replay stream.
type Frame struct {
	Type    string       `json:"type"`
	Hand    *handHeader  `json:"hand,omitempty"`
	Action  *hand.Action `json:"action,omitempty"`
	Street  hand.Street  `json:"street,omitempty"`
	Board   []hand.Card  `json:"board,omitempty"`
	Pots    []hand.Pot   `json:"pots,omitempty"`
	Message string       `json:"message,omitempty"`
}

type handHeader struct {
	ID       string          `json:"id"`
	Stakes   string          `json:"stakes"`
	Table    hand.TableInfo  `json:"table"`
	Players  []hand.Player   `json:"players"`
	TotalPot float64         `json:"total_pot"`
	Rake     float64         `json:"rake"`
	Date     time.Time       `json:"date"`
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("hand")
	if id == "" {
		http.Error(w, "missing hand parameter", http.StatusBadRequest)
		return
	}

	h, err := s.source.GetHand(r.Context(), id)
	if err == store.ErrNotFound {
		http.Error(w, "hand not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.logger.Error("Failed to load hand", "hand", id, "error", err)
		http.Error(w, "failed to load hand", http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	s.mu.Lock()
	s.connections[conn] = true
	s.mu.Unlock()
	s.logger.Info("Replay started", "hand", id)

	defer func() {
		s.mu.Lock()
		delete(s.connections, conn)
		s.mu.Unlock()
		_ = conn.Close()
		s.logger.Info("Replay finished", "hand", id)
	}()

	if err := s.stream(r.Context(), conn, h); err != nil {
		s.logger.Debug("Replay interrupted", "hand", id, "error", err)
	}
}

// stream writes the hand as a sequence of frames, pausing between actions.
func (s *Server) stream(ctx context.Context, conn *websocket.Conn, h *hand.PokerHand) error {
	if err := conn.WriteJSON(Frame{
		Type: "hand_start",
		Hand: &handHeader{
			ID:       h.ID,
			Stakes:   h.Stakes,
			Table:    h.Table,
			Players:  h.Players,
			TotalPot: h.TotalPot,
			Rake:     h.Rake,
			Date:     h.Date,
		},
	}); err != nil {
		return err
	}

	street := hand.Street("")
	for i := range h.Actions {
		a := &h.Actions[i]
		if a.Street != street {
			street = a.Street
			if err := conn.WriteJSON(Frame{
				Type:   "street",
				Street: street,
				Board:  boardAt(h, street),
			}); err != nil {
				return err
			}
		}

		if err := s.pause(ctx); err != nil {
			return err
		}
		if err := conn.WriteJSON(Frame{Type: "action", Action: a}); err != nil {
			return err
		}
	}

	return conn.WriteJSON(Frame{Type: "hand_end", Pots: h.Pots, Board: h.Board})
}

func (s *Server) pause(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}
	timer := s.clock.NewTimer(s.interval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// boardAt returns the community cards visible on a street.
func boardAt(h *hand.PokerHand, street hand.Street) []hand.Card {
	var n int
	switch street {
	case hand.Flop:
		n = 3
	case hand.Turn:
		n = 4
	case hand.River, hand.Showdown:
		n = 5
	default:
		return nil
	}
	if n > len(h.Board) {
		n = len(h.Board)
	}
	return h.Board[:n]
}

func (s *Server) handleHands(w http.ResponseWriter, r *http.Request) {
	hands, err := s.source.ListHands(r.Context(), 100)
	if err != nil {
		s.logger.Error("Failed to list hands", "error", err)
		http.Error(w, "failed to list hands", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(hands); err != nil {
		s.logger.Error("Failed to encode hand list", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

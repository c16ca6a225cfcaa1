package main

import (
	"context"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/handreplay/cmd/handreplay/shared"
	"github.com/lox/handreplay/internal/config"
	"github.com/lox/handreplay/internal/replay"
	"github.com/lox/handreplay/internal/store"
)

// ServeCmd runs the replay WebSocket server over the hand database.
type ServeCmd struct {
	Addr       string `kong:"help='Listen address (default: from config)'"`
	DB         string `kong:"help='Override database path from config'"`
	IntervalMs int    `kong:"default='-1',help='Milliseconds between replayed actions (default: from config)'"`
	Debug      bool   `kong:"help='Enable debug logging'"`
}

func (c *ServeCmd) Run(cli *CLI) error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	addr := cfg.ReplayAddress()
	if c.Addr != "" {
		addr = c.Addr
	}
	dbPath := cfg.Store.Path
	if c.DB != "" {
		dbPath = c.DB
	}
	intervalMs := cfg.Replay.IntervalMs
	if c.IntervalMs >= 0 {
		intervalMs = c.IntervalMs
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	serverLog := charmlog.New(os.Stderr)
	if c.Debug {
		serverLog.SetLevel(charmlog.DebugLevel)
	}

	srv := replay.NewServer(addr, s,
		time.Duration(intervalMs)*time.Millisecond, serverLog, quartz.NewReal())

	logger.Info().
		Str("addr", addr).
		Str("db", dbPath).
		Int("interval_ms", intervalMs).
		Msg("Starting replay server")

	ctx := shared.SetupSignalHandler(logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info().Msg("Shutting down replay server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

package main

import (
	"github.com/lox/handreplay/cmd/handreplay/shared"
	"github.com/lox/handreplay/internal/config"
	"github.com/lox/handreplay/internal/hand"
	"github.com/lox/handreplay/internal/parser"
	"github.com/lox/handreplay/internal/store"
	"github.com/lox/handreplay/internal/watcher"
)

// WatchCmd tails a directory of history files and imports hands as they land.
type WatchCmd struct {
	Dir   string `arg:"" optional:"" help:"Directory to watch (default: from config)"`
	DB    string `kong:"help='Override database path from config'"`
	Debug bool   `kong:"help='Enable debug logging'"`
}

func (c *WatchCmd) Run(cli *CLI) error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	dir := cfg.Watch.Dir
	if c.Dir != "" {
		dir = c.Dir
	}
	dbPath := cfg.Store.Path
	if c.DB != "" {
		dbPath = c.DB
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := shared.SetupSignalHandler(logger)

	w, err := watcher.New(dir, watcher.Config{
		OnHand: func(path string, h *hand.PokerHand) {
			if err := s.SaveHand(ctx, h); err != nil {
				logger.Error().Err(err).Str("hand", h.ID).Msg("Failed to save hand")
				return
			}
			logger.Info().Str("file", path).Str("hand", h.ID).Msg("Hand imported")
		},
		OnParseError: func(path string, perr *parser.ParseError) {
			logger.Warn().Str("file", path).Int("line", perr.Line).Msg(perr.Message)
		},
	}, logger, parserOptions(cfg)...)
	if err != nil {
		return err
	}

	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	logger.Info().Str("dir", dir).Str("db", dbPath).Msg("Watching for new hands")
	<-ctx.Done()
	return nil
}

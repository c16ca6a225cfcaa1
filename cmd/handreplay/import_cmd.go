package main

import (
	"context"
	"os"

	"github.com/lox/handreplay/cmd/handreplay/shared"
	"github.com/lox/handreplay/internal/config"
	"github.com/lox/handreplay/internal/parser"
	"github.com/lox/handreplay/internal/store"
)

// ImportCmd parses history files and saves the hands into the database.
type ImportCmd struct {
	Files []string `arg:"" name:"file" help:"Hand history files to import" type:"existingfile"`
	DB    string   `kong:"help='Override database path from config'"`
	Debug bool     `kong:"help='Enable debug logging'"`
}

func (c *ImportCmd) Run(cli *CLI) error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
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
	p := parser.NewParser(parserOptions(cfg)...)

	imported, failed := 0, 0
	for _, path := range c.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		for _, text := range parser.Split(string(data)) {
			if err := ctx.Err(); err != nil {
				return context.Cause(ctx)
			}

			h, perr := p.Parse(text)
			if perr != nil {
				logger.Warn().Str("file", path).Int("line", perr.Line).Msg(perr.Message)
				failed++
				continue
			}
			if err := s.SaveHand(ctx, h); err != nil {
				return err
			}
			imported++
		}
	}

	logger.Info().
		Str("db", dbPath).
		Str("batch", s.Batch()).
		Int("imported", imported).
		Int("failed", failed).
		Msg("Import complete")
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lox/handreplay/cmd/handreplay/shared"
	"github.com/lox/handreplay/internal/config"
	"github.com/lox/handreplay/internal/hand"
	"github.com/lox/handreplay/internal/parser"
)

// ParseCmd parses history files and prints the structured hands as JSON.
type ParseCmd struct {
	Files       []string `arg:"" name:"file" help:"Hand history files to parse" type:"existingfile"`
	Debug       bool     `kong:"help='Enable debug logging'"`
	Concurrency int      `kong:"default='4',help='Number of files parsed in parallel'"`
	FailFast    bool     `kong:"help='Stop at the first hand that fails to parse'"`
}

func (c *ParseCmd) Run(cli *CLI) error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	opts := parserOptions(cfg)

	type fileResult struct {
		path   string
		hands  []*hand.PokerHand
		failed int
	}

	var (
		mu      sync.Mutex
		results []fileResult
	)

	g := errgroup.Group{}
	g.SetLimit(c.Concurrency)
	for _, path := range c.Files {
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			p := parser.NewParser(opts...)
			res := fileResult{path: path}
			for _, text := range parser.Split(string(data)) {
				h, perr := p.Parse(text)
				if perr != nil {
					if c.FailFast {
						return fmt.Errorf("%s:%d: %s", path, perr.Line, perr.Message)
					}
					logger.Warn().Str("file", path).Int("line", perr.Line).Msg(perr.Message)
					res.failed++
					continue
				}
				res.hands = append(res.hands, h)
			}

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].path < results[j].path })

	var hands []*hand.PokerHand
	failed := 0
	for _, res := range results {
		hands = append(hands, res.hands...)
		failed += res.failed
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(hands); err != nil {
		return err
	}

	logger.Info().
		Int("files", len(c.Files)).
		Int("hands", len(hands)).
		Int("failed", failed).
		Msg("Parse complete")
	if failed > 0 {
		return fmt.Errorf("%d hand(s) failed to parse", failed)
	}
	return nil
}

// parserOptions maps config settings onto parser options.
func parserOptions(cfg *config.Config) []parser.Option {
	var opts []parser.Option
	if cfg.Parser.StrictChips {
		opts = append(opts, parser.WithStrictChips(true))
	}
	if cfg.Parser.PotMismatch == "fail" {
		opts = append(opts, parser.WithPotMismatchPolicy(parser.PotMismatchFatal))
	}
	return opts
}

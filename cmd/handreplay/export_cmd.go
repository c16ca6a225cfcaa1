package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lox/handreplay/cmd/handreplay/shared"
	"github.com/lox/handreplay/internal/config"
	"github.com/lox/handreplay/internal/fileutil"
	"github.com/lox/handreplay/internal/parser"
	"github.com/lox/handreplay/internal/phh"
)

// ExportCmd converts hand history files to PHH format.
type ExportCmd struct {
	Files []string `arg:"" name:"file" help:"Hand history files to export" type:"existingfile"`
	Out   string   `kong:"help='Directory to write .phh files into (default: stdout)'"`
	Debug bool     `kong:"help='Enable debug logging'"`
}

func (c *ExportCmd) Run(cli *CLI) error {
	logger := shared.SetupLogger(c.Debug)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	p := parser.NewParser(parserOptions(cfg)...)

	if c.Out != "" {
		if err := os.MkdirAll(c.Out, 0o755); err != nil {
			return err
		}
	}

	exported := 0
	for _, path := range c.Files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		for _, text := range parser.Split(string(data)) {
			h, perr := p.Parse(text)
			if perr != nil {
				logger.Warn().Str("file", path).Int("line", perr.Line).Msg(perr.Message)
				continue
			}

			encoded, err := phh.EncodeToBytes(phh.FromHand(h))
			if err != nil {
				return fmt.Errorf("encode hand %s: %w", h.ID, err)
			}

			if c.Out == "" {
				if exported > 0 {
					fmt.Println()
				}
				if _, err := os.Stdout.Write(encoded); err != nil {
					return err
				}
			} else {
				out := filepath.Join(c.Out, h.ID+".phh")
				if err := fileutil.WriteFileAtomic(out, encoded, 0o644); err != nil {
					return err
				}
				logger.Debug().Str("file", out).Msg("Hand exported")
			}
			exported++
		}
	}

	logger.Info().Int("hands", exported).Msg("Export complete")
	return nil
}

// Package config loads tool configuration from HCL files.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config is the complete configuration for the hand history toolchain.
type Config struct {
	Parser ParserSettings `hcl:"parser,block"`
	Store  StoreSettings  `hcl:"store,block"`
	Replay ReplaySettings `hcl:"replay,block"`
	Watch  WatchSettings  `hcl:"watch,block"`
}

// ParserSettings control how strictly hands are validated while parsing.
type ParserSettings struct {
	// StrictChips makes a player wagering more than their stack a parse error
	// instead of clamping the stack at zero.
	StrictChips bool `hcl:"strict_chips,optional"`
	// PotMismatch is "warn" or "fail" and decides what happens when computed
	// pots disagree with the summary totals.
	PotMismatch string `hcl:"pot_mismatch,optional"`
}

// StoreSettings locate the hand database.
type StoreSettings struct {
	Path string `hcl:"path,optional"`
}

// ReplaySettings configure the replay WebSocket server.
type ReplaySettings struct {
	Address    string `hcl:"address,optional"`
	Port       int    `hcl:"port,optional"`
	IntervalMs int    `hcl:"interval_ms,optional"`
}

// WatchSettings configure directory watching.
type WatchSettings struct {
	Dir string `hcl:"dir,optional"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Parser: ParserSettings{
			StrictChips: false,
			PotMismatch: "warn",
		},
		Store: StoreSettings{
			Path: "hands.db",
		},
		Replay: ReplaySettings{
			Address:    "localhost",
			Port:       8090,
			IntervalMs: 750,
		},
		Watch: WatchSettings{
			Dir: ".",
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields defaults;
// a file that exists but fails to parse is an error.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Parser.PotMismatch == "" {
		cfg.Parser.PotMismatch = def.Parser.PotMismatch
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = def.Store.Path
	}
	if cfg.Replay.Address == "" {
		cfg.Replay.Address = def.Replay.Address
	}
	if cfg.Replay.Port == 0 {
		cfg.Replay.Port = def.Replay.Port
	}
	if cfg.Replay.IntervalMs == 0 {
		cfg.Replay.IntervalMs = def.Replay.IntervalMs
	}
	if cfg.Watch.Dir == "" {
		cfg.Watch.Dir = def.Watch.Dir
	}
}

// Validate checks field values after defaults have been applied.
func (c *Config) Validate() error {
	if c.Parser.PotMismatch != "warn" && c.Parser.PotMismatch != "fail" {
		return fmt.Errorf("invalid pot_mismatch: %q (want warn or fail)", c.Parser.PotMismatch)
	}
	if c.Replay.Port < 1 || c.Replay.Port > 65535 {
		return fmt.Errorf("invalid replay port: %d", c.Replay.Port)
	}
	if c.Replay.IntervalMs < 0 {
		return fmt.Errorf("invalid replay interval: %dms", c.Replay.IntervalMs)
	}
	return nil
}

// ReplayAddress returns the host:port the replay server listens on.
func (c *Config) ReplayAddress() string {
	return fmt.Sprintf("%s:%d", c.Replay.Address, c.Replay.Port)
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/handreplay/internal/config"
)

func TestParserOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	assert.Empty(t, parserOptions(cfg))

	cfg.Parser.StrictChips = true
	assert.Len(t, parserOptions(cfg), 1)

	cfg.Parser.PotMismatch = "fail"
	assert.Len(t, parserOptions(cfg), 2)
}

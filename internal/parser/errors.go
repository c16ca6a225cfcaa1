package parser

import (
	"errors"
	"fmt"
)

// ErrUnexpectedEndOfInput is returned by the line cursor when a caller asks
// for the current line after the last one has been consumed.
var ErrUnexpectedEndOfInput = errors.New("unexpected end of input")

// ParseError is the single failure shape returned by Parse. It carries the
// 1-based line number where parsing stopped and the raw line for context.
// A ParseError and a PokerHand are mutually exclusive outcomes.
type ParseError struct {
	Message string `json:"message"`
	Line    int    `json:"line"`
	Context string `json:"context,omitempty"`
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d: %q)", e.Message, e.Line, e.Context)
	}
	return e.Message
}

// errorf builds a ParseError anchored at the given line.
func errorf(line int, context string, format string, args ...any) *ParseError {
	return &ParseError{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Context: context,
	}
}

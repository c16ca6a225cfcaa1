package parser

import "strings"

// lineCursor is a forward-only cursor over the pre-trimmed lines of a hand
// history. Blank lines are preserved; callers decide whether they matter.
type lineCursor struct {
	lines []string
	pos   int
}

// newLineCursor splits raw text into lines, trimming surrounding whitespace
// from each line but keeping blank lines in place.
func newLineCursor(text string) *lineCursor {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSpace(l)
	}
	return &lineCursor{lines: lines}
}

// Current returns the line under the cursor, or ErrUnexpectedEndOfInput when
// the cursor has moved past the last line.
func (c *lineCursor) Current() (string, error) {
	if c.pos >= len(c.lines) {
		return "", ErrUnexpectedEndOfInput
	}
	return c.lines[c.pos], nil
}

// Advance moves the cursor forward one line.
func (c *lineCursor) Advance() {
	c.pos++
}

// HasMore reports whether any line remains to be consumed.
func (c *lineCursor) HasMore() bool {
	return c.pos < len(c.lines)
}

// Line returns the 1-based number of the line under the cursor, for error
// context. Past the end it reports the last line number.
func (c *lineCursor) Line() int {
	if c.pos >= len(c.lines) {
		return len(c.lines)
	}
	return c.pos + 1
}

// All returns every line in the hand, independent of cursor position. Used by
// the whole-hand extraction pass for collected-pot statements.
func (c *lineCursor) All() []string {
	return c.lines
}

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineCursor(t *testing.T) {
	t.Parallel()

	c := newLineCursor("  first \r\nsecond\n\nthird")

	line, err := c.Current()
	require.NoError(t, err)
	assert.Equal(t, "first", line)
	assert.Equal(t, 1, c.Line())

	c.Advance()
	line, err = c.Current()
	require.NoError(t, err)
	assert.Equal(t, "second", line)

	// Blank lines are preserved
	c.Advance()
	line, err = c.Current()
	require.NoError(t, err)
	assert.Equal(t, "", line)

	c.Advance()
	require.True(t, c.HasMore())
	c.Advance()
	assert.False(t, c.HasMore())

	_, err = c.Current()
	assert.ErrorIs(t, err, ErrUnexpectedEndOfInput)
}

func TestLineCursorAll(t *testing.T) {
	t.Parallel()

	c := newLineCursor("a\nb")
	c.Advance()
	c.Advance()
	assert.Equal(t, []string{"a", "b"}, c.All())
}

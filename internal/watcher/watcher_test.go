package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/handreplay/internal/hand"
	"github.com/lox/handreplay/internal/parser"
)

const watchedHand = `PokerStars Hand #3100: Hold'em No Limit ($1/$2) - 2024/04/02 19:00:00 ET
Table 'Tailing' 6-max Seat #1 is the button
Seat 1: alice ($200.00 in chips)
Seat 2: bob ($200.00 in chips)
alice: posts small blind $1
bob: posts big blind $2
*** HOLE CARDS ***
alice: raises $4 to $6
bob: folds
Uncalled bet ($4) returned to alice
alice collected $4 from pot
*** SUMMARY ***
Total pot $4 | Rake $0
Seat 1: alice (button) (small blind) collected ($4)
Seat 2: bob (big blind) folded before Flop
`

func newTestWatcher(t *testing.T, dir string, cfg Config) *Watcher {
	t.Helper()
	w, err := New(dir, cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(w.Stop)
	return w
}

func TestWatcherRejectsMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"), Config{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w := newTestWatcher(t, t.TempDir(), Config{})
	w.Stop()
	w.Stop()
}

func TestWatcherDeliversExistingHands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.txt")
	require.NoError(t, os.WriteFile(path, []byte(watchedHand+"\n\n"), 0o600))

	handCh := make(chan *hand.PokerHand, 4)
	w := newTestWatcher(t, dir, Config{OnHand: func(_ string, h *hand.PokerHand) {
		handCh <- h
	}})
	require.NoError(t, w.Start())

	// Existing files are consumed before Start returns.
	select {
	case h := <-handCh:
		assert.Equal(t, "3100", h.ID)
	default:
		t.Fatal("existing hand not delivered")
	}
}

func TestWatcherDeliversNewFile(t *testing.T) {
	dir := t.TempDir()

	handCh := make(chan *hand.PokerHand, 4)
	w := newTestWatcher(t, dir, Config{OnHand: func(_ string, h *hand.PokerHand) {
		handCh <- h
	}})
	require.NoError(t, w.Start())

	path := filepath.Join(dir, "new-session.txt")
	require.NoError(t, os.WriteFile(path, []byte(watchedHand+"\n\n"), 0o600))

	select {
	case h := <-handCh:
		assert.Equal(t, "3100", h.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for new hand")
	}
}

func TestWatcherDeliversCRLFFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "windows-session.txt")
	crlf := strings.ReplaceAll(watchedHand+"\n\n", "\n", "\r\n")
	require.NoError(t, os.WriteFile(path, []byte(crlf), 0o600))

	handCh := make(chan *hand.PokerHand, 4)
	w := newTestWatcher(t, dir, Config{OnHand: func(_ string, h *hand.PokerHand) {
		handCh <- h
	}})
	require.NoError(t, w.Start())

	select {
	case h := <-handCh:
		assert.Equal(t, "3100", h.ID)
	default:
		t.Fatal("CRLF hand not delivered")
	}
}

func TestWatcherHoldsBackIncompleteHand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.txt")
	partial := watchedHand + "\n\nPokerStars Hand #3101: Hold'em No Limit ($1/$2) - 2024/04/02 19:05:00 ET\nTable 'Tailing' 6-max Seat #2 is the button\n"
	require.NoError(t, os.WriteFile(path, []byte(partial), 0o600))

	handCh := make(chan *hand.PokerHand, 4)
	w := newTestWatcher(t, dir, Config{OnHand: func(_ string, h *hand.PokerHand) {
		handCh <- h
	}})
	require.NoError(t, w.Start())

	require.Len(t, handCh, 1)
	h := <-handCh
	assert.Equal(t, "3100", h.ID)
}

func TestWatcherReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.txt")
	require.NoError(t, os.WriteFile(path, []byte("PokerStars Hand #9: mangled beyond repair\n\n"), 0o600))

	errCh := make(chan *parser.ParseError, 1)
	w := newTestWatcher(t, dir, Config{OnParseError: func(_ string, perr *parser.ParseError) {
		errCh <- perr
	}})
	require.NoError(t, w.Start())

	require.Len(t, errCh, 1)
	perr := <-errCh
	assert.Equal(t, 1, perr.Line)
}

func TestSplitCompleteHandlesLineEndings(t *testing.T) {
	complete, trailing := splitComplete("hand one\n\nhand two in progress")
	assert.Equal(t, "hand one\n\n", complete)
	assert.Equal(t, "hand two in progress", trailing)

	complete, trailing = splitComplete("hand one\r\nline two\r\n\r\n")
	assert.Equal(t, "hand one\r\nline two\r\n\r\n", complete)
	assert.Empty(t, trailing)

	complete, trailing = splitComplete("no separator yet")
	assert.Empty(t, complete)
	assert.Equal(t, "no separator yet", trailing)
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()

	handCh := make(chan *hand.PokerHand, 4)
	w := newTestWatcher(t, dir, Config{OnHand: func(_ string, h *hand.PokerHand) {
		handCh <- h
	}})
	require.NoError(t, w.Start())

	path := filepath.Join(dir, "notes.log")
	require.NoError(t, os.WriteFile(path, []byte(watchedHand+"\n\n"), 0o600))

	select {
	case h := <-handCh:
		t.Fatalf("unexpected hand delivered: %s", h.ID)
	case <-time.After(300 * time.Millisecond):
	}
}

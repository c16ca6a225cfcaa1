// Package watcher tails a directory of hand history files and delivers each
// newly written hand as it appears.
package watcher

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/lox/handreplay/internal/hand"
	"github.com/lox/handreplay/internal/parser"
)

// Config carries the callbacks invoked by the watch loop. All callbacks run
// on the watcher's goroutine.
type Config struct {
	// OnHand receives every hand parsed from new file content.
	OnHand func(path string, h *hand.PokerHand)
	// OnParseError receives hands that failed to parse. Optional; parse
	// failures are logged and skipped when nil.
	OnParseError func(path string, perr *parser.ParseError)
	// OnError receives filesystem-level errors. Optional.
	OnError func(err error)
}

// Watcher monitors a directory for new or growing hand history files.
type Watcher struct {
	dir     string
	fsw     *fsnotify.Watcher
	parser  *parser.Parser
	log     zerolog.Logger
	done    chan struct{}
	cfg     Config

	mu       sync.Mutex
	offsets  map[string]int64
	stopOnce sync.Once
}

// New creates a watcher over dir. Call Start to begin delivery.
func New(dir string, cfg Config, log zerolog.Logger, opts ...parser.Option) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch path %s is not a directory", dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &Watcher{
		dir:     dir,
		fsw:     fsw,
		parser:  parser.NewParser(opts...),
		log:     log.With().Str("component", "watcher").Str("dir", dir).Logger(),
		done:    make(chan struct{}),
		cfg:     cfg,
		offsets: make(map[string]int64),
	}, nil
}

// Start scans existing files, then begins watching for changes. Hands already
// on disk are delivered before Start returns.
func (w *Watcher) Start() error {
	if err := w.fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", w.dir, err)
	}
	w.log.Info().Msg("watcher starting")

	matches, err := filepath.Glob(filepath.Join(w.dir, "*.txt"))
	if err != nil {
		return err
	}
	for _, path := range matches {
		w.consume(path)
	}

	go w.loop()
	return nil
}

// Stop shuts the watcher down. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info().Msg("watcher stopped")
		close(w.done)
		_ = w.fsw.Close()
	})
}

func (w *Watcher) loop() {
	// Poll as a fallback for editors that write without emitting events the
	// platform backend can see.
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !isHistoryFile(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.consume(event.Name)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		case <-ticker.C:
			matches, err := filepath.Glob(filepath.Join(w.dir, "*.txt"))
			if err != nil {
				w.reportError(err)
				continue
			}
			for _, path := range matches {
				w.consume(path)
			}
		}
	}
}

// consume reads any content appended to path since the last read and parses
// complete hands out of it.
func (w *Watcher) consume(path string) {
	path = filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		w.reportError(err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		w.reportError(err)
		return
	}

	offset := w.offsets[path]
	if info.Size() < offset {
		// Truncated or rewritten; start over.
		offset = 0
	}
	if info.Size() <= offset {
		return
	}

	if _, err := f.Seek(offset, 0); err != nil {
		w.reportError(err)
		return
	}
	buf := make([]byte, info.Size()-offset)
	if _, err := io.ReadFull(f, buf); err != nil {
		w.reportError(err)
		return
	}
	text := string(buf)

	// Only consume complete hands: anything after the final blank line may
	// still be mid-write, so leave it for the next read.
	complete, trailing := splitComplete(text)
	w.offsets[path] = offset + int64(len(text)) - int64(len(trailing))

	for _, handText := range parser.Split(complete) {
		h, perr := w.parser.Parse(handText)
		if perr != nil {
			w.log.Warn().Str("path", path).Int("line", perr.Line).Msg(perr.Message)
			if w.cfg.OnParseError != nil {
				w.cfg.OnParseError(path, perr)
			}
			continue
		}
		w.log.Debug().Str("path", path).Str("hand", h.ID).Msg("hand parsed")
		if w.cfg.OnHand != nil {
			w.cfg.OnHand(path, h)
		}
	}
}

func (w *Watcher) reportError(err error) {
	w.log.Error().Err(err).Msg("watch error")
	if w.cfg.OnError != nil {
		w.cfg.OnError(err)
	}
}

// Blank separator line in either LF or CRLF files. Matched against the raw
// bytes so offsets stay exact.
var reBlankSeparator = regexp.MustCompile(`\r?\n\r?\n`)

// splitComplete divides text into hands that are definitely finished and a
// trailing fragment that may still be growing. A hand is finished once the
// writer has moved on to a blank separator line.
func splitComplete(text string) (complete, trailing string) {
	matches := reBlankSeparator.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return "", text
	}
	end := matches[len(matches)-1][1]
	return text[:end], text[end:]
}

func isHistoryFile(path string) bool {
	matched, err := filepath.Match("*.txt", filepath.Base(path))
	return err == nil && matched
}

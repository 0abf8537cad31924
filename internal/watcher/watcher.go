// Package watcher implements the clipboard polling loop that feeds new text
// to the plugin collection and writes back replacements.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.klb.dev/autoclip/internal/clip"
	"go.klb.dev/autoclip/internal/logging"
	"go.klb.dev/autoclip/internal/platform"
)

// Dispatcher offers text to plugins. *plugin.Collection implements it.
type Dispatcher interface {
	Dispatch(text string) (string, bool)
}

// TypesFunc lists the type identifiers currently on the clipboard.
type TypesFunc func() ([]string, error)

// Outcome says what a tick did.
type Outcome int

const (
	// Unchanged means the clipboard text is what the loop saw last.
	Unchanged Outcome = iota
	// ReadFailed means reading the clipboard failed and the tick was skipped.
	ReadFailed
	// Ignored means the clipboard carries an ignored type.
	Ignored
	// NoMatch means no plugin replaced the text.
	NoMatch
	// Rewritten means a replacement was written back.
	Rewritten
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case ReadFailed:
		return "read failed"
	case Ignored:
		return "ignored"
	case NoMatch:
		return "no match"
	case Rewritten:
		return "rewritten"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// Config configures a Watcher.
type Config struct {
	Clipboard clip.Backend
	Plugins   Dispatcher

	// Interval between polls. Must be positive.
	Interval time.Duration

	// IgnoredTypes are pasteboard types that exclude content from
	// processing.
	IgnoredTypes []string

	// Types lists the pasteboard types. Nil uses platform.ClipboardTypes.
	Types TypesFunc
}

// Stats are counters exposed through the control socket.
type Stats struct {
	Ticks         uint64    `json:"ticks"`
	Changes       uint64    `json:"changes"`
	Ignored       uint64    `json:"ignored"`
	Rewrites      uint64    `json:"rewrites"`
	ReadErrors    uint64    `json:"read_errors"`
	LastRewriteAt time.Time `json:"last_rewrite_at,omitzero"`
}

// Watcher owns the loop state. It is driven by a single goroutine: Run, or
// Tick in tests.
type Watcher struct {
	cb       clip.Backend
	counter  clip.ChangeCounter
	plugins  Dispatcher
	types    TypesFunc
	ignored  map[string]struct{}
	interval time.Duration

	last      string
	lastCount int64
	haveCount bool

	ticks       atomic.Uint64
	changes     atomic.Uint64
	ignoredN    atomic.Uint64
	rewrites    atomic.Uint64
	readErrors  atomic.Uint64
	lastRewrite atomic.Int64
}

// New returns a Watcher. It does not start polling.
func New(cfg Config) (*Watcher, error) {
	if cfg.Clipboard == nil || cfg.Plugins == nil {
		return nil, errors.New("watcher needs a clipboard and a dispatcher")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("polling interval must be positive, got %s", cfg.Interval)
	}
	w := &Watcher{
		cb:       cfg.Clipboard,
		plugins:  cfg.Plugins,
		types:    cfg.Types,
		ignored:  make(map[string]struct{}, len(cfg.IgnoredTypes)),
		interval: cfg.Interval,
	}
	if w.types == nil {
		w.types = platform.ClipboardTypes
	}
	for _, t := range cfg.IgnoredTypes {
		w.ignored[t] = struct{}{}
	}
	if c, ok := cfg.Clipboard.(clip.ChangeCounter); ok {
		w.counter = c
	}
	return w, nil
}

// Interval returns the polling interval.
func (w *Watcher) Interval() time.Duration { return w.interval }

// Run polls until ctx is cancelled. It returns nil on cancellation and an
// error when the clipboard cannot be written.
func (w *Watcher) Run(ctx context.Context) error {
	slog.Info("watching clipboard", "backend", w.cb.Name(), "interval", w.interval)

	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("clipboard watcher stopped")
			return nil
		case <-t.C:
			if _, err := w.Tick(); err != nil {
				return err
			}
		}
	}
}

// Tick polls the clipboard once.
func (w *Watcher) Tick() (Outcome, error) {
	w.ticks.Add(1)

	var (
		count     int64
		haveCount bool
	)
	if w.counter != nil {
		n, err := w.counter.ChangeCount()
		if err == nil {
			if w.haveCount && n == w.lastCount {
				return Unchanged, nil
			}
			count, haveCount = n, true
		}
	}

	text, err := w.cb.ReadText()
	if err != nil {
		w.readErrors.Add(1)
		slog.Warn("clipboard read failed", "err", err)
		return ReadFailed, nil
	}
	// Only a successful read consumes the change, so a failed one is
	// retried next tick.
	if haveCount {
		w.lastCount, w.haveCount = count, true
	}
	if text == w.last {
		return Unchanged, nil
	}
	w.changes.Add(1)
	w.last = text

	if t, ok := w.ignoredType(); ok {
		w.ignoredN.Add(1)
		slog.Info("ignoring clipboard content", "type", t)
		return Ignored, nil
	}

	out, ok := w.plugins.Dispatch(text)
	if !ok {
		slog.Debug("clipboard changed, no plugin matched", "preview", logging.Preview(text))
		return NoMatch, nil
	}

	if err := w.cb.WriteText(out); err != nil {
		return NoMatch, fmt.Errorf("write clipboard: %w", err)
	}
	w.last = out
	if w.counter != nil {
		if n, err := w.counter.ChangeCount(); err == nil {
			w.lastCount = n
		}
	}
	w.rewrites.Add(1)
	w.lastRewrite.Store(time.Now().UnixNano())

	slog.Info("clipboard rewritten")
	slog.Debug("clipboard rewritten", "from", logging.Preview(text), "to", logging.Preview(out))
	return Rewritten, nil
}

func (w *Watcher) ignoredType() (string, bool) {
	if len(w.ignored) == 0 {
		return "", false
	}
	types, err := w.types()
	if err != nil {
		if !errors.Is(err, platform.ErrUnsupported) {
			slog.Debug("reading clipboard types failed", "err", err)
		}
		return "", false
	}
	for _, t := range types {
		if _, ok := w.ignored[t]; ok {
			return t, true
		}
	}
	return "", false
}

// Stats returns a snapshot of the counters. Safe to call from any goroutine.
func (w *Watcher) Stats() Stats {
	s := Stats{
		Ticks:      w.ticks.Load(),
		Changes:    w.changes.Load(),
		Ignored:    w.ignoredN.Load(),
		Rewrites:   w.rewrites.Load(),
		ReadErrors: w.readErrors.Load(),
	}
	if ns := w.lastRewrite.Load(); ns != 0 {
		s.LastRewriteAt = time.Unix(0, ns)
	}
	return s
}

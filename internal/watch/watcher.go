// Package watch observes the source directory and reports settled file
// changes one at a time so the caller can rebuild.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	foundationerrors "git.home.luguber.info/inful/twbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/twbuild/internal/logfields"
	"git.home.luguber.info/inful/twbuild/internal/metrics"
)

// DefaultDebounce is the per-path stability window.
const DefaultDebounce = 100 * time.Millisecond

// Kind classifies a settled change.
type Kind string

const (
	KindAdded   Kind = "added"
	KindChanged Kind = "changed"
	KindRemoved Kind = "removed"
)

// Verb returns the capitalized form used in user-facing log lines.
func (k Kind) Verb() string {
	switch k {
	case KindAdded:
		return "Added"
	case KindRemoved:
		return "Removed"
	default:
		return "Changed"
	}
}

// Event is a settled change to one direct child of the watched directory.
type Event struct {
	Name string
	Path string
	Kind Kind
}

// String renders the event as "Added: 02-extra.js".
func (e Event) String() string {
	return e.Kind.Verb() + ": " + e.Name
}

// ChangeFunc handles one settled event. Returned errors are logged and the
// watcher keeps running.
type ChangeFunc func(ctx context.Context, ev Event) error

// Config configures a Watcher.
type Config struct {
	// Dir is the directory to observe (non-recursive).
	Dir string
	// Debounce is the stability window. Zero means DefaultDebounce.
	Debounce time.Duration
	// Ignore holds doublestar patterns matched against file names.
	Ignore   []string
	OnChange ChangeFunc
	Logger   *slog.Logger
	Recorder metrics.Recorder
	// NewNotifier overrides the fsnotify backend (tests).
	NewNotifier NotifierFactory
}

// Watcher coalesces raw notifications per path and invokes OnChange
// serially for each settled event.
type Watcher struct {
	dir      string
	debounce time.Duration
	ignore   []string
	onChange ChangeFunc
	logger   *slog.Logger
	recorder metrics.Recorder
	notifier Notifier

	mu      sync.Mutex
	pending map[string]*pendingPath
	known   map[string]struct{}
	gen     uint64
	fired   chan firing
	done    chan struct{}
	stopped bool
}

type pendingPath struct {
	timer *time.Timer
	gen   uint64
}

type firing struct {
	path string
	gen  uint64
}

// New validates cfg, resolves the notifier backend and subscribes to Dir.
// A platform without notifications yields an error wrapping
// ErrWatchUnavailable.
func New(cfg Config) (*Watcher, error) {
	if cfg.OnChange == nil {
		return nil, foundationerrors.ValidationError("watch requires a change handler").Build()
	}
	if err := validatePatterns(cfg.Ignore); err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "invalid watch.ignore").Fatal().Build()
	}

	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "resolve watch directory").
			WithContext("dir", cfg.Dir).
			Build()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "source directory not accessible").
			WithContext("dir", cfg.Dir).
			Build()
	}
	if !info.IsDir() {
		return nil, foundationerrors.FileSystemError("source path is not a directory").
			WithContext("dir", cfg.Dir).
			Build()
	}

	w := &Watcher{
		dir:      dir,
		debounce: cfg.Debounce,
		ignore:   cfg.Ignore,
		onChange: cfg.OnChange,
		logger:   cfg.Logger,
		recorder: cfg.Recorder,
		pending:  make(map[string]*pendingPath),
		known:    make(map[string]struct{}),
		fired:    make(chan firing),
		done:     make(chan struct{}),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.recorder == nil {
		w.recorder = metrics.NoopRecorder{}
	}

	if err := w.snapshot(); err != nil {
		return nil, err
	}

	factory := cfg.NewNotifier
	if factory == nil {
		factory = NewFSNotifier
	}
	n, err := factory()
	if err != nil {
		return nil, unavailable(err)
	}
	if err := n.Add(dir); err != nil {
		_ = n.Close()
		if isResourceExhausted(err) || errors.Is(err, errors.ErrUnsupported) {
			return nil, unavailable(err)
		}
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryWatch, "subscribe to source directory").
			WithContext("dir", cfg.Dir).
			Build()
	}
	w.notifier = n
	return w, nil
}

// Run processes notifications until ctx is canceled. Settled events are
// handled one at a time on the calling goroutine, so OnChange invocations
// never overlap. The notifier is closed before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	w.logger.Info("Watching for changes", logfields.Dir(w.dir))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.notifier.Events():
			if !ok {
				return nil
			}
			w.observe(ctx, ev)
		case err, ok := <-w.notifier.Errors():
			if !ok {
				return nil
			}
			if isResourceExhausted(err) {
				return foundationerrors.WrapError(err, foundationerrors.CategoryWatch, "watcher stopped").Fatal().Build()
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		case f := <-w.fired:
			ev, ok := w.settle(f)
			if !ok {
				continue
			}
			w.dispatch(ctx, ev)
		}
	}
}

func (w *Watcher) observe(ctx context.Context, ev fsnotify.Event) {
	// Chmod alone does not change content.
	if ev.Op == fsnotify.Chmod {
		return
	}
	path := filepath.Clean(ev.Name)
	if path == w.dir {
		if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
			w.logger.Warn("Source directory removed; rebuilds will fail until it is restored", logfields.Dir(w.dir))
		}
		return
	}
	if filepath.Dir(path) != w.dir {
		return
	}
	name := filepath.Base(path)
	if ShouldIgnore(name) || matchesAny(w.ignore, name) {
		return
	}
	w.logger.Debug("Raw event", logfields.File(name), logfields.Event(ev.Op.String()))
	w.schedule(ctx, path)
}

// schedule (re)arms the stability timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if p, ok := w.pending[path]; ok {
		p.timer.Stop()
	}
	w.gen++
	f := firing{path: path, gen: w.gen}
	timer := time.AfterFunc(w.debounce, func() {
		select {
		case w.fired <- f:
		case <-w.done:
		case <-ctx.Done():
		}
	})
	w.pending[path] = &pendingPath{timer: timer, gen: f.gen}
}

// settle turns a quiet path into an event by comparing the filesystem with
// the set of names seen so far.
func (w *Watcher) settle(f firing) (Event, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	p, ok := w.pending[f.path]
	if !ok || p.gen != f.gen {
		// Superseded by a later event on the same path.
		return Event{}, false
	}
	delete(w.pending, f.path)

	path := f.path
	name := filepath.Base(path)
	_, wasKnown := w.known[name]
	info, err := os.Stat(path)
	switch {
	case err != nil && errors.Is(err, fs.ErrNotExist):
		if !wasKnown {
			// Created and removed inside one window.
			return Event{}, false
		}
		delete(w.known, name)
		return Event{Name: name, Path: path, Kind: KindRemoved}, true
	case err != nil:
		w.logger.Warn("Cannot stat changed file", logfields.File(name), logfields.Error(err))
		return Event{Name: name, Path: path, Kind: KindChanged}, true
	case info.IsDir():
		return Event{}, false
	case !wasKnown:
		w.known[name] = struct{}{}
		return Event{Name: name, Path: path, Kind: KindAdded}, true
	default:
		return Event{Name: name, Path: path, Kind: KindChanged}, true
	}
}

func (w *Watcher) dispatch(ctx context.Context, ev Event) {
	w.recorder.IncWatchEvent(string(ev.Kind))
	w.logger.Info(ev.String(), logfields.Event(string(ev.Kind)), logfields.File(ev.Name))
	if err := w.onChange(ctx, ev); err != nil {
		w.logger.Warn("Rebuild failed; still watching", logfields.File(ev.Name), logfields.Error(err))
	}
}

func (w *Watcher) snapshot() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "list source directory").
			WithContext("dir", w.dir).
			Build()
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.known[e.Name()] = struct{}{}
		}
	}
	return nil
}

func (w *Watcher) stop() {
	w.mu.Lock()
	w.stopped = true
	for path, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, path)
	}
	close(w.done)
	w.mu.Unlock()
	if err := w.notifier.Close(); err != nil {
		w.logger.Debug("Closing notifier", logfields.Error(err))
	}
}

// Pending reports how many paths are inside their stability window.
func (w *Watcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

func isResourceExhausted(err error) bool {
	return errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EMFILE)
}


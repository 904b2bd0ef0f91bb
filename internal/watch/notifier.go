package watch

import (
	"errors"

	"github.com/fsnotify/fsnotify"

	foundationerrors "git.home.luguber.info/inful/twbuild/internal/foundation/errors"
)

// ErrWatchUnavailable reports that the platform cannot deliver filesystem
// notifications. Watch mode has no polling fallback.
var ErrWatchUnavailable = errors.New("filesystem notifications are unavailable")

// unavailableHint is shown to the user when the notifier cannot start.
const unavailableHint = "Watch mode requires filesystem notifications (inotify, kqueue or ReadDirectoryChangesW). " +
	"Raise fs.inotify.max_user_instances/max_user_watches or run without --watch"

// Notifier is the event source behind a Watcher. The default implementation
// wraps an fsnotify.Watcher.
type Notifier interface {
	Add(path string) error
	Events() <-chan fsnotify.Event
	Errors() <-chan error
	Close() error
}

// NotifierFactory creates the Notifier. It is resolved exactly once, when
// the Watcher is constructed.
type NotifierFactory func() (Notifier, error)

type fsNotifier struct {
	w *fsnotify.Watcher
}

// NewFSNotifier is the default NotifierFactory.
func NewFSNotifier() (Notifier, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &fsNotifier{w: w}, nil
}

func (n *fsNotifier) Add(path string) error         { return n.w.Add(path) }
func (n *fsNotifier) Events() <-chan fsnotify.Event { return n.w.Events }
func (n *fsNotifier) Errors() <-chan error          { return n.w.Errors }
func (n *fsNotifier) Close() error                  { return n.w.Close() }

func unavailable(cause error) error {
	return foundationerrors.WrapError(errors.Join(ErrWatchUnavailable, cause), foundationerrors.CategoryRuntime, unavailableHint).
		Fatal().
		Build()
}

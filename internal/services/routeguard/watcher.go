package routeguard

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/mcoot/tourcompanion/internal/model"
)

// Navigator performs the actual screen transition
type Navigator interface {
	Navigate(action Action, target model.Location)
}

// NavigatorFunc adapts a function to the Navigator interface
type NavigatorFunc func(action Action, target model.Location)

// Navigate calls f
func (f NavigatorFunc) Navigate(action Action, target model.Location) {
	f(action, target)
}

// SessionSource is the part of the session manager the watcher observes
type SessionSource interface {
	Session() model.Session
	Subscribe(fn func(model.Session)) func()
}

// Watcher re-runs the guard whenever the session status or the location
// changes and forwards redirects to the navigator. It keeps only copies of
// its inputs; the session stays owned by the session manager.
type Watcher struct {
	rules     Rules
	navigator Navigator
	logger    *slog.Logger

	mu       sync.Mutex
	status   model.SessionStatus
	location model.Location

	unsubscribe func()
}

// NewWatcher creates a watcher seeded with the source's current status and
// subscribes it to later transitions until Stop.
func NewWatcher(source SessionSource, rules Rules, navigator Navigator, logger *slog.Logger) *Watcher {
	w := &Watcher{
		rules:     rules,
		navigator: navigator,
		logger:    logger.With(slog.String("component", "routeguard")),
		status:    source.Session().Status,
	}
	w.unsubscribe = source.Subscribe(w.onSession)
	return w
}

// Stop detaches the watcher from the session source
func (w *Watcher) Stop() {
	w.unsubscribe()
}

// SetLocation records a navigation change and evaluates the guard
func (w *Watcher) SetLocation(location model.Location) Action {
	w.mu.Lock()
	w.location = slices.Clone(location)
	status := w.status
	w.mu.Unlock()

	return w.evaluate(status, location)
}

// Location returns the last location the watcher was told about
func (w *Watcher) Location() model.Location {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.location)
}

func (w *Watcher) onSession(s model.Session) {
	w.mu.Lock()
	changed := w.status != s.Status
	w.status = s.Status
	location := slices.Clone(w.location)
	w.mu.Unlock()

	if changed {
		w.evaluate(s.Status, location)
	}
}

func (w *Watcher) evaluate(status model.SessionStatus, location model.Location) Action {
	action := w.rules.Decide(status, location)
	if action == ActionNone {
		return action
	}

	target := w.rules.Target(action)
	w.logger.Debug("route guard redirect",
		slog.String("status", string(status)),
		slog.String("from", location.String()),
		slog.String("to", target.String()),
		slog.String("action", string(action)))

	w.navigator.Navigate(action, target)
	return action
}

// internal/watcher/watcher.go
package watcher

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"autoscribe/internal/log"
)

// EventType classifies what happened to a script artifact.
type EventType string

const (
	EventCreate EventType = "create"
	EventModify EventType = "modify"
	EventDelete EventType = "delete"
	EventRename EventType = "rename"
)

// Event is one coalesced change to a script artifact on disk.
type Event struct {
	Path string
	Type EventType
}

// Watcher observes the recordings directory for out-of-band changes to
// script artifacts (hand edits, deletions, files dropped in by other
// tools) so the catalog can be re-synced. Bursts of writes to one file
// collapse into a single callback per debounce window.
type Watcher struct {
	debounce time.Duration
	callback func(Event)
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger

	mu      sync.Mutex
	done    chan struct{}
	started bool
	closed  bool

	pendingMu sync.Mutex
	pending   map[string]*time.Timer
}

// New creates a watcher over the recordings directory.
func New(recordingsDir string, debounce time.Duration, callback func(Event)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(recordingsDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", recordingsDir, err)
	}

	return &Watcher{
		debounce: debounce,
		callback: callback,
		watcher:  fsw,
		logger:   log.WithComponent("watcher"),
		done:     make(chan struct{}),
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Start begins event delivery.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher is closed")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}
	w.started = true

	go w.run()
	return nil
}

// Close stops delivery and releases the OS watch. Safe to call twice.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	if w.started {
		close(w.done)
	}

	w.pendingMu.Lock()
	for _, timer := range w.pending {
		timer.Stop()
	}
	w.pending = make(map[string]*time.Timer)
	w.pendingMu.Unlock()

	return w.watcher.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("fsnotify error")

		case <-w.done:
			return
		}
	}
}

// isArtifact filters to the file types the catalog cares about.
func isArtifact(path string) bool {
	return strings.HasSuffix(path, ".json") || strings.HasSuffix(path, ".json.zst")
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !isArtifact(event.Name) {
		return
	}

	var eventType EventType
	switch {
	case event.Op.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Op.Has(fsnotify.Write):
		eventType = EventModify
	case event.Op.Has(fsnotify.Remove):
		eventType = EventDelete
	case event.Op.Has(fsnotify.Rename):
		eventType = EventRename
	default:
		return
	}

	w.schedule(Event{Path: event.Name, Type: eventType})
}

// schedule coalesces rapid events on the same path into one callback.
func (w *Watcher) schedule(e Event) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	if timer, ok := w.pending[e.Path]; ok {
		timer.Stop()
	}
	w.pending[e.Path] = time.AfterFunc(w.debounce, func() {
		w.pendingMu.Lock()
		delete(w.pending, e.Path)
		w.pendingMu.Unlock()
		w.callback(e)
	})
}

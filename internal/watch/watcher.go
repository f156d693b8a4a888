// Package watch turns file system notifications under the artifact store into a
// debounced stream of change events.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dyluth/commviz/pkg/artifact"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Op is the kind of change observed on a path.
type Op string

const (
	OpCreate Op = "create"
	OpWrite  Op = "write"
	OpRemove Op = "remove"
	OpRename Op = "rename"
)

// Event is one debounced change under a view root.
type Event struct {
	Path string    `json:"path"`
	View string    `json:"view"` // platforms, polarization, cohesion or individual
	Op   Op        `json:"op"`
	Time time.Time `json:"time"` // time of the last raw notification folded into this event
}

// DefaultDebounce is used when New is given a non-positive debounce.
const DefaultDebounce = 250 * time.Millisecond

type root struct {
	view string
	path string
}

// Watcher watches the view roots of a layout and their subdirectories.
// Directories created while running are added automatically.
type Watcher struct {
	fs       *fsnotify.Watcher
	roots    []root
	debounce time.Duration
	logger   *zap.Logger
	events   chan Event

	mu      sync.Mutex
	pending map[string]*Event
	started bool
}

// New creates a watcher over every root of layout. Call Run to start delivering events.
func New(layout artifact.Layout, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		fs: fsw,
		roots: []root{
			{view: "platforms", path: filepath.Clean(layout.Platforms)},
			{view: "polarization", path: filepath.Clean(layout.Polarization)},
			{view: "cohesion", path: filepath.Clean(layout.Cohesion)},
			{view: "individual", path: filepath.Clean(layout.Individual)},
		},
		debounce: debounce,
		logger:   logger.Named("watch"),
		events:   make(chan Event, 64),
		pending:  make(map[string]*Event),
	}, nil
}

// Events returns the channel events are delivered on. It is closed when Run returns.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run watches until ctx is cancelled. It may be called once.
// Roots that do not exist are logged and skipped.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("watcher already started")
	}
	w.started = true
	w.mu.Unlock()

	defer close(w.events)
	defer w.fs.Close()

	watched := 0
	for _, r := range w.roots {
		if _, err := w.addTree(r.path); err != nil {
			w.logger.Warn("view root not watched", zap.String("view", r.view), zap.String("path", r.path), zap.Error(err))
			continue
		}
		watched++
	}
	w.logger.Debug("watcher started", zap.Int("roots", watched), zap.Duration("debounce", w.debounce))

	tick := w.debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(ev)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))

		case now := <-ticker.C:
			if !w.flush(ctx, now) {
				return nil
			}
		}
	}
}

// addTree adds dir and every visible subdirectory below it.
// Returns the visible paths found below dir, files and directories alike.
func (w *Watcher) addTree(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("not a directory")
	}

	var found []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Subtrees that vanish or cannot be read are skipped
			if path == dir {
				return err
			}
			return nil
		}
		if path != dir {
			if strings.HasPrefix(d.Name(), artifact.HiddenPrefix) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			found = append(found, path)
		}
		if !d.IsDir() {
			return nil
		}
		return w.fs.Add(path)
	})
	return found, err
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if strings.HasPrefix(filepath.Base(ev.Name), artifact.HiddenPrefix) {
		return
	}

	var op Op
	switch {
	case ev.Has(fsnotify.Create):
		op = OpCreate
	case ev.Has(fsnotify.Write):
		op = OpWrite
	case ev.Has(fsnotify.Remove):
		op = OpRemove
	case ev.Has(fsnotify.Rename):
		op = OpRename
	default:
		return
	}

	var found []string
	if op == OpCreate {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			found, err = w.addTree(ev.Name)
			if err != nil {
				w.logger.Debug("failed to watch new directory", zap.String("path", ev.Name), zap.Error(err))
			}
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	w.queue(ev.Name, op, now)

	// Entries created before the new directory was watched get no notification of their own
	for _, path := range found {
		w.queue(path, OpCreate, now)
	}
}

// queue records a change for the next flush. Callers hold w.mu.
func (w *Watcher) queue(path string, op Op, now time.Time) {
	if prev, ok := w.pending[path]; ok {
		// A create followed by writes is still a create
		if !(prev.Op == OpCreate && op == OpWrite) {
			prev.Op = op
		}
		prev.Time = now
		return
	}
	w.pending[path] = &Event{Path: path, View: w.viewOf(path), Op: op, Time: now}
}

// flush delivers every pending event that has been quiet for the debounce period.
// Returns false if ctx ended while delivering.
func (w *Watcher) flush(ctx context.Context, now time.Time) bool {
	w.mu.Lock()
	var ready []Event
	for path, ev := range w.pending {
		if now.Sub(ev.Time) >= w.debounce {
			ready = append(ready, *ev)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	sort.Slice(ready, func(i, j int) bool { return ready[i].Path < ready[j].Path })

	for _, ev := range ready {
		select {
		case w.events <- ev:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (w *Watcher) viewOf(path string) string {
	for _, r := range w.roots {
		if path == r.path || strings.HasPrefix(path, r.path+string(filepath.Separator)) {
			return r.view
		}
	}
	return ""
}

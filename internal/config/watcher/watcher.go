// Package watcher polls files for changes.
//
// Files are tracked by path, so a file replaced by rename is still seen.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event represents a file change event.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the change was detected.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// stamp identifies one version of a file.
type stamp struct {
	mod  time.Time
	size int64
}

func (s stamp) missing() bool {
	return s.mod.IsZero()
}

// Watcher monitors files for changes.
type Watcher struct {
	mu       sync.RWMutex
	files    map[string]stamp
	handlers []Handler
	interval time.Duration

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// New creates a new file watcher.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		files:    make(map[string]stamp),
		interval: 500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch adds a file to the watch list. The file need not exist yet.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	st, err := statFile(absPath)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[absPath] = st
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, absPath)
	return nil
}

// Touch records the current state of path as seen, so a change made by
// the caller itself is not reported.
func (w *Watcher) Touch(path string) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return
	}
	st, err := statFile(absPath)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[absPath]; ok {
		w.files[absPath] = st
	}
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Start begins polling until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.pollLoop(ctx)
}

// Stop stops polling and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.cancel()
	w.running = false
	w.mu.Unlock()

	w.wg.Wait()
}

// WatchedFiles returns the list of watched files.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

func (w *Watcher) pollLoop(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check compares every watched file with its last seen state and emits
// events for the ones that changed.
func (w *Watcher) Check() {
	w.mu.Lock()
	var events []Event
	now := time.Now()
	for path, last := range w.files {
		cur, err := statFile(path)
		if err != nil || cur == last {
			continue
		}
		w.files[path] = cur

		op := OpWrite
		switch {
		case cur.missing():
			op = OpRemove
		case last.missing():
			op = OpCreate
		}
		events = append(events, Event{Path: path, Op: op, Time: now})
	}
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	for _, ev := range events {
		for _, h := range handlers {
			safeCall(h, ev)
		}
	}
}

// safeCall keeps a panicking handler from stopping the poll loop.
func safeCall(h Handler, ev Event) {
	defer func() {
		_ = recover()
	}()
	h(ev)
}

// statFile returns the zero stamp for a missing file.
func statFile(path string) (stamp, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return stamp{}, nil
	}
	if err != nil {
		return stamp{}, err
	}
	return stamp{mod: info.ModTime(), size: info.Size()}, nil
}

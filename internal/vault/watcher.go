package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/dshills/formatto/internal/event"
)

// ErrWatcherClosed is returned when using a closed watcher.
var ErrWatcherClosed = errors.New("watcher is closed")

// Publisher receives the events a watcher produces.
type Publisher interface {
	Publish(ev event.Event) error
}

// WatcherStats reports watcher activity.
type WatcherStats struct {
	WatchedDirs int
	Published   int64
	Errors      int64
}

// Watcher publishes a FileModified event for every markdown document
// written or created under a vault. New directories are watched as they
// appear; hidden files and directories are ignored.
type Watcher struct {
	mu     sync.Mutex
	vault  *Vault
	fsw    *fsnotify.Watcher
	pub    Publisher
	dirs   map[string]bool
	logger zerolog.Logger

	published atomic.Int64
	errs      atomic.Int64

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger.
func WithWatcherLogger(l zerolog.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = l
	}
}

// NewWatcher watches every directory of v and publishes to pub.
func NewWatcher(v *Vault, pub Publisher, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &Watcher{
		vault:   v,
		fsw:     fsw,
		pub:     pub,
		dirs:    make(map[string]bool),
		logger:  zerolog.Nop(),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addTree(v.Root()); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.vault.Root() && hidden(p) {
			return filepath.SkipDir
		}
		return w.add(p)
	})
}

func (w *Watcher) add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if w.dirs[dir] {
		return nil
	}
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	w.dirs[dir] = true
	return nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.errs.Add(1)
			w.logger.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if hidden(ev.Name) {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.errs.Add(1)
				w.logger.Debug().Err(err).Str("dir", ev.Name).Msg("cannot watch new directory")
			}
			return
		}
	}

	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}
	if !IsMarkdown(ev.Name) {
		return
	}

	rel, err := w.vault.Rel(ev.Name)
	if err != nil {
		return
	}
	if err := w.pub.Publish(event.Modified(rel)); err != nil {
		w.errs.Add(1)
		w.logger.Debug().Err(err).Str("path", rel).Msg("dropping file event")
		return
	}
	w.published.Add(1)
}

// Stats returns watcher counters.
func (w *Watcher) Stats() WatcherStats {
	w.mu.Lock()
	dirs := len(w.dirs)
	w.mu.Unlock()
	return WatcherStats{
		WatchedDirs: dirs,
		Published:   w.published.Load(),
		Errors:      w.errs.Load(),
	}
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}

// Package autosave formats markdown documents shortly after they are
// modified on disk, unless the user keeps typing.
//
// Each document is either Idle or Armed. A file-modified event arms a
// timer when format-on-save is enabled; a live edit before the deadline
// disarms it and drops the pending format. At the deadline the document is
// read, formatted headlessly and written back only if it changed.
package autosave

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dshills/formatto/internal/event"
	"github.com/dshills/formatto/internal/format"
	"github.com/dshills/formatto/internal/options"
	"github.com/dshills/formatto/internal/schedule"
)

// DefaultDelay is the time between a modification and the format.
const DefaultDelay = time.Second

// State is a document's scheduler state.
type State uint8

const (
	// Idle means no format is pending.
	Idle State = iota
	// Armed means a format runs at the deadline.
	Armed
)

// String returns the state name.
func (s State) String() string {
	if s == Armed {
		return "armed"
	}
	return "idle"
}

// Documents reads and writes document content.
type Documents interface {
	Read(path string) (string, error)
	Write(path, text string) error
}

// Formatter formats text headlessly, calling write when it changed.
type Formatter interface {
	FormatText(ctx context.Context, doc, text string, write func(string) error) (format.Result, error)
}

// Settings supplies the live option set.
type Settings interface {
	Snapshot() options.OptionSet
}

// Stats counts scheduler activity.
type Stats struct {
	Armed     int64
	Cancelled int64
	Fired     int64
	Written   int64
	Failed    int64
}

// Scheduler is the format-on-save state machine.
type Scheduler struct {
	docs      Documents
	formatter Formatter
	settings  Settings
	clock     schedule.Clock
	delay     time.Duration
	eligible  func(path string) bool
	logger    zerolog.Logger

	mu    sync.Mutex
	tasks map[string]*schedule.Task
	ctx   context.Context

	armed, cancelled, fired, written, failed atomic.Int64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the clock timers run on.
func WithClock(c schedule.Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithFilter sets which paths may be formatted. The default accepts
// every path.
func WithFilter(fn func(path string) bool) Option {
	return func(s *Scheduler) {
		s.eligible = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}

// New creates an idle scheduler.
func New(docs Documents, formatter Formatter, settings Settings, opts ...Option) *Scheduler {
	s := &Scheduler{
		docs:      docs,
		formatter: formatter,
		settings:  settings,
		clock:     schedule.RealClock(),
		delay:     DefaultDelay,
		eligible:  func(string) bool { return true },
		logger:    zerolog.Nop(),
		tasks:     make(map[string]*schedule.Task),
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle feeds one host event into the state machine.
func (s *Scheduler) Handle(ev event.Event) {
	switch ev.Kind {
	case event.FileModified:
		s.Modified(ev.Path)
	case event.LiveEdit:
		s.Edited(ev.Path)
	}
}

// Modified arms the timer for path, replacing an earlier deadline.
func (s *Scheduler) Modified(path string) {
	if path == "" || !s.eligible(path) || !s.enabled() {
		return
	}

	s.mu.Lock()
	task, ok := s.tasks[path]
	if !ok {
		task = schedule.NewTask(s.clock)
		s.tasks[path] = task
	}
	task.Arm(s.delay, func() { s.fire(path, task) })
	s.mu.Unlock()

	s.armed.Add(1)
	s.logger.Debug().Str("path", path).Dur("delay", s.delay).Msg("format on save armed")
}

// Edited disarms the timer for path. An empty path disarms every timer,
// for hosts that cannot tell which document was edited.
func (s *Scheduler) Edited(path string) {
	s.mu.Lock()
	var tasks []*schedule.Task
	if path == "" {
		for _, t := range s.tasks {
			tasks = append(tasks, t)
		}
	} else if t, ok := s.tasks[path]; ok {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()

	for _, t := range tasks {
		if t.Cancel() {
			s.cancelled.Add(1)
			s.logger.Debug().Str("path", path).Msg("format on save cancelled by live edit")
		}
	}
}

// State returns the state of path.
func (s *Scheduler) State(path string) State {
	s.mu.Lock()
	task, ok := s.tasks[path]
	s.mu.Unlock()
	if ok && task.Pending() {
		return Armed
	}
	return Idle
}

// Deadline returns when the pending format of path runs, or the zero time.
func (s *Scheduler) Deadline(path string) time.Time {
	s.mu.Lock()
	task, ok := s.tasks[path]
	s.mu.Unlock()
	if !ok {
		return time.Time{}
	}
	return task.Deadline()
}

// Run handles events until ctx is done or events is closed, then disarms
// every timer.
func (s *Scheduler) Run(ctx context.Context, events <-chan event.Event) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	defer s.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			s.Handle(ev)
		}
	}
}

// Stop disarms every timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = make(map[string]*schedule.Task)
	s.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
	}
}

// Stats returns activity counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Armed:     s.armed.Load(),
		Cancelled: s.cancelled.Load(),
		Fired:     s.fired.Load(),
		Written:   s.written.Load(),
		Failed:    s.failed.Load(),
	}
}

func (s *Scheduler) enabled() bool {
	return s.settings.Snapshot().OtherOptions.FormatOnSave
}

func (s *Scheduler) fire(path string, task *schedule.Task) {
	s.mu.Lock()
	if s.tasks[path] == task && !task.Pending() {
		delete(s.tasks, path)
	}
	ctx := s.ctx
	s.mu.Unlock()

	s.fired.Add(1)
	log := s.logger.With().Str("path", path).Logger()

	// The setting may have been turned off while armed.
	if !s.enabled() {
		return
	}

	text, err := s.docs.Read(path)
	if err != nil {
		s.failed.Add(1)
		log.Debug().Err(err).Msg("format on save: read failed")
		return
	}

	res, err := s.formatter.FormatText(ctx, path, text, func(out string) error {
		// A save made while the engine ran wins over the result.
		cur, err := s.docs.Read(path)
		if err != nil {
			return err
		}
		if cur != text {
			return format.ErrSourceChanged
		}
		return s.docs.Write(path, out)
	})
	switch {
	case err != nil:
		s.failed.Add(1)
		log.Debug().Err(err).Msg("format on save: write failed")
	case !res.Outcome.Ok():
		s.failed.Add(1)
		log.Debug().Str("error", res.Outcome.Message()).Msg("format on save: engine failed")
	case res.Stale:
		log.Debug().Str("request_id", res.ID.String()).Msg("format on save: result dropped")
	case res.Applied:
		s.written.Add(1)
		log.Debug().Str("request_id", res.ID.String()).Msg("format on save: written")
	}
}

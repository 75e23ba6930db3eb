// Package settings persists the user's option set.
//
// The store keeps the live OptionSet in memory and mirrors every field
// change to a JSON data file immediately. Values are stored exactly as
// given: gap validation only produces a debounced advisory warning.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/formatto/internal/config/notify"
	"github.com/dshills/formatto/internal/locale"
	"github.com/dshills/formatto/internal/options"
	"github.com/dshills/formatto/internal/schedule"
	"github.com/dshills/formatto/internal/vault"
)

// DefaultWarningDelay is how long a gap value must stay unchanged before
// an invalid value is reported.
const DefaultWarningDelay = time.Second

// ErrInvalidData indicates the data file is not a JSON object.
var ErrInvalidData = errors.New("settings data is not a JSON object")

// WarningFunc receives the advisory warning for an invalid gap value.
type WarningFunc func(path, value string, err error)

// Store is the persisted, live option set.
type Store struct {
	mu   sync.RWMutex
	path string
	raw  []byte
	live options.OptionSet

	notifier *notify.Notifier
	clock    schedule.Clock
	warnMu   sync.Mutex
	warn     map[string]*schedule.Task
	delay    time.Duration
	onWarn   WarningFunc
	logger   zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to debounce warnings.
func WithClock(c schedule.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithWarningDelay sets the warning debounce delay.
func WithWarningDelay(d time.Duration) Option {
	return func(s *Store) {
		s.delay = d
	}
}

// WithWarning sets the warning callback.
func WithWarning(fn WarningFunc) Option {
	return func(s *Store) {
		s.onWarn = fn
	}
}

// WithNotifier sets the change notifier.
func WithNotifier(n *notify.Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Open loads the data file at path over the defaults. A missing file
// yields the defaults; it is created on the first change.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		delay:  DefaultWarningDelay,
		warn:   make(map[string]*schedule.Task),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = schedule.RealClock()
	}
	if s.notifier == nil {
		s.notifier = notify.New()
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.raw = []byte("{}")
		s.live = options.Defaults()
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}

	live, err := Decode(data)
	if err != nil {
		return fmt.Errorf("%s: %w", s.path, err)
	}
	s.raw = data
	s.live = live
	return nil
}

// Decode reads a persisted record over the defaults. Absent gaps stay
// unset, absent toggles keep their fallback values, unknown keys are
// ignored.
func Decode(data []byte) (options.OptionSet, error) {
	set := options.Defaults()
	if !gjson.ValidBytes(data) || !gjson.ParseBytes(data).IsObject() {
		return set, ErrInvalidData
	}

	for _, f := range options.Fields() {
		r := gjson.GetBytes(data, f.Path())
		if !r.Exists() {
			continue
		}
		var raw string
		switch {
		case f.Kind == options.KindToggle && (r.Type == gjson.True || r.Type == gjson.False):
			raw = r.String()
		case r.Type == gjson.String:
			raw = r.Str
		case r.Type == gjson.Number:
			raw = r.Raw
		default:
			continue
		}
		if err := set.Set(f.Path(), raw); err != nil {
			// A garbled toggle keeps its fallback.
			continue
		}
	}
	return set, nil
}

// Reload reads the data file again, replacing the live option set.
func (s *Store) Reload() error {
	s.mu.Lock()
	err := s.load()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notifier.Notify(notify.Change{Kind: notify.KindReload, Source: "settings"})
	return nil
}

// Path returns the data file path.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a copy of the live option set.
func (s *Store) Snapshot() options.OptionSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live
}

// Get returns the raw value of the field at path.
func (s *Store) Get(path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.live.Get(path)
}

// Fields returns the option schema.
func (s *Store) Fields() []options.Field {
	return options.Fields()
}

// Notifier returns the change notifier.
func (s *Store) Notifier() *notify.Notifier {
	return s.notifier
}

// Set stores raw into the field at path and persists the option set.
// An invalid gap value is still stored; a warning follows once the field
// has not changed for the warning delay.
func (s *Store) Set(path, raw string) error {
	return s.update(path, notify.KindSet, func(set *options.OptionSet) error {
		return set.Set(path, raw)
	})
}

// Reset returns the field at path to its default and persists.
func (s *Store) Reset(path string) error {
	return s.update(path, notify.KindReset, func(set *options.OptionSet) error {
		return set.Reset(path)
	})
}

func (s *Store) update(path string, kind notify.Kind, apply func(*options.OptionSet) error) error {
	s.mu.Lock()
	old, err := s.live.Get(path)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	next := s.live
	if err := apply(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	val, _ := next.Get(path)

	raw, err := encodeField(s.raw, path, val)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("saving settings: %w", err)
	}
	if err := vault.WriteFileAtomic(s.path, raw, 0o644); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("saving settings: %w", err)
	}
	s.raw = raw
	s.live = next
	s.mu.Unlock()

	s.logger.Debug().Str("field", path).Str("value", val).Str("change", kind.String()).Msg("option changed")
	s.notifier.Notify(notify.Change{Path: path, Kind: kind, Old: old, New: val, Source: "settings"})
	s.scheduleWarning(path)
	return nil
}

// encodeField writes one field into the persisted record, leaving every
// other key as it was.
func encodeField(data []byte, path, val string) ([]byte, error) {
	f, ok := options.Lookup(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", options.ErrUnknownField, path)
	}
	var v any = val
	if f.Kind == options.KindToggle {
		v = val == "true"
	}
	out, err := sjson.SetBytes(data, path, v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", path, err)
	}
	return out, nil
}

// scheduleWarning re-arms the debounced validation of the field at path.
// The value is read again when the timer fires.
func (s *Store) scheduleWarning(path string) {
	if s.onWarn == nil {
		return
	}
	f, ok := options.Lookup(path)
	if !ok || f.Kind != options.KindGap {
		return
	}

	s.warnMu.Lock()
	task, ok := s.warn[path]
	if !ok {
		task = schedule.NewTask(s.clock)
		s.warn[path] = task
	}
	s.warnMu.Unlock()

	task.Arm(s.delay, func() {
		val, err := s.Get(path)
		if err != nil {
			return
		}
		if err := options.Validate(path, val); err != nil {
			s.onWarn(path, val, err)
		}
	})
}

// PendingWarning reports whether a validation warning is scheduled for
// the field at path.
func (s *Store) PendingWarning(path string) bool {
	s.warnMu.Lock()
	defer s.warnMu.Unlock()
	task, ok := s.warn[path]
	return ok && task.Pending()
}

// Close cancels pending warnings and stops notifications.
func (s *Store) Close() {
	s.warnMu.Lock()
	for _, task := range s.warn {
		task.Cancel()
	}
	s.warnMu.Unlock()
	s.notifier.Close()
}

// WarningKey returns the notice message key for a validation error.
func WarningKey(err error) string {
	if errors.Is(err, options.ErrNotWholeNumber) {
		return locale.NotWholeNumber
	}
	return locale.InvalidNumber
}

package format

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dshills/formatto/internal/editor"
	"github.com/dshills/formatto/internal/engine"
	"github.com/dshills/formatto/internal/locale"
	"github.com/dshills/formatto/internal/options"
)

var (
	// ErrNoEditor is returned by FormatEditor when no editor is open.
	ErrNoEditor = errors.New("no open editor")

	// ErrSourceChanged is returned by a FormatText write callback when the
	// document no longer holds the text that was formatted. The result is
	// then dropped as stale.
	ErrSourceChanged = errors.New("document changed while formatting")
)

// Notifier displays transient notices to the user.
type Notifier interface {
	Show(message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string)

// Show calls f.
func (f NotifierFunc) Show(message string) {
	f(message)
}

// Settings supplies the live option set.
type Settings interface {
	Snapshot() options.OptionSet
}

// Result describes a finished request.
type Result struct {
	ID      uuid.UUID
	Outcome Outcome
	Notice  Notice
	// Applied reports whether the result was written back.
	Applied bool
	// Stale reports that a newer request for the same document superseded
	// this one, or that the document changed while it ran, so its result
	// was dropped.
	Stale bool
}

// Service runs format requests: it resolves options and locale, calls the
// engine, and applies the outcome.
type Service struct {
	invoker  *Invoker
	locales  *locale.Provider
	settings Settings
	notifier Notifier
	guard    *Guard
	language string
	always   bool
	logger   zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithNotifier sets where interactive notices go.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithLanguage sets the language key used to pick the locale bundle.
func WithLanguage(lang string) Option {
	return func(s *Service) {
		s.language = lang
	}
}

// WithAlwaysNotify reports unchanged documents as formatted when
// notifyWhenUnchanged is off.
func WithAlwaysNotify(always bool) Option {
	return func(s *Service) {
		s.always = always
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithGuard shares an in-flight guard between services.
func WithGuard(g *Guard) Option {
	return func(s *Service) {
		s.guard = g
	}
}

// NewService creates a service formatting with eng.
func NewService(eng engine.Engine, locales *locale.Provider, settings Settings, opts ...Option) *Service {
	s := &Service{
		invoker:  NewInvoker(eng, locales),
		locales:  locales,
		settings: settings,
		guard:    NewGuard(),
		language: locale.DefaultLanguage,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Guard returns the service's in-flight guard.
func (s *Service) Guard() *Guard {
	return s.guard
}

// Bundle returns the locale bundle for the configured language.
func (s *Service) Bundle() *locale.Bundle {
	return s.locales.Bundle(s.language)
}

// Notify localizes and shows n unless it is empty.
func (s *Service) Notify(n Notice) {
	if n.Empty() || s.notifier == nil {
		return
	}
	s.notifier.Show(n.Text(s.locales, s.Bundle()))
}

// ShowMessage shows a notice message key.
func (s *Service) ShowMessage(key string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Show(s.locales.Lookup(s.Bundle(), locale.NoticeMessages, key))
}

func (s *Service) begin(mode Mode, doc string, snap Snapshot) request {
	// Snapshot returns a copy, so later settings edits cannot reach this request.
	resolved := options.Resolve(s.settings.Snapshot(), options.Fallback())
	return newRequest(mode, s.guard.Begin(doc), snap, resolved, s.Bundle())
}

// FormatEditor formats the document open in ed, replaces its text when it
// changed, restores the cursor and shows a notice.
func (s *Service) FormatEditor(ctx context.Context, doc string, ed editor.Editor) (Result, error) {
	if ed == nil {
		s.ShowMessage(locale.NoOpenDocument)
		return Result{}, ErrNoEditor
	}

	req := s.begin(Interactive, doc, Capture(ed))
	log := s.logger.With().
		Str("request_id", req.id.String()).
		Str("doc", doc).
		Str("mode", req.mode.String()).
		Logger()

	outcome := s.invoker.InvokeAt(ctx, req.snapshot, req.options, req.bundle)
	res := Result{ID: req.id, Outcome: outcome}

	res.Stale = !s.guard.Commit(req.token, func() {
		res.Applied = Apply(ed, outcome, req.snapshot)
	})
	if res.Stale {
		log.Debug().Msg("dropping superseded format result")
		return res, nil
	}

	policy := Policy{Mode: req.mode, AlwaysNotify: s.always}
	res.Notice = policy.Choose(outcome, req.snapshot.Text, outcome.Text(), req.notifyWhenUnchanged())
	s.Notify(res.Notice)

	if outcome.Ok() {
		log.Debug().Bool("applied", res.Applied).Msg("document formatted")
	} else {
		log.Debug().Str("error", outcome.Message()).Msg("format failed")
	}
	return res, nil
}

// FormatText formats text in the background. When the engine changed it,
// write is called with the new document, unless a newer request for doc
// has been issued in the meantime. A write returning ErrSourceChanged marks
// the result stale. Headless requests never notify; the returned error is
// write's.
func (s *Service) FormatText(ctx context.Context, doc, text string, write func(string) error) (Result, error) {
	req := s.begin(Headless, doc, Snapshot{Text: text})
	log := s.logger.With().
		Str("request_id", req.id.String()).
		Str("doc", doc).
		Str("mode", req.mode.String()).
		Logger()

	outcome := s.invoker.Invoke(ctx, req.snapshot.Text, req.options, req.bundle)
	res := Result{ID: req.id, Outcome: outcome}

	if !outcome.Changed(text) {
		s.guard.Release(req.token)
		if !outcome.Ok() {
			log.Debug().Str("error", outcome.Message()).Msg("background format failed")
		}
		return res, nil
	}

	var err error
	changed := false
	res.Stale = !s.guard.Commit(req.token, func() {
		if write != nil {
			err = write(outcome.Text())
		}
		if errors.Is(err, ErrSourceChanged) {
			changed, err = true, nil
			return
		}
		res.Applied = err == nil
	})
	if changed {
		res.Stale = true
		log.Debug().Msg("document changed while formatting, dropping result")
	} else if res.Stale {
		log.Debug().Msg("dropping superseded format result")
	}
	return res, err
}

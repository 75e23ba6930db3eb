// Package app wires formatto together: it activates the settings store,
// locale provider, engine, format service and autosave scheduler, owns the
// open documents and runs registered commands.
package app

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/dshills/formatto/internal/autosave"
	"github.com/dshills/formatto/internal/config"
	"github.com/dshills/formatto/internal/config/loader"
	"github.com/dshills/formatto/internal/editor"
	"github.com/dshills/formatto/internal/engine"
	"github.com/dshills/formatto/internal/event"
	"github.com/dshills/formatto/internal/format"
	"github.com/dshills/formatto/internal/locale"
	"github.com/dshills/formatto/internal/schedule"
	"github.com/dshills/formatto/internal/settings"
	"github.com/dshills/formatto/internal/vault"
)

// App is the activated formatter.
type App struct {
	opts   Options
	cfg    config.Config
	logger *Logger

	store     *settings.Store
	locales   *locale.Provider
	engine    engine.Engine
	service   *format.Service
	vault     *vault.Vault
	bus       *event.Bus
	scheduler *autosave.Scheduler
	documents *DocumentManager
	commands  *Registry
	metrics   *Metrics

	active atomic.Bool
}

// Options configures activation. Zero values take the config file.
type Options struct {
	// ConfigFile is an explicit config file.
	ConfigFile string

	// ConfigDir holds the config file, the data file and the engine
	// script. Defaults to config.UserConfigDir.
	ConfigDir string

	// VaultRoot overrides vault.root.
	VaultRoot string

	// Language overrides locale.language.
	Language string

	// Engine replaces the Lua engine.
	Engine engine.Engine

	// Notifier shows notices. Defaults to discarding them.
	Notifier format.Notifier

	// Clock drives autosave and warning timers.
	Clock schedule.Clock

	// Env overrides the environment loader.
	Env loader.Loader

	// Logger overrides the logger built from config.
	Logger *Logger

	// LogOutput is where the config-built logger writes.
	LogOutput io.Writer
}

// Activate loads configuration and starts every component.
func Activate(opts Options) (*App, error) {
	if opts.ConfigDir == "" {
		opts.ConfigDir = config.UserConfigDir()
	}
	if opts.Notifier == nil {
		opts.Notifier = format.NotifierFunc(func(string) {})
	}
	if opts.Clock == nil {
		opts.Clock = schedule.RealClock()
	}

	app := &App{
		opts:     opts,
		commands: NewRegistry(),
		metrics:  NewMetrics(),
	}
	if err := newBootstrapper(app).bootstrap(); err != nil {
		return nil, err
	}
	registerDefaultCommands(app.commands)

	app.active.Store(true)
	app.Logger().WithComponent("app").Info("activated")
	return app, nil
}

// Deactivate stops timers and releases every component.
func (app *App) Deactivate() error {
	if !app.active.CompareAndSwap(true, false) {
		return ErrNotActive
	}

	var errs ErrorList
	app.scheduler.Stop()
	app.bus.Close()
	app.store.Close()
	if c, ok := app.engine.(io.Closer); ok && app.opts.Engine == nil {
		errs.Add(c.Close())
	}
	app.Logger().WithComponent("app").Info("deactivated")
	return errs.AsError()
}

// IsActive reports whether the app is active.
func (app *App) IsActive() bool {
	return app.active.Load()
}

// Config returns the loaded configuration.
func (app *App) Config() config.Config {
	return app.cfg
}

// Settings returns the settings store.
func (app *App) Settings() *settings.Store {
	return app.store
}

// Locales returns the locale provider.
func (app *App) Locales() *locale.Provider {
	return app.locales
}

// Service returns the format service.
func (app *App) Service() *format.Service {
	return app.service
}

// Vault returns the document store.
func (app *App) Vault() *vault.Vault {
	return app.vault
}

// Bus returns the host event bus.
func (app *App) Bus() *event.Bus {
	return app.bus
}

// Scheduler returns the autosave scheduler.
func (app *App) Scheduler() *autosave.Scheduler {
	return app.scheduler
}

// Documents returns the open documents.
func (app *App) Documents() *DocumentManager {
	return app.documents
}

// Commands returns the command registry.
func (app *App) Commands() *Registry {
	return app.commands
}

// Metrics returns request metrics.
func (app *App) Metrics() *Metrics {
	return app.metrics
}

// FormatActive formats the active document in place.
func (app *App) FormatActive(ctx context.Context) (format.Result, error) {
	if !app.IsActive() {
		return format.Result{}, ErrNotActive
	}
	doc := app.documents.Active()
	if doc == nil {
		// A nil editor makes the service show the no-open-document notice.
		return app.service.FormatEditor(ctx, "", nil)
	}

	start := time.Now()
	res, err := app.service.FormatEditor(ctx, doc.Path, doc.Buffer)
	if err != nil {
		return res, err
	}
	app.metrics.RecordFormat(time.Since(start), res)
	if res.Applied {
		doc.SetModified(true)
	}
	return res, nil
}

// FormatFile opens path, formats it interactively and saves it when the
// text changed. A non-nil cursor is placed before formatting.
func (app *App) FormatFile(ctx context.Context, path string, cursor *editor.Position) (format.Result, *Document, error) {
	doc, err := app.documents.Open(path)
	if err != nil {
		return format.Result{}, nil, err
	}
	if cursor != nil {
		doc.Buffer.SetCursor(*cursor)
	}

	res, err := app.FormatActive(ctx)
	if err != nil {
		return res, doc, err
	}
	if res.Applied {
		if err := app.documents.Save(doc.Path); err != nil {
			return res, doc, err
		}
	}
	return res, doc, nil
}

// meteredFormatter records background requests made by the scheduler.
type meteredFormatter struct {
	service *format.Service
	metrics *Metrics
}

func (m meteredFormatter) FormatText(ctx context.Context, doc, text string, write func(string) error) (format.Result, error) {
	start := time.Now()
	res, err := m.service.FormatText(ctx, doc, text, write)
	m.metrics.RecordFormat(time.Since(start), res)
	return res, err
}

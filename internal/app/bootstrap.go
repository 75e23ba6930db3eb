package app

import (
	"errors"
	"io"
	"io/fs"

	"github.com/dshills/formatto/internal/autosave"
	"github.com/dshills/formatto/internal/config"
	"github.com/dshills/formatto/internal/engine"
	"github.com/dshills/formatto/internal/event"
	"github.com/dshills/formatto/internal/format"
	"github.com/dshills/formatto/internal/locale"
	"github.com/dshills/formatto/internal/settings"
	"github.com/dshills/formatto/internal/vault"
)

// bootstrapper handles component initialization with cleanup on failure.
type bootstrapper struct {
	app       *App
	initOrder []string
}

func newBootstrapper(app *App) *bootstrapper {
	return &bootstrapper{app: app, initOrder: make([]string, 0, 8)}
}

// bootstrap initializes all components in dependency order. On failure
// it releases what was already initialized.
func (b *bootstrapper) bootstrap() error {
	steps := []struct {
		name string
		init func() error
	}{
		{"config", b.initConfig},
		{"locale", b.initLocale},
		{"settings", b.initSettings},
		{"engine", b.initEngine},
		{"service", b.initService},
		{"vault", b.initVault},
		{"bus", b.initBus},
		{"autosave", b.initAutosave},
	}
	for _, step := range steps {
		if err := step.init(); err != nil {
			b.cleanup()
			var initErr *InitError
			if errors.As(err, &initErr) {
				return err
			}
			return &InitError{Component: step.name, Err: err}
		}
		b.initOrder = append(b.initOrder, step.name)
	}
	return nil
}

func (b *bootstrapper) initConfig() error {
	o := b.app.opts
	cfg, err := config.Load(config.Options{File: o.ConfigFile, Dir: o.ConfigDir, Env: o.Env})
	if err != nil {
		return err
	}
	if o.VaultRoot != "" {
		cfg.Vault.Root = o.VaultRoot
	}
	if o.Language != "" {
		cfg.Locale.Language = o.Language
	}
	b.app.cfg = cfg

	b.app.logger = o.Logger
	if b.app.logger == nil {
		b.app.logger = NewLogger(LoggerConfig{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: o.LogOutput,
		})
	}
	return nil
}

func (b *bootstrapper) initLocale() error {
	b.app.locales = locale.Default()
	return nil
}

func (b *bootstrapper) initSettings() error {
	app := b.app
	store, err := settings.Open(app.cfg.Vault.DataFile,
		settings.WithClock(app.opts.Clock),
		settings.WithLogger(app.logger.WithComponent("settings").Zerolog()),
		settings.WithWarning(func(path, value string, err error) {
			app.logger.WithComponent("settings").
				WithFields(map[string]any{"field": path, "value": value}).
				Debug("invalid gap value: %v", err)
			if app.service != nil {
				app.service.ShowMessage(settings.WarningKey(err))
			}
		}),
	)
	if err != nil {
		return err
	}
	app.store = store
	return nil
}

func (b *bootstrapper) initEngine() error {
	app := b.app
	if app.opts.Engine != nil {
		app.engine = app.opts.Engine
		return nil
	}

	path := app.cfg.ScriptPath(app.opts.ConfigDir)
	eng, err := engine.LoadLua(path, engine.WithTimeout(app.cfg.Engine.Timeout))
	if errors.Is(err, fs.ErrNotExist) && app.cfg.Engine.Script == config.Default().Engine.Script {
		app.logger.WithComponent("engine").Debug("no script at %s, using the built-in engine", path)
		eng, err = engine.NewBuiltin(engine.WithTimeout(app.cfg.Engine.Timeout))
	}
	if err != nil {
		return err
	}
	app.engine = eng
	return nil
}

func (b *bootstrapper) initService() error {
	app := b.app
	app.service = format.NewService(app.engine, app.locales, app.store,
		format.WithNotifier(app.opts.Notifier),
		format.WithLanguage(app.cfg.Locale.Language),
		format.WithAlwaysNotify(app.cfg.Notices.AlwaysNotify),
		format.WithLogger(app.logger.WithComponent("format").Zerolog()),
	)
	return nil
}

func (b *bootstrapper) initVault() error {
	v, err := vault.Open(b.app.cfg.Vault.Root)
	if err != nil {
		return err
	}
	b.app.vault = v
	return nil
}

func (b *bootstrapper) initBus() error {
	b.app.bus = event.NewBus()
	b.app.documents = NewDocumentManager(b.app.vault, b.app.bus)
	return nil
}

func (b *bootstrapper) initAutosave() error {
	app := b.app
	app.scheduler = autosave.New(app.vault,
		meteredFormatter{service: app.service, metrics: app.metrics},
		app.store,
		autosave.WithClock(app.opts.Clock),
		autosave.WithDelay(app.cfg.Autosave.Delay),
		autosave.WithFilter(vault.IsMarkdown),
		autosave.WithLogger(app.logger.WithComponent("autosave").Zerolog()),
	)
	return nil
}

// cleanup releases components in reverse initialization order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(b.initOrder[i])
	}
}

func (b *bootstrapper) cleanupComponent(component string) {
	app := b.app
	switch component {
	case "settings":
		app.store.Close()
		app.store = nil
	case "engine":
		if c, ok := app.engine.(io.Closer); ok && app.opts.Engine == nil {
			app.logComponentError("engine", c.Close())
		}
		app.engine = nil
	case "service":
		app.service = nil
	case "bus":
		app.bus.Close()
		app.bus = nil
		app.documents = nil
	case "autosave":
		app.scheduler.Stop()
		app.scheduler = nil
	}
}

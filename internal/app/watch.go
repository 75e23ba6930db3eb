package app

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/formatto/internal/config/watcher"
	"github.com/dshills/formatto/internal/event"
	"github.com/dshills/formatto/internal/vault"
)

// DataPollInterval is how often the settings data file is checked for
// outside edits while watching.
const DataPollInterval = 500 * time.Millisecond

// Watch runs format on save over the vault until ctx is done or the app
// is deactivated: file changes arm the autosave scheduler, live edits
// published on the bus cancel it, and outside edits to the settings data
// file are reloaded.
func (app *App) Watch(ctx context.Context) error {
	if !app.IsActive() {
		return ErrNotActive
	}
	log := app.Logger().WithComponent("watch")

	sub := app.bus.Subscribe(64, event.FileModified, event.LiveEdit)
	fsw, err := vault.NewWatcher(app.vault, app.bus,
		vault.WithWatcherLogger(log.Zerolog()))
	if err != nil {
		sub.Unsubscribe()
		return err
	}

	data := watcher.New(watcher.WithInterval(DataPollInterval))
	if err := data.Watch(app.store.Path()); err != nil {
		sub.Unsubscribe()
		_ = fsw.Close()
		return err
	}
	data.OnChange(func(ev watcher.Event) {
		if err := app.store.Reload(); err != nil {
			log.Warn("reloading settings: %v", err)
			return
		}
		log.Debug("settings %s: reloaded", ev.Op)
	})

	log.WithField("root", app.vault.Root()).Info("watching")

	// Deactivate closes the bus, which ends Run without an error.
	wctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(wctx)
	g.Go(func() error {
		defer stop()
		return app.scheduler.Run(gctx, sub.C())
	})
	g.Go(func() error {
		data.Start(gctx)
		<-gctx.Done()
		data.Stop()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sub.Unsubscribe()
		return fsw.Close()
	})

	err = g.Wait()
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return nil
	}
	return err
}

// NotifyEdit reports that the user typed into path. An empty path stands
// for an edit in an unknown document.
func (app *App) NotifyEdit(path string) error {
	return app.bus.Publish(event.Edited(path))
}

package format

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/formatto/internal/editor"
	"github.com/dshills/formatto/internal/engine"
	"github.com/dshills/formatto/internal/locale"
	"github.com/dshills/formatto/internal/options"
)

// Invoker calls the engine exactly once per request and classifies the
// result. Engine failures are deterministic, so nothing is retried.
type Invoker struct {
	engine  engine.Engine
	locales *locale.Provider
}

// NewInvoker creates an invoker for eng.
func NewInvoker(eng engine.Engine, locales *locale.Provider) *Invoker {
	return &Invoker{engine: eng, locales: locales}
}

// Invoke formats text without cursor information.
func (i *Invoker) Invoke(ctx context.Context, text string, opts options.Resolved, bundle *locale.Bundle) Outcome {
	return i.invoke(ctx, text, nil, opts, bundle)
}

// InvokeAt formats the snapshot's text. Engines that track the cursor are
// given the snapshot's position and may return a new one.
func (i *Invoker) InvokeAt(ctx context.Context, snap Snapshot, opts options.Resolved, bundle *locale.Bundle) Outcome {
	cursor := snap.Cursor
	return i.invoke(ctx, snap.Text, &cursor, opts, bundle)
}

func (i *Invoker) invoke(ctx context.Context, text string, cursor *editor.Position, opts options.Resolved, bundle *locale.Bundle) (out Outcome) {
	localeJSON, err := i.locales.EngineJSON(bundle)
	if err != nil {
		return Failed(err.Error())
	}

	defer func() {
		if r := recover(); r != nil {
			out = Failed(fmt.Sprint(r))
		}
	}()

	if ce, ok := i.engine.(engine.CursorEngine); ok && cursor != nil {
		formatted, pos, err := ce.FormatWithCursor(ctx, text, *cursor, opts, localeJSON)
		if err != nil {
			return Failed(errorMessage(err))
		}
		return Formatted(formatted, pos)
	}

	formatted, err := i.engine.Format(ctx, text, opts, localeJSON)
	if err != nil {
		return Failed(errorMessage(err))
	}
	return Formatted(formatted, nil)
}

func errorMessage(err error) string {
	var engErr *engine.Error
	if errors.As(err, &engErr) {
		return engErr.Message
	}
	return err.Error()
}

// Package engine defines the contract of the external formatting engine
// and provides adapters for it.
//
// The engine is opaque: it receives the document text, a fully resolved
// option set and the engine's message catalog as JSON, and returns the
// formatted document or fails. It may return the input unchanged.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/formatto/internal/editor"
	"github.com/dshills/formatto/internal/options"
)

// ErrEngineClosed is returned by adapters after Close.
var ErrEngineClosed = errors.New("engine is closed")

// Engine formats markdown documents.
type Engine interface {
	Format(ctx context.Context, text string, opts options.Resolved, localeJSON string) (string, error)
}

// CursorEngine is an Engine that can also report where the cursor belongs
// in the formatted document. A nil position means "no information".
type CursorEngine interface {
	Engine
	FormatWithCursor(ctx context.Context, text string, cursor editor.Position, opts options.Resolved, localeJSON string) (string, *editor.Position, error)
}

// Func adapts a plain function to Engine.
type Func func(ctx context.Context, text string, opts options.Resolved, localeJSON string) (string, error)

// Format calls f.
func (f Func) Format(ctx context.Context, text string, opts options.Resolved, localeJSON string) (string, error) {
	return f(ctx, text, opts, localeJSON)
}

// Error is a failure reported by the engine itself, as opposed to a failure
// to reach it. Message is shown to the user verbatim.
type Error struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an engine Error.
func Errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

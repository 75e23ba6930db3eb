package app

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/dshills/formatto/internal/locale"
)

// CommandFormatDocument formats the active document.
const CommandFormatDocument = "format-document"

// Command is an action the host can invoke by id.
type Command struct {
	// ID is the stable command id.
	ID string

	// Name is the catalog key of the display name.
	Name string

	// Run performs the command.
	Run func(ctx context.Context, app *App) error
}

// Registry holds the registered commands.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]Command)}
}

// Register adds a command.
func (r *Registry) Register(cmd Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.commands[cmd.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, cmd.ID)
	}
	r.commands[cmd.ID] = cmd
	return nil
}

// Get returns a command by id.
func (r *Registry) Get(id string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.commands[id]
	return cmd, ok
}

// List returns the commands sorted by id.
func (r *Registry) List() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func registerDefaultCommands(r *Registry) {
	_ = r.Register(Command{
		ID:   CommandFormatDocument,
		Name: locale.FormatDocument,
		Run: func(ctx context.Context, app *App) error {
			_, err := app.FormatActive(ctx)
			return err
		},
	})
}

// CommandName returns the localized display name of a command.
func (app *App) CommandName(cmd Command) string {
	return app.locales.Lookup(app.service.Bundle(), locale.Commands, cmd.Name)
}

// Execute runs the command with the given id. A panicking command is
// reported as a RecoveredPanicError.
func (app *App) Execute(ctx context.Context, id string) (err error) {
	if !app.IsActive() {
		return ErrNotActive
	}
	cmd, ok := app.commands.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}

	defer func() {
		if r := recover(); r != nil {
			err = NewRecoveredPanicError(r, string(debug.Stack()))
			app.logComponentError("commands", fmt.Errorf("%s: panic: %v", id, r))
		}
	}()
	return cmd.Run(ctx, app)
}

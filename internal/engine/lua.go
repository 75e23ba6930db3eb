package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/formatto/internal/editor"
	"github.com/dshills/formatto/internal/options"
)

// FormatFunction is the global a script must define.
const FormatFunction = "format"

// ErrNoFormatFunction is returned when a script does not define format.
var ErrNoFormatFunction = errors.New("script does not define a format function")

// LuaOption configures a Lua engine.
type LuaOption func(*Lua)

// WithTimeout bounds a single format call. Zero means no limit.
func WithTimeout(d time.Duration) LuaOption {
	return func(l *Lua) {
		l.timeout = d
	}
}

// WithQueueSize sets how many calls may wait for the executor.
func WithQueueSize(n int) LuaOption {
	return func(l *Lua) {
		l.queueSize = n
	}
}

// Lua is an engine backed by a Lua script.
//
// The script defines a global function
//
//	format(text, options, locale[, cursor]) -> text[, {line=, ch=}]
//
// where options is a table of sections holding the resolved option values
// (gaps as strings, toggles as booleans) and locale is a table of the
// engine's message categories. Raising an error reports a failure whose
// message is shown to the user.
type Lua struct {
	name      string
	timeout   time.Duration
	queueSize int
	exec      *executor
}

// NewLua compiles source and returns an engine running it.
func NewLua(name, source string, opts ...LuaOption) (*Lua, error) {
	l := &Lua{name: name}
	for _, opt := range opts {
		opt(l)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	installSandbox(L)

	fn, err := L.Load(strings.NewReader(source), name)
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("compiling %s: %w", name, err)
	}
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		L.Close()
		return nil, fmt.Errorf("running %s: %w", name, err)
	}
	if L.GetGlobal(FormatFunction).Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrNoFormatFunction)
	}
	L.SetTop(0)

	l.exec = newExecutor(L, l.queueSize)
	return l, nil
}

// LoadLua reads a script from disk and returns an engine running it.
func LoadLua(path string, opts ...LuaOption) (*Lua, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading engine script: %w", err)
	}
	return NewLua(filepath.Base(path), string(src), opts...)
}

// Name returns the chunk name of the script.
func (l *Lua) Name() string {
	return l.name
}

// Format implements Engine.
func (l *Lua) Format(ctx context.Context, text string, opts options.Resolved, localeJSON string) (string, error) {
	out, _, err := l.call(ctx, text, nil, opts, localeJSON)
	return out, err
}

// FormatWithCursor implements CursorEngine.
func (l *Lua) FormatWithCursor(ctx context.Context, text string, cursor editor.Position, opts options.Resolved, localeJSON string) (string, *editor.Position, error) {
	return l.call(ctx, text, &cursor, opts, localeJSON)
}

// Close stops the executor and releases the Lua state.
func (l *Lua) Close() error {
	l.exec.close()
	return nil
}

func (l *Lua) call(ctx context.Context, text string, cursor *editor.Position, opts options.Resolved, localeJSON string) (string, *editor.Position, error) {
	var (
		out string
		pos *editor.Position
	)
	err := l.exec.do(ctx, func(L *lua.LState) error {
		if l.timeout > 0 {
			callCtx, cancel := context.WithTimeout(context.Background(), l.timeout)
			defer cancel()
			L.SetContext(callCtx)
			defer L.RemoveContext()
		}

		args := []lua.LValue{
			lua.LString(text),
			optionsTable(L, opts),
			jsonToLua(L, gjson.Parse(localeJSON)),
		}
		if cursor != nil {
			args = append(args, positionTable(L, *cursor))
		}

		top := L.GetTop()
		defer L.SetTop(top)

		err := L.CallByParam(lua.P{
			Fn:      L.GetGlobal(FormatFunction),
			NRet:    2,
			Protect: true,
		}, args...)
		if err != nil {
			return scriptError(err)
		}

		ret, extra := L.Get(-2), L.Get(-1)
		s, ok := ret.(lua.LString)
		if !ok {
			if ret == lua.LNil {
				return errNoResult
			}
			return fmt.Errorf("format returned %s, want string", ret.Type())
		}
		out = string(s)
		if tbl, ok := extra.(*lua.LTable); ok {
			pos = tableToPosition(tbl)
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	return out, pos, nil
}

// scriptError turns a Lua error raised by the script into an engine Error.
func scriptError(err error) error {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		msg := apiErr.Error()
		if apiErr.Object != nil {
			msg = apiErr.Object.String()
		}
		if apiErr.Type == lua.ApiErrorRun && strings.Contains(msg, context.DeadlineExceeded.Error()) {
			return fmt.Errorf("format call: %w", context.DeadlineExceeded)
		}
		return &Error{Message: msg, Err: err}
	}
	return err
}

// optionsTable builds {section = {field = value}} from the resolved set.
func optionsTable(L *lua.LState, r options.Resolved) *lua.LTable {
	set := r.Options()
	root := L.NewTable()
	for _, f := range options.Fields() {
		section, ok := root.RawGetString(f.Section).(*lua.LTable)
		if !ok {
			section = L.NewTable()
			root.RawSetString(f.Section, section)
		}
		raw, _ := set.Get(f.Path())
		if f.Kind == options.KindToggle {
			section.RawSetString(f.Key, lua.LBool(raw == "true"))
			continue
		}
		section.RawSetString(f.Key, lua.LString(raw))
	}
	return root
}

func positionTable(L *lua.LState, p editor.Position) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("line", lua.LNumber(p.Line))
	t.RawSetString("ch", lua.LNumber(p.Ch))
	return t
}

func tableToPosition(t *lua.LTable) *editor.Position {
	line, ok1 := t.RawGetString("line").(lua.LNumber)
	ch, ok2 := t.RawGetString("ch").(lua.LNumber)
	if !ok1 || !ok2 {
		return nil
	}
	return &editor.Position{Line: int(line), Ch: int(ch)}
}

// jsonToLua converts a parsed JSON value into the matching Lua value.
func jsonToLua(L *lua.LState, v gjson.Result) lua.LValue {
	switch {
	case v.IsObject():
		t := L.NewTable()
		v.ForEach(func(k, val gjson.Result) bool {
			t.RawSetString(k.String(), jsonToLua(L, val))
			return true
		})
		return t
	case v.IsArray():
		t := L.NewTable()
		for _, item := range v.Array() {
			t.Append(jsonToLua(L, item))
		}
		return t
	}
	switch v.Type {
	case gjson.String:
		return lua.LString(v.Str)
	case gjson.Number:
		return lua.LNumber(v.Num)
	case gjson.True:
		return lua.LTrue
	case gjson.False:
		return lua.LFalse
	default:
		return lua.LNil
	}
}

package engine

import (
	_ "embed"
)

// BuiltinName is the chunk name of the built-in script.
const BuiltinName = "builtin.lua"

//go:embed builtin.lua
var builtinScript string

// NewBuiltin returns a Lua engine running the built-in script.
func NewBuiltin(opts ...LuaOption) (*Lua, error) {
	return NewLua(BuiltinName, builtinScript, opts...)
}

package engine

import (
	lua "github.com/yuin/gopher-lua"
)

// safeModules may be loaded through require by a formatting script.
var safeModules = map[string]bool{
	"string": true,
	"table":  true,
	"math":   true,
	"bit32":  true,
	"utf8":   true,
}

// openSafeLibraries opens the standard libraries a formatter needs.
// io, os and debug are never opened.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

// installSandbox removes the loaders that reach the file system and
// replaces require with a whitelist.
func installSandbox(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}

	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		L.SetField(pkg, "path", lua.LString(""))
		L.SetField(pkg, "cpath", lua.LString(""))

		if loaded, ok := L.GetField(pkg, "loaded").(*lua.LTable); ok {
			var drop []string
			loaded.ForEach(func(k, _ lua.LValue) {
				if ks, ok := k.(lua.LString); ok && !safeModules[string(ks)] && ks != "_G" && ks != "package" {
					drop = append(drop, string(ks))
				}
			})
			for _, key := range drop {
				loaded.RawSetString(key, lua.LNil)
			}
		}
	}

	original := L.GetGlobal("require")
	L.SetGlobal("require", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !safeModules[name] {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(original)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}

package loader

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(data), nil
}

func TestTOMLLoader(t *testing.T) {
	fsys := memFS{"/c.toml": `
[logging]
level = "debug"

[autosave]
delay = "1500ms"
`}
	cfg, err := NewTOMLLoaderWithFS(fsys, "/c.toml").Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg["logging"].(map[string]any)["level"])
	assert.Equal(t, "1500ms", cfg["autosave"].(map[string]any)["delay"])

	cfg, err = NewTOMLLoaderWithFS(fsys, "/missing.toml").Load()
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestTOMLLoader_ParseError(t *testing.T) {
	_, err := NewTOMLLoaderWithFS(memFS{"/c.toml": "[logging\nlevel="}, "/c.toml").Load()
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "/c.toml", pe.Path)
	assert.Positive(t, pe.Line)
}

func TestYAMLLoader(t *testing.T) {
	fsys := memFS{"/c.yaml": `
locale:
  language: de
engine:
  script: fmt.lua
  timeout: 2s
`}
	cfg, err := NewYAMLLoaderWithFS(fsys, "/c.yaml").Load()
	require.NoError(t, err)
	engine := cfg["engine"].(map[string]any)
	assert.Equal(t, "fmt.lua", engine["script"])
	assert.Equal(t, "2s", engine["timeout"])
	assert.Equal(t, "de", cfg["locale"].(map[string]any)["language"])

	_, err = NewYAMLLoaderWithFS(memFS{"/c.yaml": "a: [1"}, "/c.yaml").Load()
	var pe *ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestLoadFromReader(t *testing.T) {
	cfg, err := NewYAMLLoader("").LoadFromReader(strings.NewReader("vault:\n  root: /notes\n"))
	require.NoError(t, err)
	assert.Equal(t, "/notes", cfg["vault"].(map[string]any)["root"])

	cfg, err = NewTOMLLoader("").LoadFromReader(strings.NewReader("[vault]\nroot = \"/notes\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "/notes", cfg["vault"].(map[string]any)["root"])
}

func TestForPath(t *testing.T) {
	l, err := ForPath(memFS{}, "x.TOML")
	require.NoError(t, err)
	assert.IsType(t, &TOMLLoader{}, l)

	l, err = ForPath(memFS{}, "x.yml")
	require.NoError(t, err)
	assert.IsType(t, &YAMLLoader{}, l)

	_, err = ForPath(memFS{}, "x.json")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"logging": map[string]any{"level": "info", "format": "auto"},
		"vault":   map[string]any{"root": "."},
	}
	src := map[string]any{
		"logging": map[string]any{"level": "debug"},
		"engine":  map[string]any{"script": "a.lua"},
	}
	got := DeepMerge(dst, src)

	assert.Equal(t, map[string]any{"level": "debug", "format": "auto"}, got["logging"])
	assert.Equal(t, map[string]any{"root": "."}, got["vault"])
	assert.Equal(t, map[string]any{"script": "a.lua"}, got["engine"])
	assert.Equal(t, src, DeepMerge(nil, src))
}

func TestClone(t *testing.T) {
	src := map[string]any{"a": map[string]any{"b": []any{map[string]any{"c": 1}}}}
	cp := Clone(src)
	cp["a"].(map[string]any)["b"].([]any)[0].(map[string]any)["c"] = 2

	assert.Equal(t, 1, src["a"].(map[string]any)["b"].([]any)[0].(map[string]any)["c"])
	assert.Nil(t, Clone(nil))
}

func TestEnvLoader(t *testing.T) {
	l := NewEnvLoader("FORMATTO_")
	l.environ = func() []string {
		return []string{
			"FORMATTO_LOG_LEVEL=debug",
			"FORMATTO_LANG=ko",
			"FORMATTO_AUTOSAVE_DELAY=250ms",
			"FORMATTO_VAULT_DATA_FILE=/tmp/data.json",
			"FORMATTO_NOTICES_ALWAYS_NOTIFY=yes",
			"HOME=/root",
			"FORMATTO_=ignored",
		}
	}
	l.AddMapping("FORMATTO_LANG", "locale.language")

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg["logging"].(map[string]any)["level"])
	assert.Equal(t, "ko", cfg["locale"].(map[string]any)["language"])
	assert.Equal(t, "250ms", cfg["autosave"].(map[string]any)["delay"])
	assert.Equal(t, "/tmp/data.json", cfg["vault"].(map[string]any)["dataFile"])
	assert.Equal(t, true, cfg["notices"].(map[string]any)["alwaysNotify"])
	assert.NotContains(t, cfg, "home")
	assert.Len(t, cfg, 5)
}

func TestEnvLoader_envToPath(t *testing.T) {
	l := NewEnvLoader("FORMATTO_")
	tests := []struct {
		env  string
		want string
	}{
		{"FORMATTO_ENGINE_SCRIPT", "engine.script"},
		{"FORMATTO_VAULT_DATA_FILE", "vault.dataFile"},
		{"FORMATTO_SIMPLE", "simple"},
		{"FORMATTO_", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.envToPath(tt.env), tt.env)
	}
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, parseValue("on"))
	assert.Equal(t, false, parseValue("false"))
	assert.Equal(t, int64(12), parseValue("12"))
	assert.Equal(t, "1.5s", parseValue("1500ms"))
	assert.Equal(t, "no", parseValue("no"))
	assert.Equal(t, "", parseValue(""))
}

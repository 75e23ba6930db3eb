package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/dshills/formatto/internal/locale"
	"github.com/dshills/formatto/internal/vault"
)

type harness struct {
	cfgDir string
	root   string
}

func newHarness(t *testing.T) *harness {
	return &harness{cfgDir: t.TempDir(), root: t.TempDir()}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd(&out, &errOut)
	root.SetArgs(append([]string{"--config-dir", h.cfgDir, "--vault", h.root}, args...))
	err := root.Execute()
	return out.String(), err
}

func (h *harness) file(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(h.root, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestRootCmd_HasExpectedFlags(t *testing.T) {
	flags := newRootCmd(&bytes.Buffer{}, &bytes.Buffer{}).PersistentFlags()
	for _, name := range []string{"config", "config-dir", "vault", "lang"} {
		assert.NotNil(t, flags.Lookup(name), name)
	}
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	var names []string
	for _, sub := range newRootCmd(&bytes.Buffer{}, &bytes.Buffer{}).Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"format", "watch", "settings", "locales", "commands"} {
		assert.Contains(t, names, want)
	}
}

func TestFormat(t *testing.T) {
	h := newHarness(t)
	path := h.file(t, "a.md", "# Title   \ntext")

	out, err := h.run(t, "format", path)
	require.NoError(t, err)
	assert.Contains(t, out, "a.md:")
	assert.Contains(t, out, locale.Formatted)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Title\ntext\n", string(data))

	out, err = h.run(t, "format", path)
	require.NoError(t, err)
	assert.Contains(t, out, locale.AlreadyFormatted)
}

func TestFormat_Cursor(t *testing.T) {
	h := newHarness(t)
	path := h.file(t, "a.md", "# Title   \ntext")

	out, err := h.run(t, "format", "--cursor", "0:9", path)
	require.NoError(t, err)
	assert.Equal(t, "0:7", strings.TrimSpace(out[strings.LastIndex(strings.TrimSpace(out), "\n")+1:]))

	_, err = h.run(t, "format", "--cursor", "bad", path)
	assert.Error(t, err)

	other := h.file(t, "b.md", "x")
	_, err = h.run(t, "format", "--cursor", "0:0", path, other)
	assert.Error(t, err)
}

func TestFormat_Localized(t *testing.T) {
	h := newHarness(t)
	path := h.file(t, "a.md", "text  ")

	out, err := h.run(t, "--lang", "de", "format", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Dokument formatiert!")
}

func TestFormat_EngineFailure(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.WriteFile(filepath.Join(h.cfgDir, "format.lua"),
		[]byte(`function format(text) error("unexpected token", 0) end`), 0o644))
	path := h.file(t, "a.md", "text")

	out, err := h.run(t, "format", path)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "Failed to format the document: unexpected token")
}

func TestFormat_OutsideVault(t *testing.T) {
	h := newHarness(t)
	outside := filepath.Join(t.TempDir(), "a.md")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	_, err := h.run(t, "format", outside)
	assert.ErrorIs(t, err, vault.ErrOutsideRoot)
}

func TestSettings(t *testing.T) {
	h := newHarness(t)
	const path = "headingGaps.beforeTopLevelHeadings"

	out, err := h.run(t, "settings", "set", path, "1.5")
	require.NoError(t, err)
	assert.Contains(t, out, "It must be a whole number.")

	out, err = h.run(t, "settings", "get", path)
	require.NoError(t, err)
	assert.Equal(t, "1.5\n", out)

	_, err = h.run(t, "settings", "reset", path)
	require.NoError(t, err)
	out, err = h.run(t, "settings", "get", path)
	require.NoError(t, err)
	assert.Equal(t, "\n", out)

	_, err = h.run(t, "settings", "set", "nope.field", "1")
	assert.Error(t, err)
}

func TestSettings_List(t *testing.T) {
	h := newHarness(t)
	_, err := h.run(t, "settings", "set", "otherGaps.beforeCodeBlocks", "4")
	require.NoError(t, err)

	out, err := h.run(t, "settings", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "headingGaps")
	assert.Contains(t, out, "Before top-level headings")
	assert.Contains(t, out, locale.DefaultMarker)
	assert.Regexp(t, `otherGaps\.beforeCodeBlocks\s+4\s`, out)
}

func TestSettings_Schema(t *testing.T) {
	h := newHarness(t)
	out, err := h.run(t, "settings", "schema")
	require.NoError(t, err)
	assert.True(t, gjson.Valid(out))
}

func TestLocalesAndCommands(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, "--lang", "ko", "locales")
	require.NoError(t, err)
	assert.Contains(t, out, "* ko")
	assert.Contains(t, out, "  en")

	out, err = h.run(t, "commands")
	require.NoError(t, err)
	assert.Contains(t, out, "format-document")
	assert.Contains(t, out, locale.FormatDocument)
}

package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/formatto/internal/event"
)

func newVault(t *testing.T) *Vault {
	t.Helper()
	v, err := Open(t.TempDir())
	require.NoError(t, err)
	return v
}

func TestOpen(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.md")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = Open(file)
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestVault_ReadWrite(t *testing.T) {
	v := newVault(t)
	require.NoError(t, os.MkdirAll(filepath.Join(v.Root(), "notes"), 0o755))

	require.NoError(t, v.Write("notes/a.md", "# A\n"))
	got, err := v.Read("notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, "# A\n", got)

	require.NoError(t, v.Write("notes/a.md", "# B\n"))
	got, err = v.Read("notes/a.md")
	require.NoError(t, err)
	assert.Equal(t, "# B\n", got)

	// No temporary files are left behind.
	entries, err := os.ReadDir(filepath.Join(v.Root(), "notes"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestVault_WriteKeepsPermissions(t *testing.T) {
	v := newVault(t)
	p := filepath.Join(v.Root(), "a.md")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))

	require.NoError(t, v.Write("a.md", "y"))
	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestVault_OutsideRoot(t *testing.T) {
	v := newVault(t)
	_, err := v.Read("../escape.md")
	assert.ErrorIs(t, err, ErrOutsideRoot)
	assert.ErrorIs(t, v.Write("../../escape.md", "x"), ErrOutsideRoot)

	_, err = v.Rel(filepath.Dir(v.Root()))
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestVault_Markdown(t *testing.T) {
	v := newVault(t)
	for _, p := range []string{"b.md", "a.MD", "sub/c.md", "notes.txt", ".hidden/d.md", ".e.md"} {
		full := filepath.Join(v.Root(), filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o644))
	}

	got, err := v.Markdown()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.MD", "b.md", "sub/c.md"}, got)
}

func TestIsMarkdown(t *testing.T) {
	assert.True(t, IsMarkdown("a.md"))
	assert.True(t, IsMarkdown("dir/A.Md"))
	assert.False(t, IsMarkdown("a.markdown.txt"))
	assert.False(t, IsMarkdown("md"))
}

func waitEvent(t *testing.T, sub *event.Subscription) event.Event {
	t.Helper()
	select {
	case ev := <-sub.C():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return event.Event{}
	}
}

func TestWatcher_PublishesMarkdownWrites(t *testing.T) {
	v := newVault(t)
	bus := event.NewBus()
	defer bus.Close()
	sub := bus.Subscribe(64, event.FileModified)

	w, err := NewWatcher(v, bus)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(v.Root(), "ignored.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(v.Root(), "doc.md"), []byte("x"), 0o644))

	ev := waitEvent(t, sub)
	assert.Equal(t, event.FileModified, ev.Kind)
	assert.Equal(t, "doc.md", ev.Path)
}

func TestWatcher_AtomicWriteReportsTarget(t *testing.T) {
	v := newVault(t)
	require.NoError(t, os.WriteFile(filepath.Join(v.Root(), "doc.md"), []byte("x"), 0o644))

	bus := event.NewBus()
	defer bus.Close()
	sub := bus.Subscribe(64, event.FileModified)

	w, err := NewWatcher(v, bus)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, v.Write("doc.md", "y"))
	ev := waitEvent(t, sub)
	assert.Equal(t, "doc.md", ev.Path)
}

func TestWatcher_NewDirectories(t *testing.T) {
	v := newVault(t)
	bus := event.NewBus()
	defer bus.Close()
	sub := bus.Subscribe(64, event.FileModified)

	w, err := NewWatcher(v, bus)
	require.NoError(t, err)
	defer w.Close()

	dir := filepath.Join(v.Root(), "sub")
	require.NoError(t, os.Mkdir(dir, 0o755))
	require.Eventually(t, func() bool { return w.Stats().WatchedDirs == 2 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "n.md"), []byte("x"), 0o644))
	ev := waitEvent(t, sub)
	assert.Equal(t, "sub/n.md", ev.Path)
}

func TestWatcher_Close(t *testing.T) {
	v := newVault(t)
	w, err := NewWatcher(v, event.NewBus())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.ErrorIs(t, w.add(v.Root()), ErrWatcherClosed)
}

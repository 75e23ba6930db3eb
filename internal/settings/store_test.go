package settings

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/formatto/internal/config/notify"
	"github.com/dshills/formatto/internal/locale"
	"github.com/dshills/formatto/internal/options"
	"github.com/dshills/formatto/internal/schedule/scheduletest"
)

func dataPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "data.json")
}

func TestOpen_MissingFileUsesDefaults(t *testing.T) {
	s, err := Open(dataPath(t))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, options.Defaults(), s.Snapshot())
	_, err = os.Stat(s.Path())
	assert.True(t, os.IsNotExist(err), "nothing is written before a change")
}

func TestDecode_PartialRecord(t *testing.T) {
	set, err := Decode([]byte(`{
		"headingGaps": {"beforeTopLevelHeadings": "4", "beforeSubHeadings": 2},
		"otherOptions": {"formatOnSave": true, "notifyWhenUnchanged": "yes"},
		"legacy": {"notifyText": true}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "4", set.HeadingGaps.BeforeTopLevelHeadings)
	assert.Equal(t, "2", set.HeadingGaps.BeforeSubHeadings)
	assert.Equal(t, options.Unset, set.HeadingGaps.BeforeFirstSubHeading)
	assert.Equal(t, options.Unset, set.OtherGaps.AfterProperties)
	assert.True(t, set.OtherOptions.FormatOnSave)
	// Garbled toggles keep their fallback.
	assert.True(t, set.OtherOptions.NotifyWhenUnchanged)
	assert.True(t, set.FormatOptions.InsertNewline)
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte(`[1, 2]`))
	assert.ErrorIs(t, err, ErrInvalidData)
	_, err = Decode([]byte(`{`))
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestOpen_InvalidFile(t *testing.T) {
	p := dataPath(t)
	require.NoError(t, os.WriteFile(p, []byte("nope"), 0o644))
	_, err := Open(p)
	assert.ErrorIs(t, err, ErrInvalidData)
}

func TestStore_SetPersistsAndReloads(t *testing.T) {
	p := dataPath(t)
	s, err := Open(p)
	require.NoError(t, err)

	require.NoError(t, s.Set("headingGaps.beforeSubHeadings", "5"))
	require.NoError(t, s.Set("otherGaps.beforeCodeBlocks", "-1"))
	require.NoError(t, s.Set("otherOptions.formatOnSave", "true"))
	s.Close()

	reopened, err := Open(p)
	require.NoError(t, err)
	defer reopened.Close()

	snap := reopened.Snapshot()
	assert.Equal(t, "5", snap.HeadingGaps.BeforeSubHeadings)
	// Invalid values are stored verbatim.
	assert.Equal(t, "-1", snap.OtherGaps.BeforeCodeBlocks)
	assert.True(t, snap.OtherOptions.FormatOnSave)
	assert.Equal(t, s.Snapshot(), snap)
}

func TestStore_PreservesUnknownKeys(t *testing.T) {
	p := dataPath(t)
	require.NoError(t, os.WriteFile(p, []byte(`{"custom":{"keep":1}}`), 0o644))

	s, err := Open(p)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Set("headingGaps.beforeSubHeadings", "1"))

	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"custom":{"keep":1}`)
	assert.Contains(t, string(data), `"beforeSubHeadings":"1"`)
}

func TestStore_SetErrors(t *testing.T) {
	s, err := Open(dataPath(t))
	require.NoError(t, err)
	defer s.Close()

	assert.ErrorIs(t, s.Set("headingGaps.nope", "1"), options.ErrUnknownField)
	assert.ErrorIs(t, s.Set("otherOptions.formatOnSave", "maybe"), options.ErrInvalidToggle)
	assert.Equal(t, options.Defaults(), s.Snapshot())
}

func TestStore_Reset(t *testing.T) {
	s, err := Open(dataPath(t))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("headingGaps.beforeSubHeadings", "7"))
	require.NoError(t, s.Set("otherOptions.notifyWhenUnchanged", "false"))
	require.NoError(t, s.Reset("headingGaps.beforeSubHeadings"))
	require.NoError(t, s.Reset("otherOptions.notifyWhenUnchanged"))
	assert.Equal(t, options.Defaults(), s.Snapshot())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s, err := Open(dataPath(t))
	require.NoError(t, err)
	defer s.Close()

	snap := s.Snapshot()
	require.NoError(t, s.Set("headingGaps.beforeSubHeadings", "9"))
	assert.Equal(t, options.Unset, snap.HeadingGaps.BeforeSubHeadings)
}

func TestStore_Notifications(t *testing.T) {
	n := notify.New()
	s, err := Open(dataPath(t), WithNotifier(n))
	require.NoError(t, err)
	defer s.Close()

	var mu sync.Mutex
	var got []notify.Change
	n.SubscribePath("headingGaps", func(c notify.Change) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, c)
	})

	require.NoError(t, s.Set("headingGaps.beforeSubHeadings", "4"))
	require.NoError(t, s.Set("otherOptions.formatOnSave", "true"))
	require.NoError(t, s.Reset("headingGaps.beforeSubHeadings"))
	require.NoError(t, s.Reload())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 3)
	assert.Equal(t, notify.Change{Path: "headingGaps.beforeSubHeadings", Kind: notify.KindSet, Old: "", New: "4", Source: "settings"}, got[0])
	assert.Equal(t, notify.KindReset, got[1].Kind)
	assert.Equal(t, "4", got[1].Old)
	assert.Equal(t, notify.KindReload, got[2].Kind)
}

func TestStore_DebouncedWarning(t *testing.T) {
	clock := scheduletest.NewClock()
	type warning struct {
		path, value string
		err         error
	}
	var warnings []warning

	s, err := Open(dataPath(t), WithClock(clock), WithWarning(func(path, value string, err error) {
		warnings = append(warnings, warning{path, value, err})
	}))
	require.NoError(t, err)
	defer s.Close()

	const field = "otherGaps.beforeContents"

	// Typing "1.5" character by character only warns once, for the final value.
	require.NoError(t, s.Set(field, "1"))
	clock.Advance(300 * time.Millisecond)
	require.NoError(t, s.Set(field, "1."))
	clock.Advance(300 * time.Millisecond)
	require.NoError(t, s.Set(field, "1.5"))
	assert.True(t, s.PendingWarning(field))
	clock.Advance(999 * time.Millisecond)
	assert.Empty(t, warnings)
	clock.Advance(time.Millisecond)

	require.Len(t, warnings, 1)
	assert.Equal(t, "1.5", warnings[0].value)
	assert.ErrorIs(t, warnings[0].err, options.ErrNotWholeNumber)
	assert.Equal(t, locale.NotWholeNumber, WarningKey(warnings[0].err))

	// A value fixed before the deadline does not warn.
	require.NoError(t, s.Set(field, "x"))
	require.NoError(t, s.Set(field, "2"))
	clock.Advance(time.Second)
	assert.Len(t, warnings, 1)

	// Toggles never warn.
	require.NoError(t, s.Set("otherOptions.formatOnSave", "true"))
	assert.False(t, s.PendingWarning("otherOptions.formatOnSave"))
}

func TestStore_WarningsPerField(t *testing.T) {
	clock := scheduletest.NewClock()
	var paths []string
	s, err := Open(dataPath(t), WithClock(clock), WithWarning(func(path, _ string, _ error) {
		paths = append(paths, path)
	}))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Set("headingGaps.beforeSubHeadings", "-2"))
	require.NoError(t, s.Set("otherGaps.beforeContents", "abc"))
	clock.Advance(time.Second)
	assert.ElementsMatch(t, []string{"headingGaps.beforeSubHeadings", "otherGaps.beforeContents"}, paths)
	assert.Equal(t, locale.InvalidNumber, WarningKey(options.ErrNotNumber))
}

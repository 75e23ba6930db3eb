package notify

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{KindSet, "set"},
		{KindReset, "reset"},
		{KindReload, "reload"},
		{Kind(42), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.k.String())
	}
}

func TestNotifier_Subscribe(t *testing.T) {
	n := New()
	defer n.Close()

	var got []Change
	sub := n.Subscribe(func(c Change) { got = append(got, c) })

	n.Notify(Change{Path: "headingGaps.beforeSubHeadings", Kind: KindSet, New: "2"})
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].New)

	sub.Unsubscribe()
	sub.Unsubscribe()
	n.Notify(Change{Path: "headingGaps.beforeSubHeadings", Kind: KindSet})
	assert.Len(t, got, 1)
}

func TestNotifier_SubscribePath(t *testing.T) {
	n := New()
	defer n.Close()

	var headings, other atomic.Int32
	n.SubscribePath("headingGaps", func(Change) { headings.Add(1) })
	n.SubscribePath("otherGaps.beforeContents", func(Change) { other.Add(1) })

	n.Notify(Change{Path: "headingGaps.beforeSubHeadings"})
	n.Notify(Change{Path: "headingGapsExtra.x"})
	n.Notify(Change{Path: "otherGaps.beforeContents"})
	n.Notify(Change{Kind: KindReload})

	assert.Equal(t, int32(2), headings.Load())
	assert.Equal(t, int32(2), other.Load())
}

func TestNotifier_Async(t *testing.T) {
	n := New(WithAsync(8))

	var mu sync.Mutex
	var paths []string
	n.Subscribe(func(c Change) {
		mu.Lock()
		paths = append(paths, c.Path)
		mu.Unlock()
	})

	n.Notify(Change{Path: "a"})
	n.Notify(Change{Path: "b"})
	n.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b"}, paths)
}

func TestNotifier_ClosedDropsChanges(t *testing.T) {
	n := New()
	var calls atomic.Int32
	n.Subscribe(func(Change) { calls.Add(1) })
	n.Close()
	n.Close()

	done := make(chan struct{})
	go func() {
		n.Notify(Change{Path: "x"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked after Close")
	}
	assert.Zero(t, calls.Load())
}

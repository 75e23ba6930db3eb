package app

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/formatto/internal/format"
)

func TestNewMetrics(t *testing.T) {
	snap := NewMetrics().Snapshot()
	assert.Zero(t, snap.Requests)
	assert.Zero(t, snap.Min)
	assert.Zero(t, snap.Avg)
}

func TestMetrics_RecordFormat(t *testing.T) {
	m := NewMetrics()

	m.RecordFormat(10*time.Millisecond, format.Result{Outcome: format.Formatted("x", nil), Applied: true})
	m.RecordFormat(20*time.Millisecond, format.Result{Outcome: format.Formatted("x", nil)})
	m.RecordFormat(5*time.Millisecond, format.Result{Outcome: format.Failed("bad")})
	m.RecordFormat(5*time.Millisecond, format.Result{Outcome: format.Formatted("x", nil), Stale: true})

	snap := m.Snapshot()
	assert.EqualValues(t, 4, snap.Requests)
	assert.EqualValues(t, 1, snap.Applied)
	assert.EqualValues(t, 1, snap.Unchanged)
	assert.EqualValues(t, 1, snap.Failed)
	assert.EqualValues(t, 1, snap.Stale)
	assert.Equal(t, 5*time.Millisecond, snap.Min)
	assert.Equal(t, 20*time.Millisecond, snap.Max)
	assert.Equal(t, 5*time.Millisecond, snap.Last)
	assert.Equal(t, 10*time.Millisecond, snap.Avg)
}

func TestMetrics_Concurrent(t *testing.T) {
	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(d time.Duration) {
			defer wg.Done()
			m.RecordFormat(d, format.Result{Outcome: format.Formatted("", nil)})
		}(time.Duration(i) * time.Millisecond)
	}
	wg.Wait()

	snap := m.Snapshot()
	assert.EqualValues(t, 50, snap.Requests)
	assert.Equal(t, time.Millisecond, snap.Min)
	assert.Equal(t, 50*time.Millisecond, snap.Max)
}

// FILE: logroute/src/internal/diag/diag_test.go
package diag

import (
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func TestObserve(t *testing.T) {
	prev := SetLogger(newTestLogger())
	defer SetLogger(prev)

	var mu sync.Mutex
	var got []Record
	cancel := Observe(func(r Record) {
		mu.Lock()
		got = append(got, r)
		mu.Unlock()
	})

	Warn("async_sink", "queue full", "size", 4)
	Error("file_sink", "write failed", "path", "/tmp/x")
	cancel()
	Warn("async_sink", "after cancel")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, LevelWarn, got[0].Level)
	assert.Equal(t, "async_sink", got[0].Component)
	assert.Equal(t, "queue full", got[0].Msg)
	assert.Equal(t, []any{"size", 4}, got[0].Fields)
	assert.Equal(t, LevelError, got[1].Level)
}

func TestObserve_SeesThrottledReports(t *testing.T) {
	prev := SetLogger(newTestLogger())
	defer SetLogger(prev)
	SetThrottle(time.Hour, 1)
	defer SetThrottle(time.Second, 3)

	count := 0
	cancel := Observe(func(Record) { count++ })
	defer cancel()

	for i := 0; i < 5; i++ {
		Warn("c", "same")
	}
	assert.Equal(t, 5, count)
}

func TestAdmit(t *testing.T) {
	SetThrottle(time.Hour, 2)
	defer SetThrottle(time.Second, 3)

	mu.Lock()
	defer mu.Unlock()

	_, ok := admit("k")
	assert.True(t, ok)
	_, ok = admit("k")
	assert.True(t, ok)
	_, ok = admit("k")
	assert.False(t, ok)
	_, ok = admit("k")
	assert.False(t, ok)
	assert.Equal(t, 2, limiters["k"].suppressed)

	_, ok = admit("other")
	assert.True(t, ok, "keys are throttled independently")
}

// FILE: logroute/src/internal/sink/sink_test.go
package sink

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"logroute/src/internal/core"
	"logroute/src/internal/diag"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

// quietDiag silences diagnostics and records them for the test.
func quietDiag(t *testing.T) func() []diag.Record {
	t.Helper()
	prev := diag.SetLogger(newTestLogger())

	var mu sync.Mutex
	var records []diag.Record
	cancel := diag.Observe(func(r diag.Record) {
		mu.Lock()
		records = append(records, r)
		mu.Unlock()
	})
	t.Cleanup(func() {
		cancel()
		diag.SetLogger(prev)
	})

	return func() []diag.Record {
		mu.Lock()
		defer mu.Unlock()
		return append([]diag.Record(nil), records...)
	}
}

func newEvent(content string) *core.Event {
	ev := core.NewEvent(core.Message{Content: content, Level: core.LevelInfo, Namespace: "test"}, "HH:mm:ss")
	ev.SetFormatted(content)
	return ev
}

// recordingSink stores written lines and can slow down or block writes.
type recordingSink struct {
	name    string
	key     string
	delay   time.Duration
	gate    chan struct{}
	mu      sync.Mutex
	lines   []string
	started atomic.Bool
	closes  atomic.Int32
	inits   atomic.Int32
	late    atomic.Int32 // writes after close
}

func newRecordingSink(key string) *recordingSink {
	return &recordingSink{name: "recording", key: key}
}

func (r *recordingSink) Name() string        { return r.name }
func (r *recordingSink) SetName(name string) { r.name = name }
func (r *recordingSink) Key() string         { return r.key }
func (r *recordingSink) IsStarted() bool     { return r.started.Load() }
func (r *recordingSink) Flush() error        { return nil }

func (r *recordingSink) Init() error {
	r.inits.Add(1)
	r.started.Store(true)
	return nil
}

func (r *recordingSink) Write(ev *core.Event) {
	if r.gate != nil {
		<-r.gate
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.closes.Load() > 0 {
		r.late.Add(1)
	}
	r.mu.Lock()
	r.lines = append(r.lines, ev.Formatted())
	r.mu.Unlock()
}

func (r *recordingSink) Close() error {
	r.closes.Add(1)
	r.started.Store(false)
	return nil
}

func (r *recordingSink) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func TestConsoleSink(t *testing.T) {
	records := quietDiag(t)
	var buf bytes.Buffer
	s := NewConsoleSinkWriter(&buf)

	t.Run("AllConsolesEqual", func(t *testing.T) {
		other := NewConsoleSink()
		other.SetName("something-else")
		assert.Equal(t, s.Key(), other.Key())
	})

	t.Run("WriteBeforeInitIsReported", func(t *testing.T) {
		assert.False(t, s.IsStarted())
		s.Write(newEvent("dropped"))
		assert.Empty(t, buf.String())
		require.NotEmpty(t, records())
	})

	t.Run("WritesLines", func(t *testing.T) {
		require.NoError(t, s.Init())
		assert.True(t, s.IsStarted())
		s.Write(newEvent("one"))
		s.Write(newEvent("two"))
		assert.Equal(t, "one\ntwo\n", buf.String())
	})

	t.Run("CloseIsIdempotent", func(t *testing.T) {
		require.NoError(t, s.Close())
		require.NoError(t, s.Close())
		assert.False(t, s.IsStarted())
	})
}

func TestFileSink(t *testing.T) {
	records := quietDiag(t)
	dir := t.TempDir()

	t.Run("CreatesParentDirsAndAppends", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "deeper", "app.log")
		s := NewFileSink("  " + path + "  ")
		assert.Equal(t, path, s.Location())
		assert.False(t, s.IsStarted())

		require.NoError(t, s.Init())
		assert.True(t, s.IsStarted())
		s.Write(newEvent("first"))
		require.NoError(t, s.Close())
		assert.False(t, s.IsStarted())

		again := NewFileSink(path)
		require.NoError(t, again.Init())
		again.Write(newEvent("second"))
		require.NoError(t, again.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "first\nsecond\n", string(data))
	})

	t.Run("TruncateWhenAppendDisabled", func(t *testing.T) {
		path := filepath.Join(dir, "trunc.log")
		require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o644))

		s := NewFileSink(path)
		s.SetAppend(false)
		require.NoError(t, s.Init())
		s.Write(newEvent("new"))
		require.NoError(t, s.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "new\n", string(data))
	})

	t.Run("ReopenAfterCloseAppends", func(t *testing.T) {
		path := filepath.Join(dir, "reopen.log")
		s := NewFileSink(path)
		s.SetAppend(false)
		require.NoError(t, s.Init())
		s.Write(newEvent("a"))
		require.NoError(t, s.Close())

		require.NoError(t, s.Init())
		s.Write(newEvent("b"))
		require.NoError(t, s.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "a\nb\n", string(data))
	})

	t.Run("BufferedFlushesOnFlushAndClose", func(t *testing.T) {
		path := filepath.Join(dir, "buffered.log")
		s := NewFileSink(path)
		s.SetBuffered(true)
		require.NoError(t, s.Init())
		s.Write(newEvent("held"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Empty(t, string(data))

		require.NoError(t, s.Flush())
		data, err = os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "held\n", string(data))

		s.Write(newEvent("tail"))
		require.NoError(t, s.Close())
		data, err = os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "held\ntail\n", string(data))
	})

	t.Run("EmptyLocationFailsInit", func(t *testing.T) {
		s := NewFileSink("")
		err := s.Init()
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrSinkIO)
		assert.False(t, s.IsStarted())
	})

	t.Run("WriteWithoutStreamIsReported", func(t *testing.T) {
		before := len(records())
		s := NewFileSink(filepath.Join(dir, "never.log"))
		s.Write(newEvent("lost"))
		assert.Greater(t, len(records()), before)
		_, err := os.Stat(filepath.Join(dir, "never.log"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("KeyIsCleanedPath", func(t *testing.T) {
		a := NewFileSink("/var/log/logger/../logger/info.log")
		b := NewFileSink("/var/log/logger/info.log")
		assert.Equal(t, a.Key(), b.Key())
		assert.NotEqual(t, a.Key(), NewFileSink("/var/log/logger/debug.log").Key())
	})
}

func TestFileExtraSink(t *testing.T) {
	quietDiag(t)
	path := filepath.Join(t.TempDir(), "extra.log")

	s := NewFileExtraSink(path, "[host-a]")
	require.NoError(t, s.Init())
	s.Write(newEvent("line"))
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line [host-a]\n", string(data))

	t.Run("KeyIncludesExtra", func(t *testing.T) {
		assert.Equal(t, NewFileExtraSink(path, "x").Key(), NewFileExtraSink(path, "x").Key())
		assert.NotEqual(t, NewFileExtraSink(path, "x").Key(), NewFileExtraSink(path, "y").Key())
		assert.NotEqual(t, NewFileSink(path).Key(), NewFileExtraSink(path, "").Key())
	})

	t.Run("EventNotMutated", func(t *testing.T) {
		ev := newEvent("content")
		s := NewFileExtraSink(filepath.Join(t.TempDir(), "e.log"), "suffix")
		require.NoError(t, s.Init())
		s.Write(ev)
		require.NoError(t, s.Close())
		assert.Equal(t, "content", ev.Formatted())
	})
}

func TestRollingSink(t *testing.T) {
	quietDiag(t)
	dir := t.TempDir()

	s := NewRollingSink(dir, "rolled")
	assert.Equal(t, "rolling:"+filepath.Join(dir, "rolled"), s.Key())
	assert.False(t, s.IsStarted())

	require.NoError(t, s.Init())
	assert.True(t, s.IsStarted())
	s.Write(newEvent("rotating line"))
	require.NoError(t, s.Close())
	assert.False(t, s.IsStarted())

	matches, err := filepath.Glob(filepath.Join(dir, "rolled*"))
	require.NoError(t, err)
	assert.NotEmpty(t, matches)

	t.Run("CloseIsIdempotent", func(t *testing.T) {
		assert.NoError(t, s.Close())
	})
}

func TestRollingSink_WriterConfig(t *testing.T) {
	defaults := log.DefaultConfig()

	s := NewRollingSink("", "")
	wc := s.writerConfig()
	assert.Equal(t, "./", wc.Directory)
	assert.Equal(t, "logroute.output", wc.Name)
	assert.Equal(t, defaults.MaxSizeKB, wc.MaxSizeKB)
	assert.Equal(t, defaults.MaxTotalSizeKB, wc.MaxTotalSizeKB, "unset total size keeps the default cap")
	assert.False(t, wc.EnableConsole)

	s.SetMaxSizeMB(5)
	s.SetMaxTotalSizeMB(50)
	s.SetRetentionHours(24)
	wc = s.writerConfig()
	assert.Equal(t, int64(5000), wc.MaxSizeKB)
	assert.Equal(t, int64(50000), wc.MaxTotalSizeKB)
	assert.Equal(t, 24.0, wc.RetentionPeriodHrs)
	assert.NoError(t, wc.Validate())
}

func TestRollingSink_CloseDuringWrites(t *testing.T) {
	quietDiag(t)
	s := NewRollingSink(t.TempDir(), "busy")
	require.NoError(t, s.Init())

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s.Write(newEvent(fmt.Sprintf("w%d-%d", w, i)))
			}
		}(w)
	}

	time.Sleep(time.Millisecond)
	require.NoError(t, s.Close())
	wg.Wait()
	assert.False(t, s.IsStarted())
}

func TestLineOfFallsBackToFormatting(t *testing.T) {
	ev := core.NewEvent(core.Message{Content: "raw", Level: core.LevelError, Namespace: "ns", Origin: "main"}, "HH")
	line := lineOf(ev)
	assert.True(t, strings.HasSuffix(line, " [main] ERROR ns raw"))
	assert.False(t, ev.IsFormatted())
}

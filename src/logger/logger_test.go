// FILE: logroute/src/logger/logger_test.go
package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"logroute/src/internal/core"
	"logroute/src/internal/diag"
	"logroute/src/internal/sink"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func setup(t *testing.T) {
	t.Helper()
	prev := diag.SetLogger(newTestLogger())
	t.Cleanup(func() {
		_ = Close()
		diag.SetLogger(prev)
	})
}

// blockingSink holds every write until release is closed.
type blockingSink struct {
	entered chan struct{}
	release chan struct{}
	started atomic.Bool
}

func newBlockingSink() *blockingSink {
	return &blockingSink{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (b *blockingSink) Name() string    { return "blocking" }
func (b *blockingSink) SetName(string)  {}
func (b *blockingSink) Key() string     { return "blocking" }
func (b *blockingSink) IsStarted() bool { return b.started.Load() }
func (b *blockingSink) Init() error     { b.started.Store(true); return nil }
func (b *blockingSink) Flush() error    { return nil }
func (b *blockingSink) Close() error    { b.started.Store(false); return nil }

func (b *blockingSink) Write(*core.Event) {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.release
}

func TestUninitialized(t *testing.T) {
	setup(t)
	require.NoError(t, Close())

	assert.Nil(t, Current())
	assert.ErrorIs(t, Info("app", "nothing"), ErrValidation)
	assert.ErrorIs(t, LogDefault("app", "nothing"), ErrValidation)
	assert.Equal(t, uint64(0), Stats().Submitted)
}

func TestInit(t *testing.T) {
	setup(t)

	t.Run("NilRouter", func(t *testing.T) {
		assert.ErrorIs(t, Init(nil), ErrConfiguration)
	})

	t.Run("ReplaceClosesPrevious", func(t *testing.T) {
		var first, second bytes.Buffer
		r1 := New(WithDefaultSink(sink.NewConsoleSinkWriter(&first)))
		require.NoError(t, Init(r1))
		require.NoError(t, Warn("app", "one"))
		assert.True(t, r1.DefaultSink().IsStarted())

		r2 := New(WithDefaultSink(sink.NewConsoleSinkWriter(&second)))
		require.NoError(t, Init(r2))
		assert.Same(t, r2, Current())
		assert.False(t, r1.DefaultSink().IsStarted(), "previous router closed")

		require.NoError(t, Error("app", "two"))
		assert.Contains(t, first.String(), " WARN app one")
		assert.Contains(t, second.String(), " ERROR app two")
		assert.NotContains(t, first.String(), "two")
	})

	t.Run("ReinstallSameRouter", func(t *testing.T) {
		var buf bytes.Buffer
		r := New(WithDefaultSink(sink.NewConsoleSinkWriter(&buf)))
		require.NoError(t, Init(r))
		require.NoError(t, Info("app", "before"))
		require.NoError(t, Init(r))
		assert.True(t, r.DefaultSink().IsStarted())
	})
}

func TestInit_BlockedDispatchDoesNotStall(t *testing.T) {
	setup(t)
	prevTimeout := drainTimeout
	drainTimeout = 10 * time.Second
	t.Cleanup(func() { drainTimeout = prevTimeout })

	blocked := newBlockingSink()
	r1 := New()
	_, err := r1.Bind(LevelInfo, "", blocked)
	require.NoError(t, err)
	require.NoError(t, Init(r1))

	dispatched := make(chan error, 1)
	go func() { dispatched <- Info("app", "stuck") }()
	<-blocked.entered

	var buf bytes.Buffer
	r2 := New(WithDefaultSink(sink.NewConsoleSinkWriter(&buf)))
	installed := make(chan error, 1)
	go func() { installed <- Init(r2) }()

	require.Eventually(t, func() bool { return Current() == r2 }, time.Second, time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- Info("app", "through") }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("dispatch stalled behind a blocked write")
	}
	assert.Contains(t, buf.String(), " INFO app through")

	select {
	case <-installed:
		t.Fatal("previous router closed under an in-flight write")
	default:
	}
	assert.True(t, blocked.IsStarted())

	close(blocked.release)
	require.NoError(t, <-dispatched)
	require.NoError(t, <-installed)
	assert.False(t, blocked.IsStarted(), "previous router closed after the write")
}

func TestHelpers(t *testing.T) {
	setup(t)
	var buf bytes.Buffer
	require.NoError(t, Init(New(WithDefaultSink(sink.NewConsoleSinkWriter(&buf)))))

	require.NoError(t, Debug("ns", "d"))
	require.NoError(t, Info("ns", "i"))
	require.NoError(t, Warn("ns", "w"))
	require.NoError(t, Error("ns", "e"))
	require.NoError(t, Fatal("ns", "f"))
	require.NoError(t, LogDefault("ns", "default"))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	for i, suffix := range []string{"DEBUG ns d", "INFO ns i", "WARN ns w", "ERROR ns e", "FATAL ns f", "INFO ns default"} {
		assert.True(t, strings.HasSuffix(lines[i], suffix), lines[i])
	}
	assert.Equal(t, uint64(6), Stats().Submitted)
}

func TestFromMap(t *testing.T) {
	setup(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	t.Run("SharedFile", func(t *testing.T) {
		r, err := FromMap([]map[string]string{
			{"log_level": "INFO", "sink_type": "file", "file_location": path},
			{"log_level": "ERROR", "sink_type": "file", "file_location": path},
		})
		require.NoError(t, err)
		assert.Len(t, r.ListActive(), 1)

		require.NoError(t, Init(r))
		require.NoError(t, Info("svc", "started"))
		require.NoError(t, Error("svc", "failed"))
		require.NoError(t, Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasSuffix(lines[0], "INFO svc started"))
		assert.True(t, strings.HasSuffix(lines[1], "ERROR svc failed"))
	})

	t.Run("BadRoute", func(t *testing.T) {
		_, err := FromMap([]map[string]string{
			{"log_level": "INFO", "sink_type": "console"},
			{"log_level": "LOUD", "sink_type": "console"},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.Contains(t, err.Error(), "route 1")
	})
}

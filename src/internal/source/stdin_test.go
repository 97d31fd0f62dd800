// FILE: logroute/src/internal/source/stdin_test.go
package source

import (
	"io"
	"strings"
	"testing"
	"time"

	"logroute/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

func collect(t *testing.T, ch <-chan core.Message) []core.Message {
	t.Helper()
	var out []core.Message
	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, msg)
		case <-timeout:
			t.Fatal("source did not close its channel")
			return out
		}
	}
}

func TestParseLine(t *testing.T) {
	testCases := []struct {
		name        string
		line        string
		wantLevel   core.Level
		wantContent string
	}{
		{"Plain", "server started", core.LevelInfo, "server started"},
		{"BareToken", "ERROR disk full", core.LevelError, "disk full"},
		{"Bracketed", "[warn] slow response", core.LevelWarn, "slow response"},
		{"Colon", "debug: cache miss", core.LevelDebug, "cache miss"},
		{"BracketedColon", "[FATAL]: crashed", core.LevelFatal, "crashed"},
		{"Alias", "WARNING low memory", core.LevelWarn, "low memory"},
		{"LeadingSpace", "  ERR  boom", core.LevelError, "boom"},
		{"TokenOnly", "ERROR", core.LevelInfo, "ERROR"},
		{"TokenThenSpaces", "ERROR   ", core.LevelInfo, "ERROR   "},
		{"NotAPrefix", "an ERROR happened", core.LevelInfo, "an ERROR happened"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			level, content := ParseLine(tc.line, core.LevelInfo)
			assert.Equal(t, tc.wantLevel, level)
			assert.Equal(t, tc.wantContent, content)
		})
	}
}

func TestStdinSource(t *testing.T) {
	input := "first line\n\n[ERROR] second line\n   \nwarn: third\n"
	src := NewStdinSource(StdinOptions{
		Reader:    strings.NewReader(input),
		Namespace: "pipe",
		Level:     core.LevelDebug,
	}, newTestLogger())

	ch := src.Subscribe()
	require.NoError(t, src.Start())

	msgs := collect(t, ch)
	require.Len(t, msgs, 3)
	assert.Equal(t, core.Message{Content: "first line", Level: core.LevelDebug, Namespace: "pipe"}, msgs[0])
	assert.Equal(t, core.Message{Content: "second line", Level: core.LevelError, Namespace: "pipe"}, msgs[1])
	assert.Equal(t, core.Message{Content: "third", Level: core.LevelWarn, Namespace: "pipe"}, msgs[2])

	stats := src.GetStats()
	assert.Equal(t, "stdin", stats.Type)
	assert.Equal(t, uint64(3), stats.TotalEntries)
	assert.Equal(t, uint64(2), stats.SkippedLines)
	assert.False(t, stats.LastEntryTime.IsZero())
}

func TestStdinSource_Defaults(t *testing.T) {
	src := NewStdinSource(StdinOptions{Reader: strings.NewReader("")}, newTestLogger())
	assert.Equal(t, "stdin", src.namespace)
	assert.Equal(t, core.LevelInfo, src.level)
	assert.Equal(t, int64(1000), src.bufferSize)
}

func TestStdinSource_StopUnblocksPublish(t *testing.T) {
	pr, pw := io.Pipe()
	src := NewStdinSource(StdinOptions{Reader: pr, BufferSize: 1}, newTestLogger())
	ch := src.Subscribe()
	require.NoError(t, src.Start())

	go func() {
		for i := 0; i < 5; i++ {
			if _, err := pw.Write([]byte("line\n")); err != nil {
				return
			}
		}
	}()

	require.Eventually(t, func() bool { return src.GetStats().TotalEntries >= 2 }, 2*time.Second, 5*time.Millisecond)
	src.Stop()
	src.Stop()

	msgs := collect(t, ch)
	assert.NotEmpty(t, msgs)
	assert.Less(t, len(msgs), 5)
	pw.Close()
}

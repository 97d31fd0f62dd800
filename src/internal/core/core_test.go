// FILE: logroute/src/internal/core/core_test.go
package core

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Run("KnownNames", func(t *testing.T) {
		for _, l := range Levels() {
			parsed, err := ParseLevel(strings.ToLower(l.String()))
			require.NoError(t, err)
			assert.Equal(t, l, parsed)
		}
	})

	t.Run("UnknownName", func(t *testing.T) {
		_, err := ParseLevel("TRACE")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrConfiguration)
	})
}

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name  string
		msg   Message
		field string
	}{
		{"MissingContent", Message{Level: LevelInfo, Namespace: "app"}, "content"},
		{"MissingLevel", Message{Content: "x", Namespace: "app"}, "level"},
		{"UnknownLevel", Message{Content: "x", Level: Level(42), Namespace: "app"}, "level"},
		{"MissingNamespace", Message{Content: "x", Level: LevelInfo}, "namespace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			require.Error(t, err)
			assert.True(t, IsValidation(err))

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	t.Run("Valid", func(t *testing.T) {
		_, err := NewMessage("hello", LevelWarn, "app")
		assert.NoError(t, err)
	})
}

func TestNewEvent(t *testing.T) {
	before := time.Now().UnixMilli()
	ev := NewEvent(Message{Content: "c", Level: LevelDebug, Namespace: "ns"}, "HH:mm")
	after := time.Now().UnixMilli()

	assert.Equal(t, LevelDebug, ev.Level)
	assert.Equal(t, "c", ev.Content)
	assert.Equal(t, "ns", ev.Namespace)
	assert.Equal(t, "HH:mm", ev.TimestampFormat)
	assert.GreaterOrEqual(t, ev.Timestamp, before)
	assert.LessOrEqual(t, ev.Timestamp, after)
	assert.True(t, strings.HasPrefix(ev.Thread, "goroutine-"))
	assert.NotEqual(t, "goroutine-unknown", ev.Thread)

	t.Run("OriginOverridesThread", func(t *testing.T) {
		ev := NewEvent(Message{Content: "c", Level: LevelDebug, Namespace: "ns", Origin: "worker-1"}, "")
		assert.Equal(t, "worker-1", ev.Thread)
	})
}

func TestEvent_SetFormattedOnce(t *testing.T) {
	ev := NewEvent(Message{Content: "c", Level: LevelInfo, Namespace: "ns"}, "")
	assert.False(t, ev.IsFormatted())
	assert.Equal(t, "", ev.Formatted())

	assert.True(t, ev.SetFormatted("first"))
	assert.False(t, ev.SetFormatted("second"))
	assert.Equal(t, "first", ev.Formatted())
}

func TestGoroutineName_DistinctPerGoroutine(t *testing.T) {
	var wg sync.WaitGroup
	names := make([]string, 2)
	for i := range names {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			names[i] = GoroutineName()
		}(i)
	}
	wg.Wait()
	assert.NotEqual(t, names[0], names[1])
	assert.NotEqual(t, GoroutineName(), names[0])
}

func TestErrors(t *testing.T) {
	t.Run("SinkIOUnwraps", func(t *testing.T) {
		base := fmt.Errorf("disk full")
		err := WithSinkIO(base, "file", "write")
		assert.ErrorIs(t, err, ErrSinkIO)
		assert.ErrorIs(t, err, base)
		assert.Contains(t, err.Error(), "sink file: write failed")
	})

	t.Run("ShutdownTimeoutMessage", func(t *testing.T) {
		err := &ShutdownTimeoutError{Sink: "async", Timeout: 1500 * time.Millisecond, Pending: 7}
		assert.ErrorIs(t, err, ErrShutdownTimeout)
		assert.Equal(t,
			"Max queue flush timeout (1500 ms) exceeded. Approximately 7 queued events will be discarded.",
			err.Error())
	})

	t.Run("ConfigurationWraps", func(t *testing.T) {
		base := fmt.Errorf("boom")
		err := WithConfiguration(base, "sink type file")
		assert.ErrorIs(t, err, ErrConfiguration)
		assert.ErrorIs(t, err, base)
		assert.False(t, IsValidation(err))
	})
}

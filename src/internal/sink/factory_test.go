// FILE: logroute/src/internal/sink/factory_test.go
package sink

import (
	"testing"

	"logroute/src/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	testCases := []struct {
		name    string
		kind    Kind
		raw     string
		want    any
		wantErr bool
	}{
		{"String", KindString, " value ", "value", false},
		{"Int", KindInt, "42", 42, false},
		{"IntInvalid", KindInt, "forty", nil, true},
		{"BoolTrueMixedCase", KindBool, "TrUe", true, false},
		{"BoolFalse", KindBool, "false", false, false},
		{"BoolInvalid", KindBool, "yes", nil, true},
		{"Strings", KindStrings, "a, b ,c", []string{"a", "b", "c"}, false},
		{"StringsEmpty", KindStrings, "", []string{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Convert(tc.kind, tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRegistry_Build(t *testing.T) {
	quietDiag(t)
	r := DefaultRegistry()

	t.Run("Types", func(t *testing.T) {
		assert.Equal(t, []string{"console", "file", "fileextra", "http", "rolling", "tcp"}, r.Types())
	})

	t.Run("FileWithProperties", func(t *testing.T) {
		s, err := r.Build("file", Properties{
			"file_location": " /var/log/logger/info.log ",
			"append":        "false",
			"buffered":      "TRUE",
			"unrelated":     "ignored",
		})
		require.NoError(t, err)

		fs, ok := s.(*FileSink)
		require.True(t, ok)
		assert.Equal(t, "/var/log/logger/info.log", fs.Location())
		assert.False(t, fs.append)
		assert.True(t, fs.buffered)
		assert.Equal(t, "file", fs.Name())
		assert.False(t, fs.IsStarted(), "built sinks are not started")
	})

	t.Run("InvalidPropertySkipped", func(t *testing.T) {
		s, err := r.Build("file", Properties{"file_location": "/tmp/x.log", "append": "maybe"})
		require.NoError(t, err)
		assert.True(t, s.(*FileSink).append, "default kept")
	})

	t.Run("FileExtra", func(t *testing.T) {
		s, err := r.Build("fileextra", Properties{"file_location": "/tmp/e.log", "file_extra": "[node-1]"})
		require.NoError(t, err)
		fe, ok := s.(*FileExtraSink)
		require.True(t, ok)
		assert.Equal(t, "/tmp/e.log", fe.Location())
		assert.Equal(t, "[node-1]", fe.Extra())
		assert.Equal(t, "fileextra", fe.Name())
	})

	t.Run("NetworkSinks", func(t *testing.T) {
		s, err := r.Build("http", Properties{"url": "http://collector/logs", "timeout_ms": "250"})
		require.NoError(t, err)
		assert.Equal(t, "http:http://collector/logs", s.Key())

		s, err = r.Build("tcp", Properties{"host": "0.0.0.0", "port": "9123"})
		require.NoError(t, err)
		assert.Equal(t, "tcp:0.0.0.0:9123", s.Key())
	})

	t.Run("TypeIsCaseInsensitive", func(t *testing.T) {
		s, err := r.Build(" Console ", nil)
		require.NoError(t, err)
		assert.Equal(t, "console", s.Key())
		assert.Equal(t, "console", s.Name())
	})

	t.Run("UnknownType", func(t *testing.T) {
		_, err := r.Build("kafka", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrConfiguration)
	})

	t.Run("EmptyType", func(t *testing.T) {
		_, err := r.Build("", nil)
		assert.ErrorIs(t, err, core.ErrConfiguration)
	})

	t.Run("SinkClassOverride", func(t *testing.T) {
		s, err := r.Build("file", Properties{"sink_class": "FileSink", "file_location": "/tmp/a.log"})
		require.NoError(t, err)
		_, ok := s.(*FileSink)
		assert.True(t, ok)
	})

	t.Run("SinkClassTypeMismatch", func(t *testing.T) {
		_, err := r.Build("file", Properties{"sink_class": "ConsoleSink"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not \"file\"")
	})

	t.Run("SinkClassUnknown", func(t *testing.T) {
		_, err := r.Build("file", Properties{"sink_class": "NoSuchSink"})
		assert.ErrorIs(t, err, core.ErrConfiguration)
	})
}

func TestRegistry_AlternateClass(t *testing.T) {
	r := DefaultRegistry()
	require.NoError(t, r.Register(Entry{
		Type:  "file",
		Class: "AuditFileSink",
		New:   func() Sink { return NewFileExtraSink("", "audit") },
		Params: []Param{
			StringParam("file_location", func(f *FileExtraSink, v string) { f.SetLocation(v) }),
		},
	}))

	s, err := r.Build("file", Properties{"file_location": "/tmp/audit.log"})
	require.NoError(t, err)
	_, isPlain := s.(*FileSink)
	assert.True(t, isPlain, "type default stays the first registered class")

	s, err = r.Build("file", Properties{"sink_class": "AuditFileSink", "file_location": "/tmp/audit.log"})
	require.NoError(t, err)
	fe, ok := s.(*FileExtraSink)
	require.True(t, ok)
	assert.Equal(t, "audit", fe.Extra())
	assert.Equal(t, "file", fe.Name())

	t.Run("DuplicateClassRejected", func(t *testing.T) {
		err := r.Register(Entry{Type: "file", Class: "AuditFileSink", New: func() Sink { return NewFileSink("") }})
		assert.Error(t, err)
	})
}

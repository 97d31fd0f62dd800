// FILE: logroute/src/internal/source/stdin.go
package source

import (
	"bufio"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"logroute/src/internal/core"

	"github.com/lixenwraith/log"
)

type StdinOptions struct {
	// Input stream, os.Stdin when nil
	Reader io.Reader

	// Namespace attached to every message
	Namespace string

	// Level for lines without a level prefix
	Level core.Level

	// Subscriber channel capacity
	BufferSize int64
}

// Reads messages line by line from standard input
type StdinSource struct {
	reader    io.Reader
	namespace string
	level     core.Level

	subscribers []chan core.Message
	subMu       sync.Mutex
	done        chan struct{}
	stopOnce    sync.Once

	totalEntries  atomic.Uint64
	skippedLines  atomic.Uint64
	bufferSize    int64
	startTime     time.Time
	lastEntryTime atomic.Value // time.Time
	logger        *log.Logger
}

func NewStdinSource(opts StdinOptions, logger *log.Logger) *StdinSource {
	bufferSize := int64(1000)
	if opts.BufferSize > 0 {
		bufferSize = opts.BufferSize
	}
	reader := opts.Reader
	if reader == nil {
		reader = os.Stdin
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = "stdin"
	}
	level := opts.Level
	if !level.Valid() {
		level = core.DefaultLevel
	}

	source := &StdinSource{
		reader:     reader,
		namespace:  namespace,
		level:      level,
		bufferSize: bufferSize,
		done:       make(chan struct{}),
		logger:     logger,
		startTime:  time.Now(),
	}
	source.lastEntryTime.Store(time.Time{})
	return source
}

// Subscribe must be called before Start.
func (s *StdinSource) Subscribe() <-chan core.Message {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	ch := make(chan core.Message, s.bufferSize)
	s.subscribers = append(s.subscribers, ch)
	return ch
}

func (s *StdinSource) Start() error {
	go s.readLoop()
	s.logger.Info("msg", "Stdin source started",
		"component", "stdin_source",
		"namespace", s.namespace,
		"default_level", s.level.String())
	return nil
}

// Stop ends delivery. A read already blocked on the input returns on the
// next line or EOF.
func (s *StdinSource) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.logger.Info("msg", "Stdin source stopped", "component", "stdin_source")
	})
}

func (s *StdinSource) GetStats() SourceStats {
	lastEntry, _ := s.lastEntryTime.Load().(time.Time)

	return SourceStats{
		Type:          "stdin",
		TotalEntries:  s.totalEntries.Load(),
		SkippedLines:  s.skippedLines.Load(),
		StartTime:     s.startTime,
		LastEntryTime: lastEntry,
		Details: map[string]any{
			"namespace": s.namespace,
		},
	}
}

func (s *StdinSource) readLoop() {
	defer s.closeSubscribers()

	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-s.done:
			return
		default:
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			s.skippedLines.Add(1)
			continue
		}

		level, content := ParseLine(line, s.level)
		msg := core.Message{Content: content, Level: level, Namespace: s.namespace}
		if !s.publish(msg) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		s.logger.Error("msg", "Scanner error reading stdin",
			"component", "stdin_source",
			"error", err)
	}
}

// publish blocks until every subscriber has the message or the source stops.
func (s *StdinSource) publish(msg core.Message) bool {
	s.totalEntries.Add(1)
	s.lastEntryTime.Store(time.Now())

	s.subMu.Lock()
	subs := s.subscribers
	s.subMu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- msg:
		case <-s.done:
			return false
		}
	}
	return true
}

func (s *StdinSource) closeSubscribers() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
}

var levelAliases = map[string]core.Level{
	"FATAL":   core.LevelFatal,
	"CRIT":    core.LevelFatal,
	"ERROR":   core.LevelError,
	"ERR":     core.LevelError,
	"WARN":    core.LevelWarn,
	"WARNING": core.LevelWarn,
	"INFO":    core.LevelInfo,
	"INF":     core.LevelInfo,
	"DEBUG":   core.LevelDebug,
	"DBG":     core.LevelDebug,
	"TRACE":   core.LevelDebug,
}

// ParseLine splits a leading level token ("ERROR", "[WARN]", "info:") from
// the line. Lines without one, or with nothing after it, keep fallback.
func ParseLine(line string, fallback core.Level) (core.Level, string) {
	trimmed := strings.TrimLeft(line, " \t")
	end := strings.IndexAny(trimmed, " \t")
	if end < 0 {
		return fallback, line
	}

	token := strings.TrimSuffix(trimmed[:end], ":")
	if strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]") {
		token = token[1 : len(token)-1]
	}
	rest := strings.TrimLeft(trimmed[end:], " \t")

	if level, ok := levelAliases[strings.ToUpper(token)]; ok && rest != "" {
		return level, rest
	}
	return fallback, line
}

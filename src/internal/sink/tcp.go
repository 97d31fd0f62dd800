// FILE: logroute/src/internal/sink/tcp.go
package sink

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"logroute/src/internal/core"
	"logroute/src/internal/diag"

	"github.com/lixenwraith/log/compat"
	"github.com/panjf2000/gnet/v2"
)

const (
	defaultTCPHost      = "127.0.0.1"
	tcpBootTimeout      = 2 * time.Second
	tcpShutdownTimeout  = 2 * time.Second
	maxConsecutiveFails = 3
)

// TCPSink streams lines to every connected TCP client.
type TCPSink struct {
	name string
	host string
	port int64

	server   *tcpServer
	engine   *gnet.Engine
	engineMu sync.Mutex
	stopped  chan struct{}

	lifecycleMu sync.Mutex
	started     atomic.Bool
	activeConns atomic.Int64

	consecutiveWriteErrors map[gnet.Conn]int
	errorMu                sync.Mutex
}

// NewTCPSink creates a sink serving lines to TCP clients on host:port.
// An empty host listens on the default address.
func NewTCPSink(host string, port int64) *TCPSink {
	if host == "" {
		host = defaultTCPHost
	}
	return &TCPSink{
		name: "tcp",
		host: host,
		port: port,
	}
}

func (t *TCPSink) Name() string        { return t.name }
func (t *TCPSink) SetName(name string) { t.name = name }
func (t *TCPSink) IsStarted() bool     { return t.started.Load() }

func (t *TCPSink) Key() string {
	return fmt.Sprintf("tcp:%s:%d", t.host, t.port)
}

// SetHost and SetPort are only valid before Init.
func (t *TCPSink) SetHost(host string) { t.host = host }
func (t *TCPSink) SetPort(port int)    { t.port = int64(port) }

// ActiveConnections returns the number of connected clients.
func (t *TCPSink) ActiveConnections() int64 {
	return t.activeConns.Load()
}

func (t *TCPSink) Init() error {
	t.lifecycleMu.Lock()
	defer t.lifecycleMu.Unlock()

	if t.started.Load() {
		return nil
	}
	if t.port < 1 || t.port > 65535 {
		err := core.WithSinkIO(fmt.Errorf("invalid port %d", t.port), t.name, "init")
		diag.Error("tcp_sink", "Cannot start TCP server", "sink", t.name, "error", err)
		return err
	}

	booted := make(chan struct{})
	t.server = &tcpServer{
		sink:    t,
		clients: make(map[gnet.Conn]struct{}),
		booted:  booted,
	}
	t.consecutiveWriteErrors = make(map[gnet.Conn]int)
	t.stopped = make(chan struct{})

	addr := fmt.Sprintf("tcp://%s:%d", t.host, t.port)
	gnetLogger := compat.NewGnetAdapter(diag.Logger())

	errChan := make(chan error, 1)
	stopped := t.stopped
	go func() {
		defer close(stopped)
		err := gnet.Run(t.server, addr,
			gnet.WithLogger(gnetLogger),
			gnet.WithMulticore(true),
			gnet.WithReusePort(true),
		)
		if err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		err = core.WithSinkIO(err, t.name, "init")
		diag.Error("tcp_sink", "TCP server failed", "sink", t.name, "addr", addr, "error", err)
		return err
	case <-booted:
	case <-time.After(tcpBootTimeout):
		t.stopEngine()
		err := core.WithSinkIO(fmt.Errorf("server did not boot within %v", tcpBootTimeout), t.name, "init")
		diag.Error("tcp_sink", "TCP server failed", "sink", t.name, "addr", addr, "error", err)
		return err
	}

	t.started.Store(true)
	return nil
}

func (t *TCPSink) Write(ev *core.Event) {
	if !t.started.Load() {
		diag.Error("tcp_sink", "Write on sink that is not started", "sink", t.name)
		return
	}
	t.broadcast([]byte(lineOf(ev) + "\n"))
}

func (t *TCPSink) Flush() error {
	return nil
}

func (t *TCPSink) Close() error {
	t.lifecycleMu.Lock()
	defer t.lifecycleMu.Unlock()

	if !t.started.Swap(false) {
		return nil
	}
	if err := t.stopEngine(); err != nil {
		err = core.WithSinkIO(err, t.name, "close")
		diag.Error("tcp_sink", "Failed to stop TCP server", "sink", t.name, "error", err)
		return err
	}
	select {
	case <-t.stopped:
	case <-time.After(tcpShutdownTimeout):
		diag.Warn("tcp_sink", "TCP server did not exit in time", "sink", t.name)
	}
	return nil
}

func (t *TCPSink) stopEngine() error {
	t.engineMu.Lock()
	engine := t.engine
	t.engine = nil
	t.engineMu.Unlock()

	if engine == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), tcpShutdownTimeout)
	defer cancel()
	return engine.Stop(ctx)
}

// broadcast queues data on every client connection.
func (t *TCPSink) broadcast(data []byte) {
	t.server.mu.RLock()
	defer t.server.mu.RUnlock()

	for conn := range t.server.clients {
		conn.AsyncWrite(data, func(c gnet.Conn, err error) error {
			if err != nil {
				t.handleWriteError(c, err)
			} else {
				t.errorMu.Lock()
				delete(t.consecutiveWriteErrors, c)
				t.errorMu.Unlock()
			}
			return nil
		})
	}
}

// handleWriteError closes a connection after repeated write failures.
func (t *TCPSink) handleWriteError(c gnet.Conn, err error) {
	t.errorMu.Lock()
	defer t.errorMu.Unlock()

	t.consecutiveWriteErrors[c]++
	count := t.consecutiveWriteErrors[c]

	if count >= maxConsecutiveFails {
		diag.Warn("tcp_sink", "Closing connection due to repeated write errors",
			"sink", t.name,
			"remote_addr", c.RemoteAddr().String(),
			"error", core.WithSinkIO(err, t.name, "write"))
		delete(t.consecutiveWriteErrors, c)
		c.Close()
	}
}

// tcpServer implements gnet.EventHandler for the TCP sink.
type tcpServer struct {
	gnet.BuiltinEventEngine
	sink    *TCPSink
	clients map[gnet.Conn]struct{}
	mu      sync.RWMutex
	booted  chan struct{}
}

func (s *tcpServer) OnBoot(eng gnet.Engine) gnet.Action {
	s.sink.engineMu.Lock()
	s.sink.engine = &eng
	s.sink.engineMu.Unlock()
	close(s.booted)
	return gnet.None
}

func (s *tcpServer) OnOpen(c gnet.Conn) (out []byte, action gnet.Action) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.sink.activeConns.Add(1)
	return nil, gnet.None
}

func (s *tcpServer) OnClose(c gnet.Conn, err error) gnet.Action {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()

	s.sink.errorMu.Lock()
	delete(s.sink.consecutiveWriteErrors, c)
	s.sink.errorMu.Unlock()

	s.sink.activeConns.Add(-1)
	return gnet.None
}

// OnTraffic discards anything clients send.
func (s *tcpServer) OnTraffic(c gnet.Conn) gnet.Action {
	c.Discard(-1)
	return gnet.None
}

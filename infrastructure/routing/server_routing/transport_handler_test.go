package server_routing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"memtap/application"
	"memtap/domain/proc"
	"memtap/infrastructure/protocol"
	"memtap/infrastructure/settings"
)

type stubConn struct {
	mu       sync.Mutex
	inbound  [][]byte
	outbound [][]byte
	done     chan struct{}
}

func newStubConn(frames ...[]byte) *stubConn {
	return &stubConn{inbound: frames, done: make(chan struct{})}
}

func (c *stubConn) Read(buffer []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.inbound) == 0 {
		return 0, io.EOF
	}
	frame := c.inbound[0]
	c.inbound = c.inbound[1:]
	return copy(buffer, frame), nil
}

func (c *stubConn) Write(data []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outbound = append(c.outbound, append([]byte(nil), data...))
	return len(data), nil
}

func (c *stubConn) Close() error {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	return nil
}

func (c *stubConn) responses() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.outbound
}

// stubListener hands out queued connections, then reports closure.
type stubListener struct {
	conns  chan application.FrameAdapter
	closed chan struct{}
	once   sync.Once
}

func newStubListener(conns ...application.FrameAdapter) *stubListener {
	l := &stubListener{
		conns:  make(chan application.FrameAdapter, len(conns)),
		closed: make(chan struct{}),
	}
	for _, conn := range conns {
		l.conns <- conn
	}
	return l
}

func (l *stubListener) Accept() (application.FrameAdapter, error) {
	select {
	case conn := <-l.conns:
		return conn, nil
	case <-l.closed:
		return nil, net.ErrClosed
	}
}

func (l *stubListener) Close() error {
	l.once.Do(func() { close(l.closed) })
	return nil
}

type stubRepo struct{}

func (stubRepo) RunningProcesses() ([]proc.Entry, error) {
	return []proc.Entry{{Name: "init", Pid: 1}}, nil
}

func (stubRepo) Regions(int32) ([]proc.Region, error) {
	return nil, errors.New("not implemented")
}

type stubMemory struct{ pid int32 }

func (m *stubMemory) Pid() int32 { return m.pid }

func (m *stubMemory) SetPid(pid int32) { m.pid = pid }

func (m *stubMemory) Read(uint64, uint32) ([]byte, error) {
	if m.pid != proc.UnboundPid {
		return nil, errors.New("bad address")
	}
	return nil, errors.New("PID not set!")
}

func (m *stubMemory) ReadUint(uint64, uint8) (uint64, error) {
	return 0, errors.New("PID not set!")
}

func (m *stubMemory) ReadInt(uint64, uint8) (int64, error) {
	return 0, errors.New("PID not set!")
}

func (m *stubMemory) Write(uint64, []byte) (uint64, error) {
	return 0, errors.New("PID not set!")
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

func newHandler(ctx context.Context, listener application.FrameListener) *TransportHandler {
	return NewTransportHandler(
		ctx,
		settings.Settings{ListenAddr: "127.0.0.1:0", Protocol: settings.TCP},
		listener,
		stubRepo{},
		func() application.Memory { return &stubMemory{pid: proc.UnboundPid} },
		noopLogger{},
	)
}

func TestTransportHandler_ServesAcceptedConnection(t *testing.T) {
	conn := newStubConn(protocol.ProcessesRequest{}.Encode())
	listener := newStubListener(conn)

	handlerDone := make(chan error, 1)
	go func() {
		handlerDone <- newHandler(context.Background(), listener).HandleTransport()
	}()

	select {
	case <-conn.done:
	case <-time.After(2 * time.Second):
		t.Fatal("session never completed")
	}

	responses := conn.responses()
	if len(responses) != 1 {
		t.Fatalf("response count = %d, want 1", len(responses))
	}
	decoded, err := protocol.DecodeProcessesResponse(responses[0])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded.Processes) != 1 || decoded.Processes[0].Pid != 1 {
		t.Fatalf("unexpected process list: %+v", decoded.Processes)
	}

	_ = listener.Close()
	select {
	case err := <-handlerDone:
		if err != nil {
			t.Fatalf("HandleTransport: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not exit after listener close")
	}
}

func TestTransportHandler_ContextCancelStopsAcceptLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	listener := newStubListener()

	handlerDone := make(chan error, 1)
	go func() {
		handlerDone <- newHandler(ctx, listener).HandleTransport()
	}()

	cancel()
	select {
	case err := <-handlerDone:
		if err != nil {
			t.Fatalf("HandleTransport: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not exit on context cancel")
	}
}

func TestTransportHandler_SessionsAreIndependent(t *testing.T) {
	bindFrame := protocol.TargetPidRequest{TargetPid: 7}.Encode()
	first := newStubConn(bindFrame)
	second := newStubConn(protocol.ReadVecRequest{Address: 1, Size: 1}.Encode())
	listener := newStubListener(first, second)

	go func() { _ = newHandler(context.Background(), listener).HandleTransport() }()

	for _, conn := range []*stubConn{first, second} {
		select {
		case <-conn.done:
		case <-time.After(2 * time.Second):
			t.Fatal("session never completed")
		}
	}
	_ = listener.Close()

	// The second session must still be unbound: its read is rejected.
	responses := second.responses()
	if len(responses) != 1 {
		t.Fatalf("response count = %d, want 1", len(responses))
	}
	decoded, err := protocol.DecodeErrorPacket(responses[0])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Message != fmt.Sprintf("Error: %s", "PID not set!") {
		t.Fatalf("message = %q", decoded.Message)
	}
}

package server_routing

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"

	"memtap/application"
	"memtap/infrastructure/logging"
	"memtap/infrastructure/session"
	"memtap/infrastructure/settings"
)

var _ application.TransportHandler = (*TransportHandler)(nil)

// TransportHandler accepts framed client connections and runs one
// independent session per connection. Sessions share nothing; the kernel is
// the only shared resource.
type TransportHandler struct {
	ctx           context.Context
	settings      settings.Settings
	listener      application.FrameListener
	processes     application.ProcessRepository
	memoryFactory func() application.Memory
	logger        application.Logger
	sessionSeq    atomic.Uint64
}

func NewTransportHandler(
	ctx context.Context,
	settings settings.Settings,
	listener application.FrameListener,
	processes application.ProcessRepository,
	memoryFactory func() application.Memory,
	logger application.Logger,
) *TransportHandler {
	return &TransportHandler{
		ctx:           ctx,
		settings:      settings,
		listener:      listener,
		processes:     processes,
		memoryFactory: memoryFactory,
		logger:        logger,
	}
}

func (t *TransportHandler) HandleTransport() error {
	defer func() {
		_ = t.listener.Close()
	}()
	t.logger.Printf("agent listening on %s (%s)", t.settings.ListenAddr, t.settings.Protocol)

	// unblocks the Accept call when the context ends
	go func() {
		<-t.ctx.Done()
		_ = t.listener.Close()
	}()

	for {
		conn, listenErr := t.listener.Accept()
		if t.ctx.Err() != nil {
			t.logger.Printf("exiting accept loop: %s", t.ctx.Err())
			return nil
		}
		if errors.Is(listenErr, net.ErrClosed) {
			return nil
		}
		if listenErr != nil {
			t.logger.Printf("failed to accept connection: %v", listenErr)
			continue
		}
		go t.serveClient(conn)
	}
}

// serveClient owns one connection for its whole life. Each client gets a
// fresh memory adapter so pid bindings never leak between sessions.
func (t *TransportHandler) serveClient(conn application.FrameAdapter) {
	logger := logging.NewPrefixedLogger(
		fmt.Sprintf("session %d", t.sessionSeq.Add(1)),
		t.logger,
	)
	logger.Printf("client connected")
	session.NewSession(conn, t.memoryFactory(), t.processes, logger).Serve()
	logger.Printf("client disconnected")
}

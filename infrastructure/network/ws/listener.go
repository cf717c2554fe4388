package ws

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"memtap/application"
	"memtap/infrastructure/network"
)

const acceptQueueSize = 64

var _ application.FrameListener = (*Listener)(nil)

// Listener upgrades HTTP connections on /ws and queues them as frame
// adapters. It exists for browser-resident clients, which cannot open raw
// TCP sockets.
type Listener struct {
	ctx        context.Context
	httpServer *http.Server
	logger     application.Logger

	queue     chan application.FrameAdapter
	closed    chan struct{}
	closeOnce sync.Once
}

func NewListener(ctx context.Context, listener net.Listener, logger application.Logger) *Listener {
	l := &Listener{
		ctx:    ctx,
		logger: logger,
		queue:  make(chan application.FrameAdapter, acceptQueueSize),
		closed: make(chan struct{}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", l.handleUpgrade)
	l.httpServer = &http.Server{
		Handler: mux,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := l.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Printf("ws server stopped: %v", err)
		}
		l.markClosed()
	}()
	go func() {
		<-ctx.Done()
		_ = l.Close()
	}()

	return l
}

func (l *Listener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		l.logger.Printf("ws upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}
	conn.SetReadLimit(network.MaxFrameLengthBytes)

	select {
	case l.queue <- NewAdapter(l.ctx, conn):
	default:
		_ = conn.Close(websocket.StatusTryAgainLater, "accept queue full")
	}
}

func (l *Listener) Accept() (application.FrameAdapter, error) {
	select {
	case adapter := <-l.queue:
		return adapter, nil
	case <-l.closed:
		return nil, net.ErrClosed
	}
}

func (l *Listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		// Shutdown closes the net listener too.
		err = l.httpServer.Shutdown(shutdownCtx)
		l.markClosed()
	})
	return err
}

func (l *Listener) markClosed() {
	select {
	case <-l.closed:
	default:
		close(l.closed)
	}
}

package tcp_listener

import (
	"fmt"

	"memtap/application"
	"memtap/application/listeners"
	"memtap/infrastructure/network/tcp/adapters"
)

var _ application.FrameListener = (*FramedListener)(nil)

// FramedListener accepts raw TCP connections and hands them out wrapped in
// the u32-BE outer framing the protocol travels under on stream transports.
type FramedListener struct {
	listener listeners.TcpListener
}

func NewFramedListener(listener listeners.TcpListener) *FramedListener {
	return &FramedListener{listener: listener}
}

func (l *FramedListener) Accept() (application.FrameAdapter, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		return nil, err
	}
	adapter, err := adapters.NewLengthPrefixFramingAdapter(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("wrap accepted connection: %w", err)
	}
	return adapter, nil
}

func (l *FramedListener) Close() error {
	return l.listener.Close()
}

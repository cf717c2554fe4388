package ws

import (
	"context"
	"io"

	"github.com/coder/websocket"

	"memtap/application"
)

var _ application.FrameAdapter = (*Adapter)(nil)

// Adapter carries protocol frames as binary WebSocket messages, one frame
// per message. WS messages are already delimited, so no outer length prefix
// is added: browser clients see exactly the inner frame bytes.
type Adapter struct {
	ctx  context.Context
	conn *websocket.Conn
}

func NewAdapter(ctx context.Context, conn *websocket.Conn) *Adapter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Adapter{ctx: ctx, conn: conn}
}

// Read returns the next binary message. Text and empty messages are skipped:
// control traffic is not protocol data.
func (a *Adapter) Read(buffer []byte) (int, error) {
	for {
		msgType, data, err := a.conn.Read(a.ctx)
		if err != nil {
			return 0, err
		}
		if msgType != websocket.MessageBinary || len(data) == 0 {
			continue
		}
		if len(data) > len(buffer) {
			return 0, io.ErrShortBuffer
		}
		return copy(buffer, data), nil
	}
}

func (a *Adapter) Write(data []byte) (int, error) {
	if err := a.conn.Write(a.ctx, websocket.MessageBinary, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (a *Adapter) Close() error {
	return a.conn.Close(websocket.StatusNormalClosure, "")
}

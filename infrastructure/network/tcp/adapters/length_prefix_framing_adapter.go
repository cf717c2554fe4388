package adapters

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"memtap/application"
	"memtap/infrastructure/network"
)

var _ application.FrameAdapter = (*LengthPrefixFramingAdapter)(nil)

// LengthPrefixFramingAdapter frames protocol bytes over a stream transport
// with a u32-BE outer length prefix. The prefix is a transport concern only;
// the inner frame bytes stay bit-exact. Not safe for concurrent Read/Write
// without external synchronization.
type LengthPrefixFramingAdapter struct {
	transport io.ReadWriteCloser

	// bufReader amortizes underlying Read syscalls: header + payload are
	// usually served from a single buffer refill.
	bufReader *bufio.Reader
	// pre-allocated header buffers keep per-frame allocations at zero
	readHeaderBuffer  [4]byte
	writeHeaderBuffer [4]byte
}

func NewLengthPrefixFramingAdapter(transport io.ReadWriteCloser) (*LengthPrefixFramingAdapter, error) {
	if transport == nil {
		return nil, fmt.Errorf("transport must not be nil")
	}
	return &LengthPrefixFramingAdapter{
		transport: transport,
		bufReader: bufio.NewReader(transport),
	}, nil
}

// Write sends one u32-BE length-prefixed frame. Returns len(data) on success.
// NOTE: on errors the adapter does NOT recover stream alignment; the caller
// must close the connection.
func (a *LengthPrefixFramingAdapter) Write(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, ErrZeroLengthFrame
	}
	if len(data) > network.MaxFrameLengthBytes {
		return 0, ErrFrameCapExceeded
	}
	binary.BigEndian.PutUint32(a.writeHeaderBuffer[:], uint32(len(data)))
	if err := writeFull(a.transport, a.writeHeaderBuffer[:]); err != nil {
		return 0, fmt.Errorf("write length prefix: %w", err)
	}
	if err := writeFull(a.transport, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if n > 0 {
			p = p[n:]
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
	}
	return nil
}

// Read reads exactly one frame into buffer and returns its size. A frame
// larger than buffer is drained to keep the stream aligned and reported as
// io.ErrShortBuffer; the next Read starts at the following frame.
func (a *LengthPrefixFramingAdapter) Read(buffer []byte) (int, error) {
	if _, err := io.ReadFull(a.bufReader, a.readHeaderBuffer[:]); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidLengthPrefixHeader, err)
	}
	length := int(binary.BigEndian.Uint32(a.readHeaderBuffer[:]))
	if length == 0 {
		return 0, ErrZeroLengthFrame
	}
	if length > network.MaxFrameLengthBytes {
		return 0, ErrFrameCapExceeded
	}
	if length > len(buffer) {
		if err := a.drainN(length); err != nil {
			return 0, err
		}
		return 0, io.ErrShortBuffer
	}
	if _, err := io.ReadFull(a.bufReader, buffer[:length]); err != nil {
		return 0, err
	}
	return length, nil
}

// drainN discards exactly n payload bytes so the next Read starts at a
// frame boundary.
func (a *LengthPrefixFramingAdapter) drainN(n int) error {
	_, err := io.CopyN(io.Discard, a.bufReader, int64(n))
	return err
}

func (a *LengthPrefixFramingAdapter) Close() error {
	return a.transport.Close()
}

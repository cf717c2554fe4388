package protocol

import (
	"encoding/binary"
	"unicode/utf8"
)

// reader consumes big-endian fields from one frame. Every accessor fails
// with ErrTruncatedPacket instead of reading past the payload.
type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) u8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, ErrTruncatedPacket
	}
	v := r.data[r.off]
	r.off++
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, ErrTruncatedPacket
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, ErrTruncatedPacket
	}
	v := binary.BigEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, nil
}

func (r *reader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *reader) i64() (int64, error) {
	v, err := r.u64()
	return int64(v), err
}

// bytes returns a copy of the next n payload bytes. The copy matters: frames
// are decoded out of reusable connection buffers.
func (r *reader) bytes(n uint32) ([]byte, error) {
	if uint64(n) > uint64(r.remaining()) {
		return nil, ErrTruncatedPacket
	}
	out := make([]byte, n)
	copy(out, r.data[r.off:r.off+int(n)])
	r.off += int(n)
	return out, nil
}

// str consumes one length-prefixed UTF-8 string.
func (r *reader) str() (string, error) {
	length, err := r.u32()
	if err != nil {
		return "", err
	}
	raw, err := r.bytes(length)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", ErrInvalidString
	}
	return string(raw), nil
}

// appendString appends a u32 byte-length prefix followed by the UTF-8 bytes.
// The prefix counts bytes, not code points.
func appendString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(s)))
	return append(buf, s...)
}

// header validates the leading tag byte and positions a reader after it.
// An Error tag surfaces the embedded message as a *RemoteError; any other
// mismatch is a protocol error.
func header(data []byte, want PacketType) (*reader, error) {
	if len(data) == 0 {
		return nil, ErrTruncatedPacket
	}
	tag, ok := PacketTypeFromByte(data[0])
	if !ok {
		return nil, ErrInvalidPacketType
	}
	if tag == PacketError && want != PacketError {
		body := &reader{data: data, off: 1}
		message, err := body.str()
		if err != nil {
			return nil, err
		}
		return nil, &RemoteError{Message: message}
	}
	if tag != want {
		return nil, ErrIncorrectPacketType
	}
	return &reader{data: data, off: 1}, nil
}

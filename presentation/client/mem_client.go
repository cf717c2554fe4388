package client

import (
	"fmt"
	"net"

	"memtap/application"
	"memtap/domain/proc"
	"memtap/infrastructure/network"
	"memtap/infrastructure/network/tcp/adapters"
	"memtap/infrastructure/protocol"
)

// MemClient is the typed client surface over one agent connection: list
// processes, bind a target, and read/write its memory. Narrow integer reads
// travel widened to 64 bits and are re-narrowed here. Not safe for
// concurrent use; the protocol is strictly request/response per connection.
type MemClient struct {
	conn   application.FrameAdapter
	buffer []byte
}

func NewMemClient(conn application.FrameAdapter) *MemClient {
	return &MemClient{
		conn:   conn,
		buffer: make([]byte, network.MaxFrameLengthBytes),
	}
}

// Dial connects to an agent over TCP with the u32-BE outer framing.
func Dial(addr string) (*MemClient, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	adapter, err := adapters.NewLengthPrefixFramingAdapter(conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return NewMemClient(adapter), nil
}

func (c *MemClient) Close() error {
	return c.conn.Close()
}

func (c *MemClient) roundTrip(request []byte) ([]byte, error) {
	if _, err := c.conn.Write(request); err != nil {
		return nil, err
	}
	n, err := c.conn.Read(c.buffer)
	if err != nil {
		return nil, err
	}
	return c.buffer[:n], nil
}

// Processes fetches the agent-side process list.
func (c *MemClient) Processes() ([]proc.Entry, error) {
	response, err := c.roundTrip(protocol.ProcessesRequest{}.Encode())
	if err != nil {
		return nil, err
	}
	decoded, err := protocol.DecodeProcessesResponse(response)
	if err != nil {
		return nil, err
	}
	return decoded.Processes, nil
}

// Regions binds pid as the connection's target and returns its memory map.
func (c *MemClient) Regions(pid int32) ([]proc.Region, error) {
	response, err := c.roundTrip(protocol.TargetPidRequest{TargetPid: pid}.Encode())
	if err != nil {
		return nil, err
	}
	decoded, err := protocol.DecodeRegionsResponse(response)
	if err != nil {
		return nil, err
	}
	return decoded.Regions, nil
}

func (c *MemClient) ReadVec(address uint64, size uint32) ([]byte, error) {
	response, err := c.roundTrip(protocol.ReadVecRequest{Address: address, Size: size}.Encode())
	if err != nil {
		return nil, err
	}
	decoded, err := protocol.DecodeReadVecResponse(response)
	if err != nil {
		return nil, err
	}
	return decoded.Data, nil
}

func (c *MemClient) ReadVecF32(address uint64, count uint8) ([]float32, error) {
	response, err := c.roundTrip(protocol.ReadVecF32Request{Address: address, Count: count}.Encode())
	if err != nil {
		return nil, err
	}
	decoded, err := protocol.DecodeReadVecF32Response(response)
	if err != nil {
		return nil, err
	}
	return decoded.Data, nil
}

func (c *MemClient) readUnsigned(address uint64, width uint8) (uint64, error) {
	response, err := c.roundTrip(protocol.ReadU64Request{Address: address, Width: width}.Encode())
	if err != nil {
		return 0, err
	}
	decoded, err := protocol.DecodeReadU64Response(response)
	if err != nil {
		return 0, err
	}
	return decoded.Value, nil
}

func (c *MemClient) readSigned(address uint64, width uint8) (int64, error) {
	response, err := c.roundTrip(protocol.ReadI64Request{Address: address, Width: width}.Encode())
	if err != nil {
		return 0, err
	}
	decoded, err := protocol.DecodeReadI64Response(response)
	if err != nil {
		return 0, err
	}
	return decoded.Value, nil
}

func (c *MemClient) ReadU8(address uint64) (uint8, error) {
	v, err := c.readUnsigned(address, 1)
	return uint8(v), err
}

func (c *MemClient) ReadU16(address uint64) (uint16, error) {
	v, err := c.readUnsigned(address, 2)
	return uint16(v), err
}

func (c *MemClient) ReadU32(address uint64) (uint32, error) {
	v, err := c.readUnsigned(address, 4)
	return uint32(v), err
}

func (c *MemClient) ReadU64(address uint64) (uint64, error) {
	return c.readUnsigned(address, 8)
}

func (c *MemClient) ReadI8(address uint64) (int8, error) {
	v, err := c.readSigned(address, 1)
	return int8(v), err
}

func (c *MemClient) ReadI16(address uint64) (int16, error) {
	v, err := c.readSigned(address, 2)
	return int16(v), err
}

func (c *MemClient) ReadI32(address uint64) (int32, error) {
	v, err := c.readSigned(address, 4)
	return int32(v), err
}

func (c *MemClient) ReadI64(address uint64) (int64, error) {
	return c.readSigned(address, 8)
}

// ReadPtr reads a 64-bit pointer; ok is false for a null pointer.
func (c *MemClient) ReadPtr(address uint64) (value uint64, ok bool, err error) {
	v, err := c.ReadU64(address)
	if err != nil || v == 0 {
		return 0, false, err
	}
	return v, true, nil
}

func (c *MemClient) Write(address uint64, data []byte) (uint64, error) {
	response, err := c.roundTrip(protocol.WriteRequest{Address: address, Bytes: data}.Encode())
	if err != nil {
		return 0, err
	}
	decoded, err := protocol.DecodeWriteResponse(response)
	if err != nil {
		return 0, err
	}
	return decoded.BytesWritten, nil
}

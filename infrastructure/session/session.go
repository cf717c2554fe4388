package session

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"memtap/application"
	"memtap/domain/proc"
	"memtap/infrastructure/network"
	"memtap/infrastructure/protocol"
)

// State of one client connection.
type State int

const (
	// StateNewBorn: freshly accepted, no target bound. Memory operations
	// are rejected with "PID not set!".
	StateNewBorn State = iota
	// StateTargetBound: a TargetPID request bound a real pid.
	StateTargetBound
)

// Session owns one client connection and its memory adapter, and serves
// requests strictly in arrival order: each response is written to completion
// before the next frame is read. Adapter failures become Error frames and the
// session continues; only transport failures end it.
type Session struct {
	conn      application.FrameAdapter
	memory    application.Memory
	processes application.ProcessRepository
	logger    application.Logger

	state  State
	buffer []byte
}

func NewSession(
	conn application.FrameAdapter,
	memory application.Memory,
	processes application.ProcessRepository,
	logger application.Logger,
) *Session {
	return &Session{
		conn:      conn,
		memory:    memory,
		processes: processes,
		logger:    logger,
		state:     StateNewBorn,
		buffer:    make([]byte, network.MaxFrameLengthBytes),
	}
}

func (s *Session) State() State {
	return s.state
}

// Serve pumps frames until EOF or a connection failure, then releases the
// connection. It never returns early on adapter errors.
func (s *Session) Serve() {
	defer func() {
		_ = s.conn.Close()
	}()

	for {
		n, err := s.conn.Read(s.buffer)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.logger.Printf("read failed: %v", err)
			}
			return
		}
		if n == 0 {
			continue
		}
		if !s.handle(s.buffer[:n]) {
			return
		}
	}
}

// handle dispatches one frame. The return value is false only when writing
// the response failed, which tears the session down.
func (s *Session) handle(frame []byte) bool {
	tag, ok := protocol.PacketTypeFromByte(frame[0])
	if !ok {
		s.logger.Printf("unknown packet type: %d", frame[0])
		return true
	}

	switch tag {
	case protocol.PacketReadVec:
		return s.handleReadVec(frame)
	case protocol.PacketReadVecF32:
		return s.handleReadVecF32(frame)
	case protocol.PacketReadU64:
		return s.handleReadU64(frame)
	case protocol.PacketReadI64:
		return s.handleReadI64(frame)
	case protocol.PacketWrite:
		return s.handleWrite(frame)
	case protocol.PacketTargetPID:
		return s.handleTargetPid(frame)
	case protocol.PacketSendProcesses:
		return s.handleSendProcesses(frame)
	default:
		// A response or error tag is never a valid request.
		s.logger.Printf("unexpected packet type: %s", tag)
		return true
	}
}

func (s *Session) handleReadVec(frame []byte) bool {
	request, err := protocol.DecodeReadVecRequest(frame)
	if err != nil {
		return s.writeError(err, false)
	}
	data, err := s.memory.Read(request.Address, request.Size)
	if err != nil {
		return s.writeError(err, false)
	}
	// The response adds a tag byte and a u32 count in front of the data.
	if len(data) > network.MaxFrameLengthBytes-5 {
		return s.writeError(errors.New("requested size exceeds the frame limit"), false)
	}
	return s.write(protocol.ReadVecResponse{Data: data}.Encode())
}

func (s *Session) handleReadVecF32(frame []byte) bool {
	request, err := protocol.DecodeReadVecF32Request(frame)
	if err != nil {
		return s.writeError(err, false)
	}
	raw, err := s.memory.Read(request.Address, uint32(request.Count)*4)
	if err != nil {
		return s.writeError(err, false)
	}
	// The bytes keep the target's memory semantics; the codec re-encodes
	// the values big-endian for transport.
	values := make([]float32, request.Count)
	for i := range values {
		values[i] = math.Float32frombits(binary.NativeEndian.Uint32(raw[i*4:]))
	}
	return s.write(protocol.ReadVecF32Response{Data: values}.Encode())
}

func (s *Session) handleReadU64(frame []byte) bool {
	request, err := protocol.DecodeReadU64Request(frame)
	if err != nil {
		return s.writeError(err, false)
	}
	value, err := s.memory.ReadUint(request.Address, request.Width)
	if err != nil {
		return s.writeError(err, false)
	}
	return s.write(protocol.ReadU64Response{Value: value}.Encode())
}

func (s *Session) handleReadI64(frame []byte) bool {
	request, err := protocol.DecodeReadI64Request(frame)
	if err != nil {
		return s.writeError(err, false)
	}
	value, err := s.memory.ReadInt(request.Address, request.Width)
	if err != nil {
		return s.writeError(err, false)
	}
	return s.write(protocol.ReadI64Response{Value: value}.Encode())
}

func (s *Session) handleWrite(frame []byte) bool {
	request, err := protocol.DecodeWriteRequest(frame)
	if err != nil {
		return s.writeError(err, false)
	}
	written, err := s.memory.Write(request.Address, request.Bytes)
	if err != nil {
		return s.writeError(err, false)
	}
	return s.write(protocol.WriteResponse{BytesWritten: written}.Encode())
}

// handleTargetPid does two things: it rebinds the session's target, then
// answers with the region list for that pid. The binding takes effect before
// the region lookup, so it survives a failed lookup and is visible to every
// subsequent request on this connection.
func (s *Session) handleTargetPid(frame []byte) bool {
	request, err := protocol.DecodeTargetPidRequest(frame)
	if err != nil {
		return s.writeError(err, true)
	}

	s.memory.SetPid(request.TargetPid)
	if request.TargetPid == proc.UnboundPid {
		s.state = StateNewBorn
	} else {
		s.state = StateTargetBound
	}

	regions, err := s.processes.Regions(request.TargetPid)
	if err != nil {
		return s.writeError(err, true)
	}
	wire, err := protocol.RegionsResponse{Regions: regions}.Encode()
	if err != nil {
		return s.writeError(err, true)
	}
	return s.write(wire)
}

func (s *Session) handleSendProcesses(frame []byte) bool {
	if _, err := protocol.DecodeProcessesRequest(frame); err != nil {
		return s.writeError(err, true)
	}
	processes, err := s.processes.RunningProcesses()
	if err != nil {
		return s.writeError(err, true)
	}
	wire, err := protocol.ProcessesResponse{Processes: processes}.Encode()
	if err != nil {
		return s.writeError(err, true)
	}
	return s.write(wire)
}

// writeError substitutes an Error frame for the expected response. The frame
// is compressed exactly when the success form it replaces is compressed, so
// the client knows how to decode it before looking at the bytes.
func (s *Session) writeError(cause error, compressed bool) bool {
	packet := protocol.ErrorPacket{Message: "Error: " + cause.Error()}
	if !compressed {
		return s.write(packet.Encode())
	}
	wire, err := packet.EncodeCompressed()
	if err != nil {
		s.logger.Printf("compress error frame: %v", err)
		return false
	}
	return s.write(wire)
}

func (s *Session) write(wire []byte) bool {
	if _, err := s.conn.Write(wire); err != nil {
		s.logger.Printf("write failed: %v", err)
		return false
	}
	return true
}

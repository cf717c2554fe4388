package procmem

import (
	"encoding/binary"
	"errors"

	"memtap/application"
	"memtap/domain/proc"
)

// Message texts travel to clients verbatim inside Error frames.
var (
	ErrPidNotSet    = errors.New("PID not set!")
	ErrPartialRead  = errors.New("Partial read occurred!")
	ErrPartialWrite = errors.New("Partial write occurred!")
	ErrBadWidth     = errors.New("Unsupported byte width")
)

var _ application.Memory = (*Memory)(nil)

// Memory performs vectored cross-process I/O against one target pid.
// One syscall per operation; no ptrace attach, so the target is never
// stopped. Partial transfers are treated as failures: a half-read of a
// forensic snapshot is worse than no read.
type Memory struct {
	pid int32
}

func NewMemory(pid int32) *Memory {
	return &Memory{pid: pid}
}

func (m *Memory) Pid() int32 {
	return m.pid
}

func (m *Memory) SetPid(pid int32) {
	m.pid = pid
}

func (m *Memory) ReadUint(address uint64, width uint8) (uint64, error) {
	if !proc.ValidWidth(width) {
		return 0, ErrBadWidth
	}
	data, err := m.Read(address, uint32(width))
	if err != nil {
		return 0, err
	}
	return widenUint(data), nil
}

func (m *Memory) ReadInt(address uint64, width uint8) (int64, error) {
	if !proc.ValidWidth(width) {
		return 0, ErrBadWidth
	}
	data, err := m.Read(address, uint32(width))
	if err != nil {
		return 0, err
	}
	return widenInt(data), nil
}

// Widening uses the host's natural byte order: the bytes keep the target's
// memory semantics, only the widened value is re-encoded for transport.

func widenUint(data []byte) uint64 {
	switch len(data) {
	case 1:
		return uint64(data[0])
	case 2:
		return uint64(binary.NativeEndian.Uint16(data))
	case 4:
		return uint64(binary.NativeEndian.Uint32(data))
	default:
		return binary.NativeEndian.Uint64(data)
	}
}

func widenInt(data []byte) int64 {
	switch len(data) {
	case 1:
		return int64(int8(data[0]))
	case 2:
		return int64(int16(binary.NativeEndian.Uint16(data)))
	case 4:
		return int64(int32(binary.NativeEndian.Uint32(data)))
	default:
		return int64(binary.NativeEndian.Uint64(data))
	}
}

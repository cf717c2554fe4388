package procmem

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"memtap/domain/proc"
)

func (m *Memory) Read(address uint64, size uint32) ([]byte, error) {
	if m.pid == proc.UnboundPid {
		return nil, ErrPidNotSet
	}
	buffer := make([]byte, size)
	if size == 0 {
		return buffer, nil
	}

	var local unix.Iovec
	local.Base = &buffer[0]
	local.SetLen(int(size))
	remote := []unix.RemoteIovec{{Base: uintptr(address), Len: int(size)}}
	n, err := unix.ProcessVMReadv(int(m.pid), []unix.Iovec{local}, remote, 0)
	if err != nil {
		return nil, errnoError(err)
	}
	if n != int(size) {
		return nil, ErrPartialRead
	}
	return buffer, nil
}

func (m *Memory) Write(address uint64, data []byte) (uint64, error) {
	if m.pid == proc.UnboundPid {
		return 0, ErrPidNotSet
	}
	if len(data) == 0 {
		return 0, nil
	}

	var local unix.Iovec
	local.Base = &data[0]
	local.SetLen(len(data))
	remote := []unix.RemoteIovec{{Base: uintptr(address), Len: len(data)}}
	n, err := unix.ProcessVMWritev(int(m.pid), []unix.Iovec{local}, remote, 0)
	if err != nil {
		return 0, errnoError(err)
	}
	if n != len(data) {
		return 0, ErrPartialWrite
	}
	return uint64(n), nil
}

func errnoError(err error) error {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return fmt.Errorf("Error %d: %v", int(errno), errno)
	}
	return err
}

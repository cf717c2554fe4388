//go:build !linux

package procmem

import "errors"

// Cross-process memory I/O is implemented through Linux vectored syscalls.
// Other platforms compile but reject every transfer.

var errUnsupportedPlatform = errors.New("cross-process memory I/O requires linux")

func (m *Memory) Read(address uint64, size uint32) ([]byte, error) {
	return nil, errUnsupportedPlatform
}

func (m *Memory) Write(address uint64, data []byte) (uint64, error) {
	return 0, errUnsupportedPlatform
}

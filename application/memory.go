package application

// Memory is the cross-process memory surface a session dispatches into.
// It holds only the target pid; every call is one vectored syscall against
// the target's address space. All operations fail until SetPid binds a
// real target.
type Memory interface {
	Pid() int32
	SetPid(pid int32)
	Read(address uint64, size uint32) ([]byte, error)
	// ReadUint reads width bytes at address and widens them to uint64 using
	// the host's natural byte order. width must be one of {1,2,4,8}.
	ReadUint(address uint64, width uint8) (uint64, error)
	// ReadInt is ReadUint with sign extension.
	ReadInt(address uint64, width uint8) (int64, error)
	// Write transfers data into the target and returns the byte count, which
	// on success always equals len(data): partial transfers are errors.
	Write(address uint64, data []byte) (uint64, error)
}

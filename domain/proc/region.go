package proc

// Permission bits of a Region, packed the way the wire expects them.
const (
	PermRead    uint8 = 1 << 0
	PermWrite   uint8 = 1 << 1
	PermExecute uint8 = 1 << 2
	PermPrivate uint8 = 1 << 3
)

// Region is a snapshot of one contiguous virtual-memory mapping
// of the target process. End always equals Start + Size.
type Region struct {
	Start       uint64
	End         uint64
	Size        uint64
	Permissions uint8
	Offset      uint64
	Device      string
	Inode       uint64
	Pathname    string
}

// Readable reports whether the mapping can be read by its owner.
func (r Region) Readable() bool {
	return r.Permissions&PermRead != 0
}

// Writable reports whether the mapping can be written by its owner.
func (r Region) Writable() bool {
	return r.Permissions&PermWrite != 0
}

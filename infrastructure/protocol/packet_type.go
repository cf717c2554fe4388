package protocol

// PacketType is the single-byte tag leading every frame. The tag values are
// the public ABI: a frame is self-describing at its first byte, which is what
// lets the server substitute an Error frame for any expected response.
type PacketType uint8

const (
	PacketReadVec PacketType = iota
	PacketReadVecF32
	PacketReadU64
	PacketReadI64
	PacketWrite
	PacketTargetPID
	PacketSendProcesses
	PacketError
)

// PacketTypeFromByte maps a wire tag to its PacketType. ok is false for
// bytes outside the defined range.
func PacketTypeFromByte(value byte) (PacketType, bool) {
	if value > byte(PacketError) {
		return 0, false
	}
	return PacketType(value), true
}

func (t PacketType) String() string {
	switch t {
	case PacketReadVec:
		return "ReadVec"
	case PacketReadVecF32:
		return "ReadVecF32"
	case PacketReadU64:
		return "ReadU64"
	case PacketReadI64:
		return "ReadI64"
	case PacketWrite:
		return "Write"
	case PacketTargetPID:
		return "TargetPID"
	case PacketSendProcesses:
		return "SendProcesses"
	case PacketError:
		return "Error"
	default:
		return "Unknown"
	}
}

package protocol

import "memtap/infrastructure/compression"

// ErrorPacket substitutes for any expected response without closing the
// session. A decoder must know the expected response class: when the success
// form is compressed (region and process lists) the substituted error frame
// is compressed as a whole too, otherwise it travels uncompressed.
type ErrorPacket struct {
	Message string
}

func (p ErrorPacket) Encode() []byte {
	buf := make([]byte, 0, 5+len(p.Message))
	buf = append(buf, byte(PacketError))
	return appendString(buf, p.Message)
}

func (p ErrorPacket) EncodeCompressed() ([]byte, error) {
	return compression.Compress(p.Encode())
}

func DecodeErrorPacket(data []byte) (ErrorPacket, error) {
	r, err := header(data, PacketError)
	if err != nil {
		return ErrorPacket{}, err
	}
	message, err := r.str()
	if err != nil {
		return ErrorPacket{}, err
	}
	return ErrorPacket{Message: message}, nil
}

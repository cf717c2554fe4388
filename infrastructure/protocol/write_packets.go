package protocol

import "encoding/binary"

// WriteRequest transfers bytes into the target at address. The count on the
// wire is a u32; the response reports bytes written as a u64. That asymmetry
// is part of the ABI and is preserved as-is.
type WriteRequest struct {
	Address uint64
	Bytes   []byte
}

func (p WriteRequest) Encode() []byte {
	buf := make([]byte, 0, 13+len(p.Bytes))
	buf = append(buf, byte(PacketWrite))
	buf = binary.BigEndian.AppendUint64(buf, p.Address)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(p.Bytes)))
	return append(buf, p.Bytes...)
}

func DecodeWriteRequest(data []byte) (WriteRequest, error) {
	r, err := header(data, PacketWrite)
	if err != nil {
		return WriteRequest{}, err
	}
	address, err := r.u64()
	if err != nil {
		return WriteRequest{}, err
	}
	count, err := r.u32()
	if err != nil {
		return WriteRequest{}, err
	}
	payload, err := r.bytes(count)
	if err != nil {
		return WriteRequest{}, err
	}
	return WriteRequest{Address: address, Bytes: payload}, nil
}

// WriteResponse acknowledges a successful write.
type WriteResponse struct {
	BytesWritten uint64
}

func (p WriteResponse) Encode() []byte {
	buf := make([]byte, 0, 9)
	buf = append(buf, byte(PacketWrite))
	return binary.BigEndian.AppendUint64(buf, p.BytesWritten)
}

func DecodeWriteResponse(data []byte) (WriteResponse, error) {
	r, err := header(data, PacketWrite)
	if err != nil {
		return WriteResponse{}, err
	}
	written, err := r.u64()
	if err != nil {
		return WriteResponse{}, err
	}
	return WriteResponse{BytesWritten: written}, nil
}

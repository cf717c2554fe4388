package protocol

import (
	"encoding/binary"
	"math"
)

// ReadVecRequest asks for size raw bytes at address.
type ReadVecRequest struct {
	Address uint64
	Size    uint32
}

func (p ReadVecRequest) Encode() []byte {
	buf := make([]byte, 0, 13)
	buf = append(buf, byte(PacketReadVec))
	buf = binary.BigEndian.AppendUint64(buf, p.Address)
	buf = binary.BigEndian.AppendUint32(buf, p.Size)
	return buf
}

func DecodeReadVecRequest(data []byte) (ReadVecRequest, error) {
	r, err := header(data, PacketReadVec)
	if err != nil {
		return ReadVecRequest{}, err
	}
	address, err := r.u64()
	if err != nil {
		return ReadVecRequest{}, err
	}
	size, err := r.u32()
	if err != nil {
		return ReadVecRequest{}, err
	}
	return ReadVecRequest{Address: address, Size: size}, nil
}

// ReadVecResponse carries the bytes a ReadVec request produced.
type ReadVecResponse struct {
	Data []byte
}

func (p ReadVecResponse) Encode() []byte {
	buf := make([]byte, 0, 5+len(p.Data))
	buf = append(buf, byte(PacketReadVec))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(p.Data)))
	return append(buf, p.Data...)
}

func DecodeReadVecResponse(data []byte) (ReadVecResponse, error) {
	r, err := header(data, PacketReadVec)
	if err != nil {
		return ReadVecResponse{}, err
	}
	count, err := r.u32()
	if err != nil {
		return ReadVecResponse{}, err
	}
	payload, err := r.bytes(count)
	if err != nil {
		return ReadVecResponse{}, err
	}
	return ReadVecResponse{Data: payload}, nil
}

// ReadVecF32Request asks for count consecutive f32 values at address.
type ReadVecF32Request struct {
	Address uint64
	Count   uint8
}

func (p ReadVecF32Request) Encode() []byte {
	buf := make([]byte, 0, 10)
	buf = append(buf, byte(PacketReadVecF32))
	buf = binary.BigEndian.AppendUint64(buf, p.Address)
	return append(buf, p.Count)
}

func DecodeReadVecF32Request(data []byte) (ReadVecF32Request, error) {
	r, err := header(data, PacketReadVecF32)
	if err != nil {
		return ReadVecF32Request{}, err
	}
	address, err := r.u64()
	if err != nil {
		return ReadVecF32Request{}, err
	}
	count, err := r.u8()
	if err != nil {
		return ReadVecF32Request{}, err
	}
	return ReadVecF32Request{Address: address, Count: count}, nil
}

// ReadVecF32Response carries f32 values, each as 4 big-endian IEEE-754 bytes.
type ReadVecF32Response struct {
	Data []float32
}

func (p ReadVecF32Response) Encode() []byte {
	buf := make([]byte, 0, 5+4*len(p.Data))
	buf = append(buf, byte(PacketReadVecF32))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(p.Data)))
	for _, v := range p.Data {
		buf = binary.BigEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

func DecodeReadVecF32Response(data []byte) (ReadVecF32Response, error) {
	r, err := header(data, PacketReadVecF32)
	if err != nil {
		return ReadVecF32Response{}, err
	}
	count, err := r.u32()
	if err != nil {
		return ReadVecF32Response{}, err
	}
	if uint64(count)*4 > uint64(r.remaining()) {
		return ReadVecF32Response{}, ErrTruncatedPacket
	}
	values := make([]float32, count)
	for i := range values {
		bits, bitsErr := r.u32()
		if bitsErr != nil {
			return ReadVecF32Response{}, bitsErr
		}
		values[i] = math.Float32frombits(bits)
	}
	return ReadVecF32Response{Data: values}, nil
}

// ReadU64Request asks for width bytes at address, widened to u64 on the agent.
type ReadU64Request struct {
	Address uint64
	Width   uint8
}

func (p ReadU64Request) Encode() []byte {
	buf := make([]byte, 0, 10)
	buf = append(buf, byte(PacketReadU64))
	buf = binary.BigEndian.AppendUint64(buf, p.Address)
	return append(buf, p.Width)
}

func DecodeReadU64Request(data []byte) (ReadU64Request, error) {
	r, err := header(data, PacketReadU64)
	if err != nil {
		return ReadU64Request{}, err
	}
	address, err := r.u64()
	if err != nil {
		return ReadU64Request{}, err
	}
	width, err := r.u8()
	if err != nil {
		return ReadU64Request{}, err
	}
	return ReadU64Request{Address: address, Width: width}, nil
}

// ReadU64Response is always a full u64 regardless of the requested width;
// the client re-narrows.
type ReadU64Response struct {
	Value uint64
}

func (p ReadU64Response) Encode() []byte {
	buf := make([]byte, 0, 9)
	buf = append(buf, byte(PacketReadU64))
	return binary.BigEndian.AppendUint64(buf, p.Value)
}

func DecodeReadU64Response(data []byte) (ReadU64Response, error) {
	r, err := header(data, PacketReadU64)
	if err != nil {
		return ReadU64Response{}, err
	}
	value, err := r.u64()
	if err != nil {
		return ReadU64Response{}, err
	}
	return ReadU64Response{Value: value}, nil
}

// ReadI64Request is the signed sibling of ReadU64Request.
type ReadI64Request struct {
	Address uint64
	Width   uint8
}

func (p ReadI64Request) Encode() []byte {
	buf := make([]byte, 0, 10)
	buf = append(buf, byte(PacketReadI64))
	buf = binary.BigEndian.AppendUint64(buf, p.Address)
	return append(buf, p.Width)
}

func DecodeReadI64Request(data []byte) (ReadI64Request, error) {
	r, err := header(data, PacketReadI64)
	if err != nil {
		return ReadI64Request{}, err
	}
	address, err := r.u64()
	if err != nil {
		return ReadI64Request{}, err
	}
	width, err := r.u8()
	if err != nil {
		return ReadI64Request{}, err
	}
	return ReadI64Request{Address: address, Width: width}, nil
}

// ReadI64Response carries the sign-extended value.
type ReadI64Response struct {
	Value int64
}

func (p ReadI64Response) Encode() []byte {
	buf := make([]byte, 0, 9)
	buf = append(buf, byte(PacketReadI64))
	return binary.BigEndian.AppendUint64(buf, uint64(p.Value))
}

func DecodeReadI64Response(data []byte) (ReadI64Response, error) {
	r, err := header(data, PacketReadI64)
	if err != nil {
		return ReadI64Response{}, err
	}
	value, err := r.i64()
	if err != nil {
		return ReadI64Response{}, err
	}
	return ReadI64Response{Value: value}, nil
}

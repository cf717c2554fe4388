package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"memtap/domain/proc"
	"memtap/infrastructure/compression"
)

func sampleRegions() []proc.Region {
	return []proc.Region{
		{
			Start:       0x0000555555554000,
			End:         0x0000555555555000,
			Size:        4096,
			Permissions: proc.PermRead | proc.PermExecute,
			Offset:      0,
			Device:      "major:minor",
			Inode:       0,
			Pathname:    "/bin/app",
		},
		{
			Start:       0x00007ffff7dc0000,
			End:         0x00007ffff7dc1000,
			Size:        4096,
			Permissions: proc.PermExecute,
			Offset:      0,
			Device:      "minor:major",
			Inode:       0,
			Pathname:    "[Heap]",
		},
	}
}

func TestTargetPidRequest_RoundTrip(t *testing.T) {
	request := TargetPidRequest{TargetPid: 1234567890}
	decoded, err := DecodeTargetPidRequest(request.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(request, decoded); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestTargetPidRequest_NegativePid(t *testing.T) {
	decoded, err := DecodeTargetPidRequest(TargetPidRequest{TargetPid: -1}.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.TargetPid != -1 {
		t.Fatalf("pid = %d, want -1", decoded.TargetPid)
	}
}

func TestRegionsResponse_RoundTrip(t *testing.T) {
	response := RegionsResponse{Regions: sampleRegions()}
	wire, err := response.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeRegionsResponse(wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(response, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRegionsResponse_CompressionBoundary(t *testing.T) {
	response := RegionsResponse{Regions: sampleRegions()}
	wire, err := response.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	inner := response.EncodeInner()
	if !bytes.HasPrefix(inner, []byte{0x05, 0x00, 0x00, 0x00, 0x02}) {
		t.Fatalf("inner frame prefix = %x, want 05 00 00 00 02", inner[:5])
	}
	if bytes.Equal(wire, inner) {
		t.Fatal("wire bytes equal the raw frame; expected compressed form")
	}

	restored, err := compression.Decompress(wire)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(restored, inner) {
		t.Fatal("one decompression pass did not recover the inner frame")
	}
}

func TestProcessesRequest_RoundTrip(t *testing.T) {
	encoded := ProcessesRequest{}.Encode()
	if !bytes.Equal(encoded, []byte{0x06}) {
		t.Fatalf("encoded = %x, want 06", encoded)
	}
	if _, err := DecodeProcessesRequest(encoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestProcessesResponse_RoundTrip(t *testing.T) {
	response := ProcessesResponse{Processes: []proc.Entry{
		{Name: "memtap-agent", Pid: 1234567890},
		{Name: "firefox --new-window", Pid: 987654321},
	}}
	wire, err := response.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeProcessesResponse(wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(response, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessesResponse_ErrorSubstitutionCompressed(t *testing.T) {
	wire, err := ErrorPacket{Message: "Error: boom"}.EncodeCompressed()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	_, err = DecodeProcessesResponse(wire)
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("got %v, want *RemoteError", err)
	}
	if remote.Message != "Error: boom" {
		t.Fatalf("message = %q", remote.Message)
	}
}

func TestDecodeRegionsResponse_RawFrameRejected(t *testing.T) {
	// An uncompressed frame must not decode: the wire form is the compressed bytes.
	raw := RegionsResponse{Regions: sampleRegions()}.EncodeInner()
	if _, err := DecodeRegionsResponse(raw); err == nil {
		t.Fatal("expected decompression failure for raw frame bytes")
	}
}

func TestDecodeProcessesResponse_BadUTF8Name(t *testing.T) {
	inner := []byte{0x06, 0x00, 0x00, 0x00, 0x01}
	inner = append(inner, 0x00, 0x00, 0x00, 0x02, 0xFF, 0xFE) // invalid UTF-8 name
	inner = append(inner, 0x00, 0x00, 0x00, 0x01)             // pid
	wire, err := compression.Compress(inner)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if _, err := DecodeProcessesResponse(wire); !errors.Is(err, ErrInvalidString) {
		t.Fatalf("got %v, want ErrInvalidString", err)
	}
}

package procmem

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"testing"
	"unsafe"

	"memtap/domain/proc"
)

// The tests target the test process itself: process_vm_readv against the
// caller's own pid needs no extra privileges.

func selfMemory() *Memory {
	return NewMemory(int32(os.Getpid()))
}

func TestMemory_ReadOwnBuffer(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x13, 0x37}
	address := uint64(uintptr(unsafe.Pointer(&payload[0])))

	got, err := selfMemory().Read(address, uint32(len(payload)))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("read %x, want %x", got, payload)
	}
}

func TestMemory_WriteThenReadBack(t *testing.T) {
	target := make([]byte, 4)
	address := uint64(uintptr(unsafe.Pointer(&target[0])))
	memory := selfMemory()

	written, err := memory.Write(address, []byte{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if written != 4 {
		t.Fatalf("bytes written = %d, want 4", written)
	}

	got, err := memory.Read(address, 4)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("read back %x", got)
	}
}

func TestMemory_ReadUintWidens(t *testing.T) {
	var value uint64 = 0x1122334455667788
	address := uint64(uintptr(unsafe.Pointer(&value)))
	memory := selfMemory()

	full, err := memory.ReadUint(address, 8)
	if err != nil {
		t.Fatalf("width 8: %v", err)
	}
	if full != value {
		t.Fatalf("width 8 = %#x, want %#x", full, value)
	}

	// A narrow read widens with host byte order: the first 4 bytes of the
	// u64 are its low half on little-endian hosts, high half on big-endian.
	narrow, err := memory.ReadUint(address, 4)
	if err != nil {
		t.Fatalf("width 4: %v", err)
	}
	if narrow != uint64(uint32(value)) && narrow != value>>32 {
		t.Fatalf("width 4 = %#x, inconsistent with either half of %#x", narrow, value)
	}
}

func TestMemory_ReadUintHostOrderSemantics(t *testing.T) {
	buffer := []byte{0x01, 0x00, 0x00, 0x00}
	// Force a known native-order value regardless of host endianness.
	want := uint64(binary.NativeEndian.Uint32(buffer))
	address := uint64(uintptr(unsafe.Pointer(&buffer[0])))

	got, err := selfMemory().ReadUint(address, 4)
	if err != nil {
		t.Fatalf("ReadUint: %v", err)
	}
	if got != want {
		t.Fatalf("got %#x, want %#x", got, want)
	}
}

func TestMemory_ReadIntSignExtends(t *testing.T) {
	var value int8 = -128
	address := uint64(uintptr(unsafe.Pointer(&value)))

	got, err := selfMemory().ReadInt(address, 1)
	if err != nil {
		t.Fatalf("ReadInt: %v", err)
	}
	if got != -128 {
		t.Fatalf("got %d, want -128", got)
	}
}

func TestMemory_UnboundPid(t *testing.T) {
	memory := NewMemory(proc.UnboundPid)

	if _, err := memory.Read(0x1000, 8); !errors.Is(err, ErrPidNotSet) {
		t.Fatalf("Read: got %v, want ErrPidNotSet", err)
	}
	if _, err := memory.Write(0x1000, []byte{1}); !errors.Is(err, ErrPidNotSet) {
		t.Fatalf("Write: got %v, want ErrPidNotSet", err)
	}
	if _, err := memory.ReadUint(0x1000, 8); !errors.Is(err, ErrPidNotSet) {
		t.Fatalf("ReadUint: got %v, want ErrPidNotSet", err)
	}
}

func TestMemory_RejectsBadWidth(t *testing.T) {
	memory := selfMemory()
	for _, width := range []uint8{0, 3, 5, 7, 9, 255} {
		if _, err := memory.ReadUint(0x1000, width); !errors.Is(err, ErrBadWidth) {
			t.Fatalf("ReadUint width %d: got %v, want ErrBadWidth", width, err)
		}
		if _, err := memory.ReadInt(0x1000, width); !errors.Is(err, ErrBadWidth) {
			t.Fatalf("ReadInt width %d: got %v, want ErrBadWidth", width, err)
		}
	}
}

func TestMemory_ReadUnmappedAddress(t *testing.T) {
	_, err := selfMemory().Read(0x10, 8)
	if err == nil {
		t.Fatal("expected errno error for unmapped address")
	}
	if errors.Is(err, ErrPartialRead) || errors.Is(err, ErrPidNotSet) {
		t.Fatalf("unexpected error class: %v", err)
	}
}

func TestMemory_SetPidRebinds(t *testing.T) {
	memory := NewMemory(proc.UnboundPid)
	memory.SetPid(int32(os.Getpid()))

	payload := []byte{7}
	address := uint64(uintptr(unsafe.Pointer(&payload[0])))
	got, err := memory.Read(address, 1)
	if err != nil {
		t.Fatalf("Read after rebind: %v", err)
	}
	if got[0] != 7 {
		t.Fatalf("read %d, want 7", got[0])
	}
}

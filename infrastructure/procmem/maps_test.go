package procmem

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"memtap/domain/proc"
)

func TestParseMapsLine_FileBacked(t *testing.T) {
	line := "555555554000-555555555000 r-xp 00001000 08:01 3147829                    /usr/bin/cat"
	region, err := parseMapsLine(line)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := proc.Region{
		Start:       0x555555554000,
		End:         0x555555555000,
		Size:        0x1000,
		Permissions: proc.PermRead | proc.PermExecute | proc.PermPrivate,
		Offset:      0x1000,
		Device:      "8:1",
		Inode:       3147829,
		Pathname:    "/usr/bin/cat",
	}
	if diff := cmp.Diff(want, region); diff != "" {
		t.Fatalf("region mismatch (-want +got):\n%s", diff)
	}
}

func TestParseMapsLine_PseudoRegions(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"[heap]", "[Heap]"},
		{"[stack]", "[Stack]"},
		{"[vdso]", "[Vdso]"},
		{"[vvar]", "[Vvar]"},
		{"[vsyscall]", "[Vsyscall]"},
		{"", "[Anonymous]"},
		{"/memfd:wayland (deleted)", "/memfd:wayland (deleted)"},
	}
	for _, c := range cases {
		line := "7ffff7dc0000-7ffff7dc1000 rw-p 00000000 00:00 0"
		if c.raw != "" {
			line += " " + c.raw
		}
		region, err := parseMapsLine(line)
		if err != nil {
			t.Fatalf("%q: %v", c.raw, err)
		}
		if region.Pathname != c.want {
			t.Fatalf("%q: pathname = %q, want %q", c.raw, region.Pathname, c.want)
		}
	}
}

func TestParseMapsLine_DeviceIsDecimal(t *testing.T) {
	region, err := parseMapsLine("0-1000 rw-s 00000000 fd:0a 12 /dev/shm/x")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if region.Device != "253:10" {
		t.Fatalf("device = %q, want 253:10", region.Device)
	}
	if region.Permissions&proc.PermPrivate != 0 {
		t.Fatal("shared mapping must not carry the private bit")
	}
}

func TestParseMaps_PreservesOrderAndSkipsBlankLines(t *testing.T) {
	raw := []byte(
		"1000-2000 r--p 00000000 00:00 0 [vdso]\n" +
			"\n" +
			"3000-4000 rw-p 00000000 00:00 0 [heap]\n")
	regions, err := parseMaps(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("region count = %d, want 2", len(regions))
	}
	if regions[0].Pathname != "[Vdso]" || regions[1].Pathname != "[Heap]" {
		t.Fatalf("order not preserved: %q, %q", regions[0].Pathname, regions[1].Pathname)
	}
}

func TestParseMaps_MalformedLine(t *testing.T) {
	if _, err := parseMaps([]byte("not a maps line\n")); err == nil {
		t.Fatal("expected error for malformed input")
	}
}

package procmem

import (
	"fmt"
	"strconv"
	"strings"

	"memtap/domain/proc"
)

// parseMaps converts a maps file into Regions, preserving kernel order.
// Line shape: "start-end perms offset major:minor inode [pathname]".
func parseMaps(raw []byte) ([]proc.Region, error) {
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	regions := make([]proc.Region, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		region, err := parseMapsLine(line)
		if err != nil {
			return nil, err
		}
		regions = append(regions, region)
	}
	return regions, nil
}

func parseMapsLine(line string) (proc.Region, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return proc.Region{}, fmt.Errorf("malformed maps line: %q", line)
	}

	startRaw, endRaw, found := strings.Cut(fields[0], "-")
	if !found {
		return proc.Region{}, fmt.Errorf("malformed address range: %q", fields[0])
	}
	start, err := strconv.ParseUint(startRaw, 16, 64)
	if err != nil {
		return proc.Region{}, fmt.Errorf("parse start address: %w", err)
	}
	end, err := strconv.ParseUint(endRaw, 16, 64)
	if err != nil {
		return proc.Region{}, fmt.Errorf("parse end address: %w", err)
	}

	offset, err := strconv.ParseUint(fields[2], 16, 64)
	if err != nil {
		return proc.Region{}, fmt.Errorf("parse offset: %w", err)
	}

	device, err := parseDevice(fields[3])
	if err != nil {
		return proc.Region{}, err
	}

	inode, err := strconv.ParseUint(fields[4], 10, 64)
	if err != nil {
		return proc.Region{}, fmt.Errorf("parse inode: %w", err)
	}

	pathname := ""
	if len(fields) > 5 {
		pathname = strings.Join(fields[5:], " ")
	}

	return proc.Region{
		Start:       start,
		End:         end,
		Size:        end - start,
		Permissions: parsePermissions(fields[1]),
		Offset:      offset,
		Device:      device,
		Inode:       inode,
		Pathname:    canonicalPathname(pathname),
	}, nil
}

func parsePermissions(perms string) uint8 {
	var bits uint8
	if strings.ContainsRune(perms, 'r') {
		bits |= proc.PermRead
	}
	if strings.ContainsRune(perms, 'w') {
		bits |= proc.PermWrite
	}
	if strings.ContainsRune(perms, 'x') {
		bits |= proc.PermExecute
	}
	if strings.ContainsRune(perms, 'p') {
		bits |= proc.PermPrivate
	}
	return bits
}

// parseDevice re-encodes the kernel's hex major:minor as decimal ASCII.
func parseDevice(field string) (string, error) {
	majorRaw, minorRaw, found := strings.Cut(field, ":")
	if !found {
		return "", fmt.Errorf("malformed device field: %q", field)
	}
	major, err := strconv.ParseUint(majorRaw, 16, 32)
	if err != nil {
		return "", fmt.Errorf("parse device major: %w", err)
	}
	minor, err := strconv.ParseUint(minorRaw, 16, 32)
	if err != nil {
		return "", fmt.Errorf("parse device minor: %w", err)
	}
	return fmt.Sprintf("%d:%d", major, minor), nil
}

// canonicalPathname labels well-known pseudo-regions; file-backed mappings
// keep their path untouched.
func canonicalPathname(raw string) string {
	switch raw {
	case "":
		return "[Anonymous]"
	case "[heap]":
		return "[Heap]"
	case "[stack]":
		return "[Stack]"
	case "[vdso]":
		return "[Vdso]"
	case "[vvar]":
		return "[Vvar]"
	case "[vsyscall]":
		return "[Vsyscall]"
	default:
		return raw
	}
}

package procmem

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"memtap/application"
	"memtap/domain/proc"
)

const DefaultProcRoot = "/proc"

var _ application.ProcessRepository = (*ProcScanner)(nil)

// ProcScanner reads process and mapping snapshots out of a procfs tree.
// It holds no state beyond the root path; every call re-reads the kernel's
// current view.
type ProcScanner struct {
	root string
}

func NewProcScanner() *ProcScanner {
	return &ProcScanner{root: DefaultProcRoot}
}

// NewProcScannerAt points the scanner at an alternative procfs root.
func NewProcScannerAt(root string) *ProcScanner {
	return &ProcScanner{root: root}
}

func (s *ProcScanner) RunningProcesses() ([]proc.Entry, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", s.root, err)
	}

	out := make([]proc.Entry, 0, len(dirEntries))
	for _, dirEntry := range dirEntries {
		if !dirEntry.IsDir() {
			continue
		}
		pid, convErr := strconv.ParseInt(dirEntry.Name(), 10, 32)
		if convErr != nil {
			continue
		}
		out = append(out, proc.Entry{
			Name: s.processName(int32(pid)),
			Pid:  int32(pid),
		})
	}
	return out, nil
}

// processName prefers the joined command line; kernel threads and zombies
// have an empty cmdline, for those the comm from stat is used.
func (s *ProcScanner) processName(pid int32) string {
	raw, err := os.ReadFile(s.pidPath(pid, "cmdline"))
	if err == nil {
		name := strings.TrimRight(string(raw), "\x00")
		name = strings.ReplaceAll(name, "\x00", " ")
		if name != "" {
			return name
		}
	}
	return s.commFromStat(pid)
}

// commFromStat extracts the process name from the stat line. comm is
// parenthesized and may itself contain spaces or parens, so it spans the
// first '(' through the last ')'.
func (s *ProcScanner) commFromStat(pid int32) string {
	raw, err := os.ReadFile(s.pidPath(pid, "stat"))
	if err != nil {
		return ""
	}
	open := bytes.IndexByte(raw, '(')
	closing := bytes.LastIndexByte(raw, ')')
	if open < 0 || closing <= open {
		return ""
	}
	return string(raw[open+1 : closing])
}

func (s *ProcScanner) Regions(pid int32) ([]proc.Region, error) {
	raw, err := os.ReadFile(s.pidPath(pid, "maps"))
	if err != nil {
		return nil, fmt.Errorf("read maps of pid %d: %w", pid, err)
	}
	return parseMaps(raw)
}

func (s *ProcScanner) pidPath(pid int32, file string) string {
	return filepath.Join(s.root, strconv.FormatInt(int64(pid), 10), file)
}

package application

import "memtap/domain/proc"

// ProcessRepository enumerates processes and their memory mappings.
// Both calls return point-in-time snapshots; nothing is cached or tracked.
type ProcessRepository interface {
	RunningProcesses() ([]proc.Entry, error)
	Regions(pid int32) ([]proc.Region, error)
}

package presentation

import (
	"fmt"
	"sort"

	tea "github.com/charmbracelet/bubbletea"

	"memtap/domain/proc"
	"memtap/infrastructure/settings"
	"memtap/presentation/bubble_tea"
	"memtap/presentation/client"
)

// StartInspector connects to an agent, lets the user pick a process, and
// prints its memory map. This is the terminal twin of the browser client.
func StartInspector(addr string) error {
	if addr == "" {
		model, err := tea.NewProgram(bubble_tea.NewAddressInput(settings.DefaultListenAddr)).Run()
		if err != nil {
			return fmt.Errorf("address prompt: %w", err)
		}
		value, ok := model.(bubble_tea.AddressInput).Value()
		if !ok {
			return nil
		}
		addr = value
	}

	mc, err := client.Dial(addr)
	if err != nil {
		return err
	}
	defer func() {
		_ = mc.Close()
	}()

	processes, err := mc.Processes()
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}
	sort.Slice(processes, func(i, j int) bool { return processes[i].Pid < processes[j].Pid })

	model, err := tea.NewProgram(
		bubble_tea.NewProcessSelector(fmt.Sprintf("processes on %s", addr), processes),
	).Run()
	if err != nil {
		return fmt.Errorf("process picker: %w", err)
	}
	entry, ok := model.(bubble_tea.ProcessSelector).Choice()
	if !ok {
		return nil
	}

	regions, err := mc.Regions(entry.Pid)
	if err != nil {
		return fmt.Errorf("map pid %d: %w", entry.Pid, err)
	}

	fmt.Printf("%d regions of pid %d (%s)\n\n", len(regions), entry.Pid, entry.Name)
	for _, region := range regions {
		fmt.Printf("%016x-%016x %s %8x %10s %8d  %s\n",
			region.Start, region.End, permString(region.Permissions),
			region.Offset, region.Device, region.Inode, region.Pathname)
	}
	return nil
}

func permString(bits uint8) string {
	out := []byte("----")
	if bits&proc.PermRead != 0 {
		out[0] = 'r'
	}
	if bits&proc.PermWrite != 0 {
		out[1] = 'w'
	}
	if bits&proc.PermExecute != 0 {
		out[2] = 'x'
	}
	if bits&proc.PermPrivate != 0 {
		out[3] = 'p'
	}
	return string(out)
}

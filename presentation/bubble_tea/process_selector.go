package bubble_tea

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"memtap/domain/proc"
)

// ProcessSelector is an interactive picker over the agent's process list.
type ProcessSelector struct {
	placeholder string
	processes   []proc.Entry
	filter      string
	cursor      int
	choice      proc.Entry
	chosen      bool
}

func NewProcessSelector(placeholder string, processes []proc.Entry) ProcessSelector {
	return ProcessSelector{
		placeholder: placeholder,
		processes:   processes,
	}
}

// Choice returns the picked process; ok is false when the user quit.
func (m ProcessSelector) Choice() (proc.Entry, bool) {
	return m.choice, m.chosen
}

func (m ProcessSelector) Init() tea.Cmd {
	return nil
}

func (m ProcessSelector) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down":
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}
		case "enter":
			visible := m.visible()
			if len(visible) > 0 {
				m.choice = visible[m.cursor]
				m.chosen = true
			}
			return m, tea.Quit
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "backspace":
			if len(m.filter) > 0 {
				m.filter = m.filter[:len(m.filter)-1]
				m.cursor = 0
			}
		default:
			if len(msg.String()) == 1 {
				m.filter += msg.String()
				m.cursor = 0
			}
		}
	}
	return m, nil
}

func (m ProcessSelector) visible() []proc.Entry {
	if m.filter == "" {
		return m.processes
	}
	filtered := make([]proc.Entry, 0, len(m.processes))
	for _, entry := range m.processes {
		if strings.Contains(strings.ToLower(entry.Name), strings.ToLower(m.filter)) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func (m ProcessSelector) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", m.placeholder)
	if m.filter != "" {
		fmt.Fprintf(&b, "filter: %s\n", m.filter)
	}
	b.WriteString("\n")

	visible := m.visible()
	const window = 15
	start := 0
	if m.cursor >= window {
		start = m.cursor - window + 1
	}
	for i := start; i < len(visible) && i < start+window; i++ {
		line := fmt.Sprintf("%7d  %s", visible[i].Pid, visible[i].Name)
		if m.cursor == i {
			line = "\033[1;32m> " + line + "\033[0m"
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	if len(visible) == 0 {
		b.WriteString("  (no matches)\n")
	}
	b.WriteString("\ntype to filter, enter to select, esc to quit\n")
	return b.String()
}

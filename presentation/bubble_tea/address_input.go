package bubble_tea

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// AddressInput prompts for an agent address when none was given on the
// command line.
type AddressInput struct {
	input     textinput.Model
	confirmed bool
}

func NewAddressInput(placeholder string) AddressInput {
	input := textinput.New()
	input.Placeholder = placeholder
	input.Focus()
	return AddressInput{input: input}
}

// Value returns the typed address; ok is false when the user quit.
func (m AddressInput) Value() (string, bool) {
	if !m.confirmed || m.input.Value() == "" {
		return "", false
	}
	return m.input.Value(), true
}

func (m AddressInput) Init() tea.Cmd {
	return textinput.Blink
}

func (m AddressInput) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			m.confirmed = true
			return m, tea.Quit
		case "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m AddressInput) View() string {
	return "agent address:\n\n" + m.input.View() + "\n\nenter to connect, esc to quit\n"
}

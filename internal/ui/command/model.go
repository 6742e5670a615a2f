package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/care-portal/internal/theme"
)

// Names of the palette commands.
const (
	Book      = "book"
	Checkin   = "checkin"
	History   = "history"
	Dashboard = "dashboard"
	Refresh   = "refresh"
	Clear     = "clear"
	Quit      = "quit"
)

// aliases maps shorthand to the canonical command.
var aliases = map[string]string{
	"b":        Book,
	"c":        Checkin,
	"check-in": Checkin,
	"mood":     Checkin,
	"h":        History,
	"d":        Dashboard,
	"home":     Dashboard,
	"r":        Refresh,
	"q":        Quit,
	"exit":     Quit,
}

// CommandMsg is emitted when the user runs a command. It holds the
// canonical name, or the raw input when nothing matched.
type CommandMsg string

// CloseMsg is emitted when the palette is dismissed without a command.
type CloseMsg struct{}

// Resolve maps user input onto a known command name. ok is false for
// unknown input.
func Resolve(input string) (string, bool) {
	in := strings.ToLower(strings.TrimSpace(input))
	switch in {
	case Book, Checkin, History, Dashboard, Refresh, Clear, Quit:
		return in, true
	}
	if c, ok := aliases[in]; ok {
		return c, true
	}
	return in, false
}

// Model is the command palette.
type Model struct {
	input textinput.Model
	width int
}

// New creates a command palette.
func New(width int) Model {
	ti := textinput.New()
	ti.Placeholder = "book, checkin, history, dashboard, refresh, clear, quit"
	ti.Prompt = ": "
	ti.ShowSuggestions = true
	ti.SetSuggestions([]string{Book, Checkin, History, Dashboard, Refresh, Clear, Quit})
	ti.Width = width - 6

	return Model{input: ti, width: width}
}

// Update handles key input. Enter emits a CommandMsg; esc emits CloseMsg.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "enter":
			raw := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if raw == "" {
				return m, func() tea.Msg { return CloseMsg{} }
			}
			name, _ := Resolve(raw)
			return m, func() tea.Msg { return CommandMsg(name) }
		case "esc":
			m.input.Reset()
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the palette.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Command Palette")
	content := lipgloss.JoinVertical(lipgloss.Left, title, m.input.View())

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(content)
}

// SetSize updates the palette width.
func (m *Model) SetSize(width int) {
	m.width = width
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

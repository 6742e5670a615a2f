package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/care-portal/internal/keys"
	"github.com/nhle/care-portal/internal/theme"
)

// commands lists the palette commands shown under the key table.
var commands = []string{
	"book", "checkin", "history", "dashboard", "refresh", "clear", "quit",
}

// Model is the help overlay.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a help overlay for km.
func New(km *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   km,
		help:   h,
		width:  width,
		height: height,
	}
}

// Update handles messages for the help view. The overlay is static.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the key table and the command list.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Keyboard Shortcuts")
	table := m.help.View(m.keys)

	cmdTitle := theme.SectionStyle.Render("Commands (:)")
	cmdList := ""
	for i, c := range commands {
		if i > 0 {
			cmdList += theme.DimmedStyle.Render(" · ")
		}
		cmdList += c
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, table, "", cmdTitle, cmdList)

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(content)
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}

// Package banner renders the session's visible notifications above the
// active screen.
package banner

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/care-portal/internal/model"
	"github.com/nhle/care-portal/internal/theme"
)

// MaxLines caps how many notices are drawn at once.
const MaxLines = 3

// Model holds the latest sink snapshot.
type Model struct {
	all   []model.Notification
	width int
}

// New creates an empty banner.
func New(width int) Model {
	return Model{width: width}
}

// SetNotifications replaces the snapshot, newest first.
func (m *Model) SetNotifications(list []model.Notification) {
	m.all = list
}

// SetWidth updates the render width.
func (m *Model) SetWidth(width int) {
	m.width = width
}

// Visible returns the notices that are not dismissed.
func (m Model) Visible() []model.Notification {
	return model.Visible(m.all)
}

// Newest returns the most recent visible notice.
func (m Model) Newest() (model.Notification, bool) {
	v := m.Visible()
	if len(v) == 0 {
		return model.Notification{}, false
	}
	return v[0], true
}

// Height returns the number of rows View will use.
func (m Model) Height() int {
	n := len(m.Visible())
	if n > MaxLines {
		return MaxLines + 1
	}
	return n
}

// View renders one line per visible notice, newest first.
func (m Model) View() string {
	visible := m.Visible()
	if len(visible) == 0 {
		return ""
	}

	shown := visible
	if len(shown) > MaxLines {
		shown = shown[:MaxLines]
	}

	lines := make([]string, 0, len(shown)+1)
	for _, n := range shown {
		icon := theme.SeverityStyle(n.Severity).Render(n.Severity.Icon())
		stamp := theme.DimmedStyle.Render(n.CreatedAt.Format("15:04"))
		line := fmt.Sprintf(" %s %s %s", icon, n.Message, stamp)
		lines = append(lines, truncate(line, m.width))
	}
	if extra := len(visible) - len(shown); extra > 0 {
		lines = append(lines, theme.DimmedStyle.Render(fmt.Sprintf("   +%d more", extra)))
	}

	return strings.Join(lines, "\n")
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

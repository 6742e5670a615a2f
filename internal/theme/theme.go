package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/care-portal/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the top bar and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps a screen's main content.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// TitleStyle is used for panel titles.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	MarginBottom(1)

// SectionStyle is used for headings inside a panel.
var SectionStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// DimmedStyle renders secondary text.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// AppointmentStatusStyle returns a badge style for an appointment status.
func AppointmentStatusStyle(status model.AppointmentStatus) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.StatusScheduled:
		return base.Foreground(ColorBlue)
	case model.StatusConfirmed:
		return base.Foreground(ColorGreen)
	case model.StatusCompleted:
		return base.Foreground(ColorMagenta)
	case model.StatusCancelled:
		return base.Foreground(ColorRed)
	case model.StatusNoShow:
		return base.Foreground(ColorOrange)
	default:
		return base.Foreground(ColorGray)
	}
}

// AttendanceStyle returns a badge style for an attendance outcome.
func AttendanceStyle(status model.AttendanceStatus) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch status {
	case model.AttendanceAttended:
		return base.Foreground(ColorGreen)
	case model.AttendanceCompletedEarly, model.AttendanceCompletedLate:
		return base.Foreground(ColorYellow)
	case model.AttendanceRescheduled:
		return base.Foreground(ColorBlue)
	case model.AttendanceNoShow:
		return base.Foreground(ColorOrange)
	case model.AttendanceCancelled:
		return base.Foreground(ColorRed)
	default:
		return base.Foreground(ColorGray)
	}
}

// SeverityStyle returns the style of a notice of the given severity.
func SeverityStyle(sev model.Severity) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch sev {
	case model.SeveritySuccess:
		return base.Foreground(ColorGreen)
	case model.SeverityError:
		return base.Foreground(ColorRed)
	case model.SeverityWarning:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorBlue)
	}
}

// RatingStyle colours a 1..10 mood rating from red to green.
func RatingStyle(rating int) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch {
	case rating <= 0:
		return base.Foreground(ColorGray)
	case rating <= 3:
		return base.Foreground(ColorRed)
	case rating <= 5:
		return base.Foreground(ColorOrange)
	case rating <= 7:
		return base.Foreground(ColorYellow)
	default:
		return base.Foreground(ColorGreen)
	}
}

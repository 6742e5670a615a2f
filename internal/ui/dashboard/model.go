// Package dashboard is the portal's home screen: today's check-in status,
// today's sessions and what comes next.
package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/care-portal/internal/backend"
	"github.com/nhle/care-portal/internal/model"
	"github.com/nhle/care-portal/internal/notify"
	"github.com/nhle/care-portal/internal/theme"
	"github.com/nhle/care-portal/internal/ui"
)

const (
	loadTimeout   = 30 * time.Second
	upcomingLimit = 5
	moodLimit     = 7
)

// Gateway is the backend surface the dashboard reads.
type Gateway interface {
	ListAppointmentsByPatient(ctx context.Context, patientID int64) ([]model.Appointment, error)
	MoodHistory(ctx context.Context, patientID int64) ([]model.MoodEntry, error)
}

// Reminder decides whether the daily check-in reminder is due.
type Reminder interface {
	ShouldRemindNow(hasCompletedToday bool, now time.Time) bool
	MarkShown()
}

// Publisher receives session-wide notices.
type Publisher interface {
	Publish(severity model.Severity, message string) model.Notification
}

// LoadedMsg carries the dashboard data.
type LoadedMsg struct {
	Appointments []model.Appointment
	Moods        []model.MoodEntry
	Err          error
}

// Model is the dashboard screen.
type Model struct {
	gateway   Gateway
	patientID int64
	loc       *time.Location
	now       func() time.Time

	appointments []model.Appointment
	moods        []model.MoodEntry
	loaded       bool
	loading      bool
	errText      string

	width  int
	height int
}

// New creates the dashboard for patientID.
func New(gw Gateway, patientID int64, loc *time.Location, now func() time.Time, width, height int) Model {
	if now == nil {
		now = time.Now
	}
	return Model{
		gateway:   gw,
		patientID: patientID,
		loc:       loc,
		now:       now,
		width:     width,
		height:    height,
	}
}

// Load fetches appointments and mood history.
func (m *Model) Load() tea.Cmd {
	m.loading = true
	gw, id := m.gateway, m.patientID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		appts, err := gw.ListAppointmentsByPatient(ctx, id)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		moods, err := gw.MoodHistory(ctx, id)
		if err != nil {
			return LoadedMsg{Err: err}
		}
		return LoadedMsg{Appointments: appts, Moods: moods}
	}
}

// Update handles messages for the dashboard.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(LoadedMsg); ok {
		m.loading = false
		if msg.Err != nil {
			m.errText = backend.UserMessage(msg.Err)
			return m, nil
		}
		m.errText = ""
		m.loaded = true
		m.appointments = msg.Appointments
		m.moods = msg.Moods
	}
	return m, nil
}

// Loaded reports whether data has arrived at least once.
func (m Model) Loaded() bool {
	return m.loaded
}

// CompletedToday reports whether a mood entry exists for today.
func (m Model) CompletedToday() bool {
	return model.HasCompletedToday(m.moods, m.now().In(m.loc))
}

// AddMood records an entry submitted during this session.
func (m *Model) AddMood(e model.MoodEntry) {
	m.moods = append([]model.MoodEntry{e}, m.moods...)
}

// CheckReminder publishes the check-in reminder when it is due and marks
// it shown. Nothing happens until the first load, since the completion
// fact is unknown before then.
func (m Model) CheckReminder(r Reminder, p Publisher, now time.Time) bool {
	if !m.loaded {
		return false
	}
	if !r.ShouldRemindNow(m.CompletedToday(), now) {
		return false
	}
	p.Publish(model.SeverityWarning, notify.ReminderMessage)
	r.MarkShown()
	return true
}

// View renders the dashboard.
func (m Model) View() string {
	now := m.now().In(m.loc)
	title := theme.TitleStyle.Render("Welcome back · " + now.Format("Monday, January 2"))

	if m.loading && !m.loaded {
		return m.frame(title, theme.DimmedStyle.Render("Loading your dashboard..."))
	}

	sections := []string{title}
	if m.errText != "" {
		sections = append(sections, theme.SeverityStyle(model.SeverityError).Render("✕ "+m.errText), "")
	}

	sections = append(sections,
		theme.SectionStyle.Render("Today's check-in"),
		m.checkinLine(),
		"",
		theme.SectionStyle.Render("Today's sessions"),
		m.appointmentLines(model.TodaysAppointments(m.appointments, now), "No sessions today."),
		"",
		theme.SectionStyle.Render("Coming up"),
		m.appointmentLines(limit(model.UpcomingAppointments(m.appointments, now), upcomingLimit), "Nothing booked. Press 2 to book a session."),
		"",
		theme.SectionStyle.Render("Recent mood"),
		m.moodLine(),
	)

	return m.frame(sections...)
}

func (m Model) frame(parts ...string) string {
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) checkinLine() string {
	if m.CompletedToday() {
		return theme.SeverityStyle(model.SeveritySuccess).Render("✓ Done for today")
	}
	return theme.SeverityStyle(model.SeverityWarning).Render("⚠ Not yet completed. Press 3 to check in.")
}

func (m Model) appointmentLines(list []model.Appointment, empty string) string {
	if len(list) == 0 {
		return theme.DimmedStyle.Render(empty)
	}
	lines := make([]string, len(list))
	for i, a := range list {
		lines[i] = ui.AppointmentLine(a, m.loc)
	}
	return strings.Join(lines, "\n")
}

func (m Model) moodLine() string {
	if len(m.moods) == 0 {
		return theme.DimmedStyle.Render("No check-ins yet.")
	}

	recent := limit(m.moods, moodLimit)
	cells := make([]string, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		e := recent[i]
		cells = append(cells, theme.RatingStyle(e.EmotionalRating).Render(fmt.Sprintf("%d", e.EmotionalRating)))
	}
	latest := recent[0]
	return strings.Join(cells, " ") + theme.DimmedStyle.Render("  latest: "+model.RatingLabel(latest.EmotionalRating))
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func limit[T any](list []T, n int) []T {
	if len(list) > n {
		return list[:n]
	}
	return list
}

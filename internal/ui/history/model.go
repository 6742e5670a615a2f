// Package history lists upcoming and past appointments plus attendance
// records, and lets the patient cancel or reschedule an upcoming one.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/care-portal/internal/backend"
	"github.com/nhle/care-portal/internal/keys"
	"github.com/nhle/care-portal/internal/model"
	"github.com/nhle/care-portal/internal/theme"
	"github.com/nhle/care-portal/internal/ui"
)

const requestTimeout = 30 * time.Second

// Gateway is the backend surface the screen uses.
type Gateway interface {
	ListAppointmentsByPatient(ctx context.Context, patientID int64) ([]model.Appointment, error)
	ListHistory(ctx context.Context, patientID int64) ([]model.AppointmentHistory, error)
	CancelAppointment(ctx context.Context, appointmentID int64, reason string) error
	RescheduleAppointment(ctx context.Context, appointmentID int64, newInstant time.Time) (*model.Appointment, error)
}

// Tab is a section of the history screen.
type Tab int

const (
	TabUpcoming Tab = iota
	TabPast
	TabAttendance
)

func (t Tab) String() string {
	switch t {
	case TabUpcoming:
		return "Upcoming"
	case TabPast:
		return "Past"
	default:
		return "Attendance"
	}
}

// ChangedMsg is emitted after a cancel or reschedule succeeded.
type ChangedMsg struct {
	Notice string
}

// CloseMsg is emitted when the user leaves the screen.
type CloseMsg struct{}

type loadedMsg struct {
	appointments []model.Appointment
	history      []model.AppointmentHistory
	err          error
}

type actionDoneMsg struct {
	notice string
	err    error
}

type action int

const (
	actionNone action = iota
	actionCancel
	actionReschedule
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	reason string
	date   string
	time   string
}

// Model is the history screen.
type Model struct {
	gateway   Gateway
	patientID int64
	keys      *keys.KeyMap
	loc       *time.Location
	now       func() time.Time

	appointments []model.Appointment
	history      []model.AppointmentHistory
	tab          Tab
	cursor       int

	action  action
	target  model.Appointment
	form    *huh.Form
	fb      *formBindings
	busy    bool
	errText string

	width  int
	height int
}

// New creates the history screen for patientID.
func New(gw Gateway, patientID int64, km *keys.KeyMap, loc *time.Location, now func() time.Time, width, height int) Model {
	if now == nil {
		now = time.Now
	}
	return Model{
		gateway:   gw,
		patientID: patientID,
		keys:      km,
		loc:       loc,
		now:       now,
		fb:        &formBindings{},
		width:     width,
		height:    height,
	}
}

// Load fetches appointments and attendance history.
func (m *Model) Load() tea.Cmd {
	m.busy = true
	gw, id := m.gateway, m.patientID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		appts, err := gw.ListAppointmentsByPatient(ctx, id)
		if err != nil {
			return loadedMsg{err: err}
		}
		hist, err := gw.ListHistory(ctx, id)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{appointments: appts, history: hist}
	}
}

// CapturesInput reports whether keystrokes belong to an open form.
func (m Model) CapturesInput() bool {
	return m.form != nil
}

// Update handles messages for the history screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = backend.UserMessage(msg.err)
			return m, nil
		}
		m.appointments = msg.appointments
		m.history = msg.history
		m.clampCursor()
		return m, nil

	case actionDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = backend.UserMessage(msg.err)
			return m, nil
		}
		m.errText = ""
		notice := msg.notice
		load := m.Load()
		return m, tea.Batch(load, func() tea.Msg { return ChangedMsg{Notice: notice} })
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if km, ok := msg.(tea.KeyMsg); ok {
		return m.handleKeys(km)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }
	case key.Matches(msg, m.keys.Tab):
		m.tab = (m.tab + 1) % 3
		m.cursor = 0
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.Load()
		return m, cmd
	case key.Matches(msg, m.keys.Cancel):
		return m.openForm(actionCancel)
	case key.Matches(msg, m.keys.Reschedule):
		return m.openForm(actionReschedule)
	}
	return m, nil
}

func (m Model) openForm(a action) (Model, tea.Cmd) {
	if m.tab != TabUpcoming || m.busy {
		return m, nil
	}
	upcoming := m.upcoming()
	if len(upcoming) == 0 {
		return m, nil
	}

	m.target = upcoming[m.cursor]
	m.action = a
	m.errText = ""
	*m.fb = formBindings{}

	var group *huh.Group
	if a == actionCancel {
		group = huh.NewGroup(
			huh.NewInput().
				Title("Reason for cancelling").
				Placeholder("Let your psychologist know why").
				Value(&m.fb.reason).
				Validate(required("A reason")),
		)
	} else {
		start := m.target.Start().In(m.loc)
		m.fb.date = start.Format(model.DateLayout)
		m.fb.time = start.Format("15:04")
		group = huh.NewGroup(
			huh.NewInput().
				Title("New date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fb.date).
				Validate(validateDate),
			huh.NewInput().
				Title("New time").
				Placeholder("HH:MM").
				Value(&m.fb.time).
				Validate(validateClock),
		)
	}

	m.form = huh.NewForm(group).WithWidth(max(m.width-4, 40))
	return m, m.form.Init()
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.form = nil
		cmd = m.runAction()
		return m, cmd
	case huh.StateAborted:
		m.form = nil
		m.action = actionNone
		return m, nil
	}
	return m, cmd
}

func (m *Model) runAction() tea.Cmd {
	gw := m.gateway
	id := m.target.ID
	a := m.action
	m.action = actionNone
	m.busy = true

	switch a {
	case actionCancel:
		reason := strings.TrimSpace(m.fb.reason)
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			err := gw.CancelAppointment(ctx, id, reason)
			return actionDoneMsg{notice: "Appointment cancelled.", err: err}
		}

	case actionReschedule:
		when, err := m.rescheduleInstant()
		if err != nil {
			m.busy = false
			m.errText = err.Error()
			return nil
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
			defer cancel()
			_, err := gw.RescheduleAppointment(ctx, id, when)
			return actionDoneMsg{
				notice: "Appointment moved to " + when.Format("Mon Jan 02 15:04") + ".",
				err:    err,
			}
		}
	}

	m.busy = false
	return nil
}

// rescheduleInstant parses the form and rejects times in the past.
func (m Model) rescheduleInstant() (time.Time, error) {
	when, err := time.ParseInLocation(model.DateLayout+" 15:04",
		strings.TrimSpace(m.fb.date)+" "+strings.TrimSpace(m.fb.time), m.loc)
	if err != nil {
		return time.Time{}, errors.New("Please enter a valid date and time")
	}
	if !when.After(m.now()) {
		return time.Time{}, errors.New("Please choose a time in the future")
	}
	return when, nil
}

// View renders the history screen.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Appointments")

	tabs := make([]string, 0, 3)
	for t := TabUpcoming; t <= TabAttendance; t++ {
		label := " " + t.String() + " "
		if t == m.tab {
			tabs = append(tabs, theme.HeaderStyle.Render(label))
		} else {
			tabs = append(tabs, theme.DimmedStyle.Render(label))
		}
	}

	parts := []string{title, strings.Join(tabs, " "), ""}

	if m.form != nil {
		heading := "Cancel appointment"
		if m.action == actionReschedule {
			heading = "Reschedule appointment"
		}
		parts = append(parts,
			theme.SectionStyle.Render(heading),
			ui.AppointmentLine(m.target, m.loc),
			"",
			m.form.View(),
		)
	} else {
		parts = append(parts, m.rows())
	}

	if m.errText != "" {
		parts = append(parts, "", theme.SeverityStyle(model.SeverityError).Render("✕ "+m.errText))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) rows() string {
	var lines []string
	switch m.tab {
	case TabUpcoming:
		for _, a := range m.upcoming() {
			lines = append(lines, ui.AppointmentLine(a, m.loc))
		}
	case TabPast:
		for _, a := range model.PastAppointments(m.appointments, m.now()) {
			lines = append(lines, ui.AppointmentLine(a, m.loc))
		}
	case TabAttendance:
		for _, h := range m.history {
			lines = append(lines, ui.HistoryLine(h, m.loc))
		}
	}

	if len(lines) == 0 {
		if m.busy {
			return theme.DimmedStyle.Render("Loading...")
		}
		return theme.DimmedStyle.Render("Nothing here yet.")
	}

	for i := range lines {
		if i == m.cursor {
			lines[i] = theme.SelectedItemStyle.Render(lines[i])
		} else {
			lines[i] = theme.ListItemStyle.Render(lines[i])
		}
	}
	return strings.Join(lines, "\n")
}

// Hints returns the status bar hints.
func (m Model) Hints() string {
	if m.form != nil {
		return "enter confirm | esc cancel"
	}
	if m.tab == TabUpcoming {
		return "tab section | j/k move | c cancel | m reschedule | r refresh | esc back"
	}
	return "tab section | j/k move | r refresh | esc back"
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) upcoming() []model.Appointment {
	return model.UpcomingAppointments(m.appointments, m.now())
}

func (m *Model) clampCursor() {
	n := 0
	switch m.tab {
	case TabUpcoming:
		n = len(m.upcoming())
	case TabPast:
		n = len(model.PastAppointments(m.appointments, m.now()))
	case TabAttendance:
		n = len(m.history)
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

func validateDate(s string) error {
	if _, err := time.Parse(model.DateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

func validateClock(s string) error {
	if _, err := time.Parse("15:04", strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid time, use HH:MM")
	}
	return nil
}

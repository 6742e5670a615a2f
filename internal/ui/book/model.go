// Package book is the booking screen: a details form, the slot list and
// the controller that drives one booking attempt.
package book

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/care-portal/internal/booking"
	"github.com/nhle/care-portal/internal/keys"
	"github.com/nhle/care-portal/internal/model"
	"github.com/nhle/care-portal/internal/theme"
	"github.com/nhle/care-portal/internal/ui"
)

// BookedMsg is emitted once an appointment has been created.
type BookedMsg struct {
	Appointment model.Appointment
}

// CloseMsg is emitted when the user leaves the screen.
type CloseMsg struct{}

type phase int

const (
	phaseForm phase = iota
	phaseSlots
)

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	psychologistID string
	date           string
	apptType       string
	duration       int
	notes          string
}

// Model is the booking screen.
type Model struct {
	ctrl    *booking.Controller
	keys    *keys.KeyMap
	loc     *time.Location
	form    *huh.Form
	fb      *formBindings
	slots   list.Model
	spinner spinner.Model
	phase   phase
	width   int
	height  int
}

// New creates the booking screen around ctrl.
func New(ctrl *booking.Controller, km *keys.KeyMap, loc *time.Location, width, height int) Model {
	l := list.New([]list.Item{}, slotDelegate{loc: loc}, width, height-6)
	l.Title = "Available slots"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.SectionStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	return Model{
		ctrl:    ctrl,
		keys:    km,
		loc:     loc,
		fb:      &formBindings{apptType: string(model.TypeInitial), duration: 60},
		slots:   l,
		spinner: sp,
		width:   width,
		height:  height,
	}
}

// Start opens the details form. The date defaults to tomorrow.
func (m *Model) Start(now time.Time) tea.Cmd {
	m.ctrl.Abandon()
	m.phase = phaseForm
	if m.fb.date == "" {
		m.fb.date = now.In(m.loc).AddDate(0, 0, 1).Format(model.DateLayout)
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Leave abandons any in-flight request.
func (m *Model) Leave() {
	m.ctrl.Abandon()
	m.form = nil
}

// Update handles messages for the booking screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if booking.Owns(msg) {
		return m.applyResult(msg)
	}

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !m.ctrl.State().Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.phase == phaseSlots {
			return m.handleSlotKeys(msg)
		}
	}

	if m.phase == phaseForm && m.form != nil {
		return m.updateForm(msg)
	}

	var cmd tea.Cmd
	m.slots, cmd = m.slots.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.ctrl.SetForm(m.controllerForm())
		m.phase = phaseSlots
		return m, m.search()
	case huh.StateAborted:
		m.Leave()
		return m, func() tea.Msg { return CloseMsg{} }
	}
	return m, cmd
}

func (m Model) handleSlotKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.Leave()
		return m, func() tea.Msg { return CloseMsg{} }

	case key.Matches(msg, m.keys.Edit):
		if m.ctrl.State().Busy() {
			return m, nil
		}
		m.phase = phaseForm
		m.form = m.buildForm()
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Search), key.Matches(msg, m.keys.Refresh):
		return m, m.search()

	case key.Matches(msg, m.keys.Select):
		_ = m.ctrl.SelectSlot(m.slots.Index())
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		cmd := m.ctrl.Submit()
		if cmd == nil {
			return m, nil
		}
		return m, tea.Batch(cmd, m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.slots, cmd = m.slots.Update(msg)
	return m, cmd
}

func (m Model) search() tea.Cmd {
	cmd := m.ctrl.Search()
	if cmd == nil {
		return nil
	}
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) applyResult(msg tea.Msg) (Model, tea.Cmd) {
	before := m.ctrl.State()
	cmd := m.ctrl.Update(msg)
	m.syncSlots()

	if before != booking.Booked && m.ctrl.State() == booking.Booked && m.ctrl.Booked() != nil {
		booked := *m.ctrl.Booked()
		m.fb.notes = ""
		return m, tea.Batch(cmd, func() tea.Msg { return BookedMsg{Appointment: booked} })
	}
	return m, cmd
}

func (m *Model) syncSlots() {
	src := m.ctrl.Slots()
	items := make([]list.Item, len(src))
	for i, s := range src {
		items[i] = slotItem{appt: s, index: i, ctrl: m.ctrl}
	}
	m.slots.SetItems(items)
}

// View renders the booking screen.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Book an appointment")

	var body string
	if m.phase == phaseForm && m.form != nil {
		body = m.form.View()
	} else {
		body = m.slotsView()
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, body, "", m.statusLine())
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

func (m Model) slotsView() string {
	f := m.ctrl.Form()
	summary := theme.DimmedStyle.Render(fmt.Sprintf(
		"Psychologist #%d · %s · %s · %d min",
		f.PsychologistID, f.Date.Format("Mon Jan 02"), ui.TypeLabel(f.Type), f.DurationMinutes,
	))
	if m.ctrl.State() == booking.Booked {
		summary = ""
	}
	if m.ctrl.State() == booking.Searching {
		return lipgloss.JoinVertical(lipgloss.Left, summary, m.spinner.View()+" Searching for slots...")
	}
	if len(m.ctrl.Slots()) == 0 {
		return summary
	}
	return lipgloss.JoinVertical(lipgloss.Left, summary, "", m.slots.View())
}

func (m Model) statusLine() string {
	if m.ctrl.State() == booking.Submitting {
		return m.spinner.View() + " Booking..."
	}
	st := m.ctrl.Status()
	if st.Text == "" {
		return ""
	}
	return theme.SeverityStyle(st.Severity).Render(st.Severity.Icon() + " " + st.Text)
}

// CapturesInput reports whether keystrokes belong to the details form.
func (m Model) CapturesInput() bool {
	return m.phase == phaseForm && m.form != nil
}

// Hints returns the status bar hints for the current phase.
func (m Model) Hints() string {
	if m.phase == phaseForm {
		return "enter next | esc cancel"
	}
	return "j/k move | enter pick slot | s book | / search again | e edit | esc back"
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.slots.SetSize(width-4, max(height-8, 3))
}

func (m *Model) buildForm() *huh.Form {
	typeOpts := make([]huh.Option[string], 0, len(model.AppointmentTypes))
	for _, t := range model.AppointmentTypes {
		typeOpts = append(typeOpts, huh.NewOption(ui.TypeLabel(t), string(t)))
	}
	durOpts := make([]huh.Option[int], 0, len(model.Durations))
	for _, d := range model.Durations {
		durOpts = append(durOpts, huh.NewOption(fmt.Sprintf("%d minutes", d), d))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Psychologist ID").
				Placeholder("e.g. 12").
				Value(&m.fb.psychologistID).
				Validate(validateOptionalID),
			huh.NewInput().
				Title("Date").
				Placeholder("YYYY-MM-DD").
				Value(&m.fb.date).
				Validate(validateOptionalDate),
			huh.NewSelect[string]().
				Title("Appointment type").
				Options(typeOpts...).
				Value(&m.fb.apptType),
			huh.NewSelect[int]().
				Title("Duration").
				Options(durOpts...).
				Value(&m.fb.duration),
			huh.NewText().
				Title("Notes").
				Placeholder("Anything your psychologist should know (optional)").
				Value(&m.fb.notes),
		),
	).WithWidth(m.formWidth()).WithShowHelp(true)
}

// controllerForm converts the bound values. Unparseable or empty fields
// become zero values so the controller reports them.
func (m Model) controllerForm() booking.Form {
	f := booking.Form{
		Type:            model.AppointmentType(m.fb.apptType),
		DurationMinutes: m.fb.duration,
		Notes:           strings.TrimSpace(m.fb.notes),
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(m.fb.psychologistID), 10, 64); err == nil {
		f.PsychologistID = id
	}
	if d, err := time.ParseInLocation(model.DateLayout, strings.TrimSpace(m.fb.date), m.loc); err == nil {
		f.Date = d
	}
	return f
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func validateOptionalID(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

func validateOptionalDate(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

// slotItem adapts a candidate slot to bubbles/list.
type slotItem struct {
	appt  model.Appointment
	index int
	ctrl  *booking.Controller
}

func (i slotItem) FilterValue() string { return i.appt.DateTime.Wire() }

// slotDelegate draws one slot per line and marks the picked one.
type slotDelegate struct {
	loc *time.Location
}

func (d slotDelegate) Height() int                             { return 1 }
func (d slotDelegate) Spacing() int                            { return 0 }
func (d slotDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d slotDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(slotItem)
	if !ok {
		return
	}

	marker := "○"
	if it.ctrl != nil && it.ctrl.Selected() == it.index {
		marker = lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("●")
	}
	line := marker + " " + ui.SlotRange(it.appt, d.loc)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}
	fmt.Fprint(w, line)
}

// Package checkin is the daily mood check-in screen.
package checkin

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/care-portal/internal/backend"
	"github.com/nhle/care-portal/internal/model"
	"github.com/nhle/care-portal/internal/theme"
)

const submitTimeout = 30 * time.Second

// Gateway is the backend call the screen needs.
type Gateway interface {
	SubmitCheckin(ctx context.Context, req model.CheckinRequest) (*model.MoodEntry, error)
}

// SubmittedMsg is emitted after the backend recorded the check-in.
type SubmittedMsg struct {
	Entry model.MoodEntry
}

// CloseMsg is emitted when the user leaves the screen.
type CloseMsg struct{}

type submitFailedMsg struct {
	err error
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	rating int
	notes  string
}

// Model is the check-in screen.
type Model struct {
	gateway   Gateway
	patientID int64
	form      *huh.Form
	fb        *formBindings
	done      bool
	sending   bool
	errText   string
	width     int
	height    int
}

// New creates the check-in screen for patientID.
func New(gw Gateway, patientID int64, width, height int) Model {
	return Model{
		gateway:   gw,
		patientID: patientID,
		fb:        &formBindings{rating: 5},
		width:     width,
		height:    height,
	}
}

// SetCompleted records whether today's check-in already exists.
func (m *Model) SetCompleted(done bool) {
	m.done = done
}

// Start opens the form unless today's check-in is already done.
func (m *Model) Start() tea.Cmd {
	m.errText = ""
	if m.done {
		m.form = nil
		return nil
	}
	m.fb.rating = 5
	m.fb.notes = ""
	m.form = m.buildForm()
	return m.form.Init()
}

// CapturesInput reports whether keystrokes belong to the form.
func (m Model) CapturesInput() bool {
	return m.form != nil && !m.sending
}

// Update handles messages for the check-in screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SubmittedMsg:
		m.sending = false
		m.done = true
		m.form = nil
		return m, nil

	case submitFailedMsg:
		m.sending = false
		m.errText = backend.UserMessage(msg.err)
		m.form = m.buildForm()
		return m, m.form.Init()

	case tea.KeyMsg:
		if m.form == nil && !m.sending && msg.String() == "esc" {
			return m, func() tea.Msg { return CloseMsg{} }
		}
	}

	if m.form == nil || m.sending {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		cmd = m.submit()
		return m, cmd
	case huh.StateAborted:
		m.form = nil
		return m, func() tea.Msg { return CloseMsg{} }
	}
	return m, cmd
}

// submit validates the input and sends it. Validation failures reopen the
// form with the message.
func (m *Model) submit() tea.Cmd {
	req := model.CheckinRequest{
		PatientID: m.patientID,
		Rating:    m.fb.rating,
		Notes:     strings.TrimSpace(m.fb.notes),
	}
	if err := model.Validator().Struct(req); err != nil {
		m.errText = "Unable to submit: " + model.FormatValidationError(err)
		m.form = m.buildForm()
		return m.form.Init()
	}

	m.sending = true
	m.errText = ""
	gw := m.gateway
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()

		entry, err := gw.SubmitCheckin(ctx, req)
		if err != nil {
			return submitFailedMsg{err: err}
		}
		return SubmittedMsg{Entry: *entry}
	}
}

// View renders the check-in screen.
func (m Model) View() string {
	title := theme.TitleStyle.Render("Daily check-in")

	var body string
	switch {
	case m.done:
		body = theme.SeverityStyle(model.SeveritySuccess).Render("✓ You've completed today's check-in. See you tomorrow!")
	case m.sending:
		body = theme.DimmedStyle.Render("Saving your check-in...")
	case m.form != nil:
		body = m.form.View()
	}

	parts := []string{title, body}
	if m.errText != "" {
		parts = append(parts, "", theme.SeverityStyle(model.SeverityError).Render("✕ "+m.errText))
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	opts := make([]huh.Option[int], 0, 10)
	for r := 10; r >= 1; r-- {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%2d · %s", r, model.RatingLabel(r)), r))
	}

	w := m.width - 4
	if w < 40 {
		w = 40
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("How are you feeling today?").
				Options(opts...).
				Value(&m.fb.rating),
			huh.NewText().
				Title("Notes").
				Placeholder("What's on your mind? (optional)").
				CharLimit(1000).
				Value(&m.fb.notes),
		),
	).WithWidth(w)
}

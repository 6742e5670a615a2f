package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/care-portal/internal/booking"
	"github.com/nhle/care-portal/internal/keys"
	"github.com/nhle/care-portal/internal/model"
	"github.com/nhle/care-portal/internal/notify"
	"github.com/nhle/care-portal/internal/reminder"
	"github.com/nhle/care-portal/internal/ui"
	"github.com/nhle/care-portal/internal/ui/banner"
	"github.com/nhle/care-portal/internal/ui/book"
	"github.com/nhle/care-portal/internal/ui/checkin"
	"github.com/nhle/care-portal/internal/ui/command"
	"github.com/nhle/care-portal/internal/ui/dashboard"
	helpview "github.com/nhle/care-portal/internal/ui/help"
	"github.com/nhle/care-portal/internal/ui/history"
)

// Notices published by the root model.
const (
	NoticeCheckinSaved = "Check-in saved. Thank you!"
	NoticeUnknownCmd   = "Unknown command: %s"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewDashboard ViewState = iota
	ViewBook
	ViewCheckin
	ViewHistory
	ViewHelp
	ViewCommand
)

// Model is the root Bubble Tea model. It routes messages between the
// screens and the session services.
type Model struct {
	session *Session
	sub     *notify.Subscription
	keys    *keys.KeyMap

	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	ready        bool

	banner      banner.Model
	dashboard   dashboard.Model
	bookView    book.Model
	checkinView checkin.Model
	historyView history.Model
	helpView    helpview.Model
	commandView command.Model
}

// New creates the root model for s. It subscribes to the session sink
// immediately so that notices published during start-up are not missed.
func New(s *Session) Model {
	km := keys.DefaultKeyMap()
	cfg := s.Config
	id := cfg.Patient.ID

	return Model{
		session:     s,
		sub:         s.Sink.Subscribe(),
		keys:        km,
		currentView: ViewDashboard,
		layout:      ui.NewLayout(80, 24),
		banner:      banner.New(80),
		dashboard:   dashboard.New(s.Gateway, id, s.Location, s.now, 80, 24),
		bookView:    book.New(s.Booking, km, s.Location, 80, 24),
		checkinView: checkin.New(s.Gateway, id, 80, 24),
		historyView: history.New(s.Gateway, id, km, s.Location, s.now, 80, 24),
		helpView:    helpview.New(km, 80, 24),
		commandView: command.New(80),
	}
}

// Init loads the dashboard, starts the reminder timers and begins
// listening for notification changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.dashboard.Load(),
		m.session.Reminder.Start(),
		m.sub.WaitForChange(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height).WithBanner(m.banner.Height())
		m.ready = true
		m.banner.SetWidth(msg.Width)
		m.resize()
		return m.updateActiveView(msg)

	case notify.ChangedMsg:
		m.banner.SetNotifications(msg.Notifications)
		m.layout = m.layout.WithBanner(m.banner.Height())
		m.resize()
		return m, m.sub.WaitForChange()

	case reminder.TickMsg:
		m.dashboard.CheckReminder(m.session.Reminder, m.session.Sink, msg.At)
		return m, m.session.Reminder.WaitForNextTick()

	case reminder.DayResetMsg:
		load := m.dashboard.Load()
		return m, tea.Batch(load, m.session.Reminder.WaitForNextTick())

	case dashboard.LoadedMsg:
		var cmd tea.Cmd
		m.dashboard, cmd = m.dashboard.Update(msg)
		m.checkinView.SetCompleted(m.dashboard.CompletedToday())
		m.dashboard.CheckReminder(m.session.Reminder, m.session.Sink, m.session.Now())
		return m, cmd

	case book.BookedMsg:
		m.switchTo(ViewDashboard)
		load := m.dashboard.Load()
		return m, load

	case checkin.SubmittedMsg:
		var cmd tea.Cmd
		m.checkinView, cmd = m.checkinView.Update(msg)
		m.dashboard.AddMood(msg.Entry)
		m.session.Sink.Publish(model.SeveritySuccess, NoticeCheckinSaved)
		m.switchTo(ViewDashboard)
		return m, cmd

	case history.ChangedMsg:
		m.session.Sink.Publish(model.SeveritySuccess, msg.Notice)
		load := m.dashboard.Load()
		return m, load

	case book.CloseMsg, checkin.CloseMsg, history.CloseMsg:
		m.switchTo(ViewDashboard)
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case command.CloseMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.capturesInput() {
			break
		}
		if next, cmd, ok := m.handleGlobalKey(msg); ok {
			return next, cmd
		}
	}

	if booking.Owns(msg) {
		var cmd tea.Cmd
		m.bookView, cmd = m.bookView.Update(msg)
		return m, cmd
	}

	bg := m.updateBackground(msg)
	next, cmd := m.updateActiveView(msg)
	return next, tea.Batch(bg, cmd)
}

// updateBackground delivers request results to the check-in and history
// screens after the user has left them.
func (m *Model) updateBackground(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(tea.KeyMsg); ok {
		return nil
	}

	var cmds []tea.Cmd
	if m.currentView != ViewCheckin && !m.checkinView.CapturesInput() {
		var cmd tea.Cmd
		m.checkinView, cmd = m.checkinView.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.currentView != ViewHistory && !m.historyView.CapturesInput() {
		var cmd tea.Cmd
		m.historyView, cmd = m.historyView.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// handleGlobalKey applies the shortcuts available on every screen. ok is
// false when the key belongs to the active screen.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		cmd := m.commandView.Focus()
		return m, cmd, true

	case key.Matches(msg, m.keys.Back):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}

	case key.Matches(msg, m.keys.Dashboard):
		cmd := m.open(ViewDashboard)
		return m, cmd, true
	case key.Matches(msg, m.keys.Book):
		cmd := m.open(ViewBook)
		return m, cmd, true
	case key.Matches(msg, m.keys.Checkin):
		cmd := m.open(ViewCheckin)
		return m, cmd, true
	case key.Matches(msg, m.keys.History):
		cmd := m.open(ViewHistory)
		return m, cmd, true

	case key.Matches(msg, m.keys.Dismiss):
		if n, ok := m.banner.Newest(); ok {
			m.session.Sink.Dismiss(n.ID)
		}
		return m, nil, true

	case key.Matches(msg, m.keys.ClearAll):
		m.session.Sink.ClearAll()
		return m, nil, true

	case key.Matches(msg, m.keys.Refresh):
		if m.currentView == ViewDashboard {
			cmd := m.dashboard.Load()
			return m, cmd, true
		}
	}
	return m, nil, false
}

// capturesInput reports whether the active screen owns every keystroke.
func (m Model) capturesInput() bool {
	switch m.currentView {
	case ViewCommand:
		return true
	case ViewBook:
		return m.bookView.CapturesInput()
	case ViewCheckin:
		return m.checkinView.CapturesInput()
	case ViewHistory:
		return m.historyView.CapturesInput()
	}
	return false
}

// open switches to v and returns the command that starts it.
func (m *Model) open(v ViewState) tea.Cmd {
	if v == m.currentView {
		return nil
	}
	m.switchTo(v)

	switch v {
	case ViewDashboard:
		return m.dashboard.Load()
	case ViewBook:
		return m.bookView.Start(m.session.Now())
	case ViewCheckin:
		return m.checkinView.Start()
	case ViewHistory:
		return m.historyView.Load()
	}
	return nil
}

// switchTo changes the active screen. Leaving the booking screen drops
// any in-flight search or submission.
func (m *Model) switchTo(v ViewState) {
	if m.currentView == ViewBook && v != ViewBook {
		m.bookView.Leave()
	}
	m.previousView = m.currentView
	m.currentView = v
}

func (m *Model) resize() {
	w := m.layout.ContentWidth()
	h := m.layout.ContentHeight()
	m.dashboard.SetSize(w, h)
	m.bookView.SetSize(w, h)
	m.checkinView.SetSize(w, h)
	m.historyView.SetSize(w, h)
	m.helpView.SetSize(w, h)
	m.commandView.SetSize(w)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewDashboard:
		m.dashboard, cmd = m.dashboard.Update(msg)
	case ViewBook:
		m.bookView, cmd = m.bookView.Update(msg)
	case ViewCheckin:
		m.checkinView, cmd = m.checkinView.Update(msg)
	case ViewHistory:
		m.historyView, cmd = m.historyView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Care Portal", m.headerStatus())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, m.banner.View(), m.renderContent(), statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewDashboard:
		return m.dashboard.View()
	case ViewBook:
		return m.bookView.View()
	case ViewCheckin:
		return m.checkinView.View()
	case ViewHistory:
		return m.historyView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

func (m Model) headerStatus() string {
	status := fmt.Sprintf("patient #%d", m.session.Config.Patient.ID)
	if n := len(m.banner.Visible()); n > 0 {
		status = fmt.Sprintf("%s | %d notice(s)", status, n)
	}
	return status
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewBook:
		return m.bookView.Hints()
	case ViewCheckin:
		return "enter next | esc back"
	case ViewHistory:
		return m.historyView.Hints()
	default:
		return "q quit | ? help | : command | 2 book | 3 check-in | 4 history | r refresh | x dismiss"
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case command.Book:
		return m.open(ViewBook)
	case command.Checkin:
		return m.open(ViewCheckin)
	case command.History:
		return m.open(ViewHistory)
	case command.Dashboard:
		return m.open(ViewDashboard)
	case command.Refresh:
		if m.currentView == ViewHistory {
			return m.historyView.Load()
		}
		return m.dashboard.Load()
	case command.Clear:
		m.session.Sink.ClearAll()
		return nil
	case command.Quit:
		return tea.Quit
	default:
		m.session.Sink.Publish(model.SeverityInfo, fmt.Sprintf(NoticeUnknownCmd, cmd))
		return nil
	}
}

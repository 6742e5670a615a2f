// Package booking runs one booking attempt as an explicit state machine:
// search for slots, pick one, submit it.
//
// The controller is driven from a Bubble Tea Update loop. Operations that
// reach the backend return a tea.Cmd; its result message must be handed
// back through Update. Every request is tagged with a sequence number and
// results older than the latest request are dropped.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/care-portal/internal/backend"
	"github.com/nhle/care-portal/internal/model"
	"github.com/nhle/care-portal/internal/timeutil"
)

// State is a booking workflow state.
type State int

const (
	Idle State = iota
	Searching
	SlotsShown
	Submitting
	Booked
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case SlotsShown:
		return "slots shown"
	case Submitting:
		return "submitting"
	case Booked:
		return "booked"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Busy reports whether a request is in flight.
func (s State) Busy() bool {
	return s == Searching || s == Submitting
}

// User-facing messages.
const (
	MsgSearchIncomplete = "Please select a psychologist and date"
	MsgSubmitIncomplete = "Please fill in all required fields"
	MsgSearchFirst      = "Please search for available slots first"
	MsgNoSlots          = "No available slots found for this date"
	MsgSlotOutOfRange   = "Please select one of the listed slots"
	MsgBadDuration      = "Please choose a session length of 30, 45, 60 or 90 minutes"
	MsgBooked           = "Appointment booked successfully! A confirmation has been sent."
	MsgBookingFailed    = "Failed to book appointment. Please try again."
)

// DefaultNoticeDuration is how long the success notice stays visible.
const DefaultNoticeDuration = 3 * time.Second

const requestTimeout = 30 * time.Second

// Gateway is the subset of the backend the controller calls.
type Gateway interface {
	SearchAvailableSlots(ctx context.Context, psychologistID int64, dayStart, dayEnd time.Time) ([]model.Appointment, error)
	BookAppointment(ctx context.Context, candidate model.Appointment) (*model.Appointment, error)
}

// Publisher receives session-wide notices.
type Publisher interface {
	Publish(severity model.Severity, message string) model.Notification
}

// Status is the single line of feedback the booking screen shows.
type Status struct {
	Severity model.Severity
	Text     string
}

// Messages returned by the controller's commands.
type (
	searchResultMsg struct {
		seq   uint64
		slots []model.Appointment
		err   error
	}

	submitResultMsg struct {
		seq       uint64
		candidate model.Appointment
		booked    *model.Appointment
		err       error
	}

	noticeExpiredMsg struct {
		id uint64
	}
)

// Option configures a Controller.
type Option func(*Controller)

// WithNoticeDuration sets how long the success notice stays visible.
func WithNoticeDuration(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.noticeDuration = d
		}
	}
}

// WithPublisher routes the success notice to a notification sink as well.
func WithPublisher(p Publisher) Option {
	return func(c *Controller) { c.publisher = p }
}

// OnTransition registers a hook called on every state change.
func OnTransition(fn func(from, to State)) Option {
	return func(c *Controller) { c.onTransition = fn }
}

// Controller owns one booking attempt. It is not safe for concurrent use;
// call it only from the Update loop.
type Controller struct {
	gateway   Gateway
	patientID int64

	state    State
	form     Form
	slots    []model.Appointment
	selected int
	booked   *model.Appointment
	status   Status
	lastErr  error

	seq      uint64
	noticeID uint64

	noticeDuration time.Duration
	publisher      Publisher
	onTransition   func(from, to State)
}

// New creates an idle controller booking on behalf of patientID.
func New(gw Gateway, patientID int64, opts ...Option) *Controller {
	c := &Controller{
		gateway:        gw,
		patientID:      patientID,
		selected:       -1,
		noticeDuration: DefaultNoticeDuration,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current workflow state.
func (c *Controller) State() State { return c.state }

// Form returns the current input.
func (c *Controller) Form() Form { return c.form }

// Slots returns the candidate slots of the last search.
func (c *Controller) Slots() []model.Appointment { return c.slots }

// Selected returns the index of the chosen slot, or -1.
func (c *Controller) Selected() int { return c.selected }

// Booked returns the appointment created by the last successful submit.
func (c *Controller) Booked() *model.Appointment { return c.booked }

// Status returns the current feedback line.
func (c *Controller) Status() Status { return c.status }

// Err returns the error behind the current status, if any.
func (c *Controller) Err() error { return c.lastErr }

// SetForm replaces the user input. It is ignored while a request is in
// flight. Changing the psychologist or the date discards the shown slots,
// since they belong to the previous search.
func (c *Controller) SetForm(f Form) {
	if c.state.Busy() {
		return
	}
	if c.state == SlotsShown && !c.form.sameSearch(f) {
		c.slots = nil
		c.selected = -1
		f.Time = ""
		c.clearStatus()
		c.transition(Idle)
	}
	c.form = f
}

// Search starts a slot search for the form's psychologist and date. It
// returns nil when the input is incomplete or a request is in flight.
func (c *Controller) Search() tea.Cmd {
	if c.state.Busy() {
		log.Printf("booking: search ignored while %s", c.state)
		return nil
	}
	if err := c.form.validateSearch(); err != nil {
		c.fail(err, err.(*ValidationError).Message)
		return nil
	}

	c.seq++
	seq := c.seq
	psychologistID := c.form.PsychologistID
	dayStart, dayEnd := timeutil.DayBounds(c.form.Date)

	c.clearStatus()
	c.transition(Searching)

	gw := c.gateway
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		slots, err := gw.SearchAvailableSlots(ctx, psychologistID, dayStart, dayEnd)
		return searchResultMsg{seq: seq, slots: slots, err: err}
	}
}

// SelectSlot picks candidate i and copies its start time into the form.
func (c *Controller) SelectSlot(i int) error {
	if c.state != SlotsShown {
		err := &ValidationError{Message: MsgSearchFirst}
		c.fail(err, err.Message)
		return err
	}
	if i < 0 || i >= len(c.slots) {
		err := &ValidationError{Message: MsgSlotOutOfRange}
		c.fail(err, err.Message)
		return err
	}

	slot := c.slots[i]
	c.selected = i
	c.form.Time = slot.Start().In(c.form.Date.Location()).Format("15:04")
	if c.form.DurationMinutes == 0 && slices.Contains(model.Durations, slot.DurationMinutes) {
		c.form.DurationMinutes = slot.DurationMinutes
	}
	c.clearStatus()
	return nil
}

// Submit books the selected slot. It returns nil when a request is in
// flight, when no search results are shown, or when the input is
// incomplete.
func (c *Controller) Submit() tea.Cmd {
	if c.state.Busy() {
		log.Printf("booking: submit ignored while %s", c.state)
		return nil
	}
	if c.state != SlotsShown {
		err := &ValidationError{Message: MsgSearchFirst}
		c.fail(err, err.Message)
		return nil
	}
	if err := c.form.validateSubmit(); err != nil {
		c.fail(err, err.(*ValidationError).Message)
		return nil
	}

	candidate := model.Appointment{
		PsychologistID:  c.form.PsychologistID,
		PatientID:       c.patientID,
		DateTime:        model.NewLocalDateTime(c.form.start()),
		DurationMinutes: c.form.DurationMinutes,
		Status:          model.StatusScheduled,
		Type:            c.form.Type,
		Notes:           c.form.Notes,
	}

	c.seq++
	seq := c.seq
	c.clearStatus()
	c.transition(Submitting)

	gw := c.gateway
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		booked, err := gw.BookAppointment(ctx, candidate)
		return submitResultMsg{seq: seq, candidate: candidate, booked: booked, err: err}
	}
}

// Abandon drops any in-flight request and returns to Idle. Late results
// for the dropped request are ignored by Update. The form is kept.
func (c *Controller) Abandon() {
	c.seq++
	c.slots = nil
	c.selected = -1
	c.clearStatus()
	c.transition(Idle)
}

// Update applies a result produced by one of the controller's commands.
// Messages it does not own are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case searchResultMsg:
		if msg.seq != c.seq || c.state != Searching {
			log.Printf("booking: dropping stale search result %d (current %d)", msg.seq, c.seq)
			return nil
		}
		c.applySearch(msg)

	case submitResultMsg:
		if msg.seq != c.seq || c.state != Submitting {
			log.Printf("booking: dropping stale submit result %d (current %d)", msg.seq, c.seq)
			return nil
		}
		return c.applySubmit(msg)

	case noticeExpiredMsg:
		if msg.id == c.noticeID && c.status.Text == MsgBooked {
			c.clearStatus()
		}
	}
	return nil
}

// Owns reports whether msg was produced by this package.
func Owns(msg tea.Msg) bool {
	switch msg.(type) {
	case searchResultMsg, submitResultMsg, noticeExpiredMsg:
		return true
	}
	return false
}

func (c *Controller) applySearch(msg searchResultMsg) {
	if msg.err != nil {
		c.slots = nil
		c.selected = -1
		c.fail(msg.err, backend.UserMessage(msg.err))
		c.transition(Idle)
		return
	}

	c.slots = msg.slots
	c.selected = -1
	c.form.Time = ""
	if len(msg.slots) == 0 {
		c.setStatus(model.SeverityInfo, MsgNoSlots)
	}
	c.transition(SlotsShown)
}

func (c *Controller) applySubmit(msg submitResultMsg) tea.Cmd {
	if msg.err != nil {
		text := MsgBookingFailed
		if backend.UserMessage(msg.err) != backend.GenericFailureMessage {
			text = backend.UserMessage(msg.err)
		}
		if backend.IsConflict(msg.err) {
			c.dropSlot(msg.candidate)
			if len(c.slots) == 0 {
				text = strings.TrimRight(text, ". ") + ". " + MsgNoSlots
			}
		}
		c.fail(msg.err, text)
		c.transition(Failed)
		c.transition(SlotsShown)
		return nil
	}

	c.booked = msg.booked
	c.slots = nil
	c.selected = -1
	c.form = Form{}
	c.setStatus(model.SeveritySuccess, MsgBooked)
	c.transition(Booked)

	if c.publisher != nil {
		c.publisher.Publish(model.SeveritySuccess, MsgBooked)
	}

	c.noticeID++
	id := c.noticeID
	return tea.Tick(c.noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{id: id}
	})
}

// dropSlot removes the candidate the backend reported as taken.
func (c *Controller) dropSlot(candidate model.Appointment) {
	kept := c.slots[:0:0]
	for _, s := range c.slots {
		if s.PsychologistID == candidate.PsychologistID && s.Start().Equal(candidate.Start()) {
			continue
		}
		kept = append(kept, s)
	}
	c.slots = kept
	c.selected = -1
	c.form.Time = ""
}

func (c *Controller) transition(to State) {
	from := c.state
	c.state = to
	if c.onTransition != nil && from != to {
		c.onTransition(from, to)
	}
}

func (c *Controller) fail(err error, text string) {
	c.lastErr = err
	c.status = Status{Severity: model.SeverityError, Text: text}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		log.Printf("booking: %v", err)
	}
}

func (c *Controller) setStatus(sev model.Severity, text string) {
	c.lastErr = nil
	c.status = Status{Severity: sev, Text: text}
}

func (c *Controller) clearStatus() {
	c.lastErr = nil
	c.status = Status{}
}

package booking

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/care-portal/internal/backend"
	"github.com/nhle/care-portal/internal/model"
)

type fakeGateway struct {
	mu          sync.Mutex
	searchCalls int
	bookCalls   int
	lastStart   time.Time
	lastEnd     time.Time
	lastBooked  model.Appointment

	slots     []model.Appointment
	searchErr error
	bookErr   error
}

func (g *fakeGateway) SearchAvailableSlots(_ context.Context, _ int64, dayStart, dayEnd time.Time) ([]model.Appointment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.searchCalls++
	g.lastStart, g.lastEnd = dayStart, dayEnd
	if g.searchErr != nil {
		return nil, g.searchErr
	}
	return g.slots, nil
}

func (g *fakeGateway) BookAppointment(_ context.Context, candidate model.Appointment) (*model.Appointment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bookCalls++
	g.lastBooked = candidate
	if g.bookErr != nil {
		return nil, g.bookErr
	}
	booked := candidate
	booked.ID = 100
	return &booked, nil
}

type recordingPublisher struct {
	published []string
}

func (p *recordingPublisher) Publish(_ model.Severity, message string) model.Notification {
	p.published = append(p.published, message)
	return model.Notification{Message: message}
}

var feb1 = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

func slotAt(hour int) model.Appointment {
	return model.Appointment{
		PsychologistID:  1,
		DateTime:        model.LocalDateTime{Time: time.Date(2026, 2, 1, hour, 0, 0, 0, time.UTC)},
		DurationMinutes: 60,
		Status:          model.StatusScheduled,
	}
}

func completeForm() Form {
	return Form{
		PsychologistID:  1,
		Date:            feb1,
		Time:            "10:00",
		Type:            model.TypeInitial,
		DurationMinutes: 60,
	}
}

// run executes cmd and feeds its message back into the controller.
func run(c *Controller, cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	return c.Update(cmd())
}

func searchedController(t *testing.T, gw *fakeGateway, opts ...Option) *Controller {
	t.Helper()
	c := New(gw, 9, opts...)
	c.SetForm(Form{PsychologistID: 1, Date: feb1, Type: model.TypeInitial, DurationMinutes: 60})
	run(c, c.Search())
	require.Equal(t, SlotsShown, c.State())
	return c
}

func TestSearchRequiresPsychologistAndDate(t *testing.T) {
	tests := []struct {
		name string
		form Form
	}{
		{"empty", Form{}},
		{"no date", Form{PsychologistID: 1}},
		{"no psychologist", Form{Date: feb1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{}
			c := New(gw, 9)
			c.SetForm(tt.form)

			assert.Nil(t, c.Search())
			assert.Equal(t, Idle, c.State())
			assert.Equal(t, MsgSearchIncomplete, c.Status().Text)

			var verr *ValidationError
			assert.ErrorAs(t, c.Err(), &verr)
			assert.Zero(t, gw.searchCalls)
		})
	}
}

func TestSearchShowsSlots(t *testing.T) {
	gw := &fakeGateway{slots: []model.Appointment{slotAt(10)}}
	c := New(gw, 9)
	c.SetForm(Form{PsychologistID: 1, Date: feb1.Add(15 * time.Hour)})

	cmd := c.Search()
	require.NotNil(t, cmd)
	assert.Equal(t, Searching, c.State())

	run(c, cmd)
	assert.Equal(t, SlotsShown, c.State())
	require.Len(t, c.Slots(), 1)
	assert.Empty(t, c.Status().Text)
	assert.NoError(t, c.Err())

	assert.Equal(t, feb1, gw.lastStart)
	assert.Equal(t, time.Date(2026, 2, 1, 23, 59, 59, 0, time.UTC), gw.lastEnd)
}

func TestSearchEmptyIsInformational(t *testing.T) {
	gw := &fakeGateway{}
	c := searchedController(t, gw)

	assert.Empty(t, c.Slots())
	assert.Equal(t, Status{Severity: model.SeverityInfo, Text: MsgNoSlots}, c.Status())
	assert.NoError(t, c.Err())
}

func TestSearchFailureReturnsToIdle(t *testing.T) {
	gw := &fakeGateway{searchErr: &backend.TransportError{Method: http.MethodGet, Path: "/x", Err: errors.New("refused")}}
	c := New(gw, 9)
	c.SetForm(Form{PsychologistID: 1, Date: feb1})

	run(c, c.Search())
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, backend.GenericFailureMessage, c.Status().Text)
	assert.True(t, backend.IsTransport(c.Err()))
}

func TestSearchIgnoredWhileBusy(t *testing.T) {
	gw := &fakeGateway{slots: []model.Appointment{slotAt(10)}}
	c := New(gw, 9)
	c.SetForm(Form{PsychologistID: 1, Date: feb1})

	first := c.Search()
	require.NotNil(t, first)
	assert.Nil(t, c.Search())
	assert.Nil(t, c.Submit())

	run(c, first)
	assert.Equal(t, 1, gw.searchCalls)
	assert.Equal(t, SlotsShown, c.State())
}

func TestSelectSlot(t *testing.T) {
	gw := &fakeGateway{slots: []model.Appointment{slotAt(10), slotAt(14)}}
	c := searchedController(t, gw)

	require.NoError(t, c.SelectSlot(1))
	assert.Equal(t, 1, c.Selected())
	assert.Equal(t, "14:00", c.Form().Time)

	var verr *ValidationError
	assert.ErrorAs(t, c.SelectSlot(2), &verr)
	assert.ErrorAs(t, c.SelectSlot(-1), &verr)
	assert.Equal(t, 1, c.Selected())
}

func TestSelectSlotFillsMissingDuration(t *testing.T) {
	gw := &fakeGateway{slots: []model.Appointment{slotAt(10)}}
	c := New(gw, 9)
	c.SetForm(Form{PsychologistID: 1, Date: feb1})
	run(c, c.Search())

	require.NoError(t, c.SelectSlot(0))
	assert.Equal(t, 60, c.Form().DurationMinutes)
}

func TestSubmitWithMissingFieldMakesNoCall(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Form)
		wantState State
		wantMsg   string
	}{
		// clearing a search key drops the shown slots
		{"clinician", func(f *Form) { f.PsychologistID = 0 }, Idle, MsgSearchFirst},
		{"date", func(f *Form) { f.Date = time.Time{} }, Idle, MsgSearchFirst},
		{"time", func(f *Form) { f.Time = "" }, SlotsShown, MsgSubmitIncomplete},
		{"type", func(f *Form) { f.Type = "" }, SlotsShown, MsgSubmitIncomplete},
		{"duration", func(f *Form) { f.DurationMinutes = 0 }, SlotsShown, MsgSubmitIncomplete},
		{"unsupported duration", func(f *Form) { f.DurationMinutes = 50 }, SlotsShown, MsgBadDuration},
		{"garbled time", func(f *Form) { f.Time = "ten" }, SlotsShown, MsgSubmitIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{slots: []model.Appointment{slotAt(10)}}
			c := searchedController(t, gw)

			f := completeForm()
			tt.mutate(&f)
			c.SetForm(f)

			assert.Nil(t, c.Submit())
			assert.Equal(t, tt.wantState, c.State())
			assert.Equal(t, tt.wantMsg, c.Status().Text)
			assert.Zero(t, gw.bookCalls)

			var verr *ValidationError
			assert.ErrorAs(t, c.Err(), &verr)
		})
	}
}

func TestSubmitBeforeSearchIsRejected(t *testing.T) {
	gw := &fakeGateway{}
	c := New(gw, 9)
	c.SetForm(completeForm())

	assert.Nil(t, c.Submit())
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, MsgSearchFirst, c.Status().Text)
	assert.Zero(t, gw.bookCalls)
}

func TestSubmitBooks(t *testing.T) {
	gw := &fakeGateway{slots: []model.Appointment{slotAt(10)}}
	pub := &recordingPublisher{}
	var transitions []State
	c := searchedController(t, gw,
		WithPublisher(pub),
		WithNoticeDuration(time.Millisecond),
		OnTransition(func(_, to State) { transitions = append(transitions, to) }),
	)
	require.NoError(t, c.SelectSlot(0))
	c.form.Notes = "first visit"

	cmd := c.Submit()
	require.NotNil(t, cmd)
	assert.Equal(t, Submitting, c.State())

	expire := run(c, cmd)
	require.NotNil(t, expire)

	assert.Equal(t, Booked, c.State())
	assert.Equal(t, MsgBooked, c.Status().Text)
	assert.Empty(t, c.Slots())
	assert.Equal(t, Form{}, c.Form())
	require.NotNil(t, c.Booked())
	assert.Equal(t, int64(100), c.Booked().ID)
	assert.Equal(t, []string{MsgBooked}, pub.published)
	assert.Equal(t, []State{Searching, SlotsShown, Submitting, Booked}, transitions)

	assert.Equal(t, int64(9), gw.lastBooked.PatientID)
	assert.True(t, gw.lastBooked.Start().Equal(time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)))
	assert.Equal(t, model.StatusScheduled, gw.lastBooked.Status)
	assert.Equal(t, "first visit", gw.lastBooked.Notes)

	c.Update(expire())
	assert.Empty(t, c.Status().Text)
}

func TestSubmitConflictReturnsToSlots(t *testing.T) {
	gw := &fakeGateway{
		slots:   []model.Appointment{slotAt(10), slotAt(11)},
		bookErr: &backend.ConflictError{StatusCode: http.StatusBadRequest, Message: "Time slot already booked"},
	}
	var transitions []State
	c := searchedController(t, gw, OnTransition(func(_, to State) { transitions = append(transitions, to) }))
	require.NoError(t, c.SelectSlot(0))

	assert.Nil(t, run(c, c.Submit()))

	assert.Equal(t, SlotsShown, c.State())
	assert.Contains(t, c.Status().Text, "Time slot already booked")
	assert.Equal(t, model.SeverityError, c.Status().Severity)
	assert.True(t, backend.IsConflict(c.Err()))
	assert.Equal(t, []State{Searching, SlotsShown, Submitting, Failed, SlotsShown}, transitions)

	// the taken slot is gone, the other one stays selectable
	require.Len(t, c.Slots(), 1)
	assert.Equal(t, 11, c.Slots()[0].Start().Hour())
	assert.Equal(t, -1, c.Selected())
	assert.Empty(t, c.Form().Time)
}

func TestConflictOnLastSlotReportsNoSlots(t *testing.T) {
	gw := &fakeGateway{
		slots:   []model.Appointment{slotAt(10)},
		bookErr: &backend.ConflictError{StatusCode: http.StatusConflict, Message: "Time slot already booked"},
	}
	c := searchedController(t, gw)
	require.NoError(t, c.SelectSlot(0))

	run(c, c.Submit())

	assert.Equal(t, SlotsShown, c.State())
	assert.Empty(t, c.Slots())
	assert.Contains(t, c.Status().Text, "Time slot already booked")
	assert.Contains(t, c.Status().Text, MsgNoSlots)
}

func TestSelectSlotSkipsUnofferedDuration(t *testing.T) {
	odd := slotAt(10)
	odd.DurationMinutes = 50
	gw := &fakeGateway{slots: []model.Appointment{odd}}
	c := New(gw, 9)
	c.SetForm(Form{PsychologistID: 1, Date: feb1, Type: model.TypeInitial})
	run(c, c.Search())

	require.NoError(t, c.SelectSlot(0))
	assert.Zero(t, c.Form().DurationMinutes)

	f := c.Form()
	f.DurationMinutes = 45
	c.SetForm(f)
	require.NotNil(t, c.Submit())
	assert.Equal(t, Submitting, c.State())
}

func TestChangingSearchKeysDiscardsSlots(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
	}{
		{"psychologist", func(f *Form) { f.PsychologistID = 2 }},
		{"date", func(f *Form) { f.Date = feb1.AddDate(0, 0, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{slots: []model.Appointment{slotAt(10)}}
			c := searchedController(t, gw)
			require.NoError(t, c.SelectSlot(0))

			f := c.Form()
			tt.mutate(&f)
			c.SetForm(f)

			assert.Equal(t, Idle, c.State())
			assert.Empty(t, c.Slots())
			assert.Equal(t, -1, c.Selected())
			assert.Empty(t, c.Form().Time)

			assert.Nil(t, c.Submit())
			assert.Equal(t, MsgSearchFirst, c.Status().Text)
			assert.Zero(t, gw.bookCalls)
		})
	}
}

func TestEditingOtherFieldsKeepsSlots(t *testing.T) {
	gw := &fakeGateway{slots: []model.Appointment{slotAt(10)}}
	c := searchedController(t, gw)
	require.NoError(t, c.SelectSlot(0))

	f := c.Form()
	f.Notes = "prefers video"
	f.Date = feb1.Add(9 * time.Hour)
	c.SetForm(f)

	assert.Equal(t, SlotsShown, c.State())
	assert.Len(t, c.Slots(), 1)
	assert.Equal(t, "10:00", c.Form().Time)
}

func TestSubmitTransportFailureUsesGenericMessage(t *testing.T) {
	gw := &fakeGateway{
		slots:   []model.Appointment{slotAt(10)},
		bookErr: &backend.TransportError{Method: http.MethodPost, Path: "/appointments/book", Err: errors.New("reset")},
	}
	c := searchedController(t, gw)
	require.NoError(t, c.SelectSlot(0))

	run(c, c.Submit())
	assert.Equal(t, SlotsShown, c.State())
	assert.Equal(t, MsgBookingFailed, c.Status().Text)
	assert.Len(t, c.Slots(), 1)
}

func TestAbandonDiscardsLateResult(t *testing.T) {
	gw := &fakeGateway{slots: []model.Appointment{slotAt(10)}}
	c := New(gw, 9)
	c.SetForm(Form{PsychologistID: 1, Date: feb1})

	stale := c.Search()
	c.Abandon()
	assert.Equal(t, Idle, c.State())

	c.Update(stale())
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, c.Slots())
}

func TestOnlyLatestSearchApplies(t *testing.T) {
	gw := &fakeGateway{slots: []model.Appointment{slotAt(10)}}
	c := New(gw, 9)
	c.SetForm(Form{PsychologistID: 1, Date: feb1})

	stale := c.Search()
	staleMsg := stale()
	c.Abandon()

	gw.slots = []model.Appointment{slotAt(13), slotAt(15)}
	fresh := c.Search()
	c.Update(fresh())
	require.Len(t, c.Slots(), 2)

	c.Update(staleMsg)
	assert.Len(t, c.Slots(), 2)
	assert.Equal(t, SlotsShown, c.State())
}

func TestAbandonDuringSubmit(t *testing.T) {
	gw := &fakeGateway{slots: []model.Appointment{slotAt(10)}}
	pub := &recordingPublisher{}
	c := searchedController(t, gw, WithPublisher(pub))
	require.NoError(t, c.SelectSlot(0))

	pending := c.Submit()
	c.Abandon()
	assert.Nil(t, run(c, pending))

	assert.Equal(t, Idle, c.State())
	assert.Nil(t, c.Booked())
	assert.Empty(t, pub.published)
}

func TestStaleNoticeExpiryKeepsNewerStatus(t *testing.T) {
	gw := &fakeGateway{slots: []model.Appointment{slotAt(10)}}
	c := searchedController(t, gw, WithNoticeDuration(time.Millisecond))
	require.NoError(t, c.SelectSlot(0))
	expire := run(c, c.Submit())
	require.NotNil(t, expire)

	// a new search replaces the notice before it expires
	c.SetForm(Form{PsychologistID: 1, Date: feb1})
	gw.slots = nil
	run(c, c.Search())
	require.Equal(t, MsgNoSlots, c.Status().Text)

	c.Update(expire())
	assert.Equal(t, MsgNoSlots, c.Status().Text)
}

func TestOwns(t *testing.T) {
	assert.True(t, Owns(searchResultMsg{}))
	assert.True(t, Owns(noticeExpiredMsg{}))
	assert.False(t, Owns(tea.KeyMsg{}))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "slots shown", SlotsShown.String())
	assert.True(t, Submitting.Busy())
	assert.False(t, Failed.Busy())
}

// Package reminder decides, at most once per local day, whether the daily
// check-in reminder should be shown. It never talks to the backend; the
// caller supplies whether today's check-in is done.
package reminder

import (
	"fmt"
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"

	"github.com/nhle/care-portal/internal/timeutil"
)

// DefaultHour is the local hour from which the reminder may fire.
const DefaultHour = 20

// DefaultPollInterval is how often the scheduler re-checks the hour
// threshold while the app is open.
const DefaultPollInterval = time.Minute

// TickMsg is a tea.Msg sent on every poll. The receiver combines it with
// the completion fact and calls ShouldRemindNow.
type TickMsg struct {
	At               time.Time
	ThresholdCrossed bool
}

// DayResetMsg is a tea.Msg sent when the midnight reset clears the shown
// flag.
type DayResetMsg struct {
	Day time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithHour sets the reminder hour. Values outside 0..23 fall back to
// DefaultHour.
func WithHour(hour int) Option {
	return func(s *Scheduler) {
		if hour < 0 || hour > 23 {
			hour = DefaultHour
		}
		s.hour = hour
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLocation sets the zone whose calendar days and hours apply.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithPollInterval sets the threshold poll interval. Non-positive values
// keep DefaultPollInterval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// Scheduler owns the reminder state for one session: the shown flag and
// the day it belongs to. Its two timers (threshold poll and midnight
// reset) and the UI goroutine may touch the state concurrently, so every
// access goes through mu.
type Scheduler struct {
	mu sync.Mutex

	hour         int
	pollInterval time.Duration
	loc          *time.Location
	now          func() time.Time

	shown bool
	day   time.Time // local midnight of the day shown belongs to

	cron     *cron.Cron
	midnight *time.Timer
	msgCh    chan tea.Msg
	running  bool

	afterFunc func(time.Duration, func()) *time.Timer
}

// New creates a scheduler. Its day marker starts at the current local day.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		hour:         DefaultHour,
		pollInterval: DefaultPollInterval,
		loc:          time.Local,
		now:          time.Now,
		msgCh:        make(chan tea.Msg, 4),
		afterFunc:    time.AfterFunc,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.day = timeutil.StartOfDay(s.clock())
	return s
}

// Hour returns the configured reminder hour.
func (s *Scheduler) Hour() int {
	return s.hour
}

// ShouldRemindNow reports whether the reminder should be shown: now is at
// or past the reminder hour, today's check-in is not done, and the
// reminder has not been shown since the last midnight reset.
func (s *Scheduler) ShouldRemindNow(hasCompletedToday bool, now time.Time) bool {
	now = now.In(s.loc)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollDayLocked(now)
	return now.Hour() >= s.hour && !hasCompletedToday && !s.shown
}

// MarkShown records that the reminder fired today. Repeated calls within
// the same day have no further effect.
func (s *Scheduler) MarkShown() {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollDayLocked(now)
	s.shown = true
}

// ShownToday reports whether the reminder has fired since the last reset.
func (s *Scheduler) ShownToday() bool {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rollDayLocked(now)
	return s.shown
}

// Start launches the threshold poll and arms the midnight reset. The
// returned command delivers the first TickMsg or DayResetMsg; call
// WaitForNextTick after handling each one. Calling Start on a running
// scheduler returns nil.
func (s *Scheduler) Start() tea.Cmd {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	c := cron.New(cron.WithLocation(s.loc))
	if _, err := c.AddFunc(pollSpec(s.pollInterval), s.poll); err != nil {
		log.Printf("reminder: scheduling poll: %v", err)
	}
	c.Start()
	s.cron = c

	s.armMidnightLocked(s.clock())
	s.running = true

	return s.waitForTick()
}

// Stop halts both timers. It is safe to call on a stopped scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false

	if s.midnight != nil {
		s.midnight.Stop()
		s.midnight = nil
	}
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}

// WaitForNextTick returns a tea.Cmd that waits for the next scheduler
// message.
func (s *Scheduler) WaitForNextTick() tea.Cmd {
	return s.waitForTick()
}

func (s *Scheduler) waitForTick() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-s.msgCh
		if !ok {
			return nil
		}
		return msg
	}
}

// poll runs on the cron goroutine.
func (s *Scheduler) poll() {
	now := s.clock()

	s.mu.Lock()
	s.rollDayLocked(now)
	crossed := now.Hour() >= s.hour
	s.mu.Unlock()

	s.send(TickMsg{At: now, ThresholdCrossed: crossed})
}

// resetAtMidnight rolls the day marker and arms exactly one timer for the
// following midnight. The flag is cleared only when the wall clock has
// reached a later day than the marker, so a timer that fires late after a
// suspend cannot undo a reminder already shown that day.
func (s *Scheduler) resetAtMidnight() {
	now := s.clock()

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.rollDayLocked(now)
	day := s.day
	s.armMidnightLocked(now)
	s.mu.Unlock()

	log.Printf("reminder: midnight reset for %s", day.Format("2006-01-02"))
	s.send(DayResetMsg{Day: day})
}

func (s *Scheduler) armMidnightLocked(now time.Time) {
	if s.midnight != nil {
		s.midnight.Stop()
	}
	s.midnight = s.afterFunc(timeutil.UntilNextMidnight(now), s.resetAtMidnight)
}

// rollDayLocked clears the shown flag when now falls on a later day than
// the marker. It covers a midnight timer that never fired, for example
// after the machine slept across the boundary.
func (s *Scheduler) rollDayLocked(now time.Time) {
	today := timeutil.StartOfDay(now)
	if today.After(s.day) {
		s.shown = false
		s.day = today
	}
}

// send delivers msg without blocking the timer goroutines.
func (s *Scheduler) send(msg tea.Msg) {
	select {
	case s.msgCh <- msg:
	default:
		// Receiver is behind; the next tick carries the same information.
	}
}

func (s *Scheduler) clock() time.Time {
	return s.now().In(s.loc)
}

// pollSpec turns an interval into a cron spec. Whole minutes use the
// five-field form so polls line up with the hour boundary.
func pollSpec(d time.Duration) string {
	if d%time.Minute == 0 {
		m := int(d / time.Minute)
		if m == 1 {
			return "* * * * *"
		}
		if m < 60 && 60%m == 0 {
			return fmt.Sprintf("*/%d * * * *", m)
		}
	}
	return "@every " + d.String()
}

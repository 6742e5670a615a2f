package reminder

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a settable wall clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func at(day, hour, minute int) time.Time {
	return time.Date(2026, 2, day, hour, minute, 0, 0, time.UTC)
}

func newTestScheduler(clock *fakeClock, opts ...Option) *Scheduler {
	opts = append([]Option{WithClock(clock.Now), WithLocation(time.UTC)}, opts...)
	return New(opts...)
}

func TestShouldRemindNow(t *testing.T) {
	clock := &fakeClock{t: at(1, 8, 0)}
	s := newTestScheduler(clock)

	tests := []struct {
		name string
		done bool
		now  time.Time
		want bool
	}{
		{"before the hour", false, at(1, 19, 59), false},
		{"at the hour", false, at(1, 20, 0), true},
		{"after the hour", false, at(1, 20, 1), true},
		{"late evening", false, at(1, 23, 59), true},
		{"already completed", true, at(1, 20, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.ShouldRemindNow(tt.done, tt.now))
		})
	}
}

func TestMarkShownSuppressesUntilReset(t *testing.T) {
	clock := &fakeClock{t: at(1, 20, 1)}
	s := newTestScheduler(clock)

	require.True(t, s.ShouldRemindNow(false, at(1, 20, 1)))

	s.MarkShown()
	assert.False(t, s.ShouldRemindNow(false, at(1, 20, 1)))

	s.MarkShown()
	assert.False(t, s.ShouldRemindNow(false, at(1, 21, 0)))
	assert.True(t, s.ShownToday())
}

func TestMidnightResetClearsShown(t *testing.T) {
	clock := &fakeClock{t: at(1, 20, 1)}
	s := newTestScheduler(clock)
	var armed []time.Duration
	s.afterFunc = func(d time.Duration, f func()) *time.Timer {
		armed = append(armed, d)
		return time.NewTimer(time.Hour)
	}

	s.Start()
	defer s.Stop()
	require.Equal(t, []time.Duration{3*time.Hour + 59*time.Minute}, armed)

	s.MarkShown()
	require.False(t, s.ShouldRemindNow(false, at(1, 20, 1)))

	clock.Set(at(2, 0, 0))
	s.resetAtMidnight()

	assert.False(t, s.ShownToday())
	assert.False(t, s.ShouldRemindNow(false, at(2, 19, 0)))
	assert.True(t, s.ShouldRemindNow(false, at(2, 20, 1)))

	// each firing arms exactly one more timer, a full day ahead
	require.Len(t, armed, 2)
	assert.Equal(t, 24*time.Hour, armed[1])

	// The live poll may interleave ticks ahead of the reset message.
	var reset DayResetMsg
	for i := 0; i < 4; i++ {
		if r, ok := s.WaitForNextTick()().(DayResetMsg); ok {
			reset = r
			break
		}
	}
	assert.Equal(t, at(2, 0, 0), reset.Day)
}

func TestMissedMidnightSelfCorrects(t *testing.T) {
	clock := &fakeClock{t: at(1, 21, 0)}
	s := newTestScheduler(clock)

	s.MarkShown()
	require.False(t, s.ShouldRemindNow(false, at(1, 22, 0)))

	// No timer fired, but the wall clock moved to a later day.
	clock.Set(at(3, 20, 30))
	assert.True(t, s.ShouldRemindNow(false, at(3, 20, 30)))
	assert.False(t, s.ShownToday())
}

func TestLateMidnightTimerKeepsTodaysMark(t *testing.T) {
	clock := &fakeClock{t: at(1, 20, 0)}
	s := newTestScheduler(clock)
	s.afterFunc = func(time.Duration, func()) *time.Timer { return time.NewTimer(time.Hour) }
	s.Start()
	defer s.Stop()

	// The machine slept across midnight; a poll rolled the day first.
	clock.Set(at(2, 20, 1))
	require.True(t, s.ShouldRemindNow(false, at(2, 20, 1)))
	s.MarkShown()

	// The day-1 timer fires hours late on day 2.
	clock.Set(at(2, 22, 0))
	s.resetAtMidnight()

	assert.True(t, s.ShownToday())
	assert.False(t, s.ShouldRemindNow(false, at(2, 22, 0)))
}

func TestResetAfterMarkWins(t *testing.T) {
	clock := &fakeClock{t: at(1, 23, 59)}
	s := newTestScheduler(clock)
	s.afterFunc = func(time.Duration, func()) *time.Timer { return time.NewTimer(time.Hour) }
	s.Start()
	defer s.Stop()

	s.MarkShown()
	clock.Set(at(2, 0, 0))
	s.resetAtMidnight()

	assert.False(t, s.ShownToday())
}

func TestResetAfterStopIsIgnored(t *testing.T) {
	clock := &fakeClock{t: at(1, 20, 0)}
	s := newTestScheduler(clock)
	calls := 0
	s.afterFunc = func(time.Duration, func()) *time.Timer {
		calls++
		return time.NewTimer(time.Hour)
	}

	s.Start()
	s.Stop()
	s.Stop()
	s.resetAtMidnight()

	assert.Equal(t, 1, calls)
}

func TestStartTwiceReturnsNil(t *testing.T) {
	clock := &fakeClock{t: at(1, 9, 0)}
	s := newTestScheduler(clock)
	s.afterFunc = func(time.Duration, func()) *time.Timer { return time.NewTimer(time.Hour) }

	require.NotNil(t, s.Start())
	defer s.Stop()
	assert.Nil(t, s.Start())
}

func TestPollReportsThreshold(t *testing.T) {
	clock := &fakeClock{t: at(1, 19, 59)}
	s := newTestScheduler(clock)

	s.poll()
	clock.Set(at(1, 20, 0))
	s.poll()

	first := s.WaitForNextTick()().(TickMsg)
	second := s.WaitForNextTick()().(TickMsg)
	assert.False(t, first.ThresholdCrossed)
	assert.True(t, second.ThresholdCrossed)
	assert.Equal(t, at(1, 20, 0), second.At)
}

func TestPollDropsWhenReceiverIsBehind(t *testing.T) {
	clock := &fakeClock{t: at(1, 9, 0)}
	s := newTestScheduler(clock)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 20; i++ {
			s.poll()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poll blocked")
	}
}

func TestWithHourClamps(t *testing.T) {
	assert.Equal(t, 7, New(WithHour(7)).Hour())
	assert.Equal(t, 0, New(WithHour(0)).Hour())
	assert.Equal(t, DefaultHour, New(WithHour(24)).Hour())
	assert.Equal(t, DefaultHour, New(WithHour(-1)).Hour())
}

func TestCustomHour(t *testing.T) {
	clock := &fakeClock{t: at(1, 6, 0)}
	s := newTestScheduler(clock, WithHour(7))

	assert.False(t, s.ShouldRemindNow(false, at(1, 6, 59)))
	assert.True(t, s.ShouldRemindNow(false, at(1, 7, 0)))
}

func TestShouldRemindNowUsesSchedulerZone(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	clock := &fakeClock{t: at(1, 12, 0)}
	s := New(WithClock(clock.Now), WithLocation(loc))

	// 18:30 UTC is 20:30 in the scheduler's zone.
	assert.True(t, s.ShouldRemindNow(false, at(1, 18, 30)))
}

func TestPollSpec(t *testing.T) {
	assert.Equal(t, "* * * * *", pollSpec(time.Minute))
	assert.Equal(t, "*/5 * * * *", pollSpec(5*time.Minute))
	assert.Equal(t, "@every 30s", pollSpec(30*time.Second))
	assert.Equal(t, "@every 7m0s", pollSpec(7*time.Minute))
}

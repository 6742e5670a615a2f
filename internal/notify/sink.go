// Package notify holds the session's in-memory notification list and fans
// changes out to subscribers.
package notify

import (
	"log"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/nhle/care-portal/internal/model"
)

// ReminderMessage is the daily check-in reminder text.
const ReminderMessage = "You haven't completed today's check-in yet. Take a minute to log how you feel."

// ChangedMsg is a tea.Msg carrying the sink contents after a change,
// newest first. Dismissed records are included.
type ChangedMsg struct {
	Notifications []model.Notification
}

// Option configures a Sink.
type Option func(*Sink)

// WithClock overrides the clock used to stamp new notifications.
func WithClock(now func() time.Time) Option {
	return func(s *Sink) { s.now = now }
}

// Sink is an ordered list of notifications, newest first. Dismissed
// records stay in the list until ClearAll. A Sink must be closed at
// teardown to stop subscriber goroutines.
type Sink struct {
	mu     sync.Mutex
	items  []model.Notification
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool
	now    func() time.Time
}

// NewSink creates an empty sink.
func NewSink(opts ...Option) *Sink {
	s := &Sink{
		subs: make(map[uint64]*Subscription),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish prepends a notification and returns it.
func (s *Sink) Publish(severity model.Severity, message string) model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := model.Notification{
		ID:        uuid.NewString(),
		Severity:  severity,
		Message:   message,
		CreatedAt: s.now(),
	}
	s.items = append([]model.Notification{n}, s.items...)
	s.broadcastLocked()
	log.Printf("notify: %s %q", severity, message)
	return n
}

// Dismiss marks the notification with id as dismissed. Unknown ids and
// already dismissed records are ignored.
func (s *Sink) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].ID != id {
			continue
		}
		if s.items[i].Dismissed {
			return
		}
		s.items[i].Dismissed = true
		s.broadcastLocked()
		return
	}
}

// ClearAll removes every notification, dismissed or not.
func (s *Sink) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.broadcastLocked()
}

// Snapshot returns a copy of the current list, newest first.
func (s *Sink) Snapshot() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Visible returns the non-dismissed notifications, newest first.
func (s *Sink) Visible() []model.Notification {
	return model.Visible(s.Snapshot())
}

// Subscribe registers a listener. The current snapshot is delivered
// immediately, followed by one snapshot per change. Delivery never blocks
// publishers; undelivered snapshots queue up per subscriber.
func (s *Sink) Subscribe() *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub := &Subscription{
		sink: s,
		ch:   make(chan []model.Notification),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	if s.closed {
		sub.stop()
		return sub
	}

	s.nextID++
	sub.id = s.nextID
	s.subs[sub.id] = sub
	sub.enqueue(s.snapshotLocked())
	go sub.pump()
	return sub
}

// Close unsubscribes every listener. Later changes still update the list
// but reach no one.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, sub := range s.subs {
		sub.stop()
		delete(s.subs, id)
	}
}

func (s *Sink) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

func (s *Sink) snapshotLocked() []model.Notification {
	out := make([]model.Notification, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Sink) broadcastLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, sub := range s.subs {
		sub.enqueue(snap)
	}
}

// Subscription receives sink snapshots on C until unsubscribed.
type Subscription struct {
	id   uint64
	sink *Sink

	ch   chan []model.Notification
	wake chan struct{}
	done chan struct{}

	mu       sync.Mutex
	queue    [][]model.Notification
	stopOnce sync.Once
}

// C delivers snapshots. It is closed once the subscription ends.
func (sub *Subscription) C() <-chan []model.Notification {
	return sub.ch
}

// Unsubscribe ends the subscription. Calling it more than once is safe.
func (sub *Subscription) Unsubscribe() {
	if sub.sink != nil && sub.id != 0 {
		sub.sink.remove(sub.id)
	}
	sub.stop()
}

// WaitForChange returns a tea.Cmd that blocks until the next snapshot and
// wraps it in a ChangedMsg. It yields nil once the subscription ends.
func (sub *Subscription) WaitForChange() tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-sub.ch
		if !ok {
			return nil
		}
		return ChangedMsg{Notifications: snap}
	}
}

func (sub *Subscription) stop() {
	sub.stopOnce.Do(func() {
		close(sub.done)
		if sub.id == 0 {
			close(sub.ch)
		}
	})
}

func (sub *Subscription) enqueue(snap []model.Notification) {
	sub.mu.Lock()
	sub.queue = append(sub.queue, snap)
	sub.mu.Unlock()

	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

// pump forwards queued snapshots to ch in order and closes ch on stop.
func (sub *Subscription) pump() {
	defer close(sub.ch)

	for {
		sub.mu.Lock()
		if len(sub.queue) == 0 {
			sub.mu.Unlock()
			select {
			case <-sub.wake:
				continue
			case <-sub.done:
				return
			}
		}
		next := sub.queue[0]
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()

		select {
		case sub.ch <- next:
		case <-sub.done:
			return
		}
	}
}

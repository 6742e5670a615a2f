package app

import (
	"log"
	"time"

	"github.com/nhle/care-portal/internal/backend"
	"github.com/nhle/care-portal/internal/booking"
	"github.com/nhle/care-portal/internal/credential"
	"github.com/nhle/care-portal/internal/model"
	"github.com/nhle/care-portal/internal/notify"
	"github.com/nhle/care-portal/internal/reminder"
)

// Notices published when the session starts.
const (
	NoticeNoToken      = "No backend token configured. Set CAREPORTAL_TOKEN or store one in the keyring."
	NoticeTokenExpired = "Your session has expired. Please sign in again."
)

// Session owns everything one portal run shares: the gateway, the
// notification sink, the reminder scheduler and the booking controller.
// It is created at start and closed at shutdown.
type Session struct {
	Config   *model.AppConfig
	Location *time.Location
	Gateway  *backend.Client
	Sink     *notify.Sink
	Reminder *reminder.Scheduler
	Booking  *booking.Controller

	now func() time.Time
}

// NewSession wires the session from cfg. token may be empty, in which
// case requests go out unauthenticated and a warning is published.
func NewSession(cfg *model.AppConfig, token string) *Session {
	return newSession(cfg, token, time.Now)
}

func newSession(cfg *model.AppConfig, token string, now func() time.Time) *Session {
	loc := cfg.Location()

	sink := notify.NewSink(notify.WithClock(now))
	gw := backend.NewClient(
		cfg.Backend.BaseURL,
		token,
		time.Duration(cfg.Backend.TimeoutSec)*time.Second,
	)

	sched := reminder.New(
		reminder.WithHour(cfg.Reminder.Hour),
		reminder.WithPollInterval(time.Duration(cfg.Reminder.PollIntervalSec)*time.Second),
		reminder.WithLocation(loc),
		reminder.WithClock(now),
	)

	ctrl := booking.New(gw, cfg.Patient.ID,
		booking.WithPublisher(sink),
		booking.WithNoticeDuration(time.Duration(cfg.Booking.SuccessNoticeSec)*time.Second),
		booking.OnTransition(func(from, to booking.State) {
			log.Printf("booking: %s -> %s", from, to)
		}),
	)

	s := &Session{
		Config:   cfg,
		Location: loc,
		Gateway:  gw,
		Sink:     sink,
		Reminder: sched,
		Booking:  ctrl,
		now:      now,
	}
	s.checkToken(token)
	return s
}

// checkToken warns about a missing or expired token without blocking
// start-up; the backend remains the authority.
func (s *Session) checkToken(token string) {
	if token == "" {
		s.Sink.Publish(model.SeverityWarning, NoticeNoToken)
		return
	}

	claims, err := credential.Peek(token)
	if err != nil {
		log.Printf("session: token is not a readable JWT: %v", err)
		return
	}
	if claims.Expired(s.now()) {
		s.Sink.Publish(model.SeverityError, NoticeTokenExpired)
	}
}

// Now returns the current time in the display zone.
func (s *Session) Now() time.Time {
	return s.now().In(s.Location)
}

// Close stops the reminder timers and ends every sink subscription.
func (s *Session) Close() {
	s.Booking.Abandon()
	s.Reminder.Stop()
	s.Sink.Close()
}

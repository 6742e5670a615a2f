package model

import (
	"errors"
	"sort"
	"time"

	"github.com/nhle/care-portal/internal/timeutil"
)

// AppointmentStatus is the server-authoritative lifecycle state.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "SCHEDULED"
	StatusConfirmed AppointmentStatus = "CONFIRMED"
	StatusCancelled AppointmentStatus = "CANCELLED"
	StatusCompleted AppointmentStatus = "COMPLETED"
	StatusNoShow    AppointmentStatus = "NO_SHOW"
)

// IsTerminal reports whether no further transition is possible.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	default:
		return false
	}
}

// AppointmentType classifies the session.
type AppointmentType string

const (
	TypeInitial   AppointmentType = "INITIAL"
	TypeFollowup  AppointmentType = "FOLLOWUP"
	TypeEmergency AppointmentType = "EMERGENCY"
	TypeVideo     AppointmentType = "VIDEO"
	TypeInPerson  AppointmentType = "IN_PERSON"
)

// AppointmentTypes lists every type in display order.
var AppointmentTypes = []AppointmentType{
	TypeInitial, TypeFollowup, TypeEmergency, TypeVideo, TypeInPerson,
}

// Durations lists the session lengths offered when booking, in minutes.
var Durations = []int{30, 45, 60, 90}

// Appointment is a booked (or candidate) session between a psychologist
// and a patient. Candidate slots returned by the availability search use
// the same shape with a zero ID.
type Appointment struct {
	// ID is assigned by the backend; zero until persisted.
	ID int64 `json:"id,omitempty"`

	PsychologistID  int64             `json:"psychologistId"`
	PatientID       int64             `json:"patientId"`
	DateTime        LocalDateTime     `json:"appointmentDateTime"`
	DurationMinutes int               `json:"durationMinutes"`
	Status          AppointmentStatus `json:"status"`
	Type            AppointmentType   `json:"type"`
	Notes           string            `json:"appointmentNotes,omitempty"`

	// Reschedule metadata.
	OriginalDateTime *LocalDateTime `json:"originalDateTime,omitempty"`
	RescheduledAt    *LocalDateTime `json:"rescheduledAt,omitempty"`

	// Cancellation metadata, only meaningful with StatusCancelled.
	CancelledAt        *LocalDateTime `json:"cancelledAt,omitempty"`
	CancellationReason string         `json:"cancellationReason,omitempty"`

	CreatedAt *LocalDateTime `json:"createdAt,omitempty"`
}

// IsPersisted reports whether the backend has assigned an ID.
func (a Appointment) IsPersisted() bool {
	return a.ID != 0
}

// Start returns the scheduled instant.
func (a Appointment) Start() time.Time {
	return a.DateTime.Time
}

// End returns the instant the session is scheduled to finish.
func (a Appointment) End() time.Time {
	return a.DateTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// Validate checks that the status agrees with the cancellation and
// reschedule metadata carried alongside it.
func (a Appointment) Validate() error {
	hasCancellation := a.CancelledAt != nil || a.CancellationReason != ""
	if hasCancellation && a.Status != StatusCancelled {
		return errors.New("cancellation details present on a non-cancelled appointment")
	}
	if (a.OriginalDateTime == nil) != (a.RescheduledAt == nil) {
		return errors.New("reschedule details must carry both the original time and the reschedule time")
	}
	if a.DurationMinutes < 0 {
		return errors.New("duration must not be negative")
	}
	return nil
}

// UpcomingAppointments returns the appointments scheduled after now that
// have not been cancelled, soonest first.
func UpcomingAppointments(list []Appointment, now time.Time) []Appointment {
	var out []Appointment
	for _, a := range list {
		if timeutil.IsFuture(a.Start(), now) && a.Status != StatusCancelled {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start().Before(out[j].Start())
	})
	return out
}

// PastAppointments returns appointments that already started or were
// cancelled, most recent first.
func PastAppointments(list []Appointment, now time.Time) []Appointment {
	var out []Appointment
	for _, a := range list {
		if !timeutil.IsFuture(a.Start(), now) || a.Status == StatusCancelled {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start().After(out[j].Start())
	})
	return out
}

// TodaysAppointments returns the non-cancelled appointments that fall on
// now's calendar day, in start order.
func TodaysAppointments(list []Appointment, now time.Time) []Appointment {
	var out []Appointment
	for _, a := range list {
		if a.Status == StatusCancelled {
			continue
		}
		if timeutil.IsSameCalendarDay(now, a.Start()) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start().Before(out[j].Start())
	})
	return out
}

// RescheduleRequest is the body of PUT /appointments/reschedule.
type RescheduleRequest struct {
	AppointmentID int64         `json:"appointmentId"`
	NewDateTime   LocalDateTime `json:"newDateTime"`
}

// CancelRequest is the body of POST /appointments/cancel.
type CancelRequest struct {
	AppointmentID      int64  `json:"appointmentId"`
	CancellationReason string `json:"cancellationReason"`
}

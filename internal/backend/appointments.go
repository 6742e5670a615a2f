package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/nhle/care-portal/internal/model"
	"github.com/nhle/care-portal/internal/timeutil"
)

// SearchAvailableSlots returns candidate slots for one psychologist within
// [dayStart, dayEnd], which must lie on a single calendar day. An empty
// result is not an error.
func (c *Client) SearchAvailableSlots(
	ctx context.Context,
	psychologistID int64,
	dayStart time.Time,
	dayEnd time.Time,
) ([]model.Appointment, error) {
	if psychologistID <= 0 {
		return nil, fmt.Errorf("psychologist id %d: %w", psychologistID, ErrInvalidArgument)
	}
	if !dayStart.Before(dayEnd) {
		return nil, fmt.Errorf("search range must start before it ends: %w", ErrInvalidArgument)
	}
	if !timeutil.IsSameCalendarDay(dayStart, dayEnd) {
		return nil, fmt.Errorf("search range must stay within one day: %w", ErrInvalidArgument)
	}

	q := url.Values{}
	q.Set("startTime", model.NewLocalDateTime(dayStart).Wire())
	q.Set("endTime", model.NewLocalDateTime(dayEnd).Wire())

	var slots []model.Appointment
	path := "/appointments/available-slots/" + strconv.FormatInt(psychologistID, 10)
	if err := c.get(ctx, path, q, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// BookAppointment submits a candidate slot. A 4xx rejection is returned
// as a *ConflictError carrying the backend's message.
func (c *Client) BookAppointment(
	ctx context.Context,
	candidate model.Appointment,
) (*model.Appointment, error) {
	var booked model.Appointment
	if err := c.post(ctx, "/appointments/book", nil, candidate, &booked); err != nil {
		return nil, asConflict(err)
	}
	return &booked, nil
}

// RescheduleAppointment moves an existing appointment to newInstant.
func (c *Client) RescheduleAppointment(
	ctx context.Context,
	appointmentID int64,
	newInstant time.Time,
) (*model.Appointment, error) {
	req := model.RescheduleRequest{
		AppointmentID: appointmentID,
		NewDateTime:   model.NewLocalDateTime(newInstant),
	}

	var moved model.Appointment
	if err := c.put(ctx, "/appointments/reschedule", req, &moved); err != nil {
		return nil, asConflict(err)
	}
	return &moved, nil
}

// CancelAppointment cancels an appointment with the given reason.
func (c *Client) CancelAppointment(
	ctx context.Context,
	appointmentID int64,
	reason string,
) error {
	req := model.CancelRequest{
		AppointmentID:      appointmentID,
		CancellationReason: reason,
	}
	return c.post(ctx, "/appointments/cancel", nil, req, nil)
}

// GetAppointment fetches a single appointment.
func (c *Client) GetAppointment(
	ctx context.Context,
	appointmentID int64,
) (*model.Appointment, error) {
	var appt model.Appointment
	path := "/appointments/" + strconv.FormatInt(appointmentID, 10)
	if err := c.get(ctx, path, nil, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// ListAppointmentsByPatient returns every appointment of a patient.
func (c *Client) ListAppointmentsByPatient(
	ctx context.Context,
	patientID int64,
) ([]model.Appointment, error) {
	return c.listAppointments(ctx, "/appointments/patient/", patientID)
}

// ListAppointmentsByPsychologist returns every appointment of a
// psychologist.
func (c *Client) ListAppointmentsByPsychologist(
	ctx context.Context,
	psychologistID int64,
) ([]model.Appointment, error) {
	return c.listAppointments(ctx, "/appointments/psychologist/", psychologistID)
}

func (c *Client) listAppointments(
	ctx context.Context,
	prefix string,
	id int64,
) ([]model.Appointment, error) {
	var list []model.Appointment
	if err := c.get(ctx, prefix+strconv.FormatInt(id, 10), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ListHistory returns the attendance history of a patient.
func (c *Client) ListHistory(
	ctx context.Context,
	patientID int64,
) ([]model.AppointmentHistory, error) {
	return c.listHistory(ctx, "/appointments/history/patient/", patientID)
}

// ListPsychologistHistory returns the attendance history of a
// psychologist's appointments.
func (c *Client) ListPsychologistHistory(
	ctx context.Context,
	psychologistID int64,
) ([]model.AppointmentHistory, error) {
	return c.listHistory(ctx, "/appointments/history/psychologist/", psychologistID)
}

func (c *Client) listHistory(
	ctx context.Context,
	prefix string,
	id int64,
) ([]model.AppointmentHistory, error) {
	var list []model.AppointmentHistory
	if err := c.get(ctx, prefix+strconv.FormatInt(id, 10), nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// RecordHistory appends an attendance record. The backend takes its
// inputs as query parameters.
func (c *Client) RecordHistory(
	ctx context.Context,
	rec model.HistoryRecord,
) (*model.AppointmentHistory, error) {
	if err := model.Validator().Struct(rec); err != nil {
		return nil, fmt.Errorf("%s: %w", model.FormatValidationError(err), ErrInvalidArgument)
	}

	q := url.Values{}
	q.Set("appointmentId", strconv.FormatInt(rec.AppointmentID, 10))
	q.Set("attendanceStatus", string(rec.AttendanceStatus))
	if rec.Notes != "" {
		q.Set("notes", rec.Notes)
	}
	if rec.ActualDurationMinutes > 0 {
		q.Set("actualDurationMinutes", strconv.Itoa(rec.ActualDurationMinutes))
	}

	var h model.AppointmentHistory
	if err := c.post(ctx, "/appointments/history/record", q, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

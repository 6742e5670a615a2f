package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(t time.Time) *LocalDateTime {
	l := LocalDateTime{Time: t}
	return &l
}

func TestAppointmentValidate(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		appt    Appointment
		wantErr bool
	}{
		{
			name: "scheduled without metadata",
			appt: Appointment{Status: StatusScheduled, DurationMinutes: 60},
		},
		{
			name: "cancelled with metadata",
			appt: Appointment{
				Status:             StatusCancelled,
				CancelledAt:        at(now),
				CancellationReason: "feeling better",
			},
		},
		{
			name:    "cancellation reason on a scheduled appointment",
			appt:    Appointment{Status: StatusScheduled, CancellationReason: "oops"},
			wantErr: true,
		},
		{
			name:    "cancelled timestamp on a completed appointment",
			appt:    Appointment{Status: StatusCompleted, CancelledAt: at(now)},
			wantErr: true,
		},
		{
			name: "rescheduled with both fields",
			appt: Appointment{
				Status:           StatusScheduled,
				OriginalDateTime: at(now),
				RescheduledAt:    at(now.Add(time.Hour)),
			},
		},
		{
			name:    "rescheduled with only one field",
			appt:    Appointment{Status: StatusScheduled, RescheduledAt: at(now)},
			wantErr: true,
		},
		{
			name:    "negative duration",
			appt:    Appointment{Status: StatusScheduled, DurationMinutes: -5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.appt.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusScheduled.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusNoShow.IsTerminal())
}

func TestAppointmentEnd(t *testing.T) {
	start := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	a := Appointment{DateTime: LocalDateTime{Time: start}, DurationMinutes: 45}
	assert.Equal(t, start.Add(45*time.Minute), a.End())
}

func TestAppointmentPartitions(t *testing.T) {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mk := func(id int64, offset time.Duration, status AppointmentStatus) Appointment {
		return Appointment{ID: id, DateTime: LocalDateTime{Time: now.Add(offset)}, Status: status}
	}

	list := []Appointment{
		mk(1, 26*time.Hour, StatusScheduled),
		mk(2, 2*time.Hour, StatusConfirmed),
		mk(3, -3*time.Hour, StatusCompleted),
		mk(4, 5*time.Hour, StatusCancelled),
		mk(5, -48*time.Hour, StatusNoShow),
		mk(6, -time.Hour, StatusScheduled),
	}

	ids := func(list []Appointment) []int64 {
		var out []int64
		for _, a := range list {
			out = append(out, a.ID)
		}
		return out
	}

	assert.Equal(t, []int64{2, 1}, ids(UpcomingAppointments(list, now)))
	assert.Equal(t, []int64{4, 6, 3, 5}, ids(PastAppointments(list, now)))
	assert.Equal(t, []int64{3, 6, 2}, ids(TodaysAppointments(list, now)))
}

func TestAvailabilityValidate(t *testing.T) {
	valid := AvailabilitySlot{
		PsychologistID: 1,
		DayOfWeek:      "MONDAY",
		StartTime:      "09:00",
		EndTime:        "17:00",
		IsAvailable:    true,
	}
	require.NoError(t, valid.Validate())

	dated := valid
	dated.DayOfWeek = ""
	dated.SpecificDate = "2026-02-01"
	require.NoError(t, dated.Validate())

	noDay := valid
	noDay.DayOfWeek = ""
	assert.Error(t, noDay.Validate())

	badDay := valid
	badDay.DayOfWeek = "FUNDAY"
	assert.Error(t, badDay.Validate())

	inverted := valid
	inverted.StartTime, inverted.EndTime = "17:00", "09:00"
	assert.Error(t, inverted.Validate())

	badDate := dated
	badDate.SpecificDate = "01/02/2026"
	assert.Error(t, badDate.Validate())
}

func TestAvailabilityCovers(t *testing.T) {
	sunday := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	assert.True(t, AvailabilitySlot{DayOfWeek: "SUNDAY"}.Covers(sunday))
	assert.False(t, AvailabilitySlot{DayOfWeek: "MONDAY"}.Covers(sunday))
	assert.True(t, AvailabilitySlot{SpecificDate: "2026-02-01"}.Covers(sunday))
	assert.False(t, AvailabilitySlot{SpecificDate: "2026-02-02", DayOfWeek: "SUNDAY"}.Covers(sunday))
}

func TestParseTimeOfDay(t *testing.T) {
	d, err := ParseTimeOfDay("10:30")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Hour+30*time.Minute, d)

	d, err = ParseTimeOfDay("08:15:30")
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour+15*time.Minute+30*time.Second, d)

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)
}

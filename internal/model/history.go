package model

// AttendanceStatus records what actually happened to an appointment.
type AttendanceStatus string

const (
	AttendanceAttended       AttendanceStatus = "ATTENDED"
	AttendanceNoShow         AttendanceStatus = "NO_SHOW"
	AttendanceCancelled      AttendanceStatus = "CANCELLED"
	AttendanceRescheduled    AttendanceStatus = "RESCHEDULED"
	AttendanceCompletedEarly AttendanceStatus = "COMPLETED_EARLY"
	AttendanceCompletedLate  AttendanceStatus = "COMPLETED_LATE"
)

// AppointmentHistory is an append-only attendance record written after an
// appointment's scheduled time has passed.
type AppointmentHistory struct {
	ID                    int64            `json:"id,omitempty"`
	AppointmentID         int64            `json:"appointmentId"`
	AttendanceStatus      AttendanceStatus `json:"attendanceStatus"`
	Notes                 string           `json:"notes,omitempty"`
	ActualDurationMinutes *int             `json:"actualDurationMinutes,omitempty"`

	// External calendar sync identifiers, when the backend mirrored the
	// appointment into a third-party calendar.
	ExternalCalendarProvider string `json:"externalCalendarProvider,omitempty"`
	ExternalCalendarSyncID   string `json:"externalCalendarSyncId,omitempty"`

	CreatedAt *LocalDateTime `json:"createdAt,omitempty"`
}

// HistoryRecord holds the inputs of POST /appointments/history/record.
type HistoryRecord struct {
	AppointmentID         int64            `validate:"required,gt=0"`
	AttendanceStatus      AttendanceStatus `validate:"required,oneof=ATTENDED NO_SHOW CANCELLED RESCHEDULED COMPLETED_EARLY COMPLETED_LATE"`
	Notes                 string
	ActualDurationMinutes int `validate:"gte=0"`
}

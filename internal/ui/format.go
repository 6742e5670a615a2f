package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/nhle/care-portal/internal/model"
	"github.com/nhle/care-portal/internal/theme"
)

// SlotRange renders a slot as "10:00-11:00 (60 min)" in loc.
func SlotRange(a model.Appointment, loc *time.Location) string {
	start := a.Start().In(loc)
	end := a.End().In(loc)
	return fmt.Sprintf("%s-%s (%d min)", start.Format("15:04"), end.Format("15:04"), a.DurationMinutes)
}

// AppointmentLine renders one appointment with its status badge.
func AppointmentLine(a model.Appointment, loc *time.Location) string {
	when := a.Start().In(loc).Format("Mon Jan 02 15:04")
	badge := theme.AppointmentStatusStyle(a.Status).Render(string(a.Status))
	kind := TypeLabel(a.Type)

	line := fmt.Sprintf("%s %s  %s · %d min · psychologist #%d",
		badge, when, kind, a.DurationMinutes, a.PsychologistID)
	if a.Status == model.StatusCancelled && a.CancellationReason != "" {
		line += theme.DimmedStyle.Render(" · " + a.CancellationReason)
	}
	return line
}

// HistoryLine renders one attendance record.
func HistoryLine(h model.AppointmentHistory, loc *time.Location) string {
	badge := theme.AttendanceStyle(h.AttendanceStatus).Render(string(h.AttendanceStatus))
	parts := []string{badge, fmt.Sprintf("appointment #%d", h.AppointmentID)}
	if h.ActualDurationMinutes != nil {
		parts = append(parts, fmt.Sprintf("%d min", *h.ActualDurationMinutes))
	}
	if h.CreatedAt != nil && !h.CreatedAt.IsZero() {
		parts = append(parts, theme.DimmedStyle.Render(h.CreatedAt.In(loc).Format("Jan 02 15:04")))
	}
	if h.Notes != "" {
		parts = append(parts, theme.DimmedStyle.Render(h.Notes))
	}
	return strings.Join(parts, "  ")
}

// TypeLabel returns a readable appointment type.
func TypeLabel(t model.AppointmentType) string {
	switch t {
	case model.TypeInitial:
		return "Initial consultation"
	case model.TypeFollowup:
		return "Follow-up"
	case model.TypeEmergency:
		return "Emergency"
	case model.TypeVideo:
		return "Video session"
	case model.TypeInPerson:
		return "In person"
	default:
		return string(t)
	}
}

package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AvailabilitySlot is an open window a psychologist publishes. It is
// either recurring on a weekday or pinned to a specific date.
type AvailabilitySlot struct {
	ID             int64  `json:"id,omitempty"`
	PsychologistID int64  `json:"psychologistId" validate:"required,gt=0"`
	DayOfWeek      string `json:"dayOfWeek,omitempty" validate:"omitempty,oneof=MONDAY TUESDAY WEDNESDAY THURSDAY FRIDAY SATURDAY SUNDAY"`
	StartTime      string `json:"startTime" validate:"required"`
	EndTime        string `json:"endTime" validate:"required"`
	SpecificDate   string `json:"specificDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsAvailable    bool   `json:"isAvailable"`
	Notes          string `json:"notes,omitempty"`

	CreatedAt *LocalDateTime `json:"createdAt,omitempty"`
	UpdatedAt *LocalDateTime `json:"updatedAt,omitempty"`
}

// Weekday converts a time.Weekday into the backend's DayOfWeek spelling.
func Weekday(d time.Weekday) string {
	return strings.ToUpper(d.String())
}

// ParseTimeOfDay accepts HH:mm or HH:mm:ss and returns the offset from
// midnight.
func ParseTimeOfDay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q, use HH:mm", s)
}

// Validate checks field formats and that the window is not empty.
func (a AvailabilitySlot) Validate() error {
	if err := Validator().Struct(a); err != nil {
		return err
	}
	if a.DayOfWeek == "" && a.SpecificDate == "" {
		return errors.New("availability needs a day of week or a specific date")
	}

	start, err := ParseTimeOfDay(a.StartTime)
	if err != nil {
		return err
	}
	end, err := ParseTimeOfDay(a.EndTime)
	if err != nil {
		return err
	}
	if end <= start {
		return errors.New("availability window must end after it starts")
	}
	return nil
}

// Covers reports whether the window applies to t's calendar day.
func (a AvailabilitySlot) Covers(t time.Time) bool {
	if a.SpecificDate != "" {
		return a.SpecificDate == t.Format(DateLayout)
	}
	return a.DayOfWeek == Weekday(t.Weekday())
}

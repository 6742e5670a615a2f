package booking

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/nhle/care-portal/internal/model"
)

// Form is the user's booking input. Date carries the calendar day only;
// Time is the selected slot's "15:04" wall-clock start.
type Form struct {
	PsychologistID  int64                 `validate:"required,gt=0"`
	Date            time.Time             `validate:"required"`
	Time            string                `validate:"required"`
	Type            model.AppointmentType `validate:"required,oneof=INITIAL FOLLOWUP EMERGENCY VIDEO IN_PERSON"`
	DurationMinutes int                   `validate:"required,oneof=30 45 60 90"`
	Notes           string
}

// ValidationError is a local input error. It is reported without any
// backend call.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, model.FormatValidationError(e.Err))
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// validateSearch checks the fields a slot search needs.
func (f Form) validateSearch() error {
	if err := model.Validator().StructPartial(f, "PsychologistID", "Date"); err != nil {
		return &ValidationError{Message: MsgSearchIncomplete, Err: err}
	}
	return nil
}

// validateSubmit checks every field a booking needs.
func (f Form) validateSubmit() error {
	if f.DurationMinutes != 0 && !slices.Contains(model.Durations, f.DurationMinutes) {
		return &ValidationError{Message: MsgBadDuration}
	}
	if err := model.Validator().Struct(f); err != nil {
		return &ValidationError{Message: MsgSubmitIncomplete, Err: err}
	}
	if _, err := time.Parse("15:04", strings.TrimSpace(f.Time)); err != nil {
		return &ValidationError{Message: MsgSubmitIncomplete, Err: err}
	}
	return nil
}

// start combines Date and Time into the appointment instant in Date's
// location.
func (f Form) start() time.Time {
	clock, _ := time.Parse("15:04", strings.TrimSpace(f.Time))
	y, m, d := f.Date.Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, f.Date.Location())
}

// sameSearch reports whether g targets the same psychologist and day as f.
func (f Form) sameSearch(g Form) bool {
	if f.PsychologistID != g.PsychologistID {
		return false
	}
	if f.Date.IsZero() || g.Date.IsZero() {
		return f.Date.IsZero() == g.Date.IsZero()
	}
	fy, fm, fd := f.Date.Date()
	gy, gm, gd := g.Date.Date()
	return fy == gy && fm == gm && fd == gd
}

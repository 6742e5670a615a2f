package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// WireLayout is the zone-less ISO local date-time the backend speaks.
const WireLayout = "2006-01-02T15:04:05"

// DateLayout is the calendar date format used in paths and forms.
const DateLayout = "2006-01-02"

// WireLocation is the zone applied to zone-less timestamps received from
// the backend. It is set once at startup from the display configuration.
var WireLocation = time.Local

// LocalDateTime is a wall-clock instant serialised without a zone offset.
type LocalDateTime struct {
	time.Time
}

// NewLocalDateTime wraps t, converting it into WireLocation.
func NewLocalDateTime(t time.Time) LocalDateTime {
	return LocalDateTime{Time: t.In(WireLocation)}
}

// ParseLocalDateTime accepts RFC 3339, the zone-less wire layout (with or
// without fractional seconds) and the minute-precision variant.
func ParseLocalDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(WireLocation), nil
	}
	if t, err := time.ParseInLocation(WireLayout, s, WireLocation); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04", s, WireLocation)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing local date-time %q: %w", s, err)
	}
	return t, nil
}

// UnmarshalJSON decodes a quoted wire timestamp; null leaves the zero value.
func (t *LocalDateTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = LocalDateTime{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("local date-time must be a string: %w", err)
	}
	if s == "" {
		*t = LocalDateTime{}
		return nil
	}

	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON encodes the instant in WireLocation without an offset.
func (t LocalDateTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Wire())
}

// Wire formats the instant as the backend expects it in query strings.
func (t LocalDateTime) Wire() string {
	return t.In(WireLocation).Format(WireLayout)
}

package model

import (
	"time"

	"github.com/nhle/care-portal/internal/timeutil"
)

// MoodEntry is one daily emotional check-in.
type MoodEntry struct {
	ID              int64          `json:"id,omitempty"`
	PatientID       int64          `json:"patientId"`
	EmotionalRating int            `json:"emotionalRating"`
	Notes           string         `json:"notes,omitempty"`
	EntryTimestamp  LocalDateTime  `json:"entryTimestamp"`
	CreatedAt       *LocalDateTime `json:"createdAt,omitempty"`
	UpdatedAt       *LocalDateTime `json:"updatedAt,omitempty"`
}

// CheckinRequest holds the inputs of POST /mood/checkin.
type CheckinRequest struct {
	PatientID int64 `validate:"required,gt=0"`
	Rating    int   `validate:"min=1,max=10"`
	Notes     string
}

var ratingLabels = map[int]string{
	1:  "Very Bad",
	2:  "Bad",
	3:  "Poor",
	4:  "Below Average",
	5:  "Average",
	6:  "Above Average",
	7:  "Good",
	8:  "Very Good",
	9:  "Great",
	10: "Excellent",
}

// RatingLabel returns the human label for a 1..10 rating.
func RatingLabel(rating int) string {
	if l, ok := ratingLabels[rating]; ok {
		return l
	}
	return "Unknown"
}

// HasCompletedToday reports whether any entry was recorded on now's
// calendar day.
func HasCompletedToday(entries []MoodEntry, now time.Time) bool {
	for _, e := range entries {
		if e.EntryTimestamp.IsZero() {
			continue
		}
		if timeutil.IsSameCalendarDay(now, e.EntryTimestamp.Time) {
			return true
		}
	}
	return false
}

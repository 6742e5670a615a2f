package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasCompletedToday(t *testing.T) {
	now := time.Date(2026, 2, 1, 21, 0, 0, 0, time.UTC)
	entry := func(ts time.Time) MoodEntry {
		return MoodEntry{EmotionalRating: 6, EntryTimestamp: LocalDateTime{Time: ts}}
	}

	assert.False(t, HasCompletedToday(nil, now))
	assert.False(t, HasCompletedToday([]MoodEntry{
		entry(time.Date(2026, 1, 31, 23, 59, 0, 0, time.UTC)),
		{EmotionalRating: 3},
	}, now))
	assert.True(t, HasCompletedToday([]MoodEntry{
		entry(time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC)),
		entry(time.Date(2026, 2, 1, 0, 0, 1, 0, time.UTC)),
	}, now))
}

func TestRatingLabel(t *testing.T) {
	assert.Equal(t, "Very Bad", RatingLabel(1))
	assert.Equal(t, "Average", RatingLabel(5))
	assert.Equal(t, "Excellent", RatingLabel(10))
	assert.Equal(t, "Unknown", RatingLabel(0))
}

func TestCheckinRequestValidation(t *testing.T) {
	assert.NoError(t, Validator().Struct(CheckinRequest{PatientID: 1, Rating: 10}))
	assert.Error(t, Validator().Struct(CheckinRequest{PatientID: 1, Rating: 0}))
	assert.Error(t, Validator().Struct(CheckinRequest{PatientID: 1, Rating: 11}))
	assert.Error(t, Validator().Struct(CheckinRequest{Rating: 5}))
}

func TestVisible(t *testing.T) {
	list := []Notification{
		{ID: "a"},
		{ID: "b", Dismissed: true},
		{ID: "c"},
	}
	got := Visible(list)
	assert.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/nhle/care-portal/internal/model"
)

// SubmitCheckin records today's mood check-in. Notes are trimmed and
// omitted when blank.
func (c *Client) SubmitCheckin(
	ctx context.Context,
	req model.CheckinRequest,
) (*model.MoodEntry, error) {
	if err := model.Validator().Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", model.FormatValidationError(err), ErrInvalidArgument)
	}

	q := url.Values{}
	q.Set("patientId", strconv.FormatInt(req.PatientID, 10))
	q.Set("rating", strconv.Itoa(req.Rating))
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		q.Set("notes", notes)
	}

	var entry model.MoodEntry
	if err := c.post(ctx, "/mood/checkin", q, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// MoodHistory returns every mood entry of a patient.
func (c *Client) MoodHistory(
	ctx context.Context,
	patientID int64,
) ([]model.MoodEntry, error) {
	var entries []model.MoodEntry
	if err := c.get(ctx, "/mood/history/"+strconv.FormatInt(patientID, 10), nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

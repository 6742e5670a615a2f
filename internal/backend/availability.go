package backend

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nhle/care-portal/internal/model"
)

// CreateAvailability publishes a new availability window.
func (c *Client) CreateAvailability(
	ctx context.Context,
	slot model.AvailabilitySlot,
) (*model.AvailabilitySlot, error) {
	if err := slot.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", model.FormatValidationError(err), ErrInvalidArgument)
	}

	var created model.AvailabilitySlot
	if err := c.post(ctx, "/availability/create", nil, slot, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateAvailability replaces an existing window.
func (c *Client) UpdateAvailability(
	ctx context.Context,
	availabilityID int64,
	slot model.AvailabilitySlot,
) (*model.AvailabilitySlot, error) {
	if err := slot.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", model.FormatValidationError(err), ErrInvalidArgument)
	}

	var updated model.AvailabilitySlot
	path := "/availability/update/" + strconv.FormatInt(availabilityID, 10)
	if err := c.put(ctx, path, slot, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteAvailability removes a window.
func (c *Client) DeleteAvailability(ctx context.Context, availabilityID int64) error {
	return c.delete(ctx, "/availability/delete/"+strconv.FormatInt(availabilityID, 10))
}

// AvailabilityByDay lists a psychologist's recurring windows for a
// weekday such as "MONDAY".
func (c *Client) AvailabilityByDay(
	ctx context.Context,
	psychologistID int64,
	dayOfWeek string,
) ([]model.AvailabilitySlot, error) {
	day := strings.ToUpper(strings.TrimSpace(dayOfWeek))
	if day == "" {
		return nil, fmt.Errorf("day of week is required: %w", ErrInvalidArgument)
	}
	return c.listAvailability(ctx, psychologistID, "/day/"+day)
}

// AvailabilityByDate lists a psychologist's windows pinned to date.
func (c *Client) AvailabilityByDate(
	ctx context.Context,
	psychologistID int64,
	date time.Time,
) ([]model.AvailabilitySlot, error) {
	return c.listAvailability(ctx, psychologistID, "/date/"+date.Format(model.DateLayout))
}

// AvailableWindows lists only the windows flagged available.
func (c *Client) AvailableWindows(
	ctx context.Context,
	psychologistID int64,
) ([]model.AvailabilitySlot, error) {
	return c.listAvailability(ctx, psychologistID, "/available")
}

// AllAvailability lists every window of a psychologist.
func (c *Client) AllAvailability(
	ctx context.Context,
	psychologistID int64,
) ([]model.AvailabilitySlot, error) {
	return c.listAvailability(ctx, psychologistID, "/all")
}

func (c *Client) listAvailability(
	ctx context.Context,
	psychologistID int64,
	suffix string,
) ([]model.AvailabilitySlot, error) {
	var list []model.AvailabilitySlot
	path := "/availability/psychologist/" + strconv.FormatInt(psychologistID, 10) + suffix
	if err := c.get(ctx, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

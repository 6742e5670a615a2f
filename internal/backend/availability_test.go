package backend_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/care-portal/internal/backend"
	"github.com/nhle/care-portal/internal/model"
	"github.com/nhle/care-portal/tests/testutil"
)

func TestAvailabilityQueries(t *testing.T) {
	hits := map[string]int{}
	mux := http.NewServeMux()
	for _, p := range []string{
		"/availability/psychologist/4/day/MONDAY",
		"/availability/psychologist/4/date/2026-03-10",
		"/availability/psychologist/4/available",
		"/availability/psychologist/4/all",
	} {
		mux.HandleFunc("GET "+p, func(w http.ResponseWriter, r *http.Request) {
			hits[p]++
			testutil.WriteJSON(t, w, http.StatusOK, []map[string]interface{}{
				{"id": 1, "psychologistId": 4, "startTime": "09:00:00", "endTime": "12:00:00", "isAvailable": true},
			})
		})
	}
	c := testutil.NewTestBackend(t, mux)
	ctx := context.Background()

	_, err := c.AvailabilityByDay(ctx, 4, " monday ")
	require.NoError(t, err)
	_, err = c.AvailabilityByDate(ctx, 4, time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = c.AvailableWindows(ctx, 4)
	require.NoError(t, err)
	all, err := c.AllAvailability(ctx, 4)
	require.NoError(t, err)

	require.Len(t, all, 1)
	assert.True(t, all[0].IsAvailable)
	assert.Len(t, hits, 4)

	_, err = c.AvailabilityByDay(ctx, 4, "  ")
	assert.ErrorIs(t, err, backend.ErrInvalidArgument)
}

func TestCreateAvailabilityValidates(t *testing.T) {
	var created int
	mux := http.NewServeMux()
	mux.HandleFunc("POST /availability/create", func(w http.ResponseWriter, r *http.Request) {
		created++
		testutil.WriteJSON(t, w, http.StatusOK, map[string]interface{}{"id": 8, "psychologistId": 4, "startTime": "09:00", "endTime": "10:00", "dayOfWeek": "FRIDAY"})
	})
	mux.HandleFunc("DELETE /availability/delete/8", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	c := testutil.NewTestBackend(t, mux)
	ctx := context.Background()

	_, err := c.CreateAvailability(ctx, model.AvailabilitySlot{PsychologistID: 4, StartTime: "10:00", EndTime: "09:00", DayOfWeek: "FRIDAY"})
	assert.ErrorIs(t, err, backend.ErrInvalidArgument)
	assert.Zero(t, created)

	slot, err := c.CreateAvailability(ctx, model.AvailabilitySlot{PsychologistID: 4, StartTime: "09:00", EndTime: "10:00", DayOfWeek: "FRIDAY"})
	require.NoError(t, err)
	assert.Equal(t, int64(8), slot.ID)
	assert.Equal(t, 1, created)

	require.NoError(t, c.DeleteAvailability(ctx, slot.ID))
}

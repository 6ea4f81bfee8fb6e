package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salonbook/internal/catalog"
	"salonbook/internal/export"
	"salonbook/internal/model"
	"salonbook/internal/store"
)

// nextMonday returns a Monday at least a week out, so past-slot
// exclusion never interferes.
func nextMonday() string {
	d := time.Now().UTC().AddDate(0, 0, 7)
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d.Format("2006-01-02")
}

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "api.db"), 30)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, st.CreateStaff(ctx, &model.StaffMember{
		ID:   "anna",
		Name: "Anna",
		Rules: []model.WorkingHoursRule{
			{StartTime: "09:00", EndTime: "17:00", Days: []time.Weekday{time.Monday}},
		},
	}))
	require.NoError(t, st.CreateService(ctx, &model.Service{ID: "haircut", Name: "Haircut", DurationRaw: "00:45:00", Price: 40}))
	require.NoError(t, st.CreateService(ctx, &model.Service{ID: "color", Name: "Color", DurationRaw: "01:00:00", Price: 80}))

	logger := zerolog.New(io.Discard)
	srv := NewServer(
		catalog.New(st), st,
		export.NewScheduleExporter(st, time.UTC),
		"", 30, 30, &logger,
	)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, st
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func doJSON(t *testing.T, method, url string, body, out any) int {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(method, url, bytes.NewReader(buf))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestListServices(t *testing.T) {
	ts, _ := newTestServer(t)

	var body struct {
		Services []ServiceResponse `json:"services"`
	}
	status := getJSON(t, ts.URL+"/api/services", &body)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body.Services, 2)

	for _, svc := range body.Services {
		if svc.ID == "haircut" {
			assert.Equal(t, 45, svc.DurationMinutes)
		}
	}
}

func TestAvailabilitySlots(t *testing.T) {
	ts, _ := newTestServer(t)
	date := nextMonday()

	var body struct {
		Slots []SlotResponse `json:"slots"`
	}
	status := getJSON(t, fmt.Sprintf("%s/api/availability/slots?date=%s&service_ids=haircut&staff_id=anna", ts.URL, date), &body)
	require.Equal(t, http.StatusOK, status)

	// 09:00 through 16:30 at 30-minute steps.
	require.Len(t, body.Slots, 16)
	assert.Equal(t, "09:00", body.Slots[0].Time)
	assert.Equal(t, "16:30", body.Slots[15].Time)
	for _, s := range body.Slots {
		assert.False(t, s.Disabled, "slot %s should be free on an empty day", s.Time)
	}
}

func TestAvailabilitySlotsRejectsBadInput(t *testing.T) {
	ts, _ := newTestServer(t)

	status := getJSON(t, ts.URL+"/api/availability/slots?date=tomorrow&service_ids=haircut", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = getJSON(t, ts.URL+"/api/availability/slots?date="+nextMonday()+"&service_ids=haircut&tz=Mars/Olympus", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBookingLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	date := nextMonday()

	req := BookingRequest{
		CustomerID: "cust-1",
		StaffID:    "anna",
		ServiceIDs: []string{"haircut", "color"},
		Date:       date,
		Time:       "09:00",
	}

	var created BookingResponse
	status := doJSON(t, http.MethodPost, ts.URL+"/api/bookings", req, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, 135, created.DurationMinutes)
	assert.Equal(t, "anna", created.StaffID)
	assert.Equal(t, model.StatusConfirmed, created.Status)

	// Slot availability reflects the new booking.
	var slots struct {
		Slots []SlotResponse `json:"slots"`
	}
	getJSON(t, fmt.Sprintf("%s/api/availability/slots?date=%s&service_ids=haircut&staff_id=anna", ts.URL, date), &slots)
	for _, s := range slots.Slots {
		if s.Time == "09:00" {
			assert.True(t, s.Disabled)
		}
	}

	// A conflicting booking is rejected with 409.
	conflict := req
	conflict.CustomerID = "cust-2"
	conflict.ServiceIDs = []string{"haircut"}
	conflict.Time = "10:00"
	status = doJSON(t, http.MethodPost, ts.URL+"/api/bookings", conflict, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Reschedule to the afternoon.
	move := req
	move.Time = "14:00"
	var moved BookingResponse
	status = doJSON(t, http.MethodPut, ts.URL+"/api/bookings/"+created.ID, move, &moved)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.StatusConfirmed, moved.Status)

	// The morning is free again.
	status = doJSON(t, http.MethodPost, ts.URL+"/api/bookings", conflict, nil)
	assert.Equal(t, http.StatusCreated, status)

	// Cancel and fetch.
	status = doJSON(t, http.MethodDelete, ts.URL+"/api/bookings/"+created.ID, nil, nil)
	require.Equal(t, http.StatusOK, status)

	var got BookingResponse
	status = getJSON(t, ts.URL+"/api/bookings/"+created.ID, &got)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.StatusCancelled, got.Status)

	// A terminal booking cannot be flipped to another terminal state.
	status = doJSON(t, http.MethodPost, ts.URL+"/api/bookings/"+created.ID+"/complete", nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	status = doJSON(t, http.MethodDelete, ts.URL+"/api/bookings/"+created.ID, nil, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestCreateBookingValidation(t *testing.T) {
	ts, _ := newTestServer(t)

	status := doJSON(t, http.MethodPost, ts.URL+"/api/bookings", BookingRequest{
		CustomerID: "cust-1",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = doJSON(t, http.MethodPost, ts.URL+"/api/bookings", BookingRequest{
		CustomerID: "cust-1",
		ServiceIDs: []string{"haircut"},
		Date:       nextMonday(),
		Time:       "26:00",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetBookingNotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	status := getJSON(t, ts.URL+"/api/bookings/ghost", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAvailabilityDays(t *testing.T) {
	ts, _ := newTestServer(t)
	month := time.Now().UTC().AddDate(0, 1, 0).Format("2006-01")

	var body struct {
		Days []DayResponse `json:"days"`
	}
	status := getJSON(t, fmt.Sprintf("%s/api/availability/days?month=%s&service_ids=haircut", ts.URL, month), &body)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, body.Days)

	for _, d := range body.Days {
		day, err := time.Parse("2006-01-02", d.Date)
		require.NoError(t, err)
		if day.Weekday() == time.Monday {
			assert.Equal(t, string(model.DayAvailable), d.Indicator, "empty Monday %s", d.Date)
		} else {
			assert.Equal(t, string(model.DayNone), d.Indicator, "off day %s", d.Date)
		}
	}
}

func TestExportSchedule(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/export/schedule?date=" + nextMonday())
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

package api

import (
	"net/http"
	"time"

	"salonbook/internal/booking"
	"salonbook/internal/metrics"
	"salonbook/internal/model"
)

// DayResponse is one calendar cell of the month view.
type DayResponse struct {
	Date      string `json:"date"`
	Indicator string `json:"indicator"`
}

// SlotResponse is one bookable time on the day view. Disabled times stay
// in the list so the grid renders a full working day.
type SlotResponse struct {
	Time     string `json:"time"`
	Disabled bool   `json:"disabled"`
}

// handleAvailabilityDays classifies every day of a month for the
// calendar.
// GET /api/availability/days?month=YYYY-MM&service_ids=a,b&staff_id=&tz=
func (s *Server) handleAvailabilityDays(w http.ResponseWriter, r *http.Request) {
	metrics.IncAvailabilityQuery("days")

	stk, err := s.stackFor(r.URL.Query().Get("tz"))
	if err != nil {
		s.fail(w, err)
		return
	}

	month, err := time.ParseInLocation("2006-01", r.URL.Query().Get("month"), stk.basis.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month; expected YYYY-MM")
		return
	}

	minutes, err := s.stackedMinutes(r, splitIDs(r.URL.Query().Get("service_ids")))
	if err != nil {
		s.fail(w, err)
		return
	}

	staffSet, err := s.eligibleStaff(r, r.URL.Query().Get("staff_id"))
	if err != nil {
		s.fail(w, err)
		return
	}

	monthEnd := month.AddDate(0, 1, 0)
	if err := s.store.LoadBookings(r.Context(), staffSet, month.UTC().Add(-24*time.Hour), monthEnd.UTC().Add(24*time.Hour)); err != nil {
		s.fail(w, err)
		return
	}

	now := stk.basis.ToLocal(time.Now().UTC())
	days := make([]DayResponse, 0, 31)
	for d := month; d.Before(monthEnd); d = d.AddDate(0, 0, 1) {
		ind, err := stk.agg.DayIndicator(staffSet, d, minutes, now)
		if err != nil {
			s.fail(w, err)
			return
		}
		days = append(days, DayResponse{
			Date:      d.Format("2006-01-02"),
			Indicator: string(ind),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

// handleAvailabilitySlots lists the bookable times of one day.
// GET /api/availability/slots?date=YYYY-MM-DD&service_ids=a,b&staff_id=&tz=
func (s *Server) handleAvailabilitySlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncAvailabilityQuery("slots")

	stk, err := s.stackFor(r.URL.Query().Get("tz"))
	if err != nil {
		s.fail(w, err)
		return
	}

	date, err := time.ParseInLocation("2006-01-02", r.URL.Query().Get("date"), stk.basis.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date; expected YYYY-MM-DD")
		return
	}

	minutes, err := s.stackedMinutes(r, splitIDs(r.URL.Query().Get("service_ids")))
	if err != nil {
		s.fail(w, err)
		return
	}

	staffID := r.URL.Query().Get("staff_id")
	staffSet, err := s.eligibleStaff(r, staffID)
	if err != nil {
		s.fail(w, err)
		return
	}

	if err := s.store.LoadBookings(r.Context(), staffSet, date.UTC().Add(-24*time.Hour), date.UTC().Add(48*time.Hour)); err != nil {
		s.fail(w, err)
		return
	}

	now := stk.basis.ToLocal(time.Now().UTC())
	var slots []model.Slot
	if len(staffSet) == 1 && staffID != "" {
		slots, err = stk.agg.StaffSlots(&staffSet[0], date, minutes, now, "")
	} else {
		slots, err = stk.agg.UnionSlots(staffSet, date, minutes, now)
	}
	if err != nil {
		s.fail(w, err)
		return
	}

	out := make([]SlotResponse, 0, len(slots))
	for _, sl := range slots {
		out = append(out, SlotResponse{Time: sl.Time, Disabled: sl.Disabled})
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": out})
}

// eligibleStaff narrows the staff set to a preference, or returns the
// full set for the union view.
func (s *Server) eligibleStaff(r *http.Request, staffID string) ([]model.StaffMember, error) {
	if staffID != "" && staffID != booking.NoPreference {
		member, err := s.store.GetStaff(r.Context(), staffID)
		if err != nil {
			return nil, err
		}
		return []model.StaffMember{*member}, nil
	}
	return s.catalog.ListStaff(r.Context())
}

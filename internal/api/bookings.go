package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"salonbook/internal/booking"
	"salonbook/internal/model"
)

// BookingRequest is the body for creating or rescheduling a booking.
type BookingRequest struct {
	CustomerID string   `json:"customer_id"`
	StaffID    string   `json:"staff_id"` // staff id or "no_preference"
	ServiceIDs []string `json:"service_ids"`
	Date       string   `json:"date"` // YYYY-MM-DD, viewer-local
	Time       string   `json:"time"` // HH:MM, viewer-local
	Timezone   string   `json:"timezone,omitempty"`
}

// BookingResponse echoes the persisted reservation.
type BookingResponse struct {
	ID              string   `json:"id"`
	StaffID         string   `json:"staff_id"`
	CustomerID      string   `json:"customer_id"`
	StartTime       string   `json:"start_time"` // RFC 3339 UTC
	EndTime         string   `json:"end_time"`
	Status          string   `json:"status"`
	DurationMinutes int      `json:"duration_minutes"`
	ServiceIDs      []string `json:"service_ids"`
	Version         int64    `json:"version"`
}

func bookingResponse(b *model.Booking) BookingResponse {
	return BookingResponse{
		ID:              b.ID,
		StaffID:         b.StaffID,
		CustomerID:      b.CustomerID,
		StartTime:       b.StartTime.UTC().Format("2006-01-02T15:04:05Z07:00"),
		EndTime:         b.EndTime.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Status:          b.Status,
		DurationMinutes: b.DurationMinutes,
		ServiceIDs:      b.ServiceIDs,
		Version:         b.Version,
	}
}

func decodeBookingRequest(w http.ResponseWriter, r *http.Request) (*BookingRequest, bool) {
	var req BookingRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return nil, false
	}
	if req.CustomerID == "" || len(req.ServiceIDs) == 0 || req.Date == "" || req.Time == "" {
		writeError(w, http.StatusBadRequest, "customer_id, service_ids, date and time are required")
		return nil, false
	}
	return &req, true
}

// handleCreateBooking commits a finalized selection.
// POST /api/bookings
func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBookingRequest(w, r)
	if !ok {
		return
	}

	stk, err := s.stackFor(req.Timezone)
	if err != nil {
		s.fail(w, err)
		return
	}

	b, err := stk.committer.Commit(r.Context(), booking.Request{
		CustomerID: req.CustomerID,
		StaffID:    req.StaffID,
		ServiceIDs: req.ServiceIDs,
		Date:       req.Date,
		Time:       req.Time,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bookingResponse(b))
}

// handleGetBooking returns one booking.
// GET /api/bookings/{id}
func (s *Server) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse(b))
}

// handleRescheduleBooking moves a booking to a new span, staff or both.
// PUT /api/bookings/{id}
func (s *Server) handleRescheduleBooking(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBookingRequest(w, r)
	if !ok {
		return
	}

	stk, err := s.stackFor(req.Timezone)
	if err != nil {
		s.fail(w, err)
		return
	}

	b, err := stk.committer.Reschedule(r.Context(), chi.URLParam(r, "id"), booking.Request{
		CustomerID: req.CustomerID,
		StaffID:    req.StaffID,
		ServiceIDs: req.ServiceIDs,
		Date:       req.Date,
		Time:       req.Time,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookingResponse(b))
}

// handleCancelBooking cancels a booking, releasing its interval.
// DELETE /api/bookings/{id}
func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	stk, err := s.stackFor("")
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := stk.committer.Cancel(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": model.StatusCancelled})
}

// handleCompleteBooking marks a booking completed.
// POST /api/bookings/{id}/complete
func (s *Server) handleCompleteBooking(w http.ResponseWriter, r *http.Request) {
	stk, err := s.stackFor("")
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := stk.committer.Complete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": model.StatusCompleted})
}

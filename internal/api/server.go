// Package api exposes the scheduling core over HTTP: calendar and slot
// availability, booking lifecycle, catalog reads and schedule export.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"salonbook/internal/booking"
	"salonbook/internal/catalog"
	"salonbook/internal/events"
	"salonbook/internal/export"
	"salonbook/internal/schedule"
	"salonbook/internal/store"
)

// Server wires the HTTP surface. Scheduling collaborators are built per
// request around the viewer's timezone; storage and catalog are shared.
type Server struct {
	catalog  *catalog.Cache
	store    *store.Store
	exporter *export.ScheduleExporter
	logger   *zerolog.Logger
	bus      *events.Bus

	defaultTZ          string
	bufferMinutes      int
	granularityMinutes int
}

// NewServer creates the HTTP server facade.
func NewServer(
	cat *catalog.Cache,
	st *store.Store,
	exporter *export.ScheduleExporter,
	defaultTZ string,
	bufferMinutes, granularityMinutes int,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		catalog:            cat,
		store:              st,
		exporter:           exporter,
		logger:             logger,
		defaultTZ:          defaultTZ,
		bufferMinutes:      bufferMinutes,
		granularityMinutes: granularityMinutes,
	}
}

// UseEvents attaches the lifecycle event bus handed to every committer.
func (s *Server) UseEvents(bus *events.Bus) {
	s.bus = bus
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/services", s.handleListServices)
		r.Get("/staff", s.handleListStaff)

		r.Get("/availability/days", s.handleAvailabilityDays)
		r.Get("/availability/slots", s.handleAvailabilitySlots)

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", s.handleCreateBooking)
			r.Get("/{id}", s.handleGetBooking)
			r.Put("/{id}", s.handleRescheduleBooking)
			r.Delete("/{id}", s.handleCancelBooking)
			r.Post("/{id}/complete", s.handleCompleteBooking)
		})

		r.Get("/export/schedule", s.handleExportSchedule)
	})

	return r
}

// stack bundles the per-request scheduling collaborators for one viewer
// timezone.
type stack struct {
	basis     *schedule.Basis
	agg       *schedule.Aggregator
	filter    *schedule.Filter
	committer *booking.Service
}

// stackFor resolves the viewer timezone (falling back to the configured
// default) and builds the scheduling collaborators around it.
func (s *Server) stackFor(tz string) (*stack, error) {
	if tz == "" {
		tz = s.defaultTZ
	}
	basis, err := schedule.NewBasis(tz)
	if err != nil {
		return nil, err
	}

	gen := schedule.NewGenerator(basis, s.granularityMinutes)
	filter := schedule.NewFilter(basis, s.bufferMinutes)
	resolver := schedule.NewResolver(basis, filter)
	committer := booking.NewService(
		basis, filter, resolver,
		s.catalog, s.store, s.store,
		translateStoreErr, s.logger,
	)
	if s.bus != nil {
		committer.UseBus(s.bus)
	}

	return &stack{
		basis:     basis,
		agg:       schedule.NewAggregator(gen, filter),
		filter:    filter,
		committer: committer,
	}, nil
}

// translateStoreErr maps storage conflict errors onto the scheduling
// taxonomy so handlers answer with one contention status.
func translateStoreErr(err error) error {
	if errors.Is(err, store.ErrSlotTaken) || errors.Is(err, store.ErrVersionConflict) {
		return booking.ErrSlotNoLongerAvailable
	}
	return err
}

// stackedMinutes resolves comma-separated service ids into the total
// booked span.
func (s *Server) stackedMinutes(r *http.Request, ids []string) (int, error) {
	services, err := s.catalog.GetServices(r.Context(), ids)
	if err != nil {
		return 0, err
	}
	raws := make([]string, len(services))
	for i, svc := range services {
		raws[i] = svc.DurationRaw
	}
	return schedule.StackDurations(raws, s.bufferMinutes)
}

func splitIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, schedule.ErrInvalidDuration),
		errors.Is(err, schedule.ErrInvalidTimestamp):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "booking not found"
	case errors.Is(err, booking.ErrSlotNoLongerAvailable),
		errors.Is(err, schedule.ErrNoStaffAvailable):
		return http.StatusConflict, err.Error()
	case errors.Is(err, booking.ErrBookingTerminal):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request failed")
	}
	writeError(w, status, msg)
}

// Package booking commits reservations: it turns a finalized selection
// into one persisted booking spanning the stacked service durations, and
// handles reschedule and lifecycle transitions.
package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"salonbook/internal/events"
	"salonbook/internal/metrics"
	"salonbook/internal/model"
	"salonbook/internal/schedule"
)

// NoPreference is the staff id a customer sends to defer staff selection
// to the scheduling core.
const NoPreference = "no_preference"

var (
	// ErrSlotNoLongerAvailable is returned when the pre-write re-check
	// finds the chosen window occupied: the display-to-commit race was
	// lost. Callers re-query availability and re-prompt; the core never
	// substitutes an adjacent slot or staff member.
	ErrSlotNoLongerAvailable = errors.New("slot no longer available")

	// ErrBookingTerminal is returned when rescheduling a cancelled or
	// completed booking.
	ErrBookingTerminal = errors.New("booking is in a terminal state")
)

// Catalog is the read-only service catalog lookup.
type Catalog interface {
	GetServices(ctx context.Context, ids []string) ([]model.Service, error)
}

// StaffDirectory is the read-only staff repository. Booking lists it
// returns must exclude terminal bookings and include every reservation in
// the window regardless of customer.
type StaffDirectory interface {
	GetStaff(ctx context.Context, id string) (*model.StaffMember, error)
	ListStaff(ctx context.Context) ([]model.StaffMember, error)
	StaffBookings(ctx context.Context, staffID string, from, to time.Time) ([]model.Booking, error)
	LoadBookings(ctx context.Context, staffSet []model.StaffMember, from, to time.Time) error
}

// Store accepts conditional booking writes. Both calls must guarantee
// exclusivity (overlap re-check in the same transaction, optimistic
// version on update) — see the store package.
type Store interface {
	GetBooking(ctx context.Context, id string) (*model.Booking, error)
	CreateBooking(ctx context.Context, b *model.Booking) error
	UpdateBookingSchedule(ctx context.Context, b *model.Booking, expectedVersion int64) error
	SetBookingStatus(ctx context.Context, id, status string) error
}

// StoreErrTranslator maps a store error to the core taxonomy.
type StoreErrTranslator func(error) error

// Request is the transient selection a customer finalized: date and clock
// in the viewer's zone, an ordered service list, and a staff preference.
type Request struct {
	CustomerID string
	StaffID    string // staff id or NoPreference
	ServiceIDs []string
	Date       string // 2006-01-02
	Time       string // 15:04
}

// Service is the booking committer.
type Service struct {
	basis     *schedule.Basis
	filter    *schedule.Filter
	resolver  *schedule.Resolver
	catalog   Catalog
	staff     StaffDirectory
	store     Store
	translate StoreErrTranslator
	logger    *zerolog.Logger
	bus       *events.Bus

	// newRand seeds the staff tie-break per call; replaced in tests.
	newRand func() *rand.Rand
}

// UseBus attaches the lifecycle event bus. Optional; without it commits
// simply do not broadcast.
func (s *Service) UseBus(bus *events.Bus) {
	s.bus = bus
}

func (s *Service) publish(eventType string, b *model.Booking) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{Type: eventType, Booking: *b})
}

// NewService wires the committer. translate maps storage conflict errors
// into ErrSlotNoLongerAvailable; pass nil to keep store errors as-is.
func NewService(
	basis *schedule.Basis,
	filter *schedule.Filter,
	resolver *schedule.Resolver,
	catalog Catalog,
	staff StaffDirectory,
	store Store,
	translate StoreErrTranslator,
	logger *zerolog.Logger,
) *Service {
	if translate == nil {
		translate = func(err error) error { return err }
	}
	return &Service{
		basis:     basis,
		filter:    filter,
		resolver:  resolver,
		catalog:   catalog,
		staff:     staff,
		store:     store,
		translate: translate,
		logger:    logger,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// Commit creates one reservation for the request. The persisted span is
// the stacked service durations with the relief buffer between segments
// only; trailing buffer is scheduling overhead, never stored. The booking
// is created confirmed so reminders and mirrors pick it up right away;
// pending is reserved for flows with an approval step in front.
func (s *Service) Commit(ctx context.Context, req Request) (*model.Booking, error) {
	span, err := s.resolveSpan(ctx, req)
	if err != nil {
		return nil, err
	}

	staffID, err := s.resolveStaff(ctx, req.StaffID, span.startUTC, span.endUTC, "")
	if err != nil {
		metrics.IncBookingRejected("no_staff")
		return nil, err
	}

	if err := s.recheck(ctx, staffID, span.startUTC, span.endUTC, ""); err != nil {
		metrics.IncBookingRejected("slot_taken")
		return nil, err
	}

	b := &model.Booking{
		ID:              uuid.NewString(),
		StaffID:         staffID,
		CustomerID:      req.CustomerID,
		StartTime:       span.startUTC,
		EndTime:         span.endUTC,
		Status:          model.StatusConfirmed,
		DurationMinutes: span.minutes,
		ServiceIDs:      req.ServiceIDs,
	}
	if err := s.store.CreateBooking(ctx, b); err != nil {
		if terr := s.translate(err); errors.Is(terr, ErrSlotNoLongerAvailable) {
			metrics.IncBookingRejected("slot_taken")
			return nil, terr
		}
		return nil, fmt.Errorf("persist booking: %w", err)
	}

	metrics.IncBookingCommitted("create")
	s.publish(events.BookingCreated, b)
	s.logger.Info().
		Str("booking_id", b.ID).
		Str("staff_id", b.StaffID).
		Time("start", b.StartTime).
		Time("end", b.EndTime).
		Msg("booking committed")
	return b, nil
}

// Reschedule overwrites the booking's staff and span; the status is
// preserved, moving a booking never promotes it. The prior schedule is
// not retained here; audit history belongs to the persistence layer.
// The booking excludes itself from every conflict check on the way.
func (s *Service) Reschedule(ctx context.Context, bookingID string, req Request) (*model.Booking, error) {
	existing, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}
	if existing.IsTerminal() {
		return nil, ErrBookingTerminal
	}

	span, err := s.resolveSpan(ctx, req)
	if err != nil {
		return nil, err
	}

	staffID, err := s.resolveStaff(ctx, req.StaffID, span.startUTC, span.endUTC, bookingID)
	if err != nil {
		metrics.IncBookingRejected("no_staff")
		return nil, err
	}

	if err := s.recheck(ctx, staffID, span.startUTC, span.endUTC, bookingID); err != nil {
		metrics.IncBookingRejected("slot_taken")
		return nil, err
	}

	updated := *existing
	updated.StaffID = staffID
	updated.StartTime = span.startUTC
	updated.EndTime = span.endUTC
	updated.DurationMinutes = span.minutes
	updated.ServiceIDs = req.ServiceIDs

	if err := s.store.UpdateBookingSchedule(ctx, &updated, existing.Version); err != nil {
		if terr := s.translate(err); errors.Is(terr, ErrSlotNoLongerAvailable) {
			metrics.IncBookingRejected("slot_taken")
			return nil, terr
		}
		return nil, fmt.Errorf("persist reschedule: %w", err)
	}

	metrics.IncBookingCommitted("reschedule")
	s.publish(events.BookingRescheduled, &updated)
	s.logger.Info().
		Str("booking_id", updated.ID).
		Str("staff_id", updated.StaffID).
		Time("start", updated.StartTime).
		Msg("booking rescheduled")
	return &updated, nil
}

// Cancel moves a booking to the terminal cancelled state, releasing its
// interval for future conflict checks. Terminal bookings are history and
// stay as they ended: cancelling a completed booking fails.
func (s *Service) Cancel(ctx context.Context, bookingID string) error {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("load booking: %w", err)
	}
	if b.IsTerminal() {
		return ErrBookingTerminal
	}
	if err := s.store.SetBookingStatus(ctx, bookingID, model.StatusCancelled); err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	metrics.IncBookingCancelled()
	b.Status = model.StatusCancelled
	s.publish(events.BookingCancelled, b)
	return nil
}

// Complete marks a booking completed (terminal). Like Cancel it refuses
// to rewrite a booking that already reached a terminal state.
func (s *Service) Complete(ctx context.Context, bookingID string) error {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("load booking: %w", err)
	}
	if b.IsTerminal() {
		return ErrBookingTerminal
	}
	if err := s.store.SetBookingStatus(ctx, bookingID, model.StatusCompleted); err != nil {
		return fmt.Errorf("complete booking: %w", err)
	}
	b.Status = model.StatusCompleted
	s.publish(events.BookingCompleted, b)
	return nil
}

type span struct {
	startUTC time.Time
	endUTC   time.Time
	minutes  int
}

func (s *Service) resolveSpan(ctx context.Context, req Request) (*span, error) {
	services, err := s.catalog.GetServices(ctx, req.ServiceIDs)
	if err != nil {
		return nil, fmt.Errorf("catalog lookup: %w", err)
	}

	raws := make([]string, len(services))
	for i, svc := range services {
		raws[i] = svc.DurationRaw
	}
	minutes, err := schedule.StackDurations(raws, s.filter.BufferMinutes())
	if err != nil {
		return nil, err
	}

	localStart, err := s.basis.ParseLocal(req.Date, req.Time)
	if err != nil {
		return nil, err
	}
	startUTC := s.basis.ToUTC(localStart)
	return &span{
		startUTC: startUTC,
		endUTC:   startUTC.Add(time.Duration(minutes) * time.Minute),
		minutes:  minutes,
	}, nil
}

func (s *Service) resolveStaff(ctx context.Context, preference string, startUTC, endUTC time.Time, excludeID string) (string, error) {
	if preference != "" && preference != NoPreference {
		return preference, nil
	}

	staffSet, err := s.staff.ListStaff(ctx)
	if err != nil {
		return "", fmt.Errorf("list staff: %w", err)
	}
	from, to := dayWindow(startUTC)
	if err := s.staff.LoadBookings(ctx, staffSet, from, to); err != nil {
		return "", fmt.Errorf("load bookings: %w", err)
	}
	return s.resolver.Resolve(staffSet, startUTC, endUTC, excludeID, s.newRand())
}

// recheck re-runs the overlap test against a fresh read immediately
// before the write. The store repeats the same test inside its
// transaction; this pass exists so a lost race surfaces as the precise
// contention error even when the storage backend reports it generically.
func (s *Service) recheck(ctx context.Context, staffID string, startUTC, endUTC time.Time, excludeID string) error {
	from, to := dayWindow(startUTC)
	bookings, err := s.staff.StaffBookings(ctx, staffID, from, to)
	if err != nil {
		return fmt.Errorf("load staff bookings: %w", err)
	}
	if !s.filter.WindowFree(bookings, s.basis.ToLocal(startUTC), s.basis.ToLocal(endUTC), excludeID) {
		return ErrSlotNoLongerAvailable
	}
	return nil
}

// dayWindow bounds the booking reads around the requested instant. A full
// day on either side covers timezone skew between viewer and storage.
func dayWindow(at time.Time) (time.Time, time.Time) {
	return at.Add(-24 * time.Hour), at.Add(24 * time.Hour)
}

package schedule

import (
	"time"

	"salonbook/internal/model"
)

// Filter marks candidate slots as available or blocked against a staff
// member's existing bookings. This is the safety-critical routine: a false
// negative creates a double-booking, a false positive only degrades
// usability.
type Filter struct {
	basis  *Basis
	buffer time.Duration
}

// NewFilter creates a conflict filter with the given relief buffer in
// minutes (default 30).
func NewFilter(basis *Basis, bufferMinutes int) *Filter {
	if bufferMinutes < 0 {
		bufferMinutes = DefaultBufferMinutes
	}
	return &Filter{basis: basis, buffer: Buffer(bufferMinutes)}
}

// BufferMinutes returns the configured relief buffer.
func (f *Filter) BufferMinutes() int {
	return int(f.buffer / time.Minute)
}

// Apply computes the slot list for the candidates against the bookings.
// durationMinutes is the cumulative requested service duration; now drives
// past-slot exclusion and is always an explicit parameter so results are
// deterministic. excludeID removes one booking from its own conflict
// check (the reschedule case); pass "" otherwise.
func (f *Filter) Apply(cands []Candidate, bookings []model.Booking, durationMinutes int, now time.Time, excludeID string) []model.Slot {
	duration := time.Duration(durationMinutes) * time.Minute
	slots := make([]model.Slot, 0, len(cands))

	for _, c := range cands {
		slotStart := c.Start
		slotEnd := slotStart.Add(duration)

		disabled := false
		if f.basis.SameDay(slotStart, now) && slotStart.Before(now) {
			disabled = true
		}
		if !disabled && f.blocked(bookings, slotStart, slotEnd, excludeID) {
			disabled = true
		}

		slots = append(slots, model.Slot{Time: c.Clock, Disabled: disabled})
	}
	return slots
}

// WindowFree reports whether the exact [start, end) window is free of
// buffered conflicts. Used for no-preference assignment and for the
// re-check immediately before a write.
func (f *Filter) WindowFree(bookings []model.Booking, start, end time.Time, excludeID string) bool {
	return !f.blocked(bookings, start, end, excludeID)
}

// blocked applies the single overlap predicate from the buffered-interval
// model: [b.start, b.end+buffer) intersects [start, end+buffer) exactly
// when start < b.end+buffer && end > b.start. Containment and partial
// overlap are instances of the same test, deliberately not special-cased.
func (f *Filter) blocked(bookings []model.Booking, start, end time.Time, excludeID string) bool {
	for i := range bookings {
		b := &bookings[i]
		if b.IsTerminal() {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		bStart := f.basis.ToLocal(b.StartTime)
		bEnd := f.basis.ToLocal(b.EndTime)
		if start.Before(bEnd.Add(f.buffer)) && end.After(bStart) {
			return true
		}
	}
	return false
}

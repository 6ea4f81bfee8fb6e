// Package model holds the persistent records the scheduling core works with.
package model

import "time"

// Booking statuses. Cancelled and completed are terminal: they stay in
// history but never block future slots.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// WorkingHoursRule is a recurring weekly availability window for a staff
// member. StartTime and EndTime are "HH:MM" clock strings in the salon's
// local timezone.
type WorkingHoursRule struct {
	ID        int64          `json:"id"`
	StaffID   string         `json:"staff_id"`
	StartTime string         `json:"start_time"`
	EndTime   string         `json:"end_time"`
	Days      []time.Weekday `json:"days_of_week"`
}

// AppliesTo reports whether the rule covers the given weekday.
func (r *WorkingHoursRule) AppliesTo(day time.Weekday) bool {
	for _, d := range r.Days {
		if d == day {
			return true
		}
	}
	return false
}

// Service is a bookable catalog entry. DurationRaw keeps the upstream
// representation ("H:MM:SS", "H:MM" or bare minutes); parsing lives in
// the schedule package so every flow interprets it the same way.
type Service struct {
	ID          string  `json:"id"`
	CatalogueID string  `json:"catalogue_id"`
	Name        string  `json:"name"`
	DurationRaw string  `json:"duration"`
	Price       float64 `json:"price"`
}

// StaffMember carries the working-hour rules and the committed bookings
// used for conflict detection. Bookings must include every non-terminal
// reservation for the loaded date window, regardless of customer.
type StaffMember struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Rules    []WorkingHoursRule `json:"working_hours"`
	Bookings []Booking          `json:"bookings,omitempty"`
}

// RuleFor returns the first rule covering the weekday, or nil if the staff
// member does not work that day.
func (s *StaffMember) RuleFor(day time.Weekday) *WorkingHoursRule {
	for i := range s.Rules {
		if s.Rules[i].AppliesTo(day) {
			return &s.Rules[i]
		}
	}
	return nil
}

// Booking is a committed reservation. Times are stored in UTC; the span
// covers the stacked service durations without the trailing buffer.
type Booking struct {
	ID              string    `json:"id"`
	StaffID         string    `json:"staff_id"`
	CustomerID      string    `json:"customer_id"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	DurationMinutes int       `json:"duration_minutes"`
	ServiceIDs      []string  `json:"service_ids,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Version         int64     `json:"version"`
}

// IsTerminal reports whether the booking is out of play for conflicts.
func (b *Booking) IsTerminal() bool {
	return b.Status == StatusCancelled || b.Status == StatusCompleted
}

// OverlapsBuffered checks the buffered interval [start, end+buffer) of the
// booking against [otherStart, otherEnd) using inclusive-start/exclusive-end
// semantics. Containment and partial overlap are instances of the same test.
func (b *Booking) OverlapsBuffered(otherStart, otherEnd time.Time, buffer time.Duration) bool {
	return otherStart.Before(b.EndTime.Add(buffer)) && otherEnd.After(b.StartTime)
}

// Slot is a computed candidate start time, never persisted.
type Slot struct {
	Time     string `json:"time"`
	Disabled bool   `json:"disabled"`
}

// DayIndicator is the calendar-level availability signal.
type DayIndicator string

const (
	DayNone        DayIndicator = "none"
	DayAvailable   DayIndicator = "available"
	DayLimited     DayIndicator = "limited"
	DayFullyBooked DayIndicator = "fully-booked"
)

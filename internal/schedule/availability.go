package schedule

import (
	"sort"
	"time"

	"salonbook/internal/model"
)

// Aggregator rolls per-staff slot availability up for calendar rendering
// and for "no preference" queries.
type Aggregator struct {
	gen    *Generator
	filter *Filter
}

// NewAggregator wires slot generation and conflict filtering together.
func NewAggregator(gen *Generator, filter *Filter) *Aggregator {
	return &Aggregator{gen: gen, filter: filter}
}

// StaffSlots computes the slot list for a single staff member on a date.
func (a *Aggregator) StaffSlots(staff *model.StaffMember, date time.Time, durationMinutes int, now time.Time, excludeID string) ([]model.Slot, error) {
	cands, err := a.gen.Generate(staff, date)
	if err != nil {
		return nil, err
	}
	return a.filter.Apply(cands, staff.Bookings, durationMinutes, now, excludeID), nil
}

// DayIndicator classifies a calendar date across the whole staff set.
// This is a heuristic UX signal, not a booking guarantee: a slot inside an
// "available" day can still be individually disabled.
func (a *Aggregator) DayIndicator(staffSet []model.StaffMember, date time.Time, durationMinutes int, now time.Time) (model.DayIndicator, error) {
	total, free := 0, 0
	for i := range staffSet {
		slots, err := a.StaffSlots(&staffSet[i], date, durationMinutes, now, "")
		if err != nil {
			return "", err
		}
		total += len(slots)
		for _, s := range slots {
			if !s.Disabled {
				free++
			}
		}
	}

	switch {
	case total == 0:
		return model.DayNone, nil
	case free == 0:
		return model.DayFullyBooked, nil
	case free*2 <= total:
		return model.DayLimited, nil
	default:
		return model.DayAvailable, nil
	}
}

// UnionSlots merges the slot sets of all eligible staff for a date: the
// customer is choosing a time, staff assignment is deferred to commit.
// A time is enabled when at least one staff member is free for it.
func (a *Aggregator) UnionSlots(staffSet []model.StaffMember, date time.Time, durationMinutes int, now time.Time) ([]model.Slot, error) {
	enabled := make(map[string]bool)
	for i := range staffSet {
		slots, err := a.StaffSlots(&staffSet[i], date, durationMinutes, now, "")
		if err != nil {
			return nil, err
		}
		for _, s := range slots {
			if _, seen := enabled[s.Time]; !seen {
				enabled[s.Time] = !s.Disabled
			} else if !s.Disabled {
				enabled[s.Time] = true
			}
		}
	}

	out := make([]model.Slot, 0, len(enabled))
	for clock, ok := range enabled {
		out = append(out, model.Slot{Time: clock, Disabled: !ok})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

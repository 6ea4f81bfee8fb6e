package schedule

import (
	"testing"
	"time"

	"salonbook/internal/model"
)

func twoStaff() []model.StaffMember {
	rule := func(id, start, end string) model.WorkingHoursRule {
		return model.WorkingHoursRule{StaffID: id, StartTime: start, EndTime: end, Days: []time.Weekday{time.Monday}}
	}
	return []model.StaffMember{
		{ID: "anna", Name: "Anna", Rules: []model.WorkingHoursRule{rule("anna", "09:00", "11:00")}},
		{ID: "boris", Name: "Boris", Rules: []model.WorkingHoursRule{rule("boris", "10:00", "12:00")}},
	}
}

func newAggregator(granularity, buffer int) (*Aggregator, *Basis) {
	basis, _ := NewBasis("")
	gen := NewGenerator(basis, granularity)
	filter := NewFilter(basis, buffer)
	return NewAggregator(gen, filter), basis
}

func TestUnionSlotsMergesStaff(t *testing.T) {
	agg, _ := newAggregator(30, 30)
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	staffSet := twoStaff()
	// Anna is fully booked; Boris keeps his 10:00-11:30 range open.
	staffSet[0].Bookings = []model.Booking{
		utcBooking("b1",
			time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC),
			model.StatusConfirmed),
	}

	slots, err := agg.UnionSlots(staffSet, monday, 30, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Union spans both rule windows: 09:00..10:30 from Anna, 10:00..11:30
	// from Boris.
	want := map[string]bool{ // clock -> enabled
		"09:00": false,
		"09:30": false,
		"10:00": true,
		"10:30": true,
		"11:00": true,
		"11:30": true,
	}
	if len(slots) != len(want) {
		t.Fatalf("expected %d union slots, got %d (%v)", len(want), len(slots), slots)
	}
	for _, s := range slots {
		enabled, ok := want[s.Time]
		if !ok {
			t.Errorf("unexpected slot %s", s.Time)
			continue
		}
		if s.Disabled == enabled {
			t.Errorf("slot %s disabled = %v, want %v", s.Time, s.Disabled, !enabled)
		}
	}

	// Sorted ascending for rendering.
	for i := 1; i < len(slots); i++ {
		if slots[i-1].Time >= slots[i].Time {
			t.Fatalf("slots not sorted: %v", slots)
		}
	}
}

func TestUnionSlotsEnabledWhenAnyStaffFree(t *testing.T) {
	agg, _ := newAggregator(30, 30)
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	staffSet := twoStaff()
	// Both work 10:00-11:00 overlap; only Boris is booked then.
	staffSet[1].Bookings = []model.Booking{
		utcBooking("b2",
			time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC),
			model.StatusConfirmed),
	}

	slots, err := agg.UnionSlots(staffSet, monday, 30, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slotByClock(t, slots, "10:00").Disabled {
		t.Error("expected 10:00 enabled via Anna")
	}
	if !slotByClock(t, slots, "11:00").Disabled {
		t.Error("expected 11:00 disabled: outside Anna's rule, Boris booked")
	}
}

func TestDayIndicator(t *testing.T) {
	agg, _ := newAggregator(60, 0)
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	staff := model.StaffMember{
		ID: "anna",
		Rules: []model.WorkingHoursRule{
			{StaffID: "anna", StartTime: "09:00", EndTime: "13:00", Days: []time.Weekday{time.Monday}},
		},
	}
	book := func(fromH, toH int) model.Booking {
		return utcBooking("x",
			time.Date(2026, 9, 7, fromH, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 7, toH, 0, 0, 0, time.UTC),
			model.StatusConfirmed)
	}

	t.Run("none when nobody works", func(t *testing.T) {
		ind, err := agg.DayIndicator([]model.StaffMember{staff}, tuesday, 60, now)
		if err != nil {
			t.Fatal(err)
		}
		if ind != model.DayNone {
			t.Errorf("got %s, want %s", ind, model.DayNone)
		}
	})

	t.Run("available when mostly free", func(t *testing.T) {
		ind, err := agg.DayIndicator([]model.StaffMember{staff}, monday, 60, now)
		if err != nil {
			t.Fatal(err)
		}
		if ind != model.DayAvailable {
			t.Errorf("got %s, want %s", ind, model.DayAvailable)
		}
	})

	t.Run("limited at half booked", func(t *testing.T) {
		s := staff
		s.Bookings = []model.Booking{book(9, 11)} // 2 of 4 hourly slots gone
		ind, err := agg.DayIndicator([]model.StaffMember{s}, monday, 60, now)
		if err != nil {
			t.Fatal(err)
		}
		if ind != model.DayLimited {
			t.Errorf("got %s, want %s", ind, model.DayLimited)
		}
	})

	t.Run("fully booked", func(t *testing.T) {
		s := staff
		s.Bookings = []model.Booking{book(9, 13)}
		ind, err := agg.DayIndicator([]model.StaffMember{s}, monday, 60, now)
		if err != nil {
			t.Fatal(err)
		}
		if ind != model.DayFullyBooked {
			t.Errorf("got %s, want %s", ind, model.DayFullyBooked)
		}
	})
}

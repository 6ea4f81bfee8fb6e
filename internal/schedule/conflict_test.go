package schedule

import (
	"testing"
	"time"

	"salonbook/internal/model"
)

func utcBooking(id string, start, end time.Time, status string) model.Booking {
	return model.Booking{ID: id, StaffID: "stf-1", StartTime: start, EndTime: end, Status: status}
}

func dayCandidates(t *testing.T, gen *Generator, staff *model.StaffMember, date time.Time) []Candidate {
	t.Helper()
	cands, err := gen.Generate(staff, date)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return cands
}

func slotByClock(t *testing.T, slots []model.Slot, clock string) model.Slot {
	t.Helper()
	for _, s := range slots {
		if s.Time == clock {
			return s
		}
	}
	t.Fatalf("slot %s not found", clock)
	return model.Slot{}
}

func TestApplyBufferEnforcement(t *testing.T) {
	basis, _ := NewBasis("")
	gen := NewGenerator(basis, 30)
	filter := NewFilter(basis, 30)

	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	staff := mondayStaff("09:00", "17:00")
	cands := dayCandidates(t, gen, staff, monday)

	booked := []model.Booking{
		utcBooking("b1",
			time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC),
			model.StatusConfirmed),
	}

	// Querying for a 60-minute appointment; now is far in the past so no
	// past-slot exclusion interferes.
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	slots := filter.Apply(cands, booked, 60, now, "")

	tests := []struct {
		clock    string
		disabled bool
	}{
		{"09:00", false}, // ends exactly at booking start
		{"09:30", true},  // would run into the booking
		{"10:00", true},  // exact overlap
		{"10:30", true},  // starts inside
		{"11:00", true},  // inside the relief buffer
		{"11:30", false}, // first start clear of buffer
		{"12:00", false},
	}
	for _, tt := range tests {
		if got := slotByClock(t, slots, tt.clock); got.Disabled != tt.disabled {
			t.Errorf("slot %s disabled = %v, want %v", tt.clock, got.Disabled, tt.disabled)
		}
	}
}

func TestApplySkipsTerminalBookings(t *testing.T) {
	basis, _ := NewBasis("")
	gen := NewGenerator(basis, 30)
	filter := NewFilter(basis, 30)

	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	staff := mondayStaff("09:00", "12:00")
	cands := dayCandidates(t, gen, staff, monday)

	booked := []model.Booking{
		utcBooking("b1",
			time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC),
			model.StatusCancelled),
		utcBooking("b2",
			time.Date(2026, 9, 7, 9, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
			model.StatusCompleted),
	}

	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	for _, s := range filter.Apply(cands, booked, 30, now, "") {
		if s.Disabled {
			t.Errorf("slot %s blocked by a terminal booking", s.Time)
		}
	}
}

func TestApplyExcludesOwnBooking(t *testing.T) {
	basis, _ := NewBasis("")
	gen := NewGenerator(basis, 30)
	filter := NewFilter(basis, 30)

	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	staff := mondayStaff("09:00", "12:00")
	cands := dayCandidates(t, gen, staff, monday)

	booked := []model.Booking{
		utcBooking("mine",
			time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC),
			model.StatusConfirmed),
	}
	now := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	withSelf := filter.Apply(cands, booked, 30, now, "")
	if !slotByClock(t, withSelf, "10:00").Disabled {
		t.Fatal("expected 10:00 blocked without exclusion")
	}

	rescheduling := filter.Apply(cands, booked, 30, now, "mine")
	if slotByClock(t, rescheduling, "10:00").Disabled {
		t.Error("expected own booking ignored during reschedule")
	}
}

func TestApplyPastSlotExclusion(t *testing.T) {
	basis, _ := NewBasis("")
	gen := NewGenerator(basis, 30)
	filter := NewFilter(basis, 30)

	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	staff := mondayStaff("09:00", "12:00")
	cands := dayCandidates(t, gen, staff, monday)

	t.Run("viewing today", func(t *testing.T) {
		now := time.Date(2026, 9, 7, 10, 15, 0, 0, time.UTC)
		slots := filter.Apply(cands, nil, 30, now, "")

		if !slotByClock(t, slots, "09:30").Disabled {
			t.Error("expected elapsed slot disabled")
		}
		if slotByClock(t, slots, "10:30").Disabled {
			t.Error("expected future slot enabled")
		}
		// 10:15 has passed 10:00 strictly.
		if !slotByClock(t, slots, "10:00").Disabled {
			t.Error("expected 10:00 disabled at 10:15")
		}
	})

	t.Run("viewing a future day", func(t *testing.T) {
		now := time.Date(2026, 9, 1, 23, 0, 0, 0, time.UTC)
		for _, s := range filter.Apply(cands, nil, 30, now, "") {
			if s.Disabled {
				t.Errorf("slot %s disabled on a future day", s.Time)
			}
		}
	})

	t.Run("slot equal to now stays", func(t *testing.T) {
		now := time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC)
		if slotByClock(t, filter.Apply(cands, nil, 30, now, ""), "10:00").Disabled {
			t.Error("slot starting exactly now should remain bookable")
		}
	})
}

func TestWindowFree(t *testing.T) {
	basis, _ := NewBasis("")
	filter := NewFilter(basis, 30)

	booked := []model.Booking{
		utcBooking("b1",
			time.Date(2026, 9, 7, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 7, 11, 0, 0, 0, time.UTC),
			model.StatusConfirmed),
	}

	at := func(h, m int) time.Time {
		return time.Date(2026, 9, 7, h, m, 0, 0, time.UTC)
	}

	if filter.WindowFree(booked, at(10, 30), at(11, 30), "") {
		t.Error("overlapping window reported free")
	}
	if filter.WindowFree(booked, at(11, 0), at(12, 0), "") {
		t.Error("window inside relief buffer reported free")
	}
	if !filter.WindowFree(booked, at(11, 30), at(12, 30), "") {
		t.Error("clear window reported blocked")
	}
	if !filter.WindowFree(booked, at(10, 30), at(11, 30), "b1") {
		t.Error("self-excluded window reported blocked")
	}
}

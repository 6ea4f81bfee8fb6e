package schedule

import (
	"math/rand"
	"time"

	"salonbook/internal/model"
)

// Resolver picks a staff member for "no preference" bookings at commit
// time. Selection is uniform random across everyone actually free for the
// window — deliberately not least-loaded or first-by-id, so load spreads
// without a bookkeeping step. If round-robin fairness is ever wanted that
// is a policy change, not a bug fix.
type Resolver struct {
	basis  *Basis
	filter *Filter
}

// NewResolver creates a staff resolver.
func NewResolver(basis *Basis, filter *Filter) *Resolver {
	return &Resolver{basis: basis, filter: filter}
}

// Resolve returns the id of a randomly chosen staff member who works on
// the window's weekday and passes the exact-interval conflict test.
// start and end are UTC instants. rng is seeded per call by the caller so
// tests can pin the choice. excludeID removes a booking from the conflict
// test (rescheduling must not conflict with itself). An empty eligible
// set fails with ErrNoStaffAvailable; the caller must re-prompt, never
// book an overlapping slot.
func (r *Resolver) Resolve(staffSet []model.StaffMember, start, end time.Time, excludeID string, rng *rand.Rand) (string, error) {
	localStart := r.basis.ToLocal(start)
	localEnd := r.basis.ToLocal(end)
	weekday := localStart.Weekday()

	var eligible []string
	for i := range staffSet {
		s := &staffSet[i]
		if s.RuleFor(weekday) == nil {
			continue
		}
		if !r.filter.WindowFree(s.Bookings, localStart, localEnd, excludeID) {
			continue
		}
		eligible = append(eligible, s.ID)
	}

	if len(eligible) == 0 {
		return "", ErrNoStaffAvailable
	}
	return eligible[rng.Intn(len(eligible))], nil
}

package schedule

import (
	"time"

	"salonbook/internal/model"
)

// DefaultGranularityMinutes is the fixed slot step offered to customers.
const DefaultGranularityMinutes = 30

// Candidate is a raw slot before conflict filtering. Start is an instant
// in the viewer's zone; Clock is the displayed "15:04" label.
type Candidate struct {
	Start time.Time
	Clock string
}

// Generator enumerates candidate slots from weekly working-hour rules.
// Pure enumeration: it knows nothing about bookings.
type Generator struct {
	basis       *Basis
	granularity time.Duration
}

// NewGenerator creates a generator with the given slot granularity in
// minutes (default 30).
func NewGenerator(basis *Basis, granularityMinutes int) *Generator {
	if granularityMinutes <= 0 {
		granularityMinutes = DefaultGranularityMinutes
	}
	return &Generator{
		basis:       basis,
		granularity: time.Duration(granularityMinutes) * time.Minute,
	}
}

// Granularity returns the slot step.
func (g *Generator) Granularity() time.Duration {
	return g.granularity
}

// Generate returns the ordered, non-overlapping candidates for a staff
// member on a local calendar date. A weekday with no rule yields an empty
// list, not an error: the staff member simply does not work that day.
// The final candidate is included only when a full granularity unit fits
// before the rule's end time.
func (g *Generator) Generate(staff *model.StaffMember, date time.Time) ([]Candidate, error) {
	rule := staff.RuleFor(date.In(g.basis.Location()).Weekday())
	if rule == nil {
		return nil, nil
	}

	start, err := g.basis.At(date, rule.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := g.basis.At(date, rule.EndTime)
	if err != nil {
		return nil, err
	}

	var out []Candidate
	for cursor := start; !cursor.Add(g.granularity).After(end); cursor = cursor.Add(g.granularity) {
		out = append(out, Candidate{
			Start: cursor,
			Clock: cursor.Format("15:04"),
		})
	}
	return out, nil
}

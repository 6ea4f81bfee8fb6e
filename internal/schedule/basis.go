// Package schedule implements the appointment scheduling core: timezone
// normalization, duration parsing, slot generation, conflict filtering,
// day-level availability and staff assignment.
package schedule

import (
	"fmt"
	"time"
)

// Basis normalizes calendar math between the viewer's local timezone and
// the storage timezone (UTC). Every comparison between a slot clock and a
// stored booking time goes through here; comparing a raw UTC timestamp
// against a naive local clock string is the defect class this exists to
// prevent.
type Basis struct {
	loc *time.Location
}

// NewBasis resolves the viewer's timezone once. An empty name falls back
// to UTC rather than the server's local zone.
func NewBasis(name string) (*Basis, error) {
	if name == "" {
		return &Basis{loc: time.UTC}, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidTimestamp, name)
	}
	return &Basis{loc: loc}, nil
}

// Location exposes the resolved viewer zone.
func (b *Basis) Location() *time.Location {
	return b.loc
}

// ToLocal converts a stored UTC instant into the viewer's zone.
func (b *Basis) ToLocal(utc time.Time) time.Time {
	return utc.In(b.loc)
}

// ToUTC converts a viewer-local instant into the storage zone.
func (b *Basis) ToUTC(local time.Time) time.Time {
	return local.UTC()
}

// ParseLocal combines a "2006-01-02" date and a "15:04" clock into an
// instant in the viewer's zone.
func (b *Basis) ParseLocal(date, clock string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", date, b.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidTimestamp, date)
	}
	hh, mm, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hh, mm, 0, 0, b.loc), nil
}

// At places a "15:04" clock string on the given local date.
func (b *Basis) At(date time.Time, clock string) (time.Time, error) {
	hh, mm, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hh, mm, 0, 0, b.loc), nil
}

// SameDay reports whether two instants fall on the same calendar date in
// the viewer's zone.
func (b *Basis) SameDay(a, c time.Time) bool {
	al, cl := a.In(b.loc), c.In(b.loc)
	ay, am, ad := al.Date()
	cy, cm, cd := cl.Date()
	return ay == cy && am == cm && ad == cd
}

func parseClock(clock string) (hh, mm int, err error) {
	t, perr := time.Parse("15:04", clock)
	if perr != nil {
		return 0, 0, fmt.Errorf("%w: clock %q", ErrInvalidTimestamp, clock)
	}
	return t.Hour(), t.Minute(), nil
}

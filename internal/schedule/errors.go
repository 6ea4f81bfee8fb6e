package schedule

import "errors"

var (
	// ErrInvalidDuration is returned for a service duration that is neither
	// a colon-separated clock string nor a bare number of minutes.
	ErrInvalidDuration = errors.New("invalid service duration")

	// ErrInvalidTimestamp is returned for an unparseable date or clock
	// value. Callers must correct the input; the core never substitutes
	// the current time.
	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// ErrNoStaffAvailable is returned when a no-preference booking finds
	// nobody free for the requested window.
	ErrNoStaffAvailable = errors.New("no staff available for requested time")
)

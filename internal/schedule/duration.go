package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultBufferMinutes is the relief time required between the end of one
// booking and the start of the next for the same staff member.
const DefaultBufferMinutes = 30

// ParseServiceDuration converts a catalog duration representation into
// whole minutes (>= 1). Colon strings are interpreted strictly as
// hours:minutes[:seconds] — two-part values are never minutes:seconds,
// which the upstream data sometimes pretended they were. Bare numbers are
// minutes. Seconds round up to the next minute.
func ParseServiceDuration(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidDuration)
	}

	if !strings.Contains(raw, ":") {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
		}
		return n, nil
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
	}

	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
		}
		nums[i] = n
	}

	minutes := nums[0]*60 + nums[1]
	if len(nums) == 3 && nums[2] > 0 {
		minutes++ // round partial minute up
	}
	if minutes < 1 {
		return 0, fmt.Errorf("%w: %q resolves to zero", ErrInvalidDuration, raw)
	}
	return minutes, nil
}

// StackDurations computes the cumulative minutes for an ordered service
// sequence, inserting the buffer between segments only — never before the
// first service or after the last.
func StackDurations(raws []string, bufferMinutes int) (int, error) {
	total := 0
	for _, raw := range raws {
		mins, err := ParseServiceDuration(raw)
		if err != nil {
			return 0, err
		}
		if total > 0 {
			total += bufferMinutes
		}
		total += mins
	}
	return total, nil
}

// Buffer converts configured buffer minutes into a duration.
func Buffer(bufferMinutes int) time.Duration {
	return time.Duration(bufferMinutes) * time.Minute
}

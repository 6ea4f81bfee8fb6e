package schedule

import (
	"errors"
	"testing"
)

func TestParseServiceDuration(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "bare minutes", raw: "45", want: 45},
		{name: "bare minutes with spaces", raw: " 90 ", want: 90},
		{name: "hours and minutes", raw: "1:30", want: 90},
		{name: "two-part is hours not minutes-seconds", raw: "0:45", want: 45},
		{name: "full clock", raw: "02:00:00", want: 120},
		{name: "seconds round up", raw: "1:00:30", want: 61},
		{name: "zero seconds do not round", raw: "0:45:00", want: 45},
		{name: "empty", raw: "", wantErr: true},
		{name: "garbage", raw: "abc", wantErr: true},
		{name: "zero minutes", raw: "0", wantErr: true},
		{name: "negative", raw: "-5", wantErr: true},
		{name: "too many parts", raw: "1:2:3:4", wantErr: true},
		{name: "zero clock", raw: "0:00", wantErr: true},
		{name: "negative component", raw: "1:-30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseServiceDuration(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDuration) {
					t.Fatalf("expected ErrInvalidDuration, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseServiceDuration(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestStackDurations(t *testing.T) {
	tests := []struct {
		name   string
		raws   []string
		buffer int
		want   int
	}{
		{name: "empty", raws: nil, buffer: 30, want: 0},
		{name: "single no buffer", raws: []string{"45"}, buffer: 30, want: 45},
		// Buffer goes between segments only, never trailing:
		// 45 + 30 + 60.
		{name: "two services", raws: []string{"00:45:00", "01:00:00"}, buffer: 30, want: 135},
		// 45 + 30 + 30 + 30 + 60.
		{name: "three services", raws: []string{"45", "30", "1:00"}, buffer: 30, want: 195},
		{name: "two services zero buffer", raws: []string{"30", "30"}, buffer: 0, want: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StackDurations(tt.raws, tt.buffer)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("StackDurations(%v, %d) = %d, want %d", tt.raws, tt.buffer, got, tt.want)
			}
		})
	}
}

func TestStackDurationsPropagatesParseError(t *testing.T) {
	if _, err := StackDurations([]string{"45", "bogus"}, 30); !errors.Is(err, ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

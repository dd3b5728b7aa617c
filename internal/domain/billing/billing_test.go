package billing

import (
	"testing"
	"time"
)

func TestCycleFor(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name      string
		today     time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "after the 15th uses first half of current month",
			today:     time.Date(2026, 3, 20, 12, 0, 0, 0, loc),
			wantStart: time.Date(2026, 3, 1, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2026, 3, 15, 23, 59, 59, 0, loc),
		},
		{
			name:      "on the 15th uses second half of previous month",
			today:     time.Date(2026, 3, 15, 12, 0, 0, 0, loc),
			wantStart: time.Date(2026, 2, 16, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2026, 2, 28, 23, 59, 59, 0, loc),
		},
		{
			name:      "early month crosses a year boundary",
			today:     time.Date(2026, 1, 5, 12, 0, 0, 0, loc),
			wantStart: time.Date(2025, 12, 16, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2025, 12, 31, 23, 59, 59, 0, loc),
		},
		{
			name:      "sixteenth flips to current month",
			today:     time.Date(2026, 3, 16, 0, 0, 0, 0, loc),
			wantStart: time.Date(2026, 3, 1, 0, 0, 0, 0, loc),
			wantEnd:   time.Date(2026, 3, 15, 23, 59, 59, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := CycleFor(tt.today)
			if !start.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", start, tt.wantStart)
			}
			if !end.Equal(tt.wantEnd) {
				t.Errorf("end = %v, want %v", end, tt.wantEnd)
			}
		})
	}
}

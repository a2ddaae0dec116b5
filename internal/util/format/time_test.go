package format

import (
	"testing"
	"time"
)

func TestClock(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{secs: 0, want: "0:00"},
		{secs: 1, want: "0:01"},
		{secs: 10, want: "0:10"},
		{secs: 60, want: "1:00"},
		{secs: 121, want: "2:01"},
		{secs: 3600, want: "1:00:00"},
		{secs: 3601, want: "1:00:01"},
		{secs: 3662, want: "1:01:02"},
		{secs: -5, want: "0:00"},
	}
	for _, tt := range tests {
		got := Clock(time.Duration(tt.secs) * time.Second)
		if got != tt.want {
			t.Errorf("Clock(%ds) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestClockTruncates(t *testing.T) {
	if got := Clock(1999 * time.Millisecond); got != "0:01" {
		t.Errorf("Clock(1.999s) = %q, want 0:01", got)
	}
}

func TestClockIf(t *testing.T) {
	if got := ClockIf(time.Minute, false); got != "" {
		t.Errorf("ClockIf(_, false) = %q, want empty", got)
	}
	if got := ClockIf(time.Minute, true); got != "1:00" {
		t.Errorf("ClockIf(1m, true) = %q, want 1:00", got)
	}
}

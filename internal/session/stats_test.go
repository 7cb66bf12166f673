package session

import (
	"testing"
	"time"
)

func TestElapsed(t *testing.T) {
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if got := Elapsed(base, time.Time{}); got != 0 {
		t.Errorf("Elapsed with no session = %v, want 0", got)
	}
	if got := Elapsed(base.Add(42*time.Second), base); got != 42*time.Second {
		t.Errorf("Elapsed = %v, want 42s", got)
	}
	if got := Elapsed(base, base.Add(time.Second)); got != 0 {
		t.Errorf("Elapsed with future start = %v, want 0", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{5 * time.Second, "0:05"},
		{59 * time.Second, "0:59"},
		{60 * time.Second, "1:00"},
		{95 * time.Second, "1:35"},
		{610 * time.Second, "10:10"},
	}

	for _, c := range cases {
		if got := FormatElapsed(c.d); got != c.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

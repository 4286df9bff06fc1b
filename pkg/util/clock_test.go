package util

import (
	"testing"
	"time"
)

func TestParseClock(t *testing.T) {
	c, err := ParseClock("12:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Hour() != 12 || c.Minute() != 30 {
		t.Fatalf("unexpected clock %v", c)
	}
	if c.String() != "12:30" {
		t.Fatalf("unexpected string %q", c.String())
	}
}

func TestParseClockInvalid(t *testing.T) {
	for _, s := range []string{"", "25:00", "12:61", "noon"} {
		if _, err := ParseClock(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestClockPast(t *testing.T) {
	cutoff := MustClock("12:30")
	at := time.Date(2026, 2, 3, 12, 30, 59, 0, time.UTC)
	if cutoff.Past(at) {
		t.Fatal("12:30 itself is not past the 12:30 cutoff")
	}
	after := time.Date(2026, 2, 3, 12, 31, 0, 0, time.UTC)
	if !cutoff.Past(after) {
		t.Fatal("12:31 must be past the 12:30 cutoff")
	}
	if !cutoff.AtOrPast(at) {
		t.Fatal("12:30 reaches the 12:30 cutoff")
	}
	before := time.Date(2026, 2, 3, 11, 59, 0, 0, time.UTC)
	if !cutoff.Before(before) {
		t.Fatal("11:59 is before the 12:30 cutoff")
	}
}

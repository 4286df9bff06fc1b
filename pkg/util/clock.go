package util

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Clock is a time of day expressed as minutes since midnight.
// Session cutoffs ("12:30", "14:00") are compared in exchange-local time.
type Clock int

// ParseClock parses "HH:MM" into a Clock.
func ParseClock(s string) (Clock, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}
	return Clock(h*60 + m), nil
}

// MustClock parses "HH:MM" and panics on error. For default configs only.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// MinuteOfDay returns t's minutes since midnight in t's location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// Past reports whether t is strictly after the clock time.
func (c Clock) Past(t time.Time) bool {
	return MinuteOfDay(t) > int(c)
}

// Before reports whether t is strictly before the clock time.
func (c Clock) Before(t time.Time) bool {
	return MinuteOfDay(t) < int(c)
}

// AtOrPast reports whether t has reached the clock time.
func (c Clock) AtOrPast(t time.Time) bool {
	return MinuteOfDay(t) >= int(c)
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// UnmarshalYAML accepts "HH:MM" strings in config files.
func (c *Clock) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML renders the Clock back as "HH:MM".
func (c Clock) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

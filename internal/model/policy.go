package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MinutesPerDay is the length of a calendar day in minutes.  A TimeOfDay of
// MinutesPerDay ("24:00") is only meaningful as an upper bound.
const MinutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time expressed in minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM".  "24:00" is accepted so that a window can
// run until the end of the day.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	if s == "24:00" {
		return MinutesPerDay, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay(t.Hour()*60 + t.Minute()), nil
}

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// ClockOf returns the time-of-day component of ts.
func ClockOf(ts time.Time) TimeOfDay {
	return TimeOfDay(ts.Hour()*60 + ts.Minute())
}

// Weekdays is a set of days of the week stored as a bit mask indexed by
// time.Weekday.
type Weekdays uint8

// AllWeekdays enables every day.
const AllWeekdays Weekdays = 1<<7 - 1

var weekdayNames = [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

// NewWeekdays builds a set from the given days.
func NewWeekdays(days ...time.Weekday) Weekdays {
	var w Weekdays
	for _, d := range days {
		w |= 1 << uint(d)
	}
	return w
}

// ParseWeekdays parses a comma separated list of lower or upper case English
// day names, e.g. "monday,tuesday".  Blank input yields the empty set.
func ParseWeekdays(s string) (Weekdays, error) {
	var w Weekdays
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		found := false
		for i, n := range weekdayNames {
			if n == name {
				w |= 1 << uint(i)
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("invalid day of week %q", part)
		}
	}
	return w, nil
}

// Has reports whether d is in the set.
func (w Weekdays) Has(d time.Weekday) bool { return w&(1<<uint(d)) != 0 }

// String renders the set in the same form ParseWeekdays accepts, starting
// from monday.
func (w Weekdays) String() string {
	names := make([]string, 0, 7)
	for i := 1; i <= 7; i++ {
		d := time.Weekday(i % 7)
		if w.Has(d) {
			names = append(names, weekdayNames[d])
		}
	}
	return strings.Join(names, ",")
}

// ErrInvalidPolicy is wrapped by TimePolicy.Validate failures.
var ErrInvalidPolicy = errors.New("invalid reservation policy")

// TimePolicy is the reservation rule set of a single space.  Durations are
// minutes.  The zero value rejects everything because Enabled is false.
type TimePolicy struct {
	AvailableStart TimeOfDay
	AvailableEnd   TimeOfDay
	TimeUnit       int
	MinDuration    int
	MaxDuration    int
	Enabled        bool
	EnabledDays    Weekdays
}

// Validate checks the structural invariants a stored policy must satisfy.
func (p TimePolicy) Validate() error {
	switch {
	case p.AvailableStart < 0 || p.AvailableEnd > MinutesPerDay:
		return fmt.Errorf("%w: available window out of range", ErrInvalidPolicy)
	case p.AvailableStart >= p.AvailableEnd:
		return fmt.Errorf("%w: available start must be before available end", ErrInvalidPolicy)
	case p.TimeUnit <= 0:
		return fmt.Errorf("%w: time unit must be positive", ErrInvalidPolicy)
	case p.MinDuration <= 0 || p.MinDuration%p.TimeUnit != 0:
		return fmt.Errorf("%w: minimum duration must be a positive multiple of %d", ErrInvalidPolicy, p.TimeUnit)
	case p.MaxDuration%p.TimeUnit != 0:
		return fmt.Errorf("%w: maximum duration must be a multiple of %d", ErrInvalidPolicy, p.TimeUnit)
	case p.MinDuration > p.MaxDuration:
		return fmt.Errorf("%w: minimum duration exceeds maximum duration", ErrInvalidPolicy)
	case int(p.AvailableEnd-p.AvailableStart) < p.MinDuration:
		return fmt.Errorf("%w: available window is shorter than the minimum duration", ErrInvalidPolicy)
	}
	return nil
}

// IsEnabled reports whether the space accepts reservations at all.
func (p TimePolicy) IsEnabled() bool { return p.Enabled }

// IsDayEnabled reports whether reservations may be made on date's weekday.
func (p TimePolicy) IsDayEnabled(date time.Time) bool { return p.EnabledDays.Has(date.Weekday()) }

// IsWithinAvailableWindow checks both bounds against the window of start's
// calendar day.  An end falling exactly on the following midnight counts as
// 24:00; anything later is outside the window.
func (p TimePolicy) IsWithinAvailableWindow(start, end time.Time) bool {
	endOfDay, ok := minuteOfStartDay(start, end)
	if !ok {
		return false
	}
	return ClockOf(start) >= p.AvailableStart && endOfDay <= p.AvailableEnd
}

// IsDurationValid checks min <= end-start <= max and that the length is a
// whole number of time units.
func (p TimePolicy) IsDurationValid(start, end time.Time) bool {
	if p.TimeUnit <= 0 || !end.After(start) {
		return false
	}
	d := end.Sub(start)
	if d%time.Minute != 0 {
		return false
	}
	m := int(d / time.Minute)
	return m >= p.MinDuration && m <= p.MaxDuration && m%p.TimeUnit == 0
}

// IsAlignedToUnit checks that start and end sit on the unit grid anchored at
// AvailableStart.
func (p TimePolicy) IsAlignedToUnit(start, end time.Time) bool {
	if p.TimeUnit <= 0 || !onMinute(start) || !onMinute(end) {
		return false
	}
	endOfDay, ok := minuteOfStartDay(start, end)
	if !ok {
		return false
	}
	return offsetAligned(ClockOf(start), p.AvailableStart, p.TimeUnit) &&
		offsetAligned(endOfDay, p.AvailableStart, p.TimeUnit)
}

// SameDay reports whether the interval stays within start's calendar day,
// treating an end at the next midnight as part of that day.
func SameDay(start, end time.Time) bool {
	_, ok := minuteOfStartDay(start, end)
	return ok
}

// minuteOfStartDay returns end expressed as minutes since the midnight that
// begins start's day, failing when end lies beyond the following midnight.
func minuteOfStartDay(start, end time.Time) (TimeOfDay, bool) {
	y, m, d := start.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, start.Location())
	mins := int(end.Sub(midnight) / time.Minute)
	if mins < 0 || mins > MinutesPerDay {
		return 0, false
	}
	return TimeOfDay(mins), true
}

func offsetAligned(t, anchor TimeOfDay, unit int) bool {
	diff := int(t - anchor)
	if diff < 0 {
		diff = -diff
	}
	return diff%unit == 0
}

func onMinute(t time.Time) bool { return t.Second() == 0 && t.Nanosecond() == 0 }

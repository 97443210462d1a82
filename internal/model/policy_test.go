package model

import (
	"errors"
	"testing"
	"time"
)

func at(day, hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", day+" "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func officeHours() TimePolicy {
	return TimePolicy{
		AvailableStart: 9 * 60,
		AvailableEnd:   18 * 60,
		TimeUnit:       30,
		MinDuration:    30,
		MaxDuration:    120,
		Enabled:        true,
		EnabledDays:    NewWeekdays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
	}
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want TimeOfDay
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", MinutesPerDay, true},
		{"25:00", 0, false},
		{"9am", 0, false},
	}
	for _, c := range cases {
		got, err := ParseTimeOfDay(c.in)
		if (err == nil) != c.ok {
			t.Fatalf("ParseTimeOfDay(%q) err = %v, want ok=%v", c.in, err, c.ok)
		}
		if c.ok && got != c.want {
			t.Errorf("ParseTimeOfDay(%q) = %d, want %d", c.in, got, c.want)
		}
	}
	if s := TimeOfDay(570).String(); s != "09:30" {
		t.Errorf("String() = %q", s)
	}
}

func TestWeekdaysRoundTrip(t *testing.T) {
	w, err := ParseWeekdays("Monday, friday,SUNDAY")
	if err != nil {
		t.Fatal(err)
	}
	if !w.Has(time.Monday) || !w.Has(time.Friday) || !w.Has(time.Sunday) || w.Has(time.Tuesday) {
		t.Fatalf("unexpected set %08b", w)
	}
	if got := w.String(); got != "monday,friday,sunday" {
		t.Errorf("String() = %q", got)
	}
	if _, err := ParseWeekdays("someday"); err == nil {
		t.Error("expected error for unknown day")
	}
	if w, _ := ParseWeekdays(""); w != 0 {
		t.Errorf("empty input = %08b", w)
	}
}

func TestValidate(t *testing.T) {
	if err := officeHours().Validate(); err != nil {
		t.Fatalf("valid policy rejected: %v", err)
	}
	broken := []func(*TimePolicy){
		func(p *TimePolicy) { p.AvailableStart, p.AvailableEnd = p.AvailableEnd, p.AvailableStart },
		func(p *TimePolicy) { p.TimeUnit = 0 },
		func(p *TimePolicy) { p.MinDuration = 45 },
		func(p *TimePolicy) { p.MaxDuration = 100 },
		func(p *TimePolicy) { p.MinDuration, p.MaxDuration = 120, 60 },
		func(p *TimePolicy) { p.AvailableEnd = MinutesPerDay + 30 },
		func(p *TimePolicy) { p.AvailableStart, p.AvailableEnd = 9*60, 9*60+30; p.MinDuration = 60; p.MaxDuration = 60 },
	}
	for i, mutate := range broken {
		p := officeHours()
		mutate(&p)
		if err := p.Validate(); !errors.Is(err, ErrInvalidPolicy) {
			t.Errorf("case %d: Validate() = %v, want ErrInvalidPolicy", i, err)
		}
	}
}

func TestAvailableWindow(t *testing.T) {
	p := officeHours()
	day := "2030-01-07" // Monday
	cases := []struct {
		start, end time.Time
		want       bool
	}{
		{at(day, "09:00"), at(day, "10:00"), true},
		{at(day, "17:00"), at(day, "18:00"), true},
		{at(day, "08:30"), at(day, "09:30"), false},
		{at(day, "17:30"), at(day, "18:30"), false},
		{at(day, "17:00"), at("2030-01-08", "10:00"), false},
	}
	for _, c := range cases {
		if got := p.IsWithinAvailableWindow(c.start, c.end); got != c.want {
			t.Errorf("window(%s, %s) = %v, want %v", c.start, c.end, got, c.want)
		}
	}

	p.AvailableEnd = MinutesPerDay
	if !p.IsWithinAvailableWindow(at(day, "23:00"), at("2030-01-08", "00:00")) {
		t.Error("reservation ending at midnight should fit a window ending at 24:00")
	}
}

func TestDurationAndAlignment(t *testing.T) {
	p := officeHours()
	day := "2030-01-07"

	if p.IsDurationValid(at(day, "10:00"), at(day, "10:45")) {
		t.Error("45 minutes must be invalid for a 30 minute unit")
	}
	if !p.IsDurationValid(at(day, "10:15"), at(day, "11:15")) {
		t.Error("60 minutes is a valid duration even off-grid")
	}
	if p.IsAlignedToUnit(at(day, "10:15"), at(day, "11:15")) {
		t.Error("10:15 is not aligned to a 30 minute grid anchored at 09:00")
	}
	if !p.IsAlignedToUnit(at(day, "10:30"), at(day, "11:30")) {
		t.Error("10:30 should be aligned")
	}
	if p.IsDurationValid(at(day, "10:00"), at(day, "13:00")) {
		t.Error("180 minutes exceeds the maximum")
	}
	if p.IsDurationValid(at(day, "11:00"), at(day, "10:00")) {
		t.Error("negative duration must be invalid")
	}

	// the grid is anchored at the window start, not at the hour
	p.AvailableStart = 9*60 + 10
	if !p.IsAlignedToUnit(at(day, "09:40"), at(day, "10:40")) {
		t.Error("09:40 should be aligned to a grid starting at 09:10")
	}
}

func TestDayEnabled(t *testing.T) {
	p := officeHours()
	if !p.IsDayEnabled(at("2030-01-07", "10:00")) {
		t.Error("monday should be enabled")
	}
	if p.IsDayEnabled(at("2030-01-06", "10:00")) {
		t.Error("sunday should be disabled")
	}
}

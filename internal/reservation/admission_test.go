package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iliyamo/space-reservation/internal/model"
)

var fixedNow = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func testEngine() *Engine { return &Engine{Now: func() time.Time { return fixedNow }} }

func testSpace() model.Space {
	return model.Space{
		ID:         7,
		MapID:      3,
		MapOwnerID: 100,
		Name:       "meeting room",
		Policy: model.TimePolicy{
			AvailableStart: 9 * 60,
			AvailableEnd:   18 * 60,
			TimeUnit:       30,
			MinDuration:    30,
			MaxDuration:    120,
			Enabled:        true,
			EnabledDays:    model.NewWeekdays(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday),
		},
	}
}

func at(day, hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", day+" "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAdmitEachCheckInIsolation(t *testing.T) {
	const monday, sunday = "2030-01-07", "2030-01-06"
	booked := staticIndex{{ID: 42, SpaceID: 7, StartTime: at(monday, "14:00"), EndTime: at(monday, "15:00")}}

	cases := []struct {
		name   string
		mutate func(*model.Space)
		iv     Interval
		want   error
	}{
		{"accepted", nil, Interval{at(monday, "10:00"), at(monday, "11:00")}, nil},
		{"policy disabled", func(s *model.Space) { s.Policy.Enabled = false }, Interval{at(monday, "10:00"), at(monday, "11:00")}, ErrPolicyDisabled},
		{"day not enabled", nil, Interval{at(sunday, "10:00"), at(sunday, "11:00")}, ErrDayNotEnabled},
		{"crosses midnight", func(s *model.Space) { s.Policy.AvailableEnd = model.MinutesPerDay }, Interval{at(monday, "23:30"), at("2030-01-08", "00:30")}, ErrOutsideAvailableWindow},
		{"before opening", nil, Interval{at(monday, "08:00"), at(monday, "09:00")}, ErrOutsideAvailableWindow},
		{"after closing", nil, Interval{at(monday, "17:30"), at(monday, "18:30")}, ErrOutsideAvailableWindow},
		{"45 minutes", nil, Interval{at(monday, "10:00"), at(monday, "10:45")}, ErrInvalidDuration},
		{"too long", nil, Interval{at(monday, "10:00"), at(monday, "12:30")}, ErrInvalidDuration},
		{"end before start", nil, Interval{at(monday, "11:00"), at(monday, "10:00")}, ErrInvalidDuration},
		{"off grid", nil, Interval{at(monday, "10:15"), at(monday, "11:15")}, ErrNotUnitAligned},
		{"overlap", nil, Interval{at(monday, "14:30"), at(monday, "15:30")}, ErrTimeConflict},
		{"back to back", nil, Interval{at(monday, "15:00"), at(monday, "16:00")}, nil},
		{"closing time inclusive", nil, Interval{at(monday, "17:00"), at(monday, "18:00")}, nil},
		{"in the past", nil, Interval{at("2029-12-31", "10:00"), at("2029-12-31", "11:00")}, ErrPastTime},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			space := testSpace()
			if c.mutate != nil {
				c.mutate(&space)
			}
			err := testEngine().Admit(context.Background(), space, c.iv, booked, 0)
			if c.want == nil {
				if err != nil {
					t.Fatalf("Admit() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, c.want) {
				t.Fatalf("Admit() = %v, want %v", err, c.want)
			}
		})
	}
}

func TestAdmitReportsFirstFailure(t *testing.T) {
	// sunday, outside the window, 45 minutes and off grid: the day check wins
	iv := Interval{at("2030-01-06", "07:15"), at("2030-01-06", "08:00")}
	err := testEngine().Admit(context.Background(), testSpace(), iv, staticIndex{}, 0)
	if !errors.Is(err, ErrDayNotEnabled) {
		t.Fatalf("Admit() = %v, want day_not_enabled", err)
	}
}

func TestAdmitConflictCarriesIDs(t *testing.T) {
	day := "2030-01-07"
	idx := staticIndex{
		{ID: 1, SpaceID: 7, StartTime: at(day, "10:00"), EndTime: at(day, "11:00")},
		{ID: 2, SpaceID: 7, StartTime: at(day, "11:00"), EndTime: at(day, "12:00")},
		{ID: 3, SpaceID: 8, StartTime: at(day, "10:00"), EndTime: at(day, "12:00")},
	}
	err := testEngine().Admit(context.Background(), testSpace(), Interval{at(day, "10:30"), at(day, "11:30")}, idx, 0)
	var rej *RejectionError
	if !errors.As(err, &rej) || rej.Kind != KindTimeConflict {
		t.Fatalf("Admit() = %v, want time_conflict", err)
	}
	if len(rej.ConflictIDs) != 2 || rej.ConflictIDs[0] != 1 || rej.ConflictIDs[1] != 2 {
		t.Errorf("ConflictIDs = %v, want [1 2]", rej.ConflictIDs)
	}
}

func TestAdmitExcludesSelfOnUpdate(t *testing.T) {
	day := "2030-01-07"
	idx := staticIndex{{ID: 9, SpaceID: 7, StartTime: at(day, "10:00"), EndTime: at(day, "11:00")}}
	iv := Interval{at(day, "10:00"), at(day, "11:00")}
	if err := testEngine().Admit(context.Background(), testSpace(), iv, idx, 9); err != nil {
		t.Fatalf("same interval update rejected itself: %v", err)
	}
}

type failingIndex struct{ err error }

func (f failingIndex) ConflictsWith(context.Context, uint64, time.Time, time.Time, uint64) ([]model.Reservation, error) {
	return nil, f.err
}

func TestAdmitInfrastructureFailureIsNotARejection(t *testing.T) {
	boom := errors.New("connection reset")
	day := "2030-01-07"
	err := testEngine().Admit(context.Background(), testSpace(), Interval{at(day, "10:00"), at(day, "11:00")}, failingIndex{boom}, 0)
	if !errors.Is(err, boom) {
		t.Fatalf("Admit() = %v, want wrapped %v", err, boom)
	}
	var rej *RejectionError
	if errors.As(err, &rej) {
		t.Fatalf("infrastructure failure surfaced as rejection %v", rej)
	}
}

func TestAdmitHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	day := "2030-01-07"
	err := testEngine().Admit(ctx, testSpace(), Interval{at(day, "10:00"), at(day, "11:00")}, failingIndex{errors.New("must not be called")}, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Admit() = %v, want context.Canceled", err)
	}
}

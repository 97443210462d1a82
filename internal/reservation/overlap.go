package reservation

import (
	"context"
	"time"

	"github.com/iliyamo/space-reservation/internal/model"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// IntervalOf returns the interval occupied by r.
func IntervalOf(r model.Reservation) Interval {
	return Interval{Start: r.StartTime, End: r.EndTime}
}

// Overlaps reports whether a and b share any instant.  Intervals that only
// touch (a.End == b.Start) do not overlap.  The relation is symmetric.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// OverlapIndex finds the reservations of a space that intersect a candidate
// interval.  Implementations are bound to the transaction the caller will
// commit in, so the answer stays valid until that commit.  excludeID of zero
// excludes nothing.
type OverlapIndex interface {
	ConflictsWith(ctx context.Context, spaceID uint64, start, end time.Time, excludeID uint64) ([]model.Reservation, error)
}

// Conflicts filters existing down to the reservations that overlap
// candidate, skipping excludeID.  Stores may use it to implement
// ConflictsWith over an in-memory set; the engine also re-applies it to
// whatever an index returns.
func Conflicts(existing []model.Reservation, candidate Interval, excludeID uint64) []model.Reservation {
	var out []model.Reservation
	for _, r := range existing {
		if excludeID != 0 && r.ID == excludeID {
			continue
		}
		if Overlaps(IntervalOf(r), candidate) {
			out = append(out, r)
		}
	}
	return out
}

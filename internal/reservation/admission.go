package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/space-reservation/internal/model"
)

// Engine decides whether a candidate interval may be booked on a space.  It
// never writes; the caller commits or aborts based on the returned error.
type Engine struct {
	// Now returns the current wall-clock time.  Defaults to time.Now in UTC.
	Now func() time.Time
}

// NewEngine returns an engine using the system clock.
func NewEngine() *Engine { return &Engine{} }

func (e *Engine) now() time.Time {
	if e == nil || e.Now == nil {
		return time.Now().UTC()
	}
	return e.Now()
}

// Admit runs the admission checks in a fixed order and returns the first
// failure as a *RejectionError:
//
//  1. policy enabled
//  2. weekday of the start date enabled, and the interval stays on one day
//  3. inside the available window
//  4. duration within [min, max] and a whole number of units
//  5. start and end on the unit grid
//  6. start not in the past
//  7. no overlap with other reservations of the space (excludeID skipped)
//
// Non-rejection errors come from idx or ctx and mean no decision was made.
func (e *Engine) Admit(ctx context.Context, space model.Space, c Interval, idx OverlapIndex, excludeID uint64) error {
	if err := e.checkPolicy(space.Policy, c); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	found, err := idx.ConflictsWith(ctx, space.ID, c.Start, c.End, excludeID)
	if err != nil {
		return fmt.Errorf("find overlapping reservations: %w", err)
	}
	if conflicts := Conflicts(found, c, excludeID); len(conflicts) > 0 {
		ids := make([]uint64, len(conflicts))
		for i, r := range conflicts {
			ids[i] = r.ID
		}
		return &RejectionError{Kind: KindTimeConflict, Message: ErrTimeConflict.Message, ConflictIDs: ids}
	}
	return nil
}

func (e *Engine) checkPolicy(p model.TimePolicy, c Interval) error {
	if !p.IsEnabled() {
		return ErrPolicyDisabled
	}
	if !p.IsDayEnabled(c.Start) {
		return reject(KindDayNotEnabled, ErrDayNotEnabled.Message, c.Start.Weekday().String())
	}
	if !model.SameDay(c.Start, c.End) {
		return reject(KindOutsideAvailableWindow, "reservation must start and end on the same day", "")
	}
	if !p.IsWithinAvailableWindow(c.Start, c.End) {
		return reject(KindOutsideAvailableWindow, ErrOutsideAvailableWindow.Message,
			p.AvailableStart.String()+"-"+p.AvailableEnd.String())
	}
	if !p.IsDurationValid(c.Start, c.End) {
		return reject(KindInvalidDuration, ErrInvalidDuration.Message,
			fmt.Sprintf("%d-%d minutes in steps of %d", p.MinDuration, p.MaxDuration, p.TimeUnit))
	}
	if !p.IsAlignedToUnit(c.Start, c.End) {
		return reject(KindNotUnitAligned, ErrNotUnitAligned.Message,
			fmt.Sprintf("every %d minutes from %s", p.TimeUnit, p.AvailableStart))
	}
	if c.Start.Before(e.now()) {
		return ErrPastTime
	}
	return nil
}

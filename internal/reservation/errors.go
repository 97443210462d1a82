package reservation

import (
	"fmt"
	"strings"
)

// Kind classifies why a reservation operation was refused.  Each kind maps
// to exactly one client facing error.
type Kind string

const (
	KindPolicyDisabled         Kind = "policy_disabled"
	KindDayNotEnabled          Kind = "day_not_enabled"
	KindOutsideAvailableWindow Kind = "outside_available_window"
	KindInvalidDuration        Kind = "invalid_duration"
	KindNotUnitAligned         Kind = "not_unit_aligned"
	KindPastTime               Kind = "past_time"
	KindTimeConflict           Kind = "time_conflict"
	KindNoAuthority            Kind = "no_authority"
	KindWrongPassword          Kind = "wrong_password"
	KindNotFound               Kind = "not_found"
)

// RejectionError is a domain refusal.  It is an expected outcome the user can
// act on, never an infrastructure failure.  Bound names the policy limit that
// was violated when there is one; ConflictIDs lists the reservations that
// overlap a rejected candidate.
type RejectionError struct {
	Kind        Kind
	Message     string
	Bound       string
	ConflictIDs []uint64
}

func (e *RejectionError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Bound != "" {
		fmt.Fprintf(&b, " (%s)", e.Bound)
	}
	if len(e.ConflictIDs) > 0 {
		fmt.Fprintf(&b, " conflicts=%v", e.ConflictIDs)
	}
	return b.String()
}

// Is matches any RejectionError of the same kind, so callers can write
// errors.Is(err, reservation.ErrTimeConflict).
func (e *RejectionError) Is(target error) bool {
	t, ok := target.(*RejectionError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrPolicyDisabled         = &RejectionError{Kind: KindPolicyDisabled, Message: "space does not accept reservations"}
	ErrDayNotEnabled          = &RejectionError{Kind: KindDayNotEnabled, Message: "reservations are not allowed on this day"}
	ErrOutsideAvailableWindow = &RejectionError{Kind: KindOutsideAvailableWindow, Message: "outside available hours"}
	ErrInvalidDuration        = &RejectionError{Kind: KindInvalidDuration, Message: "invalid reservation duration"}
	ErrNotUnitAligned         = &RejectionError{Kind: KindNotUnitAligned, Message: "start and end must align to the reservation unit"}
	ErrPastTime               = &RejectionError{Kind: KindPastTime, Message: "reservation starts in the past"}
	ErrTimeConflict           = &RejectionError{Kind: KindTimeConflict, Message: "slot already booked"}
	ErrNoAuthority            = &RejectionError{Kind: KindNoAuthority, Message: "not the manager of this map"}
	ErrWrongPassword          = &RejectionError{Kind: KindWrongPassword, Message: "reservation password does not match"}
	ErrNotFound               = &RejectionError{Kind: KindNotFound, Message: "not found"}
)

func reject(kind Kind, msg, bound string) *RejectionError {
	return &RejectionError{Kind: kind, Message: msg, Bound: bound}
}

// notFound builds a NotFound rejection naming the missing resource.
func notFound(what string) *RejectionError {
	return &RejectionError{Kind: KindNotFound, Message: what + " not found"}
}

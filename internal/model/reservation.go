package model

import "time"

// Origin tags who created a reservation.
type Origin string

const (
	OriginManager Origin = "MANAGER"
	OriginGuest   Origin = "GUEST"
)

// Reservation is a time-bounded booking of a single space.  The interval is
// half-open: [StartTime, EndTime).  PasswordHash is only set for guest
// reservations and must never be rendered to clients.
//
// Fields:
//  ID           – primary key, assigned on insert.
//  SpaceID      – space being booked; immutable after creation.
//  StartTime    – inclusive start (wall clock, UTC).
//  EndTime      – exclusive end (wall clock, UTC).
//  OwnerName    – name the booking is made under.
//  Description  – free text purpose of the booking.
//  PasswordHash – bcrypt hash of the guest's password (empty for managers).
//  CreatedBy    – MANAGER or GUEST.
type Reservation struct {
	ID           uint64    // reservations.id
	SpaceID      uint64    // reservations.space_id
	StartTime    time.Time // reservations.start_time
	EndTime      time.Time // reservations.end_time
	OwnerName    string    // reservations.owner_name
	Description  string    // reservations.description
	PasswordHash string    // reservations.password_hash
	CreatedBy    Origin    // reservations.created_by
	CreatedAt    time.Time // reservations.created_at
	UpdatedAt    time.Time // reservations.updated_at
}

// HasPassword reports whether the reservation is password protected.
func (r Reservation) HasPassword() bool { return r.PasswordHash != "" }

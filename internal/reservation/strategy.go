package reservation

import (
	"errors"
	"time"

	"github.com/iliyamo/space-reservation/internal/model"
)

// Notification is the outbound message produced after a manager books a
// space.
type Notification struct {
	ReservationID uint64
	MapID         uint64
	SpaceID       uint64
	SpaceName     string
	OwnerName     string
	Description   string
	StartTime     time.Time
	EndTime       time.Time
	CreatedAt     time.Time
}

// Strategy captures what differs between manager and guest requests.  The
// caller picks the variant from how the request was authenticated, never
// from the reservation being touched.
type Strategy interface {
	// AuthorizeMutation decides whether the actor may create (existing ==
	// nil), update or delete a reservation on space.
	AuthorizeMutation(space model.Space, existing *model.Reservation, password string) error
	// AuthorizeBrowse decides whether the actor may list the reservations
	// of space.
	AuthorizeBrowse(space model.Space) error
	// AuthorizeRead decides whether the actor may see the full details of a
	// single reservation.
	AuthorizeRead(space model.Space, r model.Reservation, password string) error
	// SealPassword turns the password supplied on create into the value
	// stored with the reservation.
	SealPassword(password string) (string, error)
	// BuildNotification returns the message to publish after a successful
	// create, or false when this actor triggers none.
	BuildNotification(space model.Space, r model.Reservation) (Notification, bool)
	// Origin tags reservations created through this strategy.
	Origin() model.Origin
}

// ManagerStrategy acts for an authenticated member.  The member must manage
// the map the space sits on; passwords are never consulted.
type ManagerStrategy struct {
	MemberID uint64
}

func (m ManagerStrategy) authorize(space model.Space) error {
	if space.MapOwnerID != m.MemberID {
		return ErrNoAuthority
	}
	return nil
}

func (m ManagerStrategy) AuthorizeMutation(space model.Space, _ *model.Reservation, _ string) error {
	return m.authorize(space)
}

func (m ManagerStrategy) AuthorizeBrowse(space model.Space) error { return m.authorize(space) }

func (m ManagerStrategy) AuthorizeRead(space model.Space, _ model.Reservation, _ string) error {
	return m.authorize(space)
}

// SealPassword stores nothing: manager reservations are not password
// protected.
func (ManagerStrategy) SealPassword(string) (string, error) { return "", nil }

func (m ManagerStrategy) BuildNotification(space model.Space, r model.Reservation) (Notification, bool) {
	return Notification{
		ReservationID: r.ID,
		MapID:         space.MapID,
		SpaceID:       space.ID,
		SpaceName:     space.Name,
		OwnerName:     r.OwnerName,
		Description:   r.Description,
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		CreatedAt:     r.CreatedAt,
	}, true
}

func (ManagerStrategy) Origin() model.Origin { return model.OriginManager }

// GuestStrategy acts for an anonymous visitor of a shared map.  Map
// ownership is not checked; instead every change to an existing reservation
// must present the password it was created with.
type GuestStrategy struct {
	// Hash derives the stored form of a new reservation's password.
	Hash func(plain string) (string, error)
	// Verify compares a stored hash against a plain password.
	Verify func(hash, plain string) bool
}

func (g GuestStrategy) matches(r model.Reservation, password string) bool {
	if password == "" || !r.HasPassword() || g.Verify == nil {
		return false
	}
	return g.Verify(r.PasswordHash, password)
}

func (g GuestStrategy) AuthorizeMutation(_ model.Space, existing *model.Reservation, password string) error {
	if existing == nil {
		if password == "" {
			return &RejectionError{Kind: KindWrongPassword, Message: "a password is required for guest reservations"}
		}
		return nil
	}
	if !g.matches(*existing, password) {
		return ErrWrongPassword
	}
	return nil
}

func (GuestStrategy) AuthorizeBrowse(model.Space) error { return nil }

func (g GuestStrategy) AuthorizeRead(_ model.Space, r model.Reservation, password string) error {
	if !g.matches(r, password) {
		return ErrWrongPassword
	}
	return nil
}

func (g GuestStrategy) SealPassword(password string) (string, error) {
	if g.Hash == nil {
		return "", errors.New("guest strategy has no password hasher")
	}
	return g.Hash(password)
}

func (GuestStrategy) BuildNotification(model.Space, model.Reservation) (Notification, bool) {
	return Notification{}, false
}

func (GuestStrategy) Origin() model.Origin { return model.OriginGuest }

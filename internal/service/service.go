// Package service holds the manager side use cases around the reservation
// core: member accounts, maps, spaces and policy presets.  Ownership
// failures are reported with the core's rejection sentinels so handlers map
// every outcome through one table.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/reservation"
)

var (
	// ErrReservationsExist blocks deleting a space, map or member while a
	// reservation under it ends in the future.
	ErrReservationsExist = errors.New("reservations in use")
	// ErrInvalidInput wraps field validation failures.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidPolicy is returned for a policy that fails validation.
	ErrInvalidPolicy = model.ErrInvalidPolicy
)

// IdleDeleter removes a space, map or member only while no reservation
// under it ends after now.  The check and the delete must be one atomic
// step with respect to reservation writes on the affected spaces, or a
// reservation committed in between would be dropped with its space.  busy
// reports a refusal; nothing is removed then.
type IdleDeleter interface {
	DeleteSpaceIfIdle(ctx context.Context, spaceID uint64, now time.Time) (busy bool, err error)
	DeleteMapIfIdle(ctx context.Context, mapID uint64, now time.Time) (busy bool, err error)
	DeleteMemberIfIdle(ctx context.Context, memberID uint64, now time.Time) (busy bool, err error)
}

// MapStore persists maps.
type MapStore interface {
	Create(ctx context.Context, m *model.Map) error
	GetByID(ctx context.Context, id uint64) (model.Map, error)
	GetBySharingID(ctx context.Context, sharingID string) (model.Map, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Map, error)
	Update(ctx context.Context, m model.Map) error
}

// SpaceStore persists spaces.
type SpaceStore interface {
	LoadSpace(ctx context.Context, id uint64) (model.Space, error)
	ListByMap(ctx context.Context, mapID uint64) ([]model.Space, error)
	Create(ctx context.Context, s *model.Space) error
	Update(ctx context.Context, s model.Space) error
}

// PresetStore persists presets.
type PresetStore interface {
	Create(ctx context.Context, p *model.Preset) error
	GetByID(ctx context.Context, id uint64) (model.Preset, error)
	ListByMember(ctx context.Context, memberID uint64) ([]model.Preset, error)
	Delete(ctx context.Context, id uint64) error
}

func utcNow() time.Time { return time.Now().UTC() }

// checkName enforces the 1..20 character display name rule.
func checkName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n == 0 || n > 20 {
		return "", fmt.Errorf("%w: %s must be 1 to 20 characters", ErrInvalidInput, field)
	}
	return name, nil
}

func checkLength(field, v string, max int) error {
	if utf8.RuneCountInString(v) > max {
		return fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidInput, field, max)
	}
	return nil
}

// lookup maps a store's not-found error to the core sentinel and wraps the
// rest.
func lookup(what string, err error) error {
	if errors.Is(err, reservation.ErrNotFound) {
		return notFound(what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

// guarded turns the outcome of an IdleDeleter call into the service error.
func guarded(what string, busy bool, err error) error {
	switch {
	case errors.Is(err, reservation.ErrNotFound):
		return notFound(what)
	case err != nil:
		return fmt.Errorf("delete %s: %w", what, err)
	case busy:
		return ErrReservationsExist
	}
	return nil
}

func notFound(what string) error {
	return &reservation.RejectionError{Kind: reservation.KindNotFound, Message: what + " not found"}
}

// ownedMap loads a map and checks memberID manages it.
func ownedMap(ctx context.Context, maps MapStore, memberID, mapID uint64) (model.Map, error) {
	m, err := maps.GetByID(ctx, mapID)
	if err != nil {
		return model.Map{}, lookup("map", err)
	}
	if !m.IsOwnedBy(memberID) {
		return model.Map{}, reservation.ErrNoAuthority
	}
	return m, nil
}

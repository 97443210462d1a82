package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/space-reservation/internal/model"
)

// SpaceService manages the spaces of a map and their policies.
type SpaceService struct {
	maps   MapStore
	spaces SpaceStore
	guard  IdleDeleter
	now    func() time.Time
}

func NewSpaceService(maps MapStore, spaces SpaceStore, guard IdleDeleter) *SpaceService {
	return &SpaceService{maps: maps, spaces: spaces, guard: guard, now: utcNow}
}

// SpaceInput is the editable part of a space.
type SpaceInput struct {
	Name        string
	Color       string
	Description string
	Area        string
	Policy      model.TimePolicy
}

func (in SpaceInput) validate() (SpaceInput, error) {
	name, err := checkName("space name", in.Name)
	if err != nil {
		return SpaceInput{}, err
	}
	in.Name = name
	if err := checkLength("description", in.Description, 100); err != nil {
		return SpaceInput{}, err
	}
	if err := checkLength("color", in.Color, 25); err != nil {
		return SpaceInput{}, err
	}
	if err := in.Policy.Validate(); err != nil {
		return SpaceInput{}, err
	}
	return in, nil
}

func (in SpaceInput) apply(sp *model.Space) {
	sp.Name = in.Name
	sp.Color = in.Color
	sp.Description = in.Description
	sp.Area = in.Area
	sp.Policy = in.Policy
}

func (s *SpaceService) Create(ctx context.Context, ownerID, mapID uint64, in SpaceInput) (model.Space, error) {
	in, err := in.validate()
	if err != nil {
		return model.Space{}, err
	}
	if _, err := ownedMap(ctx, s.maps, ownerID, mapID); err != nil {
		return model.Space{}, err
	}
	sp := model.Space{MapID: mapID, MapOwnerID: ownerID}
	in.apply(&sp)
	if err := s.spaces.Create(ctx, &sp); err != nil {
		return model.Space{}, fmt.Errorf("create space: %w", err)
	}
	return sp, nil
}

// List returns the spaces of a map the member manages.
func (s *SpaceService) List(ctx context.Context, ownerID, mapID uint64) ([]model.Space, error) {
	if _, err := ownedMap(ctx, s.maps, ownerID, mapID); err != nil {
		return nil, err
	}
	return s.ListPublic(ctx, mapID)
}

// ListPublic returns the spaces of any existing map; guests browse with it.
func (s *SpaceService) ListPublic(ctx context.Context, mapID uint64) ([]model.Space, error) {
	if _, err := s.maps.GetByID(ctx, mapID); err != nil {
		return nil, lookup("map", err)
	}
	spaces, err := s.spaces.ListByMap(ctx, mapID)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	return spaces, nil
}

func (s *SpaceService) owned(ctx context.Context, ownerID, mapID, spaceID uint64) (model.Space, error) {
	if _, err := ownedMap(ctx, s.maps, ownerID, mapID); err != nil {
		return model.Space{}, err
	}
	sp, err := s.spaces.LoadSpace(ctx, spaceID)
	if err != nil {
		return model.Space{}, lookup("space", err)
	}
	if !sp.BelongsTo(mapID) {
		return model.Space{}, notFound("space")
	}
	return sp, nil
}

func (s *SpaceService) Get(ctx context.Context, ownerID, mapID, spaceID uint64) (model.Space, error) {
	return s.owned(ctx, ownerID, mapID, spaceID)
}

// Update replaces a space's fields and policy.  Reservations already made
// stay valid even if the new policy would reject them.
func (s *SpaceService) Update(ctx context.Context, ownerID, mapID, spaceID uint64, in SpaceInput) (model.Space, error) {
	in, err := in.validate()
	if err != nil {
		return model.Space{}, err
	}
	sp, err := s.owned(ctx, ownerID, mapID, spaceID)
	if err != nil {
		return model.Space{}, err
	}
	in.apply(&sp)
	if err := s.spaces.Update(ctx, sp); err != nil {
		return model.Space{}, fmt.Errorf("update space: %w", err)
	}
	return sp, nil
}

// Delete removes a space unless it has a reservation ending in the future.
func (s *SpaceService) Delete(ctx context.Context, ownerID, mapID, spaceID uint64) error {
	if _, err := s.owned(ctx, ownerID, mapID, spaceID); err != nil {
		return err
	}
	busy, err := s.guard.DeleteSpaceIfIdle(ctx, spaceID, s.now())
	return guarded("space", busy, err)
}

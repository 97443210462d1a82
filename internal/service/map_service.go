package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/space-reservation/internal/model"
)

// MapService manages a member's maps.
type MapService struct {
	maps   MapStore
	spaces SpaceStore
	guard  IdleDeleter
	now    func() time.Time
}

func NewMapService(maps MapStore, spaces SpaceStore, guard IdleDeleter) *MapService {
	return &MapService{maps: maps, spaces: spaces, guard: guard, now: utcNow}
}

// MapInput is the editable part of a map.
type MapInput struct {
	Name    string
	Drawing string
}

func (in MapInput) validate() (MapInput, error) {
	name, err := checkName("map name", in.Name)
	if err != nil {
		return MapInput{}, err
	}
	in.Name = name
	return in, nil
}

func (s *MapService) Create(ctx context.Context, ownerID uint64, in MapInput) (model.Map, error) {
	in, err := in.validate()
	if err != nil {
		return model.Map{}, err
	}
	m := model.Map{OwnerID: ownerID, Name: in.Name, Drawing: in.Drawing}
	if err := s.maps.Create(ctx, &m); err != nil {
		return model.Map{}, fmt.Errorf("create map: %w", err)
	}
	return m, nil
}

func (s *MapService) Get(ctx context.Context, ownerID, mapID uint64) (model.Map, error) {
	return ownedMap(ctx, s.maps, ownerID, mapID)
}

func (s *MapService) List(ctx context.Context, ownerID uint64) ([]model.Map, error) {
	maps, err := s.maps.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	return maps, nil
}

func (s *MapService) Update(ctx context.Context, ownerID, mapID uint64, in MapInput) (model.Map, error) {
	in, err := in.validate()
	if err != nil {
		return model.Map{}, err
	}
	m, err := ownedMap(ctx, s.maps, ownerID, mapID)
	if err != nil {
		return model.Map{}, err
	}
	m.Name, m.Drawing = in.Name, in.Drawing
	if err := s.maps.Update(ctx, m); err != nil {
		return model.Map{}, fmt.Errorf("update map: %w", err)
	}
	return m, nil
}

// Delete removes a map unless one of its spaces still has a reservation
// ending in the future.
func (s *MapService) Delete(ctx context.Context, ownerID, mapID uint64) error {
	if _, err := ownedMap(ctx, s.maps, ownerID, mapID); err != nil {
		return err
	}
	busy, err := s.guard.DeleteMapIfIdle(ctx, mapID, s.now())
	return guarded("map", busy, err)
}

// Shared opens a map by its sharing id for guests and returns it with its
// spaces.
func (s *MapService) Shared(ctx context.Context, sharingID string) (model.Map, []model.Space, error) {
	m, err := s.maps.GetBySharingID(ctx, sharingID)
	if err != nil {
		return model.Map{}, nil, lookup("map", err)
	}
	spaces, err := s.spaces.ListByMap(ctx, m.ID)
	if err != nil {
		return model.Map{}, nil, fmt.Errorf("list spaces: %w", err)
	}
	return m, spaces, nil
}

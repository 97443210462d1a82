package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/reservation"
)

// PresetService manages saved policies.  A preset belonging to another
// member is reported as missing.
type PresetService struct {
	presets PresetStore
}

func NewPresetService(presets PresetStore) *PresetService { return &PresetService{presets: presets} }

func (s *PresetService) Create(ctx context.Context, memberID uint64, name string, policy model.TimePolicy) (model.Preset, error) {
	name, err := checkName("preset name", name)
	if err != nil {
		return model.Preset{}, err
	}
	if err := policy.Validate(); err != nil {
		return model.Preset{}, err
	}
	p := model.Preset{MemberID: memberID, Name: name, Policy: policy}
	if err := s.presets.Create(ctx, &p); err != nil {
		return model.Preset{}, fmt.Errorf("create preset: %w", err)
	}
	return p, nil
}

func (s *PresetService) List(ctx context.Context, memberID uint64) ([]model.Preset, error) {
	presets, err := s.presets.ListByMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	return presets, nil
}

func (s *PresetService) Delete(ctx context.Context, memberID, presetID uint64) error {
	p, err := s.presets.GetByID(ctx, presetID)
	if err != nil {
		return lookup("preset", err)
	}
	if !p.IsOwnedBy(memberID) {
		return notFound("preset")
	}
	if err := s.presets.Delete(ctx, presetID); err != nil && !errors.Is(err, reservation.ErrNotFound) {
		return fmt.Errorf("delete preset: %w", err)
	}
	return nil
}

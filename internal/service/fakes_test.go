package service

import (
	"context"
	"strings"
	"time"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/reservation"
)

type fakeMaps struct {
	rows   map[uint64]model.Map
	nextID uint64
}

func newFakeMaps(maps ...model.Map) *fakeMaps {
	f := &fakeMaps{rows: map[uint64]model.Map{}}
	for _, m := range maps {
		f.rows[m.ID] = m
		if m.ID > f.nextID {
			f.nextID = m.ID
		}
	}
	return f
}

func (f *fakeMaps) Create(_ context.Context, m *model.Map) error {
	f.nextID++
	m.ID = f.nextID
	m.SharingID = "share-" + m.Name
	f.rows[m.ID] = *m
	return nil
}

func (f *fakeMaps) GetByID(_ context.Context, id uint64) (model.Map, error) {
	m, ok := f.rows[id]
	if !ok {
		return model.Map{}, reservation.ErrNotFound
	}
	return m, nil
}

func (f *fakeMaps) GetBySharingID(_ context.Context, sharingID string) (model.Map, error) {
	for _, m := range f.rows {
		if m.SharingID == sharingID {
			return m, nil
		}
	}
	return model.Map{}, reservation.ErrNotFound
}

func (f *fakeMaps) ListByOwner(_ context.Context, ownerID uint64) ([]model.Map, error) {
	var out []model.Map
	for _, m := range f.rows {
		if m.OwnerID == ownerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMaps) Update(_ context.Context, m model.Map) error {
	f.rows[m.ID] = m
	return nil
}

type fakeSpaces struct {
	rows   map[uint64]model.Space
	nextID uint64
}

func newFakeSpaces(spaces ...model.Space) *fakeSpaces {
	f := &fakeSpaces{rows: map[uint64]model.Space{}}
	for _, s := range spaces {
		f.rows[s.ID] = s
		if s.ID > f.nextID {
			f.nextID = s.ID
		}
	}
	return f
}

func (f *fakeSpaces) LoadSpace(_ context.Context, id uint64) (model.Space, error) {
	s, ok := f.rows[id]
	if !ok {
		return model.Space{}, reservation.ErrNotFound
	}
	return s, nil
}

func (f *fakeSpaces) ListByMap(_ context.Context, mapID uint64) ([]model.Space, error) {
	out := []model.Space{}
	for _, s := range f.rows {
		if s.MapID == mapID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSpaces) Create(_ context.Context, s *model.Space) error {
	f.nextID++
	s.ID = f.nextID
	f.rows[s.ID] = *s
	return nil
}

func (f *fakeSpaces) Update(_ context.Context, s model.Space) error {
	f.rows[s.ID] = s
	return nil
}

type fakePresets struct {
	rows   map[uint64]model.Preset
	nextID uint64
}

func (f *fakePresets) Create(_ context.Context, p *model.Preset) error {
	if f.rows == nil {
		f.rows = map[uint64]model.Preset{}
	}
	f.nextID++
	p.ID = f.nextID
	f.rows[p.ID] = *p
	return nil
}

func (f *fakePresets) GetByID(_ context.Context, id uint64) (model.Preset, error) {
	p, ok := f.rows[id]
	if !ok {
		return model.Preset{}, reservation.ErrNotFound
	}
	return p, nil
}

func (f *fakePresets) ListByMember(_ context.Context, memberID uint64) ([]model.Preset, error) {
	var out []model.Preset
	for _, p := range f.rows {
		if p.MemberID == memberID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePresets) Delete(_ context.Context, id uint64) error {
	delete(f.rows, id)
	return nil
}

// fakeGuard refuses ids in the busy sets and otherwise removes the row
// from the linked fake store.
type fakeGuard struct {
	spaces, maps, members map[uint64]bool
	lastNow               time.Time

	spaceRows  *fakeSpaces
	mapRows    *fakeMaps
	memberRows *fakeMembers
}

func (f *fakeGuard) DeleteSpaceIfIdle(_ context.Context, id uint64, now time.Time) (bool, error) {
	f.lastNow = now
	if _, ok := f.spaceRows.rows[id]; !ok {
		return false, reservation.ErrNotFound
	}
	if f.spaces[id] {
		return true, nil
	}
	delete(f.spaceRows.rows, id)
	return false, nil
}

func (f *fakeGuard) DeleteMapIfIdle(_ context.Context, id uint64, now time.Time) (bool, error) {
	f.lastNow = now
	if _, ok := f.mapRows.rows[id]; !ok {
		return false, reservation.ErrNotFound
	}
	if f.maps[id] {
		return true, nil
	}
	delete(f.mapRows.rows, id)
	return false, nil
}

func (f *fakeGuard) DeleteMemberIfIdle(_ context.Context, id uint64, now time.Time) (bool, error) {
	f.lastNow = now
	if _, ok := f.memberRows.rows[id]; !ok {
		return false, reservation.ErrNotFound
	}
	if f.members[id] {
		return true, nil
	}
	delete(f.memberRows.rows, id)
	return false, nil
}

type fakeMembers struct {
	rows   map[uint64]model.Member
	nextID uint64
}

func (f *fakeMembers) Create(_ context.Context, email, hash, org string) (uint64, error) {
	if f.rows == nil {
		f.rows = map[uint64]model.Member{}
	}
	for _, m := range f.rows {
		if m.Email == email {
			return 0, errEmailTaken
		}
	}
	f.nextID++
	f.rows[f.nextID] = model.Member{ID: f.nextID, Email: email, PasswordHash: hash, Organization: org, Role: model.RoleManager}
	return f.nextID, nil
}

func (f *fakeMembers) GetByEmail(_ context.Context, email string) (model.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, m := range f.rows {
		if m.Email == email {
			return m, nil
		}
	}
	return model.Member{}, reservation.ErrNotFound
}

func (f *fakeMembers) GetByID(_ context.Context, id uint64) (model.Member, error) {
	m, ok := f.rows[id]
	if !ok {
		return model.Member{}, reservation.ErrNotFound
	}
	return m, nil
}

func (f *fakeMembers) UpdateOrganization(_ context.Context, id uint64, org string) error {
	m := f.rows[id]
	m.Organization = org
	f.rows[id] = m
	return nil
}

type fakeTokens struct {
	live map[string]uint64
}

func (f *fakeTokens) StoreRefresh(_ context.Context, memberID uint64, hash string, _ time.Time) error {
	if f.live == nil {
		f.live = map[string]uint64{}
	}
	f.live[hash] = memberID
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string) (uint64, error) {
	id, ok := f.live[hash]
	if !ok {
		return 0, reservation.ErrNotFound
	}
	return id, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	delete(f.live, hash)
	return nil
}

func (f *fakeTokens) RevokeAllForMember(_ context.Context, memberID uint64) error {
	for h, id := range f.live {
		if id == memberID {
			delete(f.live, h)
		}
	}
	return nil
}

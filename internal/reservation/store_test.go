package reservation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/space-reservation/internal/model"
)

// memStore is an in-memory SpaceStore and ReservationStore.  WithinSpace
// serializes per space with a mutex and stages writes until fn succeeds.
type memStore struct {
	mu     sync.Mutex
	spaces map[uint64]model.Space
	rows   map[uint64]model.Reservation
	nextID uint64
	locks  map[uint64]*sync.Mutex

	saveErr error // returned by every SaveReservation when set
}

func newMemStore(spaces ...model.Space) *memStore {
	s := &memStore{
		spaces: make(map[uint64]model.Space),
		rows:   make(map[uint64]model.Reservation),
		locks:  make(map[uint64]*sync.Mutex),
	}
	for _, sp := range spaces {
		s.spaces[sp.ID] = sp
	}
	return s
}

func (s *memStore) seed(r model.Reservation) model.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	r.ID = s.nextID
	s.rows[r.ID] = r
	return r
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *memStore) get(id uint64) (model.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	return r, ok
}

func (s *memStore) LoadSpace(_ context.Context, id uint64) (model.Space, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, ok := s.spaces[id]
	if !ok {
		return model.Space{}, ErrNotFound
	}
	return sp, nil
}

func (s *memStore) FindReservation(_ context.Context, spaceID, id uint64) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[id]
	if !ok || r.SpaceID != spaceID {
		return model.Reservation{}, ErrNotFound
	}
	return r, nil
}

func (s *memStore) ListReservations(_ context.Context, spaceID uint64, from, to time.Time) ([]model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Reservation
	day := Interval{Start: from, End: to}
	for _, r := range s.rows {
		if r.SpaceID == spaceID && Overlaps(IntervalOf(r), day) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (s *memStore) WithinSpace(ctx context.Context, spaceID uint64, fn func(context.Context, Tx) error) error {
	s.mu.Lock()
	l, ok := s.locks[spaceID]
	if !ok {
		l = new(sync.Mutex)
		s.locks[spaceID] = l
	}
	s.mu.Unlock()

	l.Lock()
	defer l.Unlock()

	tx := &memTx{store: s, saved: map[uint64]model.Reservation{}, deleted: map[uint64]bool{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range tx.deleted {
		delete(s.rows, id)
	}
	for id, r := range tx.saved {
		s.rows[id] = r
	}
	return nil
}

type memTx struct {
	store   *memStore
	saved   map[uint64]model.Reservation
	deleted map[uint64]bool
}

func (t *memTx) view(spaceID uint64) []model.Reservation {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	var out []model.Reservation
	for id, r := range t.store.rows {
		if _, staged := t.saved[id]; staged || t.deleted[id] {
			continue
		}
		if r.SpaceID == spaceID {
			out = append(out, r)
		}
	}
	for _, r := range t.saved {
		if r.SpaceID == spaceID {
			out = append(out, r)
		}
	}
	return out
}

func (t *memTx) ConflictsWith(_ context.Context, spaceID uint64, start, end time.Time, excludeID uint64) ([]model.Reservation, error) {
	return Conflicts(t.view(spaceID), Interval{Start: start, End: end}, excludeID), nil
}

func (t *memTx) FindReservation(_ context.Context, spaceID, id uint64) (model.Reservation, error) {
	for _, r := range t.view(spaceID) {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Reservation{}, ErrNotFound
}

func (t *memTx) SaveReservation(_ context.Context, r *model.Reservation) error {
	if t.store.saveErr != nil {
		return t.store.saveErr
	}
	if r.ID == 0 {
		t.store.mu.Lock()
		t.store.nextID++
		r.ID = t.store.nextID
		t.store.mu.Unlock()
	}
	t.saved[r.ID] = *r
	return nil
}

func (t *memTx) DeleteReservation(ctx context.Context, spaceID, id uint64) error {
	if _, err := t.FindReservation(ctx, spaceID, id); err != nil {
		return err
	}
	delete(t.saved, id)
	t.deleted[id] = true
	return nil
}

// staticIndex serves a fixed set of reservations.
type staticIndex []model.Reservation

func (s staticIndex) ConflictsWith(_ context.Context, spaceID uint64, start, end time.Time, excludeID uint64) ([]model.Reservation, error) {
	var same []model.Reservation
	for _, r := range s {
		if r.SpaceID == spaceID {
			same = append(same, r)
		}
	}
	return Conflicts(same, Interval{Start: start, End: end}, excludeID), nil
}

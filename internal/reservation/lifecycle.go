package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/space-reservation/internal/model"
)

// SpaceStore loads spaces together with their policy.  A missing space is
// reported with an error matching ErrNotFound.
type SpaceStore interface {
	LoadSpace(ctx context.Context, spaceID uint64) (model.Space, error)
}

// Tx is a reservation store handle bound to one open transaction.  Every
// read through it sees the writes made earlier through the same handle.
type Tx interface {
	OverlapIndex
	FindReservation(ctx context.Context, spaceID, reservationID uint64) (model.Reservation, error)
	// SaveReservation inserts r when r.ID is zero (assigning the id) and
	// otherwise replaces the mutable columns of the existing row.
	SaveReservation(ctx context.Context, r *model.Reservation) error
	DeleteReservation(ctx context.Context, spaceID, reservationID uint64) error
}

// ReservationStore persists reservations.  WithinSpace runs fn in a
// transaction that excludes every other WithinSpace call for the same space
// until it returns; fn's error aborts the transaction and is returned as is.
type ReservationStore interface {
	FindReservation(ctx context.Context, spaceID, reservationID uint64) (model.Reservation, error)
	ListReservations(ctx context.Context, spaceID uint64, from, to time.Time) ([]model.Reservation, error)
	WithinSpace(ctx context.Context, spaceID uint64, fn func(ctx context.Context, tx Tx) error) error
}

// Notifier delivers notifications.  Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Logger is the subset of the echo logger the service writes to.
type Logger interface {
	Errorf(format string, args ...interface{})
}

// Request carries the caller supplied fields of a create or update.
type Request struct {
	Start       time.Time
	End         time.Time
	Name        string
	Description string
	Password    string
}

// Interval returns the requested time range.
func (r Request) Interval() Interval { return Interval{Start: r.Start, End: r.End} }

// Service creates, changes and removes reservations.  It never persists a
// partial change: authorization, admission and the write happen in that
// order and any failure stops the operation.
type Service struct {
	spaces        SpaceStore
	reservations  ReservationStore
	engine        *Engine
	notifier      Notifier
	log           Logger
	notifyTimeout time.Duration
}

// NewService wires a Service.  notifier and log may be nil.
func NewService(spaces SpaceStore, reservations ReservationStore, engine *Engine, notifier Notifier, log Logger) *Service {
	if spaces == nil || reservations == nil {
		panic("nil store passed to NewService")
	}
	if engine == nil {
		engine = NewEngine()
	}
	return &Service{
		spaces:        spaces,
		reservations:  reservations,
		engine:        engine,
		notifier:      notifier,
		log:           log,
		notifyTimeout: 5 * time.Second,
	}
}

// SetNotifyTimeout bounds each notification attempt.  Non-positive values
// are ignored.
func (s *Service) SetNotifyTimeout(d time.Duration) {
	if d > 0 {
		s.notifyTimeout = d
	}
}

// Space loads a space and checks that it is on mapID.
func (s *Service) Space(ctx context.Context, mapID, spaceID uint64) (model.Space, error) {
	space, err := s.spaces.LoadSpace(ctx, spaceID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Space{}, notFound("space")
		}
		return model.Space{}, fmt.Errorf("load space %d: %w", spaceID, err)
	}
	if !space.BelongsTo(mapID) {
		return model.Space{}, notFound("space")
	}
	return space, nil
}

func (s *Service) find(ctx context.Context, space model.Space, id uint64) (model.Reservation, error) {
	r, err := s.reservations.FindReservation(ctx, space.ID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Reservation{}, notFound("reservation")
		}
		return model.Reservation{}, fmt.Errorf("load reservation %d: %w", id, err)
	}
	return r, nil
}

// Create books a new reservation on spaceID.
func (s *Service) Create(ctx context.Context, mapID, spaceID uint64, req Request, st Strategy) (model.Reservation, error) {
	space, err := s.Space(ctx, mapID, spaceID)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := st.AuthorizeMutation(space, nil, req.Password); err != nil {
		return model.Reservation{}, err
	}
	sealed, err := st.SealPassword(req.Password)
	if err != nil {
		return model.Reservation{}, fmt.Errorf("seal password: %w", err)
	}
	r := model.Reservation{
		SpaceID:      space.ID,
		StartTime:    req.Start,
		EndTime:      req.End,
		OwnerName:    req.Name,
		Description:  req.Description,
		PasswordHash: sealed,
		CreatedBy:    st.Origin(),
	}
	err = s.reservations.WithinSpace(ctx, space.ID, func(ctx context.Context, tx Tx) error {
		if err := s.engine.Admit(ctx, space, req.Interval(), tx, 0); err != nil {
			return err
		}
		return tx.SaveReservation(ctx, &r)
	})
	if err != nil {
		return model.Reservation{}, err
	}
	if n, ok := st.BuildNotification(space, r); ok {
		s.dispatch(ctx, n)
	}
	return r, nil
}

// Update replaces the time range, name and description of a reservation.
// Its id, space, origin and password stay as they were.
func (s *Service) Update(ctx context.Context, mapID, spaceID, reservationID uint64, req Request, st Strategy) (model.Reservation, error) {
	space, err := s.Space(ctx, mapID, spaceID)
	if err != nil {
		return model.Reservation{}, err
	}
	existing, err := s.find(ctx, space, reservationID)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := st.AuthorizeMutation(space, &existing, req.Password); err != nil {
		return model.Reservation{}, err
	}
	var updated model.Reservation
	err = s.reservations.WithinSpace(ctx, space.ID, func(ctx context.Context, tx Tx) error {
		cur, err := tx.FindReservation(ctx, space.ID, reservationID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return notFound("reservation")
			}
			return err
		}
		if err := s.engine.Admit(ctx, space, req.Interval(), tx, cur.ID); err != nil {
			return err
		}
		cur.StartTime = req.Start
		cur.EndTime = req.End
		cur.OwnerName = req.Name
		cur.Description = req.Description
		if err := tx.SaveReservation(ctx, &cur); err != nil {
			return err
		}
		updated = cur
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	return updated, nil
}

// Delete removes a reservation.  Deletion is not subject to admission.
func (s *Service) Delete(ctx context.Context, mapID, spaceID, reservationID uint64, password string, st Strategy) error {
	space, err := s.Space(ctx, mapID, spaceID)
	if err != nil {
		return err
	}
	existing, err := s.find(ctx, space, reservationID)
	if err != nil {
		return err
	}
	if err := st.AuthorizeMutation(space, &existing, password); err != nil {
		return err
	}
	return s.reservations.WithinSpace(ctx, space.ID, func(ctx context.Context, tx Tx) error {
		err := tx.DeleteReservation(ctx, space.ID, reservationID)
		if errors.Is(err, ErrNotFound) {
			return notFound("reservation")
		}
		return err
	})
}

// Get returns a single reservation if the actor may read it.
func (s *Service) Get(ctx context.Context, mapID, spaceID, reservationID uint64, password string, st Strategy) (model.Reservation, error) {
	space, err := s.Space(ctx, mapID, spaceID)
	if err != nil {
		return model.Reservation{}, err
	}
	r, err := s.find(ctx, space, reservationID)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := st.AuthorizeRead(space, r, password); err != nil {
		return model.Reservation{}, err
	}
	return r, nil
}

// ListDay returns the reservations of a space that intersect the calendar
// day of date, ordered by start time.
func (s *Service) ListDay(ctx context.Context, mapID, spaceID uint64, date time.Time, st Strategy) (model.Space, []model.Reservation, error) {
	space, err := s.Space(ctx, mapID, spaceID)
	if err != nil {
		return model.Space{}, nil, err
	}
	if err := st.AuthorizeBrowse(space); err != nil {
		return model.Space{}, nil, err
	}
	y, m, d := date.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	list, err := s.reservations.ListReservations(ctx, space.ID, from, from.AddDate(0, 0, 1))
	if err != nil {
		return model.Space{}, nil, fmt.Errorf("list reservations: %w", err)
	}
	return space, list, nil
}

// dispatch hands n to the notifier on its own goroutine.  The request
// context's values are kept but its cancellation is not, so a finished
// request does not abort delivery.
func (s *Service) dispatch(ctx context.Context, n Notification) {
	if s.notifier == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(base, s.notifyTimeout)
		defer cancel()
		if err := s.notifier.Notify(ctx, n); err != nil && s.log != nil {
			s.log.Errorf("notify reservation %d: %v", n.ReservationID, err)
		}
	}()
}

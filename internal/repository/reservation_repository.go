package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/reservation"
)

// ReservationRepo stores reservations of spaces.  It implements
// reservation.ReservationStore; writes only happen through WithinSpace so
// that the overlap check and the write share one transaction.  All
// timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = "id, space_id, start_time, end_time, owner_name, description, password_hash, created_by, created_at, updated_at"

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanReservation(row interface{ Scan(...any) error }) (model.Reservation, error) {
	var (
		res    model.Reservation
		origin string
	)
	err := row.Scan(&res.ID, &res.SpaceID, &res.StartTime, &res.EndTime, &res.OwnerName,
		&res.Description, &res.PasswordHash, &origin, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return model.Reservation{}, noRows(err)
	}
	res.CreatedBy = model.Origin(origin)
	return res, nil
}

func listReservations(ctx context.Context, q queryer, query string, args ...any) ([]model.Reservation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	list := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	return list, rows.Err()
}

func findReservation(ctx context.Context, q queryer, spaceID, id uint64) (model.Reservation, error) {
	return scanReservation(q.QueryRowContext(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id = ? AND space_id = ?", id, spaceID))
}

// FindReservation returns ErrNotFound unless id is a reservation of spaceID.
func (r *ReservationRepo) FindReservation(ctx context.Context, spaceID, id uint64) (model.Reservation, error) {
	return findReservation(ctx, r.db, spaceID, id)
}

// ListReservations returns the reservations of a space that intersect
// [from, to), ordered by start time.
func (r *ReservationRepo) ListReservations(ctx context.Context, spaceID uint64, from, to time.Time) ([]model.Reservation, error) {
	const q = "SELECT " + reservationColumns + ` FROM reservations
               WHERE space_id = ? AND start_time < ? AND end_time > ?
               ORDER BY start_time ASC`
	return listReservations(ctx, r.db, q, spaceID, to.UTC(), from.UTC())
}

// WithinSpace opens a transaction, locks the space row with SELECT ... FOR
// UPDATE and runs fn.  Concurrent calls for the same space queue on that
// lock, so an overlap check made through tx stays true until commit.  The
// transaction commits only when fn returns nil.
func (r *ReservationRepo) WithinSpace(ctx context.Context, spaceID uint64, fn func(ctx context.Context, tx reservation.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var locked uint64
	if err := tx.QueryRowContext(ctx, "SELECT id FROM spaces WHERE id = ? FOR UPDATE", spaceID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock space %d: %w", spaceID, err)
	}
	if err := fn(ctx, &reservationTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// reservationTx is the reservation.Tx handed to WithinSpace callbacks.
type reservationTx struct {
	tx *sql.Tx
}

// ConflictsWith uses the half-open overlap predicate
// existing.start < end AND existing.end > start.
func (t *reservationTx) ConflictsWith(ctx context.Context, spaceID uint64, start, end time.Time, excludeID uint64) ([]model.Reservation, error) {
	const q = "SELECT " + reservationColumns + ` FROM reservations
               WHERE space_id = ? AND start_time < ? AND end_time > ? AND id <> ?
               ORDER BY start_time ASC`
	return listReservations(ctx, t.tx, q, spaceID, end.UTC(), start.UTC(), excludeID)
}

func (t *reservationTx) FindReservation(ctx context.Context, spaceID, id uint64) (model.Reservation, error) {
	return findReservation(ctx, t.tx, spaceID, id)
}

// SaveReservation inserts when res.ID is zero and updates otherwise.  The
// stored row is read back so timestamps are populated.
func (t *reservationTx) SaveReservation(ctx context.Context, res *model.Reservation) error {
	if res.ID == 0 {
		const q = `INSERT INTO reservations (space_id, start_time, end_time, owner_name, description, password_hash, created_by)
                   VALUES (?, ?, ?, ?, ?, ?, ?)`
		result, err := t.tx.ExecContext(ctx, q, res.SpaceID, res.StartTime.UTC(), res.EndTime.UTC(),
			res.OwnerName, res.Description, res.PasswordHash, string(res.CreatedBy))
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		res.ID = uint64(id)
	} else {
		const q = `UPDATE reservations SET start_time = ?, end_time = ?, owner_name = ?, description = ?
                   WHERE id = ? AND space_id = ?`
		if _, err := t.tx.ExecContext(ctx, q, res.StartTime.UTC(), res.EndTime.UTC(),
			res.OwnerName, res.Description, res.ID, res.SpaceID); err != nil {
			return fmt.Errorf("update reservation %d: %w", res.ID, err)
		}
	}
	stored, err := findReservation(ctx, t.tx, res.SpaceID, res.ID)
	if err != nil {
		return err
	}
	*res = stored
	return nil
}

func (t *reservationTx) DeleteReservation(ctx context.Context, spaceID, id uint64) error {
	res, err := t.tx.ExecContext(ctx, "DELETE FROM reservations WHERE id = ? AND space_id = ?", id, spaceID)
	if err != nil {
		return fmt.Errorf("delete reservation %d: %w", id, err)
	}
	return requireRow(res)
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// idleDelete describes one guarded removal. locks run first, in order; the
// first must select the target row itself and the rest take the spaces rows
// WithinSpace locks, so no reservation write on an affected space can slip
// between the busy check and the delete.
type idleDelete struct {
	what   string
	locks  []string
	busy   string
	delete string
}

var (
	spaceDelete = idleDelete{
		what:  "space",
		locks: []string{"SELECT id FROM spaces WHERE id = ? FOR UPDATE"},
		busy: `SELECT 1 FROM reservations
                WHERE space_id = ? AND end_time > ? LIMIT 1 LOCK IN SHARE MODE`,
		delete: "DELETE FROM spaces WHERE id = ?",
	}
	// the maps row lock also holds back new spaces, whose FK check needs it
	mapDelete = idleDelete{
		what: "map",
		locks: []string{
			"SELECT id FROM maps WHERE id = ? FOR UPDATE",
			"SELECT id FROM spaces WHERE map_id = ? FOR UPDATE",
		},
		busy: `SELECT 1 FROM reservations r JOIN spaces s ON s.id = r.space_id
                WHERE s.map_id = ? AND r.end_time > ? LIMIT 1 LOCK IN SHARE MODE`,
		delete: "DELETE FROM maps WHERE id = ?",
	}
	memberDelete = idleDelete{
		what: "member",
		locks: []string{
			"SELECT id FROM members WHERE id = ? FOR UPDATE",
			"SELECT id FROM maps WHERE member_id = ? FOR UPDATE",
			`SELECT s.id FROM spaces s JOIN maps m ON m.id = s.map_id
              WHERE m.member_id = ? FOR UPDATE`,
		},
		busy: `SELECT 1 FROM reservations r
                 JOIN spaces s ON s.id = r.space_id
                 JOIN maps m ON m.id = s.map_id
                WHERE m.member_id = ? AND r.end_time > ? LIMIT 1 LOCK IN SHARE MODE`,
		delete: "DELETE FROM members WHERE id = ?",
	}
)

// DeleteSpaceIfIdle removes a space and its past reservations unless one of
// its reservations ends after now, in which case busy is true and nothing
// changes. A missing space is ErrNotFound.
func (r *ReservationRepo) DeleteSpaceIfIdle(ctx context.Context, spaceID uint64, now time.Time) (busy bool, err error) {
	return r.deleteIfIdle(ctx, spaceDelete, spaceID, now)
}

// DeleteMapIfIdle is DeleteSpaceIfIdle over every space of a map.
func (r *ReservationRepo) DeleteMapIfIdle(ctx context.Context, mapID uint64, now time.Time) (bool, error) {
	return r.deleteIfIdle(ctx, mapDelete, mapID, now)
}

// DeleteMemberIfIdle removes a member with all maps, spaces, presets and
// tokens unless a reservation on one of its maps ends after now.
func (r *ReservationRepo) DeleteMemberIfIdle(ctx context.Context, memberID uint64, now time.Time) (bool, error) {
	return r.deleteIfIdle(ctx, memberDelete, memberID, now)
}

func (r *ReservationRepo) deleteIfIdle(ctx context.Context, d idleDelete, id uint64, now time.Time) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for i, q := range d.locks {
		n, err := lockRows(ctx, tx, q, id)
		if err != nil {
			return false, fmt.Errorf("lock %s %d: %w", d.what, id, err)
		}
		if i == 0 && n == 0 {
			return false, ErrNotFound
		}
	}

	// a locking read sees rows committed after the transaction began
	var one int
	err = tx.QueryRowContext(ctx, d.busy, id, now.UTC()).Scan(&one)
	switch {
	case err == nil:
		return true, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("check reservations of %s %d: %w", d.what, id, err)
	}

	res, err := tx.ExecContext(ctx, d.delete, id)
	if err != nil {
		return false, fmt.Errorf("delete %s %d: %w", d.what, id, err)
	}
	if err := requireRow(res); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return false, nil
}

// lockRows runs a SELECT ... FOR UPDATE and returns how many rows it locked.
func lockRows(ctx context.Context, tx *sql.Tx, q string, args ...any) (int, error) {
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}

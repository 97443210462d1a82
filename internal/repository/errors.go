// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios. ErrNotFound is shared with the reservation core so that a
// missing row reads the same no matter which layer reports it.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/space-reservation/internal/reservation"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound error = reservation.ErrNotFound

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as a duplicate
// sharing id. Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when a member registers with an email that
// is already taken.
var ErrEmailExists = errors.New("email already exists")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// noRows maps sql.ErrNoRows to ErrNotFound and leaves other errors alone.
func noRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

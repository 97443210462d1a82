package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/iliyamo/space-reservation/internal/model"
)

// MapRepo manages persistence for maps.
type MapRepo struct {
	db *sql.DB
}

// NewMapRepo constructs a MapRepo with the given DB handle.
func NewMapRepo(db *sql.DB) *MapRepo { return &MapRepo{db: db} }

const mapColumns = "id, member_id, name, drawing, sharing_id, created_at, updated_at"

func scanMap(row interface{ Scan(...any) error }) (model.Map, error) {
	var m model.Map
	err := row.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Drawing, &m.SharingID, &m.CreatedAt, &m.UpdatedAt)
	return m, noRows(err)
}

// Create inserts m, assigning a fresh sharing id, and reloads it to pick
// up the generated id and timestamps.
func (r *MapRepo) Create(ctx context.Context, m *model.Map) error {
	m.SharingID = uuid.NewString()
	const q = `INSERT INTO maps (member_id, name, drawing, sharing_id) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, m.OwnerID, m.Name, m.Drawing, m.SharingID)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*m = created
	return nil
}

// GetByID returns ErrNotFound when the map does not exist.
func (r *MapRepo) GetByID(ctx context.Context, id uint64) (model.Map, error) {
	return scanMap(r.db.QueryRowContext(ctx, "SELECT "+mapColumns+" FROM maps WHERE id = ?", id))
}

// GetBySharingID looks a map up by the public id guests receive.
func (r *MapRepo) GetBySharingID(ctx context.Context, sharingID string) (model.Map, error) {
	if _, err := uuid.Parse(sharingID); err != nil {
		return model.Map{}, ErrNotFound
	}
	return scanMap(r.db.QueryRowContext(ctx, "SELECT "+mapColumns+" FROM maps WHERE sharing_id = ?", sharingID))
}

// ListByOwner returns the maps of a member ordered by id.
func (r *MapRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Map, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+mapColumns+" FROM maps WHERE member_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	maps := []model.Map{}
	for rows.Next() {
		m, err := scanMap(rows)
		if err != nil {
			return nil, err
		}
		maps = append(maps, m)
	}
	return maps, rows.Err()
}

// Update replaces name and drawing.
func (r *MapRepo) Update(ctx context.Context, m model.Map) error {
	_, err := r.db.ExecContext(ctx, "UPDATE maps SET name = ?, drawing = ? WHERE id = ?", m.Name, m.Drawing, m.ID)
	return err
}

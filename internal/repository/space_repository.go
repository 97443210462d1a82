package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/space-reservation/internal/model"
)

// SpaceRepo manages persistence for spaces and their reservation policy.
// It implements reservation.SpaceStore.
type SpaceRepo struct {
	db *sql.DB
}

// NewSpaceRepo constructs a SpaceRepo with the given DB handle.
func NewSpaceRepo(db *sql.DB) *SpaceRepo { return &SpaceRepo{db: db} }

// spaceSelect joins maps so every loaded space carries its map owner.
const spaceSelect = `SELECT s.id, s.map_id, m.member_id, s.name, s.color, s.description, s.area,
       s.available_start, s.available_end, s.time_unit, s.min_duration, s.max_duration, s.enabled, s.enabled_days,
       s.created_at, s.updated_at
  FROM spaces s
  JOIN maps m ON m.id = s.map_id`

func scanSpace(row interface{ Scan(...any) error }) (model.Space, error) {
	var (
		s  model.Space
		pr policyRow
	)
	dest := []any{&s.ID, &s.MapID, &s.MapOwnerID, &s.Name, &s.Color, &s.Description, &s.Area}
	dest = append(dest, pr.dest()...)
	dest = append(dest, &s.CreatedAt, &s.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return model.Space{}, noRows(err)
	}
	p, err := pr.policy()
	if err != nil {
		return model.Space{}, err
	}
	s.Policy = p
	return s, nil
}

// LoadSpace returns the space with its policy and map owner, or ErrNotFound.
func (r *SpaceRepo) LoadSpace(ctx context.Context, id uint64) (model.Space, error) {
	return scanSpace(r.db.QueryRowContext(ctx, spaceSelect+" WHERE s.id = ?", id))
}

// ListByMap returns the spaces of a map ordered by id.
func (r *SpaceRepo) ListByMap(ctx context.Context, mapID uint64) ([]model.Space, error) {
	rows, err := r.db.QueryContext(ctx, spaceSelect+" WHERE s.map_id = ? ORDER BY s.id", mapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	spaces := []model.Space{}
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, err
		}
		spaces = append(spaces, s)
	}
	return spaces, rows.Err()
}

// Create inserts s and reloads it.
func (r *SpaceRepo) Create(ctx context.Context, s *model.Space) error {
	const q = `INSERT INTO spaces (map_id, name, color, description, area, ` + policyColumns + `)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := append([]any{s.MapID, s.Name, s.Color, s.Description, s.Area}, policyArgs(s.Policy)...)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.LoadSpace(ctx, uint64(id))
	if err != nil {
		return err
	}
	*s = created
	return nil
}

// Update replaces every editable column of s. Existing reservations are not
// re-checked against the new policy.
func (r *SpaceRepo) Update(ctx context.Context, s model.Space) error {
	const q = `UPDATE spaces SET name = ?, color = ?, description = ?, area = ?,
                   available_start = ?, available_end = ?, time_unit = ?, min_duration = ?,
                   max_duration = ?, enabled = ?, enabled_days = ?
               WHERE id = ?`
	args := append([]any{s.Name, s.Color, s.Description, s.Area}, policyArgs(s.Policy)...)
	args = append(args, s.ID)
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}

package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/space-reservation/internal/model"
)

// PresetRepo manages persistence for saved policies.
type PresetRepo struct {
	db *sql.DB
}

func NewPresetRepo(db *sql.DB) *PresetRepo { return &PresetRepo{db: db} }

const presetSelect = "SELECT id, member_id, name, " + policyColumns + ", created_at FROM presets"

func scanPreset(row interface{ Scan(...any) error }) (model.Preset, error) {
	var (
		p  model.Preset
		pr policyRow
	)
	dest := append([]any{&p.ID, &p.MemberID, &p.Name}, pr.dest()...)
	dest = append(dest, &p.CreatedAt)
	if err := row.Scan(dest...); err != nil {
		return model.Preset{}, noRows(err)
	}
	policy, err := pr.policy()
	if err != nil {
		return model.Preset{}, err
	}
	p.Policy = policy
	return p, nil
}

// Create inserts p and reloads it.
func (r *PresetRepo) Create(ctx context.Context, p *model.Preset) error {
	const q = `INSERT INTO presets (member_id, name, ` + policyColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	args := append([]any{p.MemberID, p.Name}, policyArgs(p.Policy)...)
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
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
	*p = created
	return nil
}

func (r *PresetRepo) GetByID(ctx context.Context, id uint64) (model.Preset, error) {
	return scanPreset(r.db.QueryRowContext(ctx, presetSelect+" WHERE id = ?", id))
}

// ListByMember returns a member's presets ordered by id.
func (r *PresetRepo) ListByMember(ctx context.Context, memberID uint64) ([]model.Preset, error) {
	rows, err := r.db.QueryContext(ctx, presetSelect+" WHERE member_id = ? ORDER BY id", memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	presets := []model.Preset{}
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

func (r *PresetRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM presets WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

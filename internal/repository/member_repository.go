package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/space-reservation/internal/model"
)

// MemberRepo persists managers ('members' table).
type MemberRepo struct{ DB *sql.DB }

func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{DB: db} }

const memberColumns = "id,email,password_hash,organization,role,created_at,updated_at"

func scanMember(row interface{ Scan(...any) error }) (model.Member, error) {
	var m model.Member
	err := row.Scan(&m.ID, &m.Email, &m.PasswordHash, &m.Organization, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	return m, noRows(err)
}

// Create inserts a member with an already hashed password and returns its ID.
func (r *MemberRepo) Create(ctx context.Context, email, passwordHash, organization string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO members (email, password_hash, organization, role) VALUES (?,?,?,?)",
		email, passwordHash, organization, model.RoleManager)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a member by normalized email.
func (r *MemberRepo) GetByEmail(ctx context.Context, email string) (model.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanMember(r.DB.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE email=? LIMIT 1", email))
}

// GetByID fetches a member by id.
func (r *MemberRepo) GetByID(ctx context.Context, id uint64) (model.Member, error) {
	return scanMember(r.DB.QueryRowContext(ctx,
		"SELECT "+memberColumns+" FROM members WHERE id=? LIMIT 1", id))
}

// UpdateOrganization changes the organization shown on a member's maps.
func (r *MemberRepo) UpdateOrganization(ctx context.Context, id uint64, organization string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE members SET organization=? WHERE id=?", organization, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow reports ErrNotFound when an UPDATE or DELETE matched nothing.
// database.Open enables clientFoundRows, so an UPDATE writing equal values
// still counts its row.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

package model

import "time"

// RoleManager is the only role a member can hold.  Guests never have an
// account and therefore never carry a role claim.
const RoleManager = "MANAGER"

// Member is a registered manager account as stored in the `members` table.
//
// Fields:
//  ID           – primary key identifier of the member.
//  Email        – unique, lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Organization – organization the member manages spaces for.
//  Role         – always MANAGER.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Member struct {
	ID           uint64    // members.id
	Email        string    // members.email
	PasswordHash string    // members.password_hash
	Organization string    // members.organization
	Role         string    // members.role
	CreatedAt    time.Time // members.created_at
	UpdatedAt    time.Time // members.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA-256 hash of the token handed to the client is stored.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	MemberID  uint64     // refresh_tokens.member_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/reservation"
	"github.com/iliyamo/space-reservation/internal/utils"
)

// ErrInvalidCredentials covers unknown emails, wrong passwords and dead
// refresh tokens alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// MemberStore persists members.
type MemberStore interface {
	Create(ctx context.Context, email, passwordHash, organization string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.Member, error)
	GetByID(ctx context.Context, id uint64) (model.Member, error)
	UpdateOrganization(ctx context.Context, id uint64, organization string) error
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, memberID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForMember(ctx context.Context, memberID uint64) error
}

// AuthSettings are the token and hashing parameters of MemberService.
type AuthSettings struct {
	JWTSecret      string
	AccessTTLMin   int
	RefreshTTLDays int
	BcryptCost     int
}

// Session is a freshly issued token pair.
type Session struct {
	Member  model.Member
	Access  utils.AccessToken
	Refresh utils.RefreshToken
}

// MemberService handles manager accounts and their sessions.
type MemberService struct {
	members MemberStore
	tokens  TokenStore
	guard   IdleDeleter
	auth    AuthSettings
	now     func() time.Time
}

func NewMemberService(members MemberStore, tokens TokenStore, guard IdleDeleter, auth AuthSettings) *MemberService {
	return &MemberService{members: members, tokens: tokens, guard: guard, auth: auth, now: utcNow}
}

// Register creates a member and signs it in.
func (s *MemberService) Register(ctx context.Context, email, password, organization string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return Session{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if len(password) < 8 || len(password) > 72 {
		return Session{}, fmt.Errorf("%w: password must be 8 to 72 bytes", ErrInvalidInput)
	}
	organization = strings.TrimSpace(organization)
	if err := checkLength("organization", organization, 100); err != nil {
		return Session{}, err
	}
	hash, err := utils.HashPassword(password, s.auth.BcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.members.Create(ctx, email, hash, organization)
	if err != nil {
		return Session{}, err
	}
	m := model.Member{ID: id, Email: email, Organization: organization, Role: model.RoleManager}
	return s.issue(ctx, m)
}

// Login verifies credentials and returns a new token pair.
func (s *MemberService) Login(ctx context.Context, email, password string) (Session, error) {
	m, err := s.members.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, reservation.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("load member: %w", err)
	}
	if !utils.VerifyPassword(m.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}
	return s.issue(ctx, m)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (s *MemberService) Refresh(ctx context.Context, raw string) (Session, error) {
	hash := utils.HashRefreshRaw(strings.TrimSpace(raw))
	memberID, err := s.tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, reservation.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("validate refresh: %w", err)
	}
	if err := s.tokens.RevokeByHash(ctx, hash); err != nil {
		return Session{}, fmt.Errorf("revoke refresh: %w", err)
	}
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, reservation.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("load member: %w", err)
	}
	return s.issue(ctx, m)
}

// Logout revokes one refresh token, or every token of memberID when raw is
// empty.
func (s *MemberService) Logout(ctx context.Context, memberID uint64, raw string) error {
	if raw = strings.TrimSpace(raw); raw != "" {
		return s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw))
	}
	if memberID == 0 {
		return ErrInvalidCredentials
	}
	return s.tokens.RevokeAllForMember(ctx, memberID)
}

func (s *MemberService) issue(ctx context.Context, m model.Member) (Session, error) {
	access, err := utils.NewAccessToken(s.auth.JWTSecret, m.ID, m.Role, s.auth.AccessTTLMin)
	if err != nil {
		return Session{}, fmt.Errorf("issue access: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.auth.RefreshTTLDays)
	if err != nil {
		return Session{}, fmt.Errorf("issue refresh: %w", err)
	}
	if err := s.tokens.StoreRefresh(ctx, m.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, fmt.Errorf("save refresh: %w", err)
	}
	m.PasswordHash = ""
	return Session{Member: m, Access: access, Refresh: refresh}, nil
}

func (s *MemberService) Me(ctx context.Context, memberID uint64) (model.Member, error) {
	m, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return model.Member{}, lookup("member", err)
	}
	return m, nil
}

func (s *MemberService) UpdateOrganization(ctx context.Context, memberID uint64, organization string) (model.Member, error) {
	organization = strings.TrimSpace(organization)
	if err := checkLength("organization", organization, 100); err != nil {
		return model.Member{}, err
	}
	m, err := s.Me(ctx, memberID)
	if err != nil {
		return model.Member{}, err
	}
	if m.Organization == organization {
		return m, nil
	}
	if err := s.members.UpdateOrganization(ctx, memberID, organization); err != nil {
		return model.Member{}, fmt.Errorf("update member: %w", err)
	}
	m.Organization = organization
	return m, nil
}

// Delete removes the account unless a reservation on any of its maps ends
// in the future.
func (s *MemberService) Delete(ctx context.Context, memberID uint64) error {
	busy, err := s.guard.DeleteMemberIfIdle(ctx, memberID, s.now())
	return guarded("member", busy, err)
}

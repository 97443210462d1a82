package handler

import (
	"context"  // provides context with cancellation for DB calls
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/space-reservation/internal/service" // member accounts and sessions
	"github.com/iliyamo/space-reservation/internal/utils"   // access token parsing
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Members   *service.MemberService
	JWTSecret string
}

func NewAuthHandler(members *service.MemberService, jwtSecret string) *AuthHandler {
	if members == nil {
		panic("nil member service passed to NewAuthHandler")
	}
	return &AuthHandler{Members: members, JWTSecret: jwtSecret}
}

// ----- DTOs -----

type registerReq struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Organization string `json:"organization"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type memberPart struct {
	ID           uint64 `json:"id"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	Role         string `json:"role"`
}
type authResp struct {
	Member  memberPart `json:"member"`
	Access  tokenPart  `json:"access"`
	Refresh tokenPart  `json:"refresh"`
}

func sessionOut(s service.Session) authResp {
	return authResp{
		Member:  memberPart{ID: s.Member.ID, Email: s.Member.Email, Organization: s.Member.Organization, Role: s.Member.Role},
		Access:  tokenPart{Token: s.Access.Token, Expires: s.Access.Exp},
		Refresh: tokenPart{Token: s.Refresh.Raw, Expires: s.Refresh.Exp}, // raw back to client
	}
}

// Register: create member and return tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest(c, "email/password required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Members.Register(ctx, req.Email, req.Password, req.Organization)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, sessionOut(s))
}

// Login: verify and return a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest(c, "email/password required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Members.Login(ctx, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sessionOut(s))
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token required")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Members.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sessionOut(s))
}

// Logout revokes the refresh token in the body, or, when the body has none
// and a valid bearer token is present, every session of that member.
func (h *AuthHandler) Logout(c echo.Context) error {
	var memberID uint64
	if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		if claims, err := utils.ParseAccessToken(h.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
			memberID, _ = claims.MemberID()
		}
	}
	var req refreshReq
	_ = c.Bind(&req)
	if memberID == 0 && strings.TrimSpace(req.RefreshToken) == "" {
		return badRequest(c, "refresh_token or bearer token required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Members.Logout(ctx, memberID, req.RefreshToken); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

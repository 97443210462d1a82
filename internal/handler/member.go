package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/service"
)

// MemberHandler serves the authenticated member's own account.
type MemberHandler struct {
	Members *service.MemberService
}

func NewMemberHandler(members *service.MemberService) *MemberHandler {
	return &MemberHandler{Members: members}
}

func memberOut(m model.Member) memberPart {
	return memberPart{ID: m.ID, Email: m.Email, Organization: m.Organization, Role: m.Role}
}

// Me handles GET /v1/managers/me.
func (h *MemberHandler) Me(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	m, err := h.Members.Me(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, memberOut(m))
}

// UpdateMe handles PUT /v1/managers/me.  Only the organization is editable.
func (h *MemberHandler) UpdateMe(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Organization string `json:"organization"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid body")
	}
	m, err := h.Members.UpdateOrganization(c.Request().Context(), id, body.Organization)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, memberOut(m))
}

// DeleteMe handles DELETE /v1/managers/me.
func (h *MemberHandler) DeleteMe(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Members.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/service"
)

// SpaceHandler serves spaces of a map.
type SpaceHandler struct {
	Spaces *service.SpaceService
}

func NewSpaceHandler(spaces *service.SpaceService) *SpaceHandler {
	return &SpaceHandler{Spaces: spaces}
}

type spaceReq struct {
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	Area        string    `json:"area"`
	Policy      policyDTO `json:"setting"`
}

func (r spaceReq) input() (service.SpaceInput, error) {
	policy, err := r.Policy.toPolicy()
	if err != nil {
		return service.SpaceInput{}, err
	}
	return service.SpaceInput{
		Name:        r.Name,
		Color:       r.Color,
		Description: r.Description,
		Area:        r.Area,
		Policy:      policy,
	}, nil
}

// ids reads the member and map id shared by every manager space route.
func (h *SpaceHandler) ids(c echo.Context) (ownerID, mapID uint64, err error) {
	if ownerID, err = getUserID(c); err != nil {
		return 0, 0, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var ok bool
	if mapID, ok = pathID(c, "mapId"); !ok {
		return 0, 0, badRequest(c, "invalid map id")
	}
	return ownerID, mapID, nil
}

// Create handles POST /v1/managers/maps/:mapId/spaces.
func (h *SpaceHandler) Create(c echo.Context) error {
	ownerID, mapID, err := h.ids(c)
	if ownerID == 0 {
		return err
	}
	var req spaceReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	in, err := req.input()
	if err != nil {
		return badRequest(c, err.Error())
	}
	sp, err := h.Spaces.Create(c.Request().Context(), ownerID, mapID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, spaceOut(sp))
}

// List handles GET /v1/managers/maps/:mapId/spaces.
func (h *SpaceHandler) List(c echo.Context) error {
	ownerID, mapID, err := h.ids(c)
	if ownerID == 0 {
		return err
	}
	spaces, err := h.Spaces.List(c.Request().Context(), ownerID, mapID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"spaces": spacesOut(spaces)})
}

// Get handles GET /v1/managers/maps/:mapId/spaces/:spaceId.
func (h *SpaceHandler) Get(c echo.Context) error {
	ownerID, mapID, err := h.ids(c)
	if ownerID == 0 {
		return err
	}
	spaceID, ok := pathID(c, "spaceId")
	if !ok {
		return badRequest(c, "invalid space id")
	}
	sp, err := h.Spaces.Get(c.Request().Context(), ownerID, mapID, spaceID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, spaceOut(sp))
}

// Update handles PUT /v1/managers/maps/:mapId/spaces/:spaceId.  Existing
// reservations are not re-checked against the new policy.
func (h *SpaceHandler) Update(c echo.Context) error {
	ownerID, mapID, err := h.ids(c)
	if ownerID == 0 {
		return err
	}
	spaceID, ok := pathID(c, "spaceId")
	if !ok {
		return badRequest(c, "invalid space id")
	}
	var req spaceReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	in, err := req.input()
	if err != nil {
		return badRequest(c, err.Error())
	}
	sp, err := h.Spaces.Update(c.Request().Context(), ownerID, mapID, spaceID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, spaceOut(sp))
}

// Delete handles DELETE /v1/managers/maps/:mapId/spaces/:spaceId.
func (h *SpaceHandler) Delete(c echo.Context) error {
	ownerID, mapID, err := h.ids(c)
	if ownerID == 0 {
		return err
	}
	spaceID, ok := pathID(c, "spaceId")
	if !ok {
		return badRequest(c, "invalid space id")
	}
	if err := h.Spaces.Delete(c.Request().Context(), ownerID, mapID, spaceID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListPublic handles GET /v1/guests/maps/:mapId/spaces.
func (h *SpaceHandler) ListPublic(c echo.Context) error {
	mapID, ok := pathID(c, "mapId")
	if !ok {
		return badRequest(c, "invalid map id")
	}
	spaces, err := h.Spaces.ListPublic(c.Request().Context(), mapID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"spaces": spacesOut(spaces)})
}

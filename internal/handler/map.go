package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/service"
)

// MapHandler serves manager map CRUD and the guest entry point.
type MapHandler struct {
	Maps *service.MapService
}

func NewMapHandler(maps *service.MapService) *MapHandler { return &MapHandler{Maps: maps} }

type mapReq struct {
	Name    string `json:"name"`
	Drawing string `json:"drawing"`
}

func (r mapReq) input() service.MapInput {
	return service.MapInput{Name: r.Name, Drawing: r.Drawing}
}

func mapsOut(list []model.Map) []mapResp {
	out := make([]mapResp, len(list))
	for i, m := range list {
		out[i] = mapOut(m)
	}
	return out
}

// Create handles POST /v1/managers/maps.
func (h *MapHandler) Create(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req mapReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	m, err := h.Maps.Create(c.Request().Context(), ownerID, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, mapOut(m))
}

// List handles GET /v1/managers/maps.
func (h *MapHandler) List(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	maps, err := h.Maps.List(c.Request().Context(), ownerID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"maps": mapsOut(maps)})
}

// Get handles GET /v1/managers/maps/:mapId.
func (h *MapHandler) Get(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	mapID, ok := pathID(c, "mapId")
	if !ok {
		return badRequest(c, "invalid map id")
	}
	m, err := h.Maps.Get(c.Request().Context(), ownerID, mapID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, mapOut(m))
}

// Update handles PUT /v1/managers/maps/:mapId.
func (h *MapHandler) Update(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	mapID, ok := pathID(c, "mapId")
	if !ok {
		return badRequest(c, "invalid map id")
	}
	var req mapReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	m, err := h.Maps.Update(c.Request().Context(), ownerID, mapID, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, mapOut(m))
}

// Delete handles DELETE /v1/managers/maps/:mapId.  Refused while a
// reservation on the map has not ended.
func (h *MapHandler) Delete(c echo.Context) error {
	ownerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	mapID, ok := pathID(c, "mapId")
	if !ok {
		return badRequest(c, "invalid map id")
	}
	if err := h.Maps.Delete(c.Request().Context(), ownerID, mapID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Shared handles GET /v1/guests/maps?sharingMapId=...
func (h *MapHandler) Shared(c echo.Context) error {
	sharingID := strings.TrimSpace(c.QueryParam("sharingMapId"))
	if sharingID == "" {
		return badRequest(c, "sharingMapId required")
	}
	m, spaces, err := h.Maps.Shared(c.Request().Context(), sharingID)
	if err != nil {
		return writeError(c, err)
	}
	resp := mapOut(m)
	resp.SharingID = "" // guests already hold it
	return c.JSON(http.StatusOK, echo.Map{"map": resp, "spaces": spacesOut(spaces)})
}

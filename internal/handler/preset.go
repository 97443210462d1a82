package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/service"
)

// PresetHandler manages saved policies of the authenticated member.
type PresetHandler struct {
	Presets *service.PresetService
}

func NewPresetHandler(presets *service.PresetService) *PresetHandler {
	return &PresetHandler{Presets: presets}
}

type presetReq struct {
	Name   string    `json:"name"`
	Policy policyDTO `json:"setting"`
}

type presetResp struct {
	ID     uint64    `json:"id"`
	Name   string    `json:"name"`
	Policy policyDTO `json:"setting"`
}

func presetOut(p model.Preset) presetResp {
	return presetResp{ID: p.ID, Name: p.Name, Policy: policyOut(p.Policy)}
}

// Create handles POST /v1/managers/presets.
func (h *PresetHandler) Create(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req presetReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	policy, err := req.Policy.toPolicy()
	if err != nil {
		return badRequest(c, err.Error())
	}
	p, err := h.Presets.Create(c.Request().Context(), id, req.Name, policy)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, presetOut(p))
}

// List handles GET /v1/managers/presets.
func (h *PresetHandler) List(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	presets, err := h.Presets.List(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]presetResp, len(presets))
	for i, p := range presets {
		out[i] = presetOut(p)
	}
	return c.JSON(http.StatusOK, echo.Map{"presets": out})
}

// Delete handles DELETE /v1/managers/presets/:presetId.
func (h *PresetHandler) Delete(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	presetID, ok := pathID(c, "presetId")
	if !ok {
		return badRequest(c, "invalid preset id")
	}
	if err := h.Presets.Delete(c.Request().Context(), id, presetID); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

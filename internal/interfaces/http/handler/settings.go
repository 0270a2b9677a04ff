package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	settingsapp "github.com/resto/backend/internal/application/settings"
	"github.com/resto/backend/internal/application/settings/dto"
)

// SettingsHandler handles branch settings HTTP requests
type SettingsHandler struct {
	BaseHandler
	service *settingsapp.Service
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(service *settingsapp.Service) *SettingsHandler {
	return &SettingsHandler{service: service}
}

func (h *SettingsHandler) branchID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("branchID"))
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return uuid.Nil, false
	}
	return id, true
}

// GetBranchSettings godoc
// @Summary      Get branch settings
// @Tags         settings
// @Produce      json
// @Param        branchID path string true "Branch ID"
// @Success      200 {object} APIResponse[dto.BranchSettingsResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /branches/{branchID}/settings [get]
func (h *SettingsHandler) GetBranchSettings(c *gin.Context) {
	id, ok := h.branchID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetBranchSettings(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateFloatTarget godoc
// @Summary      Update the branch float target
// @Description  Persists the new target and broadcasts it to other processes
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        branchID path string true "Branch ID"
// @Param        request body dto.UpdateFloatTargetRequest true "New float target"
// @Success      200 {object} APIResponse[dto.BranchSettingsResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /branches/{branchID}/settings/float-target [put]
func (h *SettingsHandler) UpdateFloatTarget(c *gin.Context) {
	id, ok := h.branchID(c)
	if !ok {
		return
	}

	var req dto.UpdateFloatTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.UpdateFloatTarget(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	closingapp "github.com/resto/backend/internal/application/closing"
	"github.com/resto/backend/internal/application/closing/dto"
)

// ClosingHandler handles cash-drawer closing session HTTP requests
type ClosingHandler struct {
	BaseHandler
	service *closingapp.Service
}

// NewClosingHandler creates a new ClosingHandler
func NewClosingHandler(service *closingapp.Service) *ClosingHandler {
	return &ClosingHandler{service: service}
}

// sessionID parses the session ID path parameter
func (h *ClosingHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

// OpenSession godoc
// @Summary      Open a closing session
// @Description  Opens (or resumes) the editing session for a branch and business date
// @Tags         closing
// @Accept       json
// @Produce      json
// @Param        request body dto.OpenSessionRequest true "Session parameters"
// @Success      201 {object} APIResponse[dto.SessionStateResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /closing/sessions [post]
func (h *ClosingHandler) OpenSession(c *gin.Context) {
	var req dto.OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	state, err := h.service.OpenSession(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, state)
}

// GetState godoc
// @Summary      Get session state
// @Tags         closing
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[dto.SessionStateResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /closing/sessions/{id} [get]
func (h *ClosingHandler) GetState(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	state, err := h.service.State(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}

// CloseSession godoc
// @Summary      Close a session
// @Description  Discards the in-memory editing session without saving
// @Tags         closing
// @Param        id path string true "Session ID"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Router       /closing/sessions/{id} [delete]
func (h *ClosingHandler) CloseSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	if err := h.service.CloseSession(id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RecordCount godoc
// @Summary      Record a denomination count
// @Description  Commits one counted quantity and re-solves the withdrawal plan
// @Tags         closing
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body dto.CountRequest true "Denomination count"
// @Success      200 {object} APIResponse[dto.SessionStateResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Router       /closing/sessions/{id}/counts [put]
func (h *ClosingHandler) RecordCount(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.CountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	state, err := h.service.RecordCount(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}

// OverrideWithdrawal godoc
// @Summary      Override a withdrawal count
// @Description  Pins the take for one denomination and re-solves rows below it
// @Tags         closing
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body dto.OverrideRequest true "Withdrawal override"
// @Success      200 {object} APIResponse[dto.SessionStateResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /closing/sessions/{id}/withdrawals [put]
func (h *ClosingHandler) OverrideWithdrawal(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	state, err := h.service.OverrideWithdrawal(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}

// Resuggest godoc
// @Summary      Recompute the withdrawal plan
// @Description  Discards all pinned overrides and re-suggests from counts
// @Tags         closing
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[dto.SessionStateResponse]
// @Router       /closing/sessions/{id}/resuggest [post]
func (h *ClosingHandler) Resuggest(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	state, err := h.service.Resuggest(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}

// ClearCounts godoc
// @Summary      Clear all drawer counts
// @Tags         closing
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[dto.SessionStateResponse]
// @Router       /closing/sessions/{id}/clear [post]
func (h *ClosingHandler) ClearCounts(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	state, err := h.service.ClearCounts(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}

// UpdatePayments godoc
// @Summary      Update payment-channel figures
// @Tags         closing
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body dto.PaymentsRequest true "Payment figures"
// @Success      200 {object} APIResponse[dto.SessionStateResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /closing/sessions/{id}/payments [put]
func (h *ClosingHandler) UpdatePayments(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.PaymentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	state, err := h.service.UpdatePayments(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}

// SetRemark godoc
// @Summary      Set the closing remark
// @Tags         closing
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body dto.RemarkRequest true "Remark"
// @Success      200 {object} APIResponse[dto.SessionStateResponse]
// @Router       /closing/sessions/{id}/remark [put]
func (h *ClosingHandler) SetRemark(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.RemarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	state, err := h.service.SetRemark(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}

// SetFloatTarget godoc
// @Summary      Set a session-local float target
// @Description  Overrides the branch float target for this session only
// @Tags         closing
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body dto.FloatTargetRequest true "Float target"
// @Success      200 {object} APIResponse[dto.SessionStateResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /closing/sessions/{id}/float-target [put]
func (h *ClosingHandler) SetFloatTarget(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.FloatTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	state, err := h.service.SetSessionFloatTarget(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}

// SetLiveMode godoc
// @Summary      Toggle live editing
// @Description  Leaving live mode forces a reload from the saved record
// @Tags         closing
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body dto.LiveModeRequest true "Live mode flag"
// @Success      200 {object} APIResponse[dto.SessionStateResponse]
// @Router       /closing/sessions/{id}/live [put]
func (h *ClosingHandler) SetLiveMode(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req dto.LiveModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	state, err := h.service.SetLiveMode(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}

// Save godoc
// @Summary      Save the closing record
// @Description  Persists the record, retrying once on transient failure
// @Tags         closing
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[dto.SessionStateResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /closing/sessions/{id}/save [post]
func (h *ClosingHandler) Save(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	state, err := h.service.Save(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}

// Reload godoc
// @Summary      Reload the session from storage
// @Description  Refuses when unsaved changes exist unless force=true
// @Tags         closing
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        force query bool false "Discard unsaved changes"
// @Success      200 {object} APIResponse[dto.SessionStateResponse]
// @Failure      409 {object} ErrorResponse
// @Router       /closing/sessions/{id}/reload [post]
func (h *ClosingHandler) Reload(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	force := c.Query("force") == "true"

	state, err := h.service.Reload(c.Request.Context(), id, force)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, state)
}

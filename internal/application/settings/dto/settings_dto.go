package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/settings"
)

// UpdateFloatTargetRequest changes a branch's cash float target.
type UpdateFloatTargetRequest struct {
	FloatTarget int64 `json:"float_target" binding:"min=0"`
}

// BranchSettingsResponse is the per-branch configuration in API responses.
type BranchSettingsResponse struct {
	BranchID        uuid.UUID `json:"branch_id"`
	CashFloatTarget int64     `json:"cash_float_target"`
	ConfigRevision  int64     `json:"config_revision"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ToBranchSettingsResponse converts domain settings to DTO
func ToBranchSettingsResponse(s *settings.BranchSettings) *BranchSettingsResponse {
	return &BranchSettingsResponse{
		BranchID:        s.BranchID,
		CashFloatTarget: s.CashFloatTarget,
		ConfigRevision:  s.ConfigRevision,
		UpdatedAt:       s.UpdatedAt,
	}
}

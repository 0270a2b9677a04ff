package settings

import (
	"context"

	"github.com/google/uuid"
)

// BranchSettingsRepository persists per-branch configuration
type BranchSettingsRepository interface {
	// FindByBranch returns the settings for a branch, or shared.ErrNotFound
	FindByBranch(ctx context.Context, branchID uuid.UUID) (*BranchSettings, error)
	// Save creates or updates branch settings
	Save(ctx context.Context, s *BranchSettings) error
	// Revision returns the current config revision marker for a branch
	// without loading the full settings row
	Revision(ctx context.Context, branchID uuid.UUID) (int64, error)
}

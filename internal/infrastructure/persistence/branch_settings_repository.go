package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/settings"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormBranchSettingsRepository implements settings.BranchSettingsRepository using GORM
type GormBranchSettingsRepository struct {
	db *gorm.DB
}

// NewGormBranchSettingsRepository creates a new GormBranchSettingsRepository
func NewGormBranchSettingsRepository(db *gorm.DB) *GormBranchSettingsRepository {
	return &GormBranchSettingsRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormBranchSettingsRepository) WithTx(tx *gorm.DB) *GormBranchSettingsRepository {
	return &GormBranchSettingsRepository{db: tx}
}

// FindByBranch finds the settings row for a branch
func (r *GormBranchSettingsRepository) FindByBranch(ctx context.Context, branchID uuid.UUID) (*settings.BranchSettings, error) {
	var model models.BranchSettingsModel
	err := r.db.WithContext(ctx).
		Where("branch_id = ?", branchID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates branch settings
func (r *GormBranchSettingsRepository) Save(ctx context.Context, s *settings.BranchSettings) error {
	var model models.BranchSettingsModel
	model.FromDomainBranchSettings(s)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Revision returns the current config revision for a branch without loading
// the full row. Unconfigured branches report revision 0.
func (r *GormBranchSettingsRepository) Revision(ctx context.Context, branchID uuid.UUID) (int64, error) {
	var revision int64
	err := r.db.WithContext(ctx).
		Model(&models.BranchSettingsModel{}).
		Select("config_revision").
		Where("branch_id = ?", branchID).
		Scan(&revision).Error
	if err != nil {
		return 0, err
	}
	return revision, nil
}

// Ensure GormBranchSettingsRepository implements settings.BranchSettingsRepository
var _ settings.BranchSettingsRepository = (*GormBranchSettingsRepository)(nil)

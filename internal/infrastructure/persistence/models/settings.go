package models

import (
	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/settings"
	"github.com/resto/backend/internal/domain/shared"
)

// BranchSettingsModel is the persistence model for per-branch configuration.
type BranchSettingsModel struct {
	AggregateModel
	BranchID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CashFloatTarget int64     `gorm:"not null"`
	ConfigRevision  int64     `gorm:"not null;default:1"`
}

// TableName returns the table name for BranchSettingsModel
func (BranchSettingsModel) TableName() string {
	return "branch_settings"
}

// FromDomainBranchSettings populates the model from domain settings
func (m *BranchSettingsModel) FromDomainBranchSettings(s *settings.BranchSettings) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.BranchID = s.BranchID
	m.CashFloatTarget = s.CashFloatTarget
	m.ConfigRevision = s.ConfigRevision
}

// ToDomain converts the model to domain settings
func (m *BranchSettingsModel) ToDomain() *settings.BranchSettings {
	s := &settings.BranchSettings{
		BranchAggregateRoot: shared.BranchAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: m.BaseModel.ToDomain(),
				Version:    m.Version,
			},
			BranchID: m.BranchID,
		},
		CashFloatTarget: m.CashFloatTarget,
		ConfigRevision:  m.ConfigRevision,
	}
	return s
}

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/cashdrawer"
	"github.com/resto/backend/internal/domain/closing"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/resto/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormClosingRecordRepository implements closing.Repository using GORM
type GormClosingRecordRepository struct {
	db    *gorm.DB
	table *cashdrawer.Table
}

// NewGormClosingRecordRepository creates a new GormClosingRecordRepository.
// Loaded records are rehydrated onto the given denomination table.
func NewGormClosingRecordRepository(db *gorm.DB, table *cashdrawer.Table) *GormClosingRecordRepository {
	if table == nil {
		table = cashdrawer.DefaultTable()
	}
	return &GormClosingRecordRepository{db: db, table: table}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormClosingRecordRepository) WithTx(tx *gorm.DB) *GormClosingRecordRepository {
	return &GormClosingRecordRepository{db: tx, table: r.table}
}

// FindByID finds a closing record by its ID
func (r *GormClosingRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*closing.Record, error) {
	var model models.ClosingRecordModel
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(r.table), nil
}

// FindByBranchAndDate finds the record for a branch and business date
func (r *GormClosingRecordRepository) FindByBranchAndDate(ctx context.Context, branchID uuid.UUID, businessDate time.Time) (*closing.Record, error) {
	var model models.ClosingRecordModel
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("branch_id = ? AND business_date = ?", branchID, dateOnly(businessDate)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(r.table), nil
}

// ExistsForDate reports whether a record other than excludeID occupies the
// (branch, business date) slot
func (r *GormClosingRecordRepository) ExistsForDate(ctx context.Context, branchID uuid.UUID, businessDate time.Time, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ClosingRecordModel{}).
		Where("branch_id = ? AND business_date = ? AND id <> ?", branchID, dateOnly(businessDate), excludeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a closing record with its lines. The record row
// and its lines are written in one transaction: either everything lands or
// nothing does.
func (r *GormClosingRecordRepository) Save(ctx context.Context, record *closing.Record) error {
	var model models.ClosingRecordModel
	model.FromDomainClosingRecord(record)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("record_id = ?", model.ID).
			Delete(&models.ClosingRecordLineModel{}).Error; err != nil {
			return err
		}

		lines := model.Lines
		model.Lines = nil
		if err := tx.Save(&model).Error; err != nil {
			return err
		}

		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// dateOnly truncates a timestamp to its calendar date for the date-typed
// business_date column.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Ensure GormClosingRecordRepository implements closing.Repository
var _ closing.Repository = (*GormClosingRecordRepository)(nil)

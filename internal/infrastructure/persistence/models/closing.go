package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/cashdrawer"
	"github.com/resto/backend/internal/domain/closing"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ClosingRecordModel is the persistence model for closing records.
// One row per (branch, business date); drawer counts and withdrawal takes
// live in closing_record_lines.
type ClosingRecordModel struct {
	BranchAggregateModel
	// Uniqueness of (branch_id, business_date) is enforced by migration.
	BusinessDate time.Time `gorm:"type:date;not null;index"`
	CashierID    uuid.UUID `gorm:"type:uuid"`
	CashierName  string    `gorm:"size:255"`

	GrossRevenue         decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	CardSettlement       decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	DeliveryPlatform     decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	VoucherRedemption    decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	PaidOuts             decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	ReceivablesCollected decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	DepositsReceived     decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`

	FloatTargetAtSave int64  `gorm:"not null;default:0"`
	Remark            string `gorm:"type:text"`

	Lines []ClosingRecordLineModel `gorm:"foreignKey:RecordID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for ClosingRecordModel
func (ClosingRecordModel) TableName() string {
	return "closing_records"
}

// ClosingRecordLineModel is one denomination row of a saved closing record.
type ClosingRecordLineModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	RecordID       uuid.UUID `gorm:"type:uuid;not null;index"`
	DenominationID string    `gorm:"size:32;not null"`
	FaceValue      int64     `gorm:"not null"`
	Counted        int64     `gorm:"not null;default:0"`
	Take           int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for ClosingRecordLineModel
func (ClosingRecordLineModel) TableName() string {
	return "closing_record_lines"
}

// FromDomainClosingRecord populates the model from a domain record
func (m *ClosingRecordModel) FromDomainClosingRecord(r *closing.Record) {
	m.FromDomainBranchAggregateRoot(r.BranchAggregateRoot)
	m.BusinessDate = r.BusinessDate
	m.CashierID = r.CashierID
	m.CashierName = r.CashierName
	m.GrossRevenue = r.Payments.GrossRevenue
	m.CardSettlement = r.Payments.CardSettlement
	m.DeliveryPlatform = r.Payments.DeliveryPlatform
	m.VoucherRedemption = r.Payments.VoucherRedemption
	m.PaidOuts = r.Payments.PaidOuts
	m.ReceivablesCollected = r.Payments.ReceivablesCollected
	m.DepositsReceived = r.Payments.DepositsReceived
	m.FloatTargetAtSave = r.FloatTargetAtSave
	m.Remark = r.Remark

	table := r.Table()
	m.Lines = make([]ClosingRecordLineModel, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		d := table.At(i)
		m.Lines = append(m.Lines, ClosingRecordLineModel{
			ID:             uuid.New(),
			RecordID:       r.ID,
			DenominationID: d.ID,
			FaceValue:      d.FaceValue,
			Counted:        r.Ledger.Count(i),
			Take:           r.Plan.Take(i),
		})
	}
}

// ToDomain converts the model to a domain record, restoring the drawer onto
// the given denomination table.
func (m *ClosingRecordModel) ToDomain(table *cashdrawer.Table) *closing.Record {
	counts := make(map[string]int64, len(m.Lines))
	takes := make(map[string]int64, len(m.Lines))
	for _, line := range m.Lines {
		counts[line.DenominationID] = line.Counted
		takes[line.DenominationID] = line.Take
	}

	var base shared.BranchAggregateRoot
	m.PopulateBranchAggregateRoot(&base)

	return closing.RehydrateRecord(
		base,
		m.BusinessDate,
		m.CashierID,
		m.CashierName,
		closing.PaymentBreakdown{
			GrossRevenue:         m.GrossRevenue,
			CardSettlement:       m.CardSettlement,
			DeliveryPlatform:     m.DeliveryPlatform,
			VoucherRedemption:    m.VoucherRedemption,
			PaidOuts:             m.PaidOuts,
			ReceivablesCollected: m.ReceivablesCollected,
			DepositsReceived:     m.DepositsReceived,
		},
		m.FloatTargetAtSave,
		m.Remark,
		table,
		counts,
		takes,
	)
}

package closing

import (
	"time"

	"github.com/resto/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeRecordCreated     = "closing.record_created"
	EventTypeCashCountRecorded = "closing.cash_count_recorded"
	EventTypeRecordSaved       = "closing.record_saved"
)

// RecordCreatedEvent is raised when a new closing draft is opened.
type RecordCreatedEvent struct {
	shared.BaseDomainEvent
	BusinessDate time.Time `json:"business_date"`
	CashierName  string    `json:"cashier_name"`
}

// NewRecordCreatedEvent creates a RecordCreatedEvent
func NewRecordCreatedEvent(r *Record) *RecordCreatedEvent {
	return &RecordCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeRecordCreated, "ClosingRecord", r.ID, r.BranchID),
		BusinessDate: r.BusinessDate,
		CashierName:  r.CashierName,
	}
}

// CashCountRecordedEvent is raised when one denomination count is committed.
type CashCountRecordedEvent struct {
	shared.BaseDomainEvent
	DenominationID string `json:"denomination_id"`
	Count          int64  `json:"count"`
	DrawerTotal    int64  `json:"drawer_total"`
}

// NewCashCountRecordedEvent creates a CashCountRecordedEvent
func NewCashCountRecordedEvent(r *Record, denominationID string, count int64) *CashCountRecordedEvent {
	return &CashCountRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeCashCountRecorded, "ClosingRecord", r.ID, r.BranchID),
		DenominationID: denominationID,
		Count:          count,
		DrawerTotal:    r.Ledger.Total(),
	}
}

// RecordSavedEvent is raised after a closing record is persisted.
type RecordSavedEvent struct {
	shared.BaseDomainEvent
	BusinessDate time.Time `json:"business_date"`
	FloatTarget  int64     `json:"float_target"`
	CountedCash  int64     `json:"counted_cash"`
	Variance     int64     `json:"variance"`
}

// NewRecordSavedEvent creates a RecordSavedEvent
func NewRecordSavedEvent(r *Record) *RecordSavedEvent {
	report := r.Variance(r.FloatTargetAtSave)
	return &RecordSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeRecordSaved, "ClosingRecord", r.ID, r.BranchID),
		BusinessDate: r.BusinessDate,
		FloatTarget:  r.FloatTargetAtSave,
		CountedCash:  r.Ledger.Total(),
		Variance:     report.Variance,
	}
}

package closing

import (
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/cashdrawer"
	"github.com/resto/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentBreakdown carries the revenue and adjustment figures entered on the
// external payment-channel forms. The closing core treats them as opaque
// numbers: it only combines them into the net cash movement and folds their
// whole-unit rounding into the record signature.
type PaymentBreakdown struct {
	GrossRevenue         decimal.Decimal
	CardSettlement       decimal.Decimal
	DeliveryPlatform     decimal.Decimal
	VoucherRedemption    decimal.Decimal
	PaidOuts             decimal.Decimal
	ReceivablesCollected decimal.Decimal
	DepositsReceived     decimal.Decimal
}

// NetCash is the non-cash-adjusted cash movement for the period: revenue
// minus the non-cash channels minus paid-outs, plus cash-settled receivables
// and deposits, rounded to whole currency units.
func (p PaymentBreakdown) NetCash() int64 {
	net := p.GrossRevenue.
		Sub(p.CardSettlement).
		Sub(p.DeliveryPlatform).
		Sub(p.VoucherRedemption).
		Sub(p.PaidOuts).
		Add(p.ReceivablesCollected).
		Add(p.DepositsReceived)
	return net.Round(0).IntPart()
}

// Record is the end-of-shift cash closing document: the aggregate root for
// drawer reconciliation. It owns the counted ledger and the withdrawal plan
// and keeps them consistent: every committed mutation re-runs the explicit
// pipeline ledger -> plan, with variance and signature derived on demand.
type Record struct {
	shared.BranchAggregateRoot
	BusinessDate      time.Time
	CashierID         uuid.UUID
	CashierName       string
	Payments          PaymentBreakdown
	Ledger            *cashdrawer.Ledger
	Plan              *cashdrawer.Plan
	FloatTargetAtSave int64
	Remark            string

	planner *cashdrawer.Planner
}

// NewRecord creates a zeroed draft record for a branch and business date.
func NewRecord(branchID uuid.UUID, businessDate time.Time, cashierID uuid.UUID, cashierName string, table *cashdrawer.Table) (*Record, error) {
	if branchID == uuid.Nil {
		return nil, shared.ErrBranchRequired
	}
	if businessDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Business date cannot be empty")
	}

	r := &Record{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		BusinessDate:        businessDate.Truncate(24 * time.Hour),
		CashierID:           cashierID,
		CashierName:         cashierName,
		Ledger:              cashdrawer.NewLedger(table),
		Plan:                cashdrawer.NewPlan(table),
		planner:             cashdrawer.NewPlanner(table),
	}

	r.AddDomainEvent(NewRecordCreatedEvent(r))

	return r, nil
}

// RehydrateRecord rebuilds a record from persisted state. No events are
// raised and no recompute runs: the stored plan is authoritative until the
// next mutation.
func RehydrateRecord(
	base shared.BranchAggregateRoot,
	businessDate time.Time,
	cashierID uuid.UUID,
	cashierName string,
	payments PaymentBreakdown,
	floatTargetAtSave int64,
	remark string,
	table *cashdrawer.Table,
	counts, takes map[string]int64,
) *Record {
	r := &Record{
		BranchAggregateRoot: base,
		BusinessDate:        businessDate,
		CashierID:           cashierID,
		CashierName:         cashierName,
		Payments:            payments,
		FloatTargetAtSave:   floatTargetAtSave,
		Remark:              remark,
		Ledger:              cashdrawer.NewLedger(table),
		Plan:                cashdrawer.NewPlan(table),
		planner:             cashdrawer.NewPlanner(table),
	}
	r.Ledger.Restore(counts)
	r.Plan.Restore(takes)
	return r
}

// Table returns the denomination table the record is built over.
func (r *Record) Table() *cashdrawer.Table {
	return r.Ledger.Table()
}

// RecordCashCount commits one counted quantity and re-resolves the
// withdrawal plan against the given float target. Existing operator pins
// survive the recompute.
func (r *Record) RecordCashCount(denominationID string, count int64, floatTarget int64) error {
	if err := r.Ledger.SetCount(denominationID, count); err != nil {
		return err
	}
	r.Plan = r.planner.Refresh(r.Ledger, floatTarget, r.Plan)
	r.touch()

	r.AddDomainEvent(NewCashCountRecordedEvent(r, denominationID, count))

	return nil
}

// OverrideWithdrawal pins the withdrawal count for one denomination and
// re-solves the rest of the plan around it.
func (r *Record) OverrideWithdrawal(denominationID string, requested int64, floatTarget int64) error {
	idx := r.Table().IndexOf(denominationID)
	if idx < 0 {
		return shared.NewDomainError("UNKNOWN_DENOMINATION", "Denomination is not in the drawer's currency set")
	}
	r.Plan = r.planner.RecomputeWithOverride(r.Ledger, floatTarget, r.Plan, idx, requested)
	r.touch()
	return nil
}

// Resuggest discards all operator pins and recomputes a fresh plan.
func (r *Record) Resuggest(floatTarget int64) {
	r.Plan = r.planner.Suggest(r.Ledger, floatTarget)
	r.touch()
}

// ClearCounts zeroes the ledger and, with it, the withdrawal plan and every
// pin: zero counts make overrides meaningless.
func (r *Record) ClearCounts() {
	r.Ledger.Clear()
	r.Plan = cashdrawer.NewPlan(r.Table())
	r.touch()
}

// UpdatePayments replaces the external payment figures and re-resolves the
// plan (the net cash movement feeds the variance, not the plan, but the
// commit still runs the full pipeline so no stale intermediate survives).
func (r *Record) UpdatePayments(p PaymentBreakdown, floatTarget int64) {
	r.Payments = p
	r.Plan = r.planner.Refresh(r.Ledger, floatTarget, r.Plan)
	r.touch()
}

// SetRemark sets the free-form closing remark.
func (r *Record) SetRemark(remark string) {
	r.Remark = remark
	r.touch()
}

// Variance reconciles the counted drawer against the expected position for
// the given float target.
func (r *Record) Variance(floatTarget int64) cashdrawer.VarianceReport {
	return cashdrawer.NewVarianceReport(r.Payments.NetCash(), floatTarget, r.Ledger.Total())
}

// StampFloatTarget records the float target the document is being
// reconciled against. Called just before persistence so the stored row
// carries the target that produced its plan.
func (r *Record) StampFloatTarget(floatTarget int64) {
	r.FloatTargetAtSave = floatTarget
}

// MarkSaved bumps the version and raises the saved event. Called only after
// the repository write succeeded.
func (r *Record) MarkSaved() {
	r.touch()
	r.IncrementVersion()

	r.AddDomainEvent(NewRecordSavedEvent(r))
}

// RefreshPlan re-resolves the withdrawal plan against a new float target,
// keeping operator pins. Used when the effective target changes mid-session.
func (r *Record) RefreshPlan(floatTarget int64) {
	r.Plan = r.planner.Refresh(r.Ledger, floatTarget, r.Plan)
}

// RestoreDrawer loads persisted counts and plan takes into the record.
// Restored plans carry no session pins.
func (r *Record) RestoreDrawer(counts, takes map[string]int64) {
	r.Ledger.Restore(counts)
	r.Plan = cashdrawer.NewPlan(r.Table())
	r.Plan.Restore(takes)
}

func (r *Record) touch() {
	r.UpdatedAt = time.Now()
}

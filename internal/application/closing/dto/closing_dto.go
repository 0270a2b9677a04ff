package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/cashdrawer"
	"github.com/resto/backend/internal/domain/closing"
	"github.com/shopspring/decimal"
)

// OpenSessionRequest opens (or resumes) an editing session for one branch
// and business date.
type OpenSessionRequest struct {
	BranchID     uuid.UUID `json:"branch_id" binding:"required"`
	BusinessDate string    `json:"business_date" binding:"required"`
	CashierID    uuid.UUID `json:"cashier_id"`
	CashierName  string    `json:"cashier_name"`
}

// CountRequest commits one counted denomination quantity.
type CountRequest struct {
	DenominationID string `json:"denomination_id" binding:"required"`
	Count          int64  `json:"count"`
}

// OverrideRequest pins the withdrawal count for one denomination.
type OverrideRequest struct {
	DenominationID string `json:"denomination_id" binding:"required"`
	Count          int64  `json:"count"`
}

// PaymentsRequest replaces the external payment-channel figures.
type PaymentsRequest struct {
	GrossRevenue         decimal.Decimal `json:"gross_revenue"`
	CardSettlement       decimal.Decimal `json:"card_settlement"`
	DeliveryPlatform     decimal.Decimal `json:"delivery_platform"`
	VoucherRedemption    decimal.Decimal `json:"voucher_redemption"`
	PaidOuts             decimal.Decimal `json:"paid_outs"`
	ReceivablesCollected decimal.Decimal `json:"receivables_collected"`
	DepositsReceived     decimal.Decimal `json:"deposits_received"`
}

// ToDomain converts PaymentsRequest to a domain payment breakdown
func (r PaymentsRequest) ToDomain() closing.PaymentBreakdown {
	return closing.PaymentBreakdown{
		GrossRevenue:         r.GrossRevenue,
		CardSettlement:       r.CardSettlement,
		DeliveryPlatform:     r.DeliveryPlatform,
		VoucherRedemption:    r.VoucherRedemption,
		PaidOuts:             r.PaidOuts,
		ReceivablesCollected: r.ReceivablesCollected,
		DepositsReceived:     r.DepositsReceived,
	}
}

// RemarkRequest sets the free-form closing remark.
type RemarkRequest struct {
	Remark string `json:"remark"`
}

// FloatTargetRequest pushes a session-local float target.
type FloatTargetRequest struct {
	FloatTarget int64 `json:"float_target" binding:"min=0"`
}

// LiveModeRequest toggles live editing for a session.
type LiveModeRequest struct {
	Live bool `json:"live"`
}

// DrawerLineResponse is one denomination row of the counting grid.
type DrawerLineResponse struct {
	DenominationID string `json:"denomination_id"`
	FaceValue      int64  `json:"face_value"`
	Count          int64  `json:"count"`
	Take           int64  `json:"take"`
	Edited         bool   `json:"edited"`
	Remaining      int64  `json:"remaining"`
}

// VarianceResponse is the reconciliation summary.
type VarianceResponse struct {
	NetCash      int64 `json:"net_cash"`
	FloatTarget  int64 `json:"float_target"`
	CountedCash  int64 `json:"counted_cash"`
	ExpectedCash int64 `json:"expected_cash"`
	Variance     int64 `json:"variance"`
}

// ToVarianceResponse converts a domain variance report to DTO
func ToVarianceResponse(v cashdrawer.VarianceReport) VarianceResponse {
	return VarianceResponse{
		NetCash:      v.NetCash,
		FloatTarget:  v.FloatTarget,
		CountedCash:  v.CountedCash,
		ExpectedCash: v.ExpectedCash,
		Variance:     v.Variance,
	}
}

// SessionStateResponse is the full editing-session state returned after
// every mutation.
type SessionStateResponse struct {
	SessionID      uuid.UUID            `json:"session_id"`
	RecordID       uuid.UUID            `json:"record_id"`
	BranchID       uuid.UUID            `json:"branch_id"`
	BusinessDate   string               `json:"business_date"`
	CashierName    string               `json:"cashier_name"`
	FloatTarget    int64                `json:"float_target"`
	Lines          []DrawerLineResponse `json:"lines"`
	TotalCounted   int64                `json:"total_counted"`
	TotalToTake    int64                `json:"total_to_take"`
	TotalRemaining int64                `json:"total_remaining"`
	Payments       PaymentsRequest      `json:"payments"`
	Variance       VarianceResponse     `json:"variance"`
	Remark         string               `json:"remark"`
	Live           bool                 `json:"live"`
	Dirty          bool                 `json:"dirty"`
}

// ToSessionStateResponse builds the session state from the domain record
func ToSessionStateResponse(sessionID uuid.UUID, r *closing.Record, floatTarget int64, live, dirty bool) *SessionStateResponse {
	table := r.Table()
	lines := make([]DrawerLineResponse, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		d := table.At(i)
		lines = append(lines, DrawerLineResponse{
			DenominationID: d.ID,
			FaceValue:      d.FaceValue,
			Count:          r.Ledger.Count(i),
			Take:           r.Plan.Take(i),
			Edited:         r.Plan.Edited(i),
			Remaining:      r.Plan.Remainder(r.Ledger, i),
		})
	}

	return &SessionStateResponse{
		SessionID:    sessionID,
		RecordID:     r.ID,
		BranchID:     r.BranchID,
		BusinessDate: r.BusinessDate.Format(time.DateOnly),
		CashierName:  r.CashierName,
		FloatTarget:  floatTarget,
		Lines:        lines,
		TotalCounted: r.Ledger.Total(),
		TotalToTake:  r.Plan.TotalToTake(),
		TotalRemaining: r.Plan.TotalRemaining(r.Ledger),
		Payments: PaymentsRequest{
			GrossRevenue:         r.Payments.GrossRevenue,
			CardSettlement:       r.Payments.CardSettlement,
			DeliveryPlatform:     r.Payments.DeliveryPlatform,
			VoucherRedemption:    r.Payments.VoucherRedemption,
			PaidOuts:             r.Payments.PaidOuts,
			ReceivablesCollected: r.Payments.ReceivablesCollected,
			DepositsReceived:     r.Payments.DepositsReceived,
		},
		Variance: ToVarianceResponse(r.Variance(floatTarget)),
		Remark:   r.Remark,
		Live:     live,
		Dirty:    dirty,
	}
}

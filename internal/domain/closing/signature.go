package closing

import (
	"fmt"
	"strings"
	"time"
)

// Signature produces the canonical fingerprint of a record's persistable
// content. Two records with the same signature would serialize identically,
// so comparing signatures answers "is there anything to save".
//
// Fields are emitted in a fixed order: header, payment figures rounded to
// whole units, then ledger counts and plan takes in denomination-table
// order. The effective float target is deliberately excluded: a config
// change alone must not flag a record as dirty.
func Signature(r *Record) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s|%s|%s|%s\n",
		r.BranchID, r.BusinessDate.Format("2006-01-02"), r.CashierID, r.Remark)
	fmt.Fprintf(&b, "%d|%d|%d|%d|%d|%d|%d\n",
		r.Payments.GrossRevenue.Round(0).IntPart(),
		r.Payments.CardSettlement.Round(0).IntPart(),
		r.Payments.DeliveryPlatform.Round(0).IntPart(),
		r.Payments.VoucherRedemption.Round(0).IntPart(),
		r.Payments.PaidOuts.Round(0).IntPart(),
		r.Payments.ReceivablesCollected.Round(0).IntPart(),
		r.Payments.DepositsReceived.Round(0).IntPart())

	table := r.Table()
	for i := 0; i < table.Len(); i++ {
		fmt.Fprintf(&b, "%s:%d:%d\n", table.At(i).ID, r.Ledger.Count(i), r.Plan.Take(i))
	}

	return b.String()
}

// SignatureTracker decides whether a record has unsaved changes relative to
// its server-side state, and whether the session should currently surface
// that to the operator.
//
// IsDirty is always a truthful signature comparison. The two time windows
// only gate notifications: the cold-start grace period absorbs the burst of
// derived-field recomputes that fire while a freshly loaded record settles,
// and the post-save silence period absorbs the echo of the save itself.
type SignatureTracker struct {
	serverSig    string
	coldUntil    time.Time
	silenceUntil time.Time

	grace   time.Duration
	silence time.Duration
	now     func() time.Time
}

// NewSignatureTracker creates a tracker with the given window durations.
func NewSignatureTracker(grace, silence time.Duration) *SignatureTracker {
	return &SignatureTracker{
		grace:   grace,
		silence: silence,
		now:     time.Now,
	}
}

// Prime adopts the given signature as the server-side baseline and starts
// the cold-start grace window. Called once when a record is loaded or
// freshly created.
func (t *SignatureTracker) Prime(sig string) {
	t.serverSig = sig
	t.coldUntil = t.now().Add(t.grace)
}

// MarkSaved adopts the signature that was just persisted and starts the
// post-save silence window.
func (t *SignatureTracker) MarkSaved(sig string) {
	t.serverSig = sig
	t.silenceUntil = t.now().Add(t.silence)
}

// IsDirty reports whether the current signature differs from the last one
// known to be on the server. Never suppressed by the time windows.
func (t *SignatureTracker) IsDirty(sig string) bool {
	return sig != t.serverSig
}

// ShouldNotify reports whether a dirty transition for the given signature
// should be surfaced right now. False while clean, during the cold-start
// grace window, or during the post-save silence window.
func (t *SignatureTracker) ShouldNotify(sig string) bool {
	if !t.IsDirty(sig) {
		return false
	}
	n := t.now()
	if n.Before(t.coldUntil) || n.Before(t.silenceUntil) {
		return false
	}
	return true
}

// CanReload reports whether discarding the in-memory record in favor of the
// server copy is safe. A dirty record blocks reload unless forced.
func (t *SignatureTracker) CanReload(sig string, force bool) bool {
	return force || !t.IsDirty(sig)
}

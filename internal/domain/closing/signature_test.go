package closing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignature(t *testing.T) {
	t.Run("stable for identical content", func(t *testing.T) {
		r := newTestRecord(t)
		require.NoError(t, r.RecordCashCount("500000", 10, 3_000_000))
		assert.Equal(t, Signature(r), Signature(r))
	})

	t.Run("changes on ledger mutation", func(t *testing.T) {
		r := newTestRecord(t)
		before := Signature(r)
		require.NoError(t, r.RecordCashCount("500000", 10, 3_000_000))
		assert.NotEqual(t, before, Signature(r))
	})

	t.Run("changes on payment mutation", func(t *testing.T) {
		r := newTestRecord(t)
		before := Signature(r)
		r.UpdatePayments(PaymentBreakdown{GrossRevenue: decimal.NewFromInt(100)}, 3_000_000)
		assert.NotEqual(t, before, Signature(r))
	})

	t.Run("changes on remark mutation", func(t *testing.T) {
		r := newTestRecord(t)
		before := Signature(r)
		r.SetRemark("drawer key sticky")
		assert.NotEqual(t, before, Signature(r))
	})

	t.Run("float target alone does not change it", func(t *testing.T) {
		r := newTestRecord(t)
		before := Signature(r)
		r.StampFloatTarget(2_500_000)
		assert.Equal(t, before, Signature(r))
	})

	t.Run("sub-unit payment noise does not change it", func(t *testing.T) {
		r := newTestRecord(t)
		r.UpdatePayments(PaymentBreakdown{GrossRevenue: decimal.NewFromFloat(1000.2)}, 3_000_000)
		before := Signature(r)
		r.UpdatePayments(PaymentBreakdown{GrossRevenue: decimal.NewFromFloat(1000.3)}, 3_000_000)
		assert.Equal(t, before, Signature(r))
	})
}

func newTestTracker(grace, silence time.Duration) (*SignatureTracker, *time.Time) {
	tr := NewSignatureTracker(grace, silence)
	now := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return now }
	return tr, &now
}

func TestSignatureTracker(t *testing.T) {
	const grace = 2 * time.Second
	const silence = time.Second

	t.Run("dirty is truthful during grace window", func(t *testing.T) {
		tr, _ := newTestTracker(grace, silence)
		tr.Prime("a")
		assert.False(t, tr.IsDirty("a"))
		assert.True(t, tr.IsDirty("b"))
		assert.False(t, tr.ShouldNotify("b"))
	})

	t.Run("notifies after grace expires", func(t *testing.T) {
		tr, now := newTestTracker(grace, silence)
		tr.Prime("a")
		*now = now.Add(grace + time.Millisecond)
		assert.True(t, tr.ShouldNotify("b"))
		assert.False(t, tr.ShouldNotify("a"))
	})

	t.Run("save adopts signature and silences echo", func(t *testing.T) {
		tr, now := newTestTracker(grace, silence)
		tr.Prime("a")
		*now = now.Add(grace + time.Millisecond)

		tr.MarkSaved("b")
		assert.False(t, tr.IsDirty("b"))
		assert.True(t, tr.IsDirty("c"))
		assert.False(t, tr.ShouldNotify("c"))

		*now = now.Add(silence + time.Millisecond)
		assert.True(t, tr.ShouldNotify("c"))
	})

	t.Run("reload blocked while dirty unless forced", func(t *testing.T) {
		tr, _ := newTestTracker(grace, silence)
		tr.Prime("a")
		assert.True(t, tr.CanReload("a", false))
		assert.False(t, tr.CanReload("b", false))
		assert.True(t, tr.CanReload("b", true))
	})
}

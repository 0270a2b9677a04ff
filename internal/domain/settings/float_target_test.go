package settings

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatTargetResolverPrecedence(t *testing.T) {
	t.Run("defaults when no source is set", func(t *testing.T) {
		r := NewFloatTargetResolver()
		assert.Equal(t, DefaultCashFloatTarget, r.Resolve())
	})

	t.Run("record value beats the default", func(t *testing.T) {
		r := NewFloatTargetResolver()
		r.SetRecordValue(1_500_000)
		assert.Equal(t, int64(1_500_000), r.Resolve())
	})

	t.Run("branch config beats the record value", func(t *testing.T) {
		r := NewFloatTargetResolver()
		r.SetRecordValue(1_500_000)
		r.AdoptBranchConfig(2_000_000)
		assert.Equal(t, int64(2_000_000), r.Resolve())
	})

	t.Run("session override beats everything", func(t *testing.T) {
		r := NewFloatTargetResolver()
		r.SetRecordValue(1_500_000)
		r.AdoptBranchConfig(2_000_000)
		r.SetSessionOverride(2_500_000)
		assert.Equal(t, int64(2_500_000), r.Resolve())
	})

	t.Run("clearing the record value falls back to the default", func(t *testing.T) {
		r := NewFloatTargetResolver()
		r.SetRecordValue(1_500_000)
		r.ClearRecordValue()
		assert.Equal(t, DefaultCashFloatTarget, r.Resolve())
	})
}

func TestFloatTargetResolverOverrideConvergence(t *testing.T) {
	t.Run("override equal to branch config is dropped on set", func(t *testing.T) {
		r := NewFloatTargetResolver()
		r.AdoptBranchConfig(2_000_000)
		r.SetSessionOverride(2_000_000)

		assert.False(t, r.HasSessionOverride())
		assert.Equal(t, int64(2_000_000), r.Resolve())
	})

	t.Run("override cleared when config catches up", func(t *testing.T) {
		r := NewFloatTargetResolver()
		r.AdoptBranchConfig(2_000_000)
		r.SetSessionOverride(2_500_000)
		require.True(t, r.HasSessionOverride())

		r.AdoptBranchConfig(2_500_000)

		assert.False(t, r.HasSessionOverride())
		// Later configuration changes are visible again.
		r.AdoptBranchConfig(3_000_000)
		assert.Equal(t, int64(3_000_000), r.Resolve())
	})

	t.Run("negative inputs clamp to zero", func(t *testing.T) {
		r := NewFloatTargetResolver()
		r.AdoptBranchConfig(-100)
		assert.Equal(t, int64(0), r.Resolve())
	})
}

func TestBranchSettings(t *testing.T) {
	t.Run("requires a branch", func(t *testing.T) {
		_, err := NewBranchSettings(uuid.Nil)
		assert.Error(t, err)
	})

	t.Run("starts at the system default", func(t *testing.T) {
		s, err := NewBranchSettings(uuid.New())
		require.NoError(t, err)
		assert.Equal(t, DefaultCashFloatTarget, s.CashFloatTarget)
		assert.Equal(t, int64(1), s.ConfigRevision)
	})

	t.Run("change bumps revision and raises event", func(t *testing.T) {
		s, err := NewBranchSettings(uuid.New())
		require.NoError(t, err)

		require.NoError(t, s.SetCashFloatTarget(4_000_000))

		assert.Equal(t, int64(4_000_000), s.CashFloatTarget)
		assert.Equal(t, int64(2), s.ConfigRevision)
		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		changed, ok := events[0].(*FloatTargetChangedEvent)
		require.True(t, ok)
		assert.Equal(t, int64(4_000_000), changed.Value)
		assert.Equal(t, s.BranchID, changed.BranchID())
	})

	t.Run("unchanged value is a no-op", func(t *testing.T) {
		s, err := NewBranchSettings(uuid.New())
		require.NoError(t, err)

		require.NoError(t, s.SetCashFloatTarget(DefaultCashFloatTarget))

		assert.Equal(t, int64(1), s.ConfigRevision)
		assert.Empty(t, s.GetDomainEvents())
	})

	t.Run("rejects negative target", func(t *testing.T) {
		s, err := NewBranchSettings(uuid.New())
		require.NoError(t, err)
		assert.Error(t, s.SetCashFloatTarget(-1))
	})
}

package settings

import (
	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/shared"
	"time"
)

// DefaultCashFloatTarget is the system fallback when neither a session
// override, a branch configuration, nor a loaded record supplies a value.
const DefaultCashFloatTarget int64 = 3_000_000

// BranchSettings is the per-branch back-office configuration. The cash float
// target is the only value the closing subsystem reads; ConfigRevision is a
// monotonic marker bumped on every change so that polling sessions can detect
// updates without comparing values.
type BranchSettings struct {
	shared.BranchAggregateRoot
	CashFloatTarget int64
	ConfigRevision  int64
}

// NewBranchSettings creates settings for a branch with the system default.
func NewBranchSettings(branchID uuid.UUID) (*BranchSettings, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	return &BranchSettings{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		CashFloatTarget:     DefaultCashFloatTarget,
		ConfigRevision:      1,
	}, nil
}

// SetCashFloatTarget updates the branch float target. Negative targets are
// rejected; an unchanged value is a no-op so duplicate form submissions do
// not bump the revision.
func (s *BranchSettings) SetCashFloatTarget(target int64) error {
	if target < 0 {
		return shared.NewDomainError("INVALID_FLOAT_TARGET", "Cash float target cannot be negative")
	}
	if target == s.CashFloatTarget {
		return nil
	}

	s.CashFloatTarget = target
	s.ConfigRevision++
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewFloatTargetChangedEvent(s))

	return nil
}

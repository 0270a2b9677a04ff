package settings

import (
	"github.com/resto/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeFloatTargetChanged = "settings.float_target_changed"
)

// FloatTargetChangedEvent is raised when a branch's cash float target
// changes. It carries only primitive fields: receivers adopt the value
// as-is, they never merge.
type FloatTargetChangedEvent struct {
	shared.BaseDomainEvent
	Value    int64 `json:"value"`
	Revision int64 `json:"revision"`
}

// NewFloatTargetChangedEvent creates a FloatTargetChangedEvent
func NewFloatTargetChangedEvent(s *BranchSettings) *FloatTargetChangedEvent {
	return &FloatTargetChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			EventTypeFloatTargetChanged, "BranchSettings", s.ID, s.BranchID),
		Value:    s.CashFloatTarget,
		Revision: s.ConfigRevision,
	}
}

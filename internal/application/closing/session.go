package closing

import (
	"sync"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/domain/closing"
	"github.com/resto/backend/internal/domain/settings"
)

// Session is one operator's live editing context for a closing record. It
// pairs the record with the float-target resolver and the dirty tracker and
// serializes access: the record itself is not safe for concurrent use.
type Session struct {
	ID     uuid.UUID
	record *closing.Record

	floats  *settings.FloatTargetResolver
	tracker *closing.SignatureTracker

	live   bool
	closed bool
	mu     sync.Mutex
}

// FloatTarget returns the effective float target for this session.
func (s *Session) FloatTarget() int64 {
	return s.floats.Resolve()
}

// Signature returns the current content fingerprint of the session's record.
func (s *Session) Signature() string {
	return closing.Signature(s.record)
}

// IsDirty reports whether the record differs from its server-side state.
func (s *Session) IsDirty() bool {
	return s.tracker.IsDirty(s.Signature())
}

// ShouldNotifyDirty reports whether the dirty state should be surfaced to
// the operator right now (grace and silence windows suppress it).
func (s *Session) ShouldNotifyDirty() bool {
	return s.tracker.ShouldNotify(s.Signature())
}

// adopt replaces the session's record and re-primes the tracker and the
// record-sourced float target.
func (s *Session) adopt(r *closing.Record) {
	s.record = r
	if r.FloatTargetAtSave > 0 {
		s.floats.SetRecordValue(r.FloatTargetAtSave)
	} else {
		s.floats.ClearRecordValue()
	}
	s.tracker.Prime(closing.Signature(r))
}

package closing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/application/closing/dto"
	"github.com/resto/backend/internal/domain/cashdrawer"
	"github.com/resto/backend/internal/domain/closing"
	"github.com/resto/backend/internal/domain/settings"
	"github.com/resto/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Config tunes the session behavior of the closing service.
type Config struct {
	// SaveRetryDelay is the fixed pause before the single retry of a
	// failed repository write.
	SaveRetryDelay time.Duration
	// ColdStartGrace suppresses dirty notifications right after a record
	// is loaded, while derived fields settle.
	ColdStartGrace time.Duration
	// PostSaveSilence suppresses dirty notifications right after a save,
	// absorbing the echo of the save itself.
	PostSaveSilence time.Duration
}

// DefaultConfig returns the session tuning used when none is configured.
func DefaultConfig() Config {
	return Config{
		SaveRetryDelay:  500 * time.Millisecond,
		ColdStartGrace:  2 * time.Second,
		PostSaveSilence: 1 * time.Second,
	}
}

// Service coordinates closing-record editing sessions: loading and creating
// records, routing drawer mutations through the domain, saving with a
// bounded retry, and fanning branch configuration changes into open
// sessions.
type Service struct {
	records      closing.Repository
	branchConfig settings.BranchSettingsRepository
	publisher    shared.EventPublisher
	table        *cashdrawer.Table
	cfg          Config
	logger       *zap.Logger

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	sleep func(time.Duration)
}

// NewService creates a closing service.
func NewService(
	records closing.Repository,
	branchConfig settings.BranchSettingsRepository,
	publisher shared.EventPublisher,
	table *cashdrawer.Table,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if table == nil {
		table = cashdrawer.DefaultTable()
	}
	return &Service{
		records:      records,
		branchConfig: branchConfig,
		publisher:    publisher,
		table:        table,
		cfg:          cfg,
		logger:       logger,
		sessions:     make(map[uuid.UUID]*Session),
		sleep:        time.Sleep,
	}
}

// OpenSession loads the record for a branch and business date, creating a
// fresh draft when none exists, and starts an editing session around it.
func (s *Service) OpenSession(ctx context.Context, req dto.OpenSessionRequest) (*dto.SessionStateResponse, error) {
	if req.BranchID == uuid.Nil {
		return nil, shared.ErrBranchRequired
	}
	businessDate, err := time.Parse(time.DateOnly, req.BusinessDate)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_DATE", "Business date must be YYYY-MM-DD")
	}

	session := &Session{
		ID:      uuid.New(),
		floats:  settings.NewFloatTargetResolver(),
		tracker: closing.NewSignatureTracker(s.cfg.ColdStartGrace, s.cfg.PostSaveSilence),
		live:    true,
	}

	cfg, err := s.branchConfig.FindByBranch(ctx, req.BranchID)
	switch {
	case err == nil:
		session.floats.AdoptBranchConfig(cfg.CashFloatTarget)
	case errors.Is(err, shared.ErrNotFound):
		// Branch without persisted settings falls through to the default.
	default:
		s.logger.Warn("Failed to load branch settings, using fallback float target",
			zap.String("branch_id", req.BranchID.String()), zap.Error(err))
	}

	record, err := s.records.FindByBranchAndDate(ctx, req.BranchID, businessDate)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNotFound):
		record, err = closing.NewRecord(req.BranchID, businessDate, req.CashierID, req.CashierName, s.table)
		if err != nil {
			return nil, err
		}
	default:
		s.logger.Error("Failed to load closing record", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load closing record")
	}

	session.adopt(record)

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Info("Closing session opened",
		zap.String("session_id", session.ID.String()),
		zap.String("branch_id", req.BranchID.String()),
		zap.String("business_date", req.BusinessDate))

	return s.state(session), nil
}

// CloseSession ends an editing session. Unsaved changes are discarded.
func (s *Service) CloseSession(sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return shared.ErrNotFound
	}
	session.mu.Lock()
	session.closed = true
	session.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// RecordCount commits one counted denomination quantity.
func (s *Service) RecordCount(ctx context.Context, sessionID uuid.UUID, req dto.CountRequest) (*dto.SessionStateResponse, error) {
	return s.mutate(sessionID, func(session *Session) error {
		return session.record.RecordCashCount(req.DenominationID, req.Count, session.FloatTarget())
	})
}

// OverrideWithdrawal pins the withdrawal count for one denomination.
func (s *Service) OverrideWithdrawal(ctx context.Context, sessionID uuid.UUID, req dto.OverrideRequest) (*dto.SessionStateResponse, error) {
	return s.mutate(sessionID, func(session *Session) error {
		return session.record.OverrideWithdrawal(req.DenominationID, req.Count, session.FloatTarget())
	})
}

// Resuggest discards all withdrawal pins and recomputes the plan.
func (s *Service) Resuggest(ctx context.Context, sessionID uuid.UUID) (*dto.SessionStateResponse, error) {
	return s.mutate(sessionID, func(session *Session) error {
		session.record.Resuggest(session.FloatTarget())
		return nil
	})
}

// ClearCounts zeroes the drawer ledger and the plan.
func (s *Service) ClearCounts(ctx context.Context, sessionID uuid.UUID) (*dto.SessionStateResponse, error) {
	return s.mutate(sessionID, func(session *Session) error {
		session.record.ClearCounts()
		return nil
	})
}

// UpdatePayments replaces the external payment figures.
func (s *Service) UpdatePayments(ctx context.Context, sessionID uuid.UUID, req dto.PaymentsRequest) (*dto.SessionStateResponse, error) {
	return s.mutate(sessionID, func(session *Session) error {
		session.record.UpdatePayments(req.ToDomain(), session.FloatTarget())
		return nil
	})
}

// SetRemark sets the closing remark.
func (s *Service) SetRemark(ctx context.Context, sessionID uuid.UUID, req dto.RemarkRequest) (*dto.SessionStateResponse, error) {
	return s.mutate(sessionID, func(session *Session) error {
		session.record.SetRemark(req.Remark)
		return nil
	})
}

// SetSessionFloatTarget pushes a session-local float target and re-resolves
// the plan against it.
func (s *Service) SetSessionFloatTarget(ctx context.Context, sessionID uuid.UUID, req dto.FloatTargetRequest) (*dto.SessionStateResponse, error) {
	return s.mutate(sessionID, func(session *Session) error {
		session.floats.SetSessionOverride(req.FloatTarget)
		session.record.RefreshPlan(session.FloatTarget())
		return nil
	})
}

// SetLiveMode toggles live editing. Leaving live mode discards the
// in-memory record in favor of the server copy.
func (s *Service) SetLiveMode(ctx context.Context, sessionID uuid.UUID, req dto.LiveModeRequest) (*dto.SessionStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed {
		return nil, shared.ErrSessionClosed
	}

	wasLive := session.live
	session.live = req.Live
	if wasLive && !req.Live {
		if err := s.reloadLocked(ctx, session, true); err != nil {
			return nil, err
		}
	}
	return s.state(session), nil
}

// Save persists the session's record. The write is all-or-nothing with a
// single retry after a fixed delay for transient failures; a duplicate
// (branch, business date) row aborts without writing.
func (s *Service) Save(ctx context.Context, sessionID uuid.UUID) (*dto.SessionStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed {
		return nil, shared.ErrSessionClosed
	}

	record := session.record
	if record.BranchID == uuid.Nil {
		return nil, shared.ErrBranchRequired
	}

	taken, err := s.records.ExistsForDate(ctx, record.BranchID, record.BusinessDate, record.ID)
	if err != nil {
		s.logger.Error("Failed to check closing record uniqueness", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to check business date availability")
	}
	if taken {
		return nil, shared.ErrDuplicateRecord
	}

	record.StampFloatTarget(session.FloatTarget())

	if err := s.saveWithRetry(ctx, record); err != nil {
		return nil, err
	}

	record.MarkSaved()
	session.tracker.MarkSaved(closing.Signature(record))
	session.floats.SetRecordValue(record.FloatTargetAtSave)

	if err := s.publisher.Publish(ctx, record.GetDomainEvents()...); err != nil {
		s.logger.Error("Failed to publish closing events", zap.Error(err))
		// Non-blocking: the record itself is saved.
	}
	record.ClearDomainEvents()

	s.logger.Info("Closing record saved",
		zap.String("record_id", record.ID.String()),
		zap.String("branch_id", record.BranchID.String()),
		zap.Int64("float_target", record.FloatTargetAtSave),
		zap.Int64("counted_cash", record.Ledger.Total()))

	return s.state(session), nil
}

// Reload discards the in-memory record and re-fetches the server copy.
// A dirty session refuses unless force is set.
func (s *Service) Reload(ctx context.Context, sessionID uuid.UUID, force bool) (*dto.SessionStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed {
		return nil, shared.ErrSessionClosed
	}
	if err := s.reloadLocked(ctx, session, force); err != nil {
		return nil, err
	}
	return s.state(session), nil
}

// State returns the current session state without mutating anything.
func (s *Service) State(ctx context.Context, sessionID uuid.UUID) (*dto.SessionStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed {
		return nil, shared.ErrSessionClosed
	}
	return s.state(session), nil
}

// Handle adopts branch configuration changes into every open session for
// that branch. Implements shared.EventHandler.
func (s *Service) Handle(ctx context.Context, event shared.DomainEvent) error {
	changed, ok := event.(*settings.FloatTargetChangedEvent)
	if !ok {
		return nil
	}

	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.RUnlock()

	for _, session := range sessions {
		session.mu.Lock()
		if !session.closed && session.record.BranchID == changed.BranchID() {
			session.floats.AdoptBranchConfig(changed.Value)
			session.record.RefreshPlan(session.FloatTarget())
			s.logger.Debug("Session adopted new float target",
				zap.String("session_id", session.ID.String()),
				zap.Int64("float_target", changed.Value))
		}
		session.mu.Unlock()
	}
	return nil
}

// EventTypes returns the event types this handler subscribes to.
func (s *Service) EventTypes() []string {
	return []string{settings.EventTypeFloatTargetChanged}
}

func (s *Service) session(sessionID uuid.UUID) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return session, nil
}

func (s *Service) mutate(sessionID uuid.UUID, fn func(*Session) error) (*dto.SessionStateResponse, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed {
		return nil, shared.ErrSessionClosed
	}
	if !session.live {
		return nil, shared.NewDomainError("SESSION_READ_ONLY", "Session is not in live editing mode")
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	return s.state(session), nil
}

func (s *Service) reloadLocked(ctx context.Context, session *Session, force bool) error {
	if !session.tracker.CanReload(session.Signature(), force) {
		return shared.ErrUnsavedChanges
	}

	record := session.record
	fresh, err := s.records.FindByBranchAndDate(ctx, record.BranchID, record.BusinessDate)
	switch {
	case err == nil:
		session.adopt(fresh)
	case errors.Is(err, shared.ErrNotFound):
		fresh, err = closing.NewRecord(record.BranchID, record.BusinessDate, record.CashierID, record.CashierName, s.table)
		if err != nil {
			return err
		}
		session.adopt(fresh)
	default:
		s.logger.Error("Failed to reload closing record", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to reload closing record")
	}
	return nil
}

// saveWithRetry writes the record, retrying once after a fixed delay when
// the failure looks transient. Domain errors are permanent and never
// retried.
func (s *Service) saveWithRetry(ctx context.Context, record *closing.Record) error {
	err := s.records.Save(ctx, record)
	if err == nil {
		return nil
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}

	s.logger.Warn("Closing record save failed, retrying once",
		zap.String("record_id", record.ID.String()), zap.Error(err))
	s.sleep(s.cfg.SaveRetryDelay)

	if err := s.records.Save(ctx, record); err != nil {
		s.logger.Error("Closing record save failed after retry", zap.Error(err))
		if errors.As(err, &domainErr) {
			return err
		}
		return shared.NewDomainError("SAVE_FAILED", "Failed to save closing record")
	}
	return nil
}

func (s *Service) state(session *Session) *dto.SessionStateResponse {
	return dto.ToSessionStateResponse(
		session.ID, session.record, session.FloatTarget(), session.live, session.IsDirty())
}

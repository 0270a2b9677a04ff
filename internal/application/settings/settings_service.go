package settings

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/resto/backend/internal/application/settings/dto"
	"github.com/resto/backend/internal/domain/settings"
	"github.com/resto/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service manages per-branch configuration. Updates are persisted first,
// then fanned out: domain events on the in-process bus for sessions in this
// process, a broadcast message for other processes.
type Service struct {
	repo        settings.BranchSettingsRepository
	publisher   shared.EventPublisher
	broadcaster settings.ConfigBroadcaster
	logger      *zap.Logger
}

// NewService creates a settings service. broadcaster may be nil when the
// deployment is a single process.
func NewService(
	repo settings.BranchSettingsRepository,
	publisher shared.EventPublisher,
	broadcaster settings.ConfigBroadcaster,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:        repo,
		publisher:   publisher,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// GetBranchSettings returns the configuration for a branch. A branch with
// no persisted row gets the system defaults with revision zero.
func (s *Service) GetBranchSettings(ctx context.Context, branchID uuid.UUID) (*dto.BranchSettingsResponse, error) {
	if branchID == uuid.Nil {
		return nil, shared.ErrBranchRequired
	}

	cfg, err := s.repo.FindByBranch(ctx, branchID)
	switch {
	case err == nil:
		return dto.ToBranchSettingsResponse(cfg), nil
	case errors.Is(err, shared.ErrNotFound):
		return &dto.BranchSettingsResponse{
			BranchID:        branchID,
			CashFloatTarget: settings.DefaultCashFloatTarget,
		}, nil
	default:
		s.logger.Error("Failed to load branch settings", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load branch settings")
	}
}

// UpdateFloatTarget changes a branch's cash float target and propagates the
// change to open closing sessions, local and remote. Setting the current
// value again is a no-op.
func (s *Service) UpdateFloatTarget(ctx context.Context, branchID uuid.UUID, req dto.UpdateFloatTargetRequest) (*dto.BranchSettingsResponse, error) {
	if branchID == uuid.Nil {
		return nil, shared.ErrBranchRequired
	}

	fresh := false
	cfg, err := s.repo.FindByBranch(ctx, branchID)
	switch {
	case err == nil:
	case errors.Is(err, shared.ErrNotFound):
		cfg, err = settings.NewBranchSettings(branchID)
		if err != nil {
			return nil, err
		}
		fresh = true
	default:
		s.logger.Error("Failed to load branch settings", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load branch settings")
	}

	before := cfg.ConfigRevision
	if err := cfg.SetCashFloatTarget(req.FloatTarget); err != nil {
		return nil, err
	}
	if cfg.ConfigRevision == before && !fresh {
		// Unchanged value: nothing to persist or announce.
		return dto.ToBranchSettingsResponse(cfg), nil
	}

	if err := s.repo.Save(ctx, cfg); err != nil {
		s.logger.Error("Failed to save branch settings", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save branch settings")
	}

	if err := s.publisher.Publish(ctx, cfg.GetDomainEvents()...); err != nil {
		s.logger.Error("Failed to publish settings events", zap.Error(err))
		// Non-blocking: the configuration itself is saved.
	}
	cfg.ClearDomainEvents()

	if s.broadcaster != nil {
		msg := settings.ConfigUpdateMessage{
			BranchID:    cfg.BranchID,
			FloatTarget: cfg.CashFloatTarget,
			Revision:    cfg.ConfigRevision,
			Timestamp:   time.Now().UnixNano(),
		}
		if err := s.broadcaster.Publish(ctx, msg); err != nil {
			s.logger.Error("Failed to broadcast settings change", zap.Error(err))
		}
	}

	s.logger.Info("Branch float target updated",
		zap.String("branch_id", branchID.String()),
		zap.Int64("float_target", cfg.CashFloatTarget),
		zap.Int64("revision", cfg.ConfigRevision))

	return dto.ToBranchSettingsResponse(cfg), nil
}

// HandleRemoteUpdate converts a broadcast message from another process into
// a local FloatTargetChangedEvent so open sessions adopt it. Wired as the
// broadcaster's subscription callback.
func (s *Service) HandleRemoteUpdate(ctx context.Context, msg settings.ConfigUpdateMessage) {
	cfg, err := s.repo.FindByBranch(ctx, msg.BranchID)
	if err == nil && cfg.ConfigRevision > msg.Revision {
		// A newer local revision already superseded this message.
		return
	}

	event := &settings.FloatTargetChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			settings.EventTypeFloatTargetChanged, "BranchSettings", uuid.Nil, msg.BranchID),
		Value:    msg.FloatTarget,
		Revision: msg.Revision,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to replay remote settings change", zap.Error(err))
	}
}

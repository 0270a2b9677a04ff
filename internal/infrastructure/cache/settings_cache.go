package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/resto/backend/internal/domain/settings"
	"github.com/resto/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultSettingsTTL = 30 * time.Second

// cachedBranchSettings is the JSON shape stored in Redis
type cachedBranchSettings struct {
	ID              uuid.UUID `json:"id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Version         int       `json:"version"`
	BranchID        uuid.UUID `json:"branch_id"`
	CashFloatTarget int64     `json:"cash_float_target"`
	ConfigRevision  int64     `json:"config_revision"`
}

// CachedBranchSettingsRepository decorates a BranchSettingsRepository with a
// Redis read-through cache. Reads hit Redis first; writes go straight to the
// inner repository and drop the cached entry so the next read refills it.
// Revision always reads the inner repository: it exists to detect staleness,
// so serving it from the cache would defeat its purpose.
type CachedBranchSettingsRepository struct {
	inner  settings.BranchSettingsRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// CachedBranchSettingsOption is a functional option for configuring the cache
type CachedBranchSettingsOption func(*CachedBranchSettingsRepository)

// WithSettingsTTL sets the cache entry lifetime
func WithSettingsTTL(ttl time.Duration) CachedBranchSettingsOption {
	return func(c *CachedBranchSettingsRepository) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSettingsCacheLogger sets the logger for the cache
func WithSettingsCacheLogger(logger *zap.Logger) CachedBranchSettingsOption {
	return func(c *CachedBranchSettingsRepository) {
		c.logger = logger
	}
}

// NewCachedBranchSettingsRepository wraps inner with a Redis read-through cache.
// The caller retains ownership of the Redis client.
func NewCachedBranchSettingsRepository(inner settings.BranchSettingsRepository, client *redis.Client, opts ...CachedBranchSettingsOption) *CachedBranchSettingsRepository {
	c := &CachedBranchSettingsRepository{
		inner:  inner,
		client: client,
		ttl:    defaultSettingsTTL,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// settingsCacheKey generates the cache key for a branch
func (c *CachedBranchSettingsRepository) settingsCacheKey(branchID uuid.UUID) string {
	return fmt.Sprintf("branch_settings:%s", branchID.String())
}

// FindByBranch returns cached settings when present, otherwise reads through
// to the inner repository and fills the cache. Cache errors degrade to a
// plain repository read; they are logged, never surfaced.
func (c *CachedBranchSettingsRepository) FindByBranch(ctx context.Context, branchID uuid.UUID) (*settings.BranchSettings, error) {
	cacheKey := c.settingsCacheKey(branchID)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == nil {
		var cached cachedBranchSettings
		if err := json.Unmarshal(data, &cached); err == nil {
			c.logger.Debug("Cache hit for branch settings",
				zap.String("branch_id", branchID.String()))
			return fromCached(cached), nil
		}
		c.logger.Error("Failed to unmarshal cached branch settings",
			zap.String("branch_id", branchID.String()))
		// Delete corrupted cache entry
		_ = c.client.Del(ctx, cacheKey)
	} else if err != redis.Nil {
		c.logger.Error("Failed to read branch settings from cache",
			zap.String("branch_id", branchID.String()),
			zap.Error(err))
	}

	found, err := c.inner.FindByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}

	c.fill(ctx, found)
	return found, nil
}

// Save writes through to the inner repository and invalidates the cached entry
func (c *CachedBranchSettingsRepository) Save(ctx context.Context, s *settings.BranchSettings) error {
	if err := c.inner.Save(ctx, s); err != nil {
		return err
	}
	c.Invalidate(ctx, s.BranchID)
	return nil
}

// Revision reads the inner repository directly
func (c *CachedBranchSettingsRepository) Revision(ctx context.Context, branchID uuid.UUID) (int64, error) {
	return c.inner.Revision(ctx, branchID)
}

// Invalidate drops the cached entry for a branch. Called after local saves
// and on remote config update notifications.
func (c *CachedBranchSettingsRepository) Invalidate(ctx context.Context, branchID uuid.UUID) {
	cacheKey := c.settingsCacheKey(branchID)
	if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
		c.logger.Error("Failed to invalidate branch settings cache",
			zap.String("branch_id", branchID.String()),
			zap.Error(err))
		return
	}
	c.logger.Debug("Invalidated branch settings cache",
		zap.String("branch_id", branchID.String()))
}

// fill stores settings in the cache, logging failures without surfacing them
func (c *CachedBranchSettingsRepository) fill(ctx context.Context, s *settings.BranchSettings) {
	data, err := json.Marshal(toCached(s))
	if err != nil {
		c.logger.Error("Failed to marshal branch settings for cache",
			zap.String("branch_id", s.BranchID.String()),
			zap.Error(err))
		return
	}

	if err := c.client.Set(ctx, c.settingsCacheKey(s.BranchID), data, c.ttl).Err(); err != nil {
		c.logger.Error("Failed to cache branch settings",
			zap.String("branch_id", s.BranchID.String()),
			zap.Error(err))
		return
	}

	c.logger.Debug("Cached branch settings",
		zap.String("branch_id", s.BranchID.String()),
		zap.Duration("ttl", c.ttl))
}

func toCached(s *settings.BranchSettings) cachedBranchSettings {
	return cachedBranchSettings{
		ID:              s.ID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
		Version:         s.Version,
		BranchID:        s.BranchID,
		CashFloatTarget: s.CashFloatTarget,
		ConfigRevision:  s.ConfigRevision,
	}
}

func fromCached(c cachedBranchSettings) *settings.BranchSettings {
	return &settings.BranchSettings{
		BranchAggregateRoot: shared.BranchAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{
					ID:        c.ID,
					CreatedAt: c.CreatedAt,
					UpdatedAt: c.UpdatedAt,
				},
				Version: c.Version,
			},
			BranchID: c.BranchID,
		},
		CashFloatTarget: c.CashFloatTarget,
		ConfigRevision:  c.ConfigRevision,
	}
}

// Ensure CachedBranchSettingsRepository implements BranchSettingsRepository
var _ settings.BranchSettingsRepository = (*CachedBranchSettingsRepository)(nil)

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/resto/backend/internal/domain/settings"
	"go.uber.org/zap"
)

// Constants for broadcaster configuration
const (
	defaultCloseTimeout     = 5 * time.Second
	defaultBroadcastChannel = "resto:settings:updates"
)

// RedisConfigBroadcaster implements settings.ConfigBroadcaster using Redis Pub/Sub.
// Every process runs one; a branch configuration change saved by one process
// reaches the open closing sessions of the others.
type RedisConfigBroadcaster struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	channel    string
	logger     *zap.Logger
	cancelFn   context.CancelFunc
	doneCh     chan struct{}
	doneOnce   sync.Once
	mu         sync.Mutex
	isRunning  bool
}

// RedisConfigBroadcasterOption is a functional option for configuring the broadcaster
type RedisConfigBroadcasterOption func(*RedisConfigBroadcaster)

// WithBroadcastChannel sets the Pub/Sub channel name
func WithBroadcastChannel(channel string) RedisConfigBroadcasterOption {
	return func(b *RedisConfigBroadcaster) {
		if channel != "" {
			b.channel = channel
		}
	}
}

// WithBroadcastLogger sets the logger for the broadcaster
func WithBroadcastLogger(logger *zap.Logger) RedisConfigBroadcasterOption {
	return func(b *RedisConfigBroadcaster) {
		b.logger = logger
	}
}

// NewRedisConfigBroadcaster creates a new Redis Pub/Sub config broadcaster
func NewRedisConfigBroadcaster(cfg RedisConfig, opts ...RedisConfigBroadcasterOption) (*RedisConfigBroadcaster, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	broadcaster := &RedisConfigBroadcaster{
		client:     client,
		ownsClient: true, // We created this client, so we own it
		channel:    defaultBroadcastChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(broadcaster)
	}

	return broadcaster, nil
}

// NewRedisConfigBroadcasterWithClient creates a broadcaster with an existing Redis client
// Note: The caller retains ownership of the client and is responsible for closing it
func NewRedisConfigBroadcasterWithClient(client *redis.Client, opts ...RedisConfigBroadcasterOption) *RedisConfigBroadcaster {
	broadcaster := &RedisConfigBroadcaster{
		client:     client,
		ownsClient: false, // Client is shared, don't close it
		channel:    defaultBroadcastChannel,
		logger:     zap.NewNop(),
		doneCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(broadcaster)
	}

	return broadcaster
}

// Publish sends a configuration update to all subscribers
func (b *RedisConfigBroadcaster) Publish(ctx context.Context, msg settings.ConfigUpdateMessage) error {
	// Set timestamp if not set
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixNano()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("Failed to marshal config update message",
			zap.String("branch_id", msg.BranchID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish config update message",
			zap.String("channel", b.channel),
			zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}

	b.logger.Debug("Published config update message",
		zap.String("branch_id", msg.BranchID.String()),
		zap.Int64("revision", msg.Revision),
		zap.String("channel", b.channel))

	return nil
}

// Subscribe starts listening for configuration updates.
// The callback function is invoked for each received message.
// This method should be called in a goroutine as it blocks.
func (b *RedisConfigBroadcaster) Subscribe(ctx context.Context, callback func(msg settings.ConfigUpdateMessage)) error {
	b.mu.Lock()
	if b.isRunning {
		b.mu.Unlock()
		return fmt.Errorf("subscription already running")
	}
	b.isRunning = true
	b.mu.Unlock()

	// Create a cancellable context
	subCtx, cancel := context.WithCancel(ctx)
	b.mu.Lock()
	b.cancelFn = cancel
	b.mu.Unlock()

	pubsub := b.client.Subscribe(subCtx, b.channel)
	defer pubsub.Close()

	// Wait for subscription confirmation
	_, err := pubsub.Receive(subCtx)
	if err != nil {
		b.mu.Lock()
		b.isRunning = false
		b.mu.Unlock()
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}

	b.logger.Info("Subscribed to config update channel",
		zap.String("channel", b.channel))

	// Get the message channel
	ch := pubsub.Channel()

	for {
		select {
		case <-subCtx.Done():
			b.logger.Info("Config update subscription stopped")
			b.mu.Lock()
			b.isRunning = false
			b.mu.Unlock()
			b.markDone()
			return subCtx.Err()
		case msg, ok := <-ch:
			if !ok {
				b.logger.Warn("Config update channel closed")
				b.mu.Lock()
				b.isRunning = false
				b.mu.Unlock()
				b.markDone()
				return nil
			}

			var updateMsg settings.ConfigUpdateMessage
			if err := json.Unmarshal([]byte(msg.Payload), &updateMsg); err != nil {
				b.logger.Error("Failed to unmarshal config update message",
					zap.String("payload", msg.Payload),
					zap.Error(err))
				continue
			}

			b.logger.Debug("Received config update message",
				zap.String("branch_id", updateMsg.BranchID.String()),
				zap.Int64("revision", updateMsg.Revision))

			// Call the callback in a separate goroutine to prevent blocking
			go func(m settings.ConfigUpdateMessage) {
				defer func() {
					if r := recover(); r != nil {
						b.logger.Error("Panic in config update callback",
							zap.Any("panic", r))
					}
				}()
				callback(m)
			}(updateMsg)
		}
	}
}

// markDone safely marks the broadcaster as done
func (b *RedisConfigBroadcaster) markDone() {
	b.doneOnce.Do(func() {
		close(b.doneCh)
	})
}

// Close releases any resources held by the broadcaster
func (b *RedisConfigBroadcaster) Close() error {
	b.mu.Lock()
	cancelFn := b.cancelFn
	b.mu.Unlock()

	if cancelFn != nil {
		cancelFn()
		// Wait for subscription to stop with timeout
		select {
		case <-b.doneCh:
		case <-time.After(defaultCloseTimeout):
			b.logger.Warn("Timeout waiting for subscription to stop")
		}
	}

	// Only close client if we own it
	if b.ownsClient {
		return b.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (b *RedisConfigBroadcaster) GetClient() *redis.Client {
	return b.client
}

// Ensure RedisConfigBroadcaster implements ConfigBroadcaster
var _ settings.ConfigBroadcaster = (*RedisConfigBroadcaster)(nil)

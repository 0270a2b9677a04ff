package settings

import (
	"context"

	"github.com/google/uuid"
)

// ConfigUpdateMessage is the cross-process notification sent when a
// branch's configuration changes. Receivers compare Revision against what
// they hold and discard stale messages.
type ConfigUpdateMessage struct {
	BranchID    uuid.UUID `json:"branch_id"`
	FloatTarget int64     `json:"float_target"`
	Revision    int64     `json:"revision"`
	Timestamp   int64     `json:"timestamp"`
}

// ConfigBroadcaster fans configuration changes out to other processes.
type ConfigBroadcaster interface {
	// Publish sends a configuration update to all subscribers
	Publish(ctx context.Context, msg ConfigUpdateMessage) error
	// Subscribe blocks, invoking callback for each received update
	Subscribe(ctx context.Context, callback func(msg ConfigUpdateMessage)) error
	// Close releases the broadcaster's resources
	Close() error
}

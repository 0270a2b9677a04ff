package closing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists closing records
type Repository interface {
	// FindByID returns a record by its ID, or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)
	// FindByBranchAndDate returns the record for a branch and business
	// date, or shared.ErrNotFound
	FindByBranchAndDate(ctx context.Context, branchID uuid.UUID, businessDate time.Time) (*Record, error)
	// ExistsForDate reports whether a record other than excludeID already
	// occupies the (branch, business date) slot
	ExistsForDate(ctx context.Context, branchID uuid.UUID, businessDate time.Time, excludeID uuid.UUID) (bool, error)
	// Save creates or updates a record with its ledger and plan lines
	Save(ctx context.Context, r *Record) error
}

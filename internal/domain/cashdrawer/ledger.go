package cashdrawer

import (
	"fmt"

	"github.com/resto/backend/internal/domain/shared"
)

// Ledger holds the counted quantity of each denomination physically present
// in the drawer. Counts are mutated only by direct operator entry.
type Ledger struct {
	table  *Table
	counts []int64
}

// NewLedger creates a zeroed ledger over the given table.
func NewLedger(table *Table) *Ledger {
	return &Ledger{
		table:  table,
		counts: make([]int64, table.Len()),
	}
}

// Table returns the denomination table the ledger is aligned to.
func (l *Ledger) Table() *Table {
	return l.table
}

// SetCount records the counted quantity for a denomination. Out-of-range
// input is clamped to a non-negative count rather than rejected: numeric
// entry must never interrupt the cashier with an error.
func (l *Ledger) SetCount(denominationID string, count int64) error {
	i := l.table.IndexOf(denominationID)
	if i < 0 {
		return shared.NewDomainError("UNKNOWN_DENOMINATION",
			fmt.Sprintf("Denomination %s is not in the drawer's currency set", denominationID))
	}
	if count < 0 {
		count = 0
	}
	l.counts[i] = count
	return nil
}

// Count returns the counted quantity at table position i.
func (l *Ledger) Count(i int) int64 {
	return l.counts[i]
}

// CountFor returns the counted quantity for a denomination ID (0 if unknown).
func (l *Ledger) CountFor(denominationID string) int64 {
	i := l.table.IndexOf(denominationID)
	if i < 0 {
		return 0
	}
	return l.counts[i]
}

// Total returns the drawer value: the sum of count times face value.
func (l *Ledger) Total() int64 {
	var total int64
	for i, d := range l.table.denoms {
		total += l.counts[i] * d.FaceValue
	}
	return total
}

// Clear zeroes every count. The owning record also discards its withdrawal
// plan: zero counts make withdrawal overrides meaningless.
func (l *Ledger) Clear() {
	for i := range l.counts {
		l.counts[i] = 0
	}
}

// Counts returns a copy of the counts in table order.
func (l *Ledger) Counts() []int64 {
	out := make([]int64, len(l.counts))
	copy(out, l.counts)
	return out
}

// CountsByID returns the counts keyed by denomination ID.
func (l *Ledger) CountsByID() map[string]int64 {
	out := make(map[string]int64, len(l.counts))
	for i, d := range l.table.denoms {
		out[d.ID] = l.counts[i]
	}
	return out
}

// Restore loads persisted counts keyed by denomination ID. Unknown keys are
// ignored; missing keys stay zero. Negative persisted values are clamped.
func (l *Ledger) Restore(counts map[string]int64) {
	l.Clear()
	for id, n := range counts {
		if i := l.table.IndexOf(id); i >= 0 {
			if n < 0 {
				n = 0
			}
			l.counts[i] = n
		}
	}
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	c := NewLedger(l.table)
	copy(c.counts, l.counts)
	return c
}

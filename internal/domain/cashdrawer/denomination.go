package cashdrawer

import (
	"fmt"

	"github.com/resto/backend/internal/domain/shared"
)

// Denomination is one note or coin face value in the drawer's currency set.
// Face values are whole currency units; the business operates without
// fractional units.
type Denomination struct {
	ID        string
	FaceValue int64
}

// Table is the fixed, ordered denomination set for a drawer, largest face
// value first. It is immutable configuration: built once at startup and
// shared by every ledger and plan.
type Table struct {
	denoms []Denomination
	index  map[string]int
}

// NewTable builds a denomination table. Denominations must be non-empty,
// have unique IDs, positive face values, and be strictly descending.
func NewTable(denoms []Denomination) (*Table, error) {
	if len(denoms) == 0 {
		return nil, shared.NewDomainError("EMPTY_TABLE", "Denomination table cannot be empty")
	}

	index := make(map[string]int, len(denoms))
	for i, d := range denoms {
		if d.ID == "" {
			return nil, shared.NewDomainError("INVALID_DENOMINATION", "Denomination ID cannot be empty")
		}
		if d.FaceValue <= 0 {
			return nil, shared.NewDomainError("INVALID_DENOMINATION",
				fmt.Sprintf("Denomination %s must have a positive face value", d.ID))
		}
		if _, exists := index[d.ID]; exists {
			return nil, shared.NewDomainError("DUPLICATE_DENOMINATION",
				fmt.Sprintf("Denomination %s appears more than once", d.ID))
		}
		if i > 0 && d.FaceValue >= denoms[i-1].FaceValue {
			return nil, shared.NewDomainError("INVALID_ORDER",
				"Denominations must be ordered by descending face value")
		}
		index[d.ID] = i
	}

	table := &Table{
		denoms: make([]Denomination, len(denoms)),
		index:  index,
	}
	copy(table.denoms, denoms)
	return table, nil
}

// DefaultTable returns the standard note set used by the business.
func DefaultTable() *Table {
	t, err := NewTable([]Denomination{
		{ID: "500000", FaceValue: 500_000},
		{ID: "200000", FaceValue: 200_000},
		{ID: "100000", FaceValue: 100_000},
		{ID: "50000", FaceValue: 50_000},
		{ID: "20000", FaceValue: 20_000},
		{ID: "10000", FaceValue: 10_000},
		{ID: "5000", FaceValue: 5_000},
		{ID: "2000", FaceValue: 2_000},
		{ID: "1000", FaceValue: 1_000},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of denominations in the table.
func (t *Table) Len() int {
	return len(t.denoms)
}

// At returns the denomination at position i (0 = largest face value).
func (t *Table) At(i int) Denomination {
	return t.denoms[i]
}

// IndexOf returns the position of a denomination ID, or -1 if unknown.
func (t *Table) IndexOf(id string) int {
	if i, ok := t.index[id]; ok {
		return i
	}
	return -1
}

// Denominations returns a copy of the ordered denomination list.
func (t *Table) Denominations() []Denomination {
	out := make([]Denomination, len(t.denoms))
	copy(out, t.denoms)
	return out
}

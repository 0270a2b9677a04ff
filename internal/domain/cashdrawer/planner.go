package cashdrawer

// Plan is the per-denomination withdrawal decision for a drawer: how many
// units of each denomination to remove so that the value kept approaches the
// float target. Each entry carries an Edited flag set once the operator has
// pinned that denomination's count by hand; pinned entries survive later
// recomputes, auto-suggested ones do not.
type Plan struct {
	table  *Table
	take   []int64
	edited []bool
}

// NewPlan creates an empty plan over the given table.
func NewPlan(table *Table) *Plan {
	return &Plan{
		table:  table,
		take:   make([]int64, table.Len()),
		edited: make([]bool, table.Len()),
	}
}

// Table returns the denomination table the plan is aligned to.
func (p *Plan) Table() *Table {
	return p.table
}

// Take returns the withdrawal count at table position i.
func (p *Plan) Take(i int) int64 {
	return p.take[i]
}

// TakeFor returns the withdrawal count for a denomination ID (0 if unknown).
func (p *Plan) TakeFor(denominationID string) int64 {
	i := p.table.IndexOf(denominationID)
	if i < 0 {
		return 0
	}
	return p.take[i]
}

// Edited reports whether the operator has pinned position i.
func (p *Plan) Edited(i int) bool {
	return p.edited[i]
}

// TotalToTake returns the total value the plan withdraws.
func (p *Plan) TotalToTake() int64 {
	var total int64
	for i, d := range p.table.denoms {
		total += p.take[i] * d.FaceValue
	}
	return total
}

// Remainder returns how many units of position i stay in the drawer.
func (p *Plan) Remainder(ledger *Ledger, i int) int64 {
	return ledger.Count(i) - p.take[i]
}

// TotalRemaining returns the value kept in the drawer after withdrawal.
func (p *Plan) TotalRemaining(ledger *Ledger) int64 {
	return ledger.Total() - p.TotalToTake()
}

// Takes returns a copy of the withdrawal counts in table order.
func (p *Plan) Takes() []int64 {
	out := make([]int64, len(p.take))
	copy(out, p.take)
	return out
}

// TakesByID returns the withdrawal counts keyed by denomination ID.
func (p *Plan) TakesByID() map[string]int64 {
	out := make(map[string]int64, len(p.take))
	for i, d := range p.table.denoms {
		out[d.ID] = p.take[i]
	}
	return out
}

// Pins returns the operator-pinned values currently held by the plan,
// keyed by table position.
func (p *Plan) Pins() map[int]int64 {
	pinned := make(map[int]int64)
	for i, e := range p.edited {
		if e {
			pinned[i] = p.take[i]
		}
	}
	return pinned
}

// HasPins reports whether any denomination is operator-pinned.
func (p *Plan) HasPins() bool {
	for _, e := range p.edited {
		if e {
			return true
		}
	}
	return false
}

// Restore loads persisted withdrawal counts keyed by denomination ID.
// Persisted plans carry no pins: the edited flags belong to the editing
// session, not the record.
func (p *Plan) Restore(takes map[string]int64) {
	for i := range p.take {
		p.take[i] = 0
		p.edited[i] = false
	}
	for id, n := range takes {
		if i := p.table.IndexOf(id); i >= 0 {
			if n < 0 {
				n = 0
			}
			p.take[i] = n
		}
	}
}

// Planner derives withdrawal plans from a ledger and a float target. All
// methods are pure with respect to their inputs and never fail: every input
// is clamped into range.
type Planner struct {
	table *Table
}

// NewPlanner creates a planner over the given table.
func NewPlanner(table *Table) *Planner {
	return &Planner{table: table}
}

// Suggest computes a fresh plan with no operator pins. A descending greedy
// pass takes as much of the surplus as each denomination can express; if the
// drawer's composition cannot represent the exact remainder, an ascending
// fallback pass withdraws additional small units even when that overshoots
// the surplus. The overshoot is observed business behavior (an unreachable
// float target empties the drawer rather than leaving the surplus behind)
// and must be preserved.
func (pl *Planner) Suggest(ledger *Ledger, floatTarget int64) *Plan {
	plan := pl.Resolve(ledger, floatTarget, nil)

	remain := ledger.Total() - clampTarget(floatTarget, ledger.Total()) - plan.TotalToTake()
	if remain > 0 {
		pl.ascendingFallback(ledger, plan, remain)
	}
	return plan
}

// Resolve computes a plan honoring operator pins. Denominations are walked
// in descending face-value order; a pinned denomination takes
// min(pin, have, remain/face), an unpinned one takes the greedy suggestion
// min(have, remain/face). The pinned path deliberately has no ascending
// fallback: it mirrors the original override recompute, which only re-walks
// descending.
func (pl *Planner) Resolve(ledger *Ledger, floatTarget int64, pins map[int]int64) *Plan {
	plan := NewPlan(pl.table)
	total := ledger.Total()
	remain := total - clampTarget(floatTarget, total)

	for i, d := range pl.table.denoms {
		have := ledger.Count(i)
		take := minInt64(have, remain/d.FaceValue)
		if pin, ok := pins[i]; ok {
			if pin < 0 {
				pin = 0
			}
			take = minInt64(pin, take)
			plan.edited[i] = true
		}
		plan.take[i] = take
		remain -= take * d.FaceValue
	}
	return plan
}

// Refresh recomputes a plan after a ledger or target change. A plan without
// pins gets a fresh suggestion; a plan with pins is re-resolved so that
// pinned denominations keep their operator values.
func (pl *Planner) Refresh(ledger *Ledger, floatTarget int64, prev *Plan) *Plan {
	if prev == nil || !prev.HasPins() {
		return pl.Suggest(ledger, floatTarget)
	}
	return pl.Resolve(ledger, floatTarget, prev.Pins())
}

// RecomputeWithOverride re-solves the plan after the operator types a value
// for the denomination at idx. Pins at positions before idx carry over from
// the previous plan, idx itself is pinned to the clamped request, and pins
// after idx are dropped: edits resolve left to right (largest to smallest)
// and a later edit takes priority for everything at or before it.
func (pl *Planner) RecomputeWithOverride(ledger *Ledger, floatTarget int64, prev *Plan, idx int, requested int64) *Plan {
	if idx < 0 || idx >= pl.table.Len() {
		return pl.Resolve(ledger, floatTarget, prev.Pins())
	}
	if requested < 0 {
		requested = 0
	}

	pins := make(map[int]int64)
	for i, v := range prev.Pins() {
		if i < idx {
			pins[i] = v
		}
	}
	pins[idx] = requested

	return pl.Resolve(ledger, floatTarget, pins)
}

// ascendingFallback withdraws additional units smallest-first until the
// remaining surplus is covered. May overshoot; see Suggest.
func (pl *Planner) ascendingFallback(ledger *Ledger, plan *Plan, remain int64) {
	for i := pl.table.Len() - 1; i >= 0 && remain > 0; i-- {
		face := pl.table.denoms[i].FaceValue
		room := ledger.Count(i) - plan.take[i]
		if room <= 0 {
			continue
		}
		add := minInt64(room, ceilDiv(remain, face))
		plan.take[i] += add
		remain -= add * face
	}
}

func clampTarget(target, total int64) int64 {
	if target < 0 {
		return 0
	}
	if target > total {
		return total
	}
	return target
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}

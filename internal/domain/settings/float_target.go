package settings

// FloatTargetResolver resolves the effective cash float target for one
// editing session from competing sources, in strict precedence order:
//
//  1. a session-local override pushed by the configuration screen, so an
//     operator sees an updated target instantly without reloading
//  2. the persisted branch configuration
//  3. the value stored inside the record being edited (only once a record
//     has actually been loaded, so a fresh record never adopts a stale value
//     before the branch configuration is known)
//  4. the hardcoded system default
//
// The resolver owns no state beyond these inputs; it is recomputed from
// scratch on every change, never incrementally mutated.
type FloatTargetResolver struct {
	sessionOverride *int64
	branchConfig    *int64
	recordValue     *int64
}

// NewFloatTargetResolver creates a resolver with no sources set.
func NewFloatTargetResolver() *FloatTargetResolver {
	return &FloatTargetResolver{}
}

// Resolve returns the effective float target.
func (r *FloatTargetResolver) Resolve() int64 {
	if r.sessionOverride != nil {
		return *r.sessionOverride
	}
	if r.branchConfig != nil {
		return *r.branchConfig
	}
	if r.recordValue != nil {
		return *r.recordValue
	}
	return DefaultCashFloatTarget
}

// SetSessionOverride pins a session-local target. An override equal to the
// persisted branch configuration is dropped immediately: the configuration
// stays the source of truth and a held override cannot mask later
// configuration changes indefinitely.
func (r *FloatTargetResolver) SetSessionOverride(target int64) {
	if target < 0 {
		target = 0
	}
	if r.branchConfig != nil && *r.branchConfig == target {
		r.sessionOverride = nil
		return
	}
	r.sessionOverride = &target
}

// ClearSessionOverride removes the session-local override.
func (r *FloatTargetResolver) ClearSessionOverride() {
	r.sessionOverride = nil
}

// AdoptBranchConfig adopts a new persisted branch configuration value. A
// session override that the new configuration has caught up with is cleared.
func (r *FloatTargetResolver) AdoptBranchConfig(target int64) {
	if target < 0 {
		target = 0
	}
	r.branchConfig = &target
	if r.sessionOverride != nil && *r.sessionOverride == target {
		r.sessionOverride = nil
	}
}

// SetRecordValue supplies the float target persisted in the loaded record.
func (r *FloatTargetResolver) SetRecordValue(target int64) {
	if target < 0 {
		target = 0
	}
	r.recordValue = &target
}

// ClearRecordValue forgets the record-sourced value (record reset or
// date/branch change).
func (r *FloatTargetResolver) ClearRecordValue() {
	r.recordValue = nil
}

// HasSessionOverride reports whether a session override is currently held.
func (r *FloatTargetResolver) HasSessionOverride() bool {
	return r.sessionOverride != nil
}

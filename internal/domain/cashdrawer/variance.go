package cashdrawer

// ExpectedDrawerCash is the theoretical drawer total before physical
// counting: the net cash movement for the period plus the float carried in
// from the previous shift.
func ExpectedDrawerCash(netCash, floatTarget int64) int64 {
	return netCash + floatTarget
}

// Variance compares the counted drawer value against the expected one.
// Positive means overage (more cash than expected), negative means shortage.
// All figures are whole currency units; no rounding is performed here.
func Variance(countedCash, netCash, floatTarget int64) int64 {
	return countedCash - ExpectedDrawerCash(netCash, floatTarget)
}

// VarianceReport bundles the reconciliation figures shown at closing time.
type VarianceReport struct {
	NetCash      int64
	FloatTarget  int64
	CountedCash  int64
	ExpectedCash int64
	Variance     int64
}

// NewVarianceReport computes the full reconciliation for the given inputs.
func NewVarianceReport(netCash, floatTarget, countedCash int64) VarianceReport {
	expected := ExpectedDrawerCash(netCash, floatTarget)
	return VarianceReport{
		NetCash:      netCash,
		FloatTarget:  floatTarget,
		CountedCash:  countedCash,
		ExpectedCash: expected,
		Variance:     countedCash - expected,
	}
}

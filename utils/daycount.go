package utils

import (
	"time"
)

// SecondsPerYear is the ACT/365F year used to convert on-chain maturities to years.
const SecondsPerYear = 365 * 24 * 3600

// SecondsToYears converts a maturity in seconds to years on the ACT/365F basis.
func SecondsToYears(seconds int64) float64 {
	if seconds == 0 {
		return 0
	}
	return float64(seconds) / SecondsPerYear
}

// YearFraction computes year fraction between two instants using the specified day count convention.
// Supported conventions: ACT/360, ACT/365F. Unknown conventions fall back to ACT/365F.
func YearFraction(start, end time.Time, convention string) float64 {
	seconds := end.Sub(start).Seconds()
	switch convention {
	case "ACT/360":
		return seconds / (360 * 24 * 3600)
	default:
		return seconds / SecondsPerYear
	}
}

// TimeToMaturity returns τ in years between settlement and maturity, floored at zero.
// A maturity at or before settlement is instantaneous settlement (τ = 0).
func TimeToMaturity(settlement, maturity time.Time) float64 {
	if !maturity.After(settlement) {
		return 0
	}
	return YearFraction(settlement, maturity, "ACT/365F")
}
